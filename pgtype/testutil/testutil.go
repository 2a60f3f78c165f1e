// Package testutil holds helpers for testing codecs.
package testutil

import (
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Formats lists the wire formats every codec is exercised in.
var Formats = []struct {
	Name string
	Code int16
}{
	{Name: "TextFormat", Code: pgtype.TextFormatCode},
	{Name: "BinaryFormat", Code: pgtype.BinaryFormatCode},
}

// RoundTripTest is a value that must survive encoding and decoding in both formats. When Text is not empty or Binary
// is not nil the encoding in that format must equal it.
type RoundTripTest[T any] struct {
	Value  T
	Text   string
	Binary []byte
}

// RunRoundTripTests encodes and decodes every test value with c in both formats and requires the decoded value to
// equal the original.
func RunRoundTripTests[T any](t *testing.T, c pgtype.Codec[T], tests []RoundTripTest[T]) {
	t.Helper()
	RunRoundTripTestsFunc(t, c, tests, func(t testing.TB, expected, actual T) {
		assert.Equal(t, expected, actual)
	})
}

// RunRoundTripTestsFunc is RunRoundTripTests with a custom comparison, for types such as time.Time whose equal values
// are not always deeply equal.
func RunRoundTripTestsFunc[T any](t *testing.T, c pgtype.Codec[T], tests []RoundTripTest[T], check func(t testing.TB, expected, actual T)) {
	t.Helper()
	for _, format := range Formats {
		t.Run(format.Name, func(t *testing.T) {
			for i, tt := range tests {
				buf, err := pgtype.Encode(c, format.Code, tt.Value)
				require.NoErrorf(t, err, "%d: %v", i, tt.Value)
				require.NotNilf(t, buf, "%d: %v encoded as NULL", i, tt.Value)

				switch {
				case format.Code == pgtype.TextFormatCode && tt.Text != "":
					assert.Equalf(t, tt.Text, string(buf), "%d", i)
				case format.Code == pgtype.BinaryFormatCode && tt.Binary != nil:
					assert.Equalf(t, tt.Binary, buf, "%d", i)
				}

				v, err := pgtype.Decode(c, format.Code, buf)
				require.NoErrorf(t, err, "%d: %v", i, tt.Value)
				check(t, tt.Value, v)
			}
		})
	}
}

// MustEncode encodes v in format and fails the test on error.
func MustEncode[T any](t testing.TB, c pgtype.Codec[T], format int16, v T) []byte {
	t.Helper()
	buf, err := pgtype.Encode(c, format, v)
	require.NoError(t, err)
	return buf
}

// MustDecodeText decodes the text format value s and fails the test on error.
func MustDecodeText[T any](t testing.TB, c pgtype.Codec[T], s string) T {
	t.Helper()
	v, err := pgtype.Decode(c, pgtype.TextFormatCode, []byte(s))
	require.NoErrorf(t, err, "decode %q", s)
	return v
}

// RequireDecodeError requires decoding src in format to fail with a *pgtype.DecodeError.
func RequireDecodeError[T any](t testing.TB, c pgtype.Codec[T], format int16, src []byte) *pgtype.DecodeError {
	t.Helper()
	_, err := pgtype.Decode(c, format, src)
	require.Errorf(t, err, "decode %q", src)
	var decodeErr *pgtype.DecodeError
	require.ErrorAsf(t, err, &decodeErr, "decode %q", src)
	return decodeErr
}

// RequireNotNull requires decoding NULL to fail with a *pgtype.NotNullError in both formats.
func RequireNotNull[T any](t testing.TB, c pgtype.Codec[T]) {
	t.Helper()
	for _, format := range Formats {
		_, err := pgtype.Decode(c, format.Code, nil)
		var notNullErr *pgtype.NotNullError
		require.ErrorAsf(t, err, &notNullErr, "%s", format.Name)
	}
}
