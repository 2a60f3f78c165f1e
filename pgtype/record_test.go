package pgtype_test

import (
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCodecBinary(t *testing.T) {
	src := []byte{
		0, 0, 0, 3,
		0, 0, 0, 23, 0, 0, 0, 4, 0, 0, 0, 1,
		0, 0, 0, 25, 0, 0, 0, 1, 'a',
		0, 0, 0, 25, 0xff, 0xff, 0xff, 0xff,
	}
	rec, err := pgtype.Decode[pgtype.Record](pgtype.RecordCodec{}, pgtype.BinaryFormatCode, src)
	require.NoError(t, err)
	require.Len(t, rec, 3)
	assert.Equal(t, pgtype.RecordField{OID: pgtype.Int4OID, Format: pgtype.BinaryFormatCode, Bytes: []byte{0, 0, 0, 1}}, rec[0])

	n, err := pgtype.DecodeRecordField[int32](rec[0], pgtype.Int4Codec{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	s, err := pgtype.DecodeRecordField[string](rec[1], pgtype.TextCodec{})
	require.NoError(t, err)
	assert.Equal(t, "a", s)

	p, err := pgtype.DecodeRecordField[*string](rec[2], pgtype.Nullable[string](pgtype.TextCodec{}))
	require.NoError(t, err)
	assert.Nil(t, p)

	// Decoded fields do not alias the source.
	src[15] = 99
	assert.Equal(t, []byte{0, 0, 0, 1}, rec[0].Bytes)

	buf, err := pgtype.Encode[pgtype.Record](pgtype.RecordCodec{}, pgtype.BinaryFormatCode, rec)
	require.NoError(t, err)
	src[15] = 1
	assert.Equal(t, src, buf)
}

func TestRecordCodecText(t *testing.T) {
	rec, err := pgtype.Decode[pgtype.Record](pgtype.RecordCodec{}, pgtype.TextFormatCode, []byte(`(1,"a b",)`))
	require.NoError(t, err)
	assert.Equal(t, pgtype.Record{
		{Format: pgtype.TextFormatCode, Bytes: []byte("1")},
		{Format: pgtype.TextFormatCode, Bytes: []byte("a b")},
		{Format: pgtype.TextFormatCode},
	}, rec)

	n, err := pgtype.DecodeRecordField[int32](rec[0], pgtype.Int4Codec{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	buf, err := pgtype.Encode[pgtype.Record](pgtype.RecordCodec{}, pgtype.TextFormatCode, rec)
	require.NoError(t, err)
	assert.Equal(t, `(1,"a b",)`, string(buf))

	_, err = pgtype.Encode[pgtype.Record](pgtype.RecordCodec{}, pgtype.BinaryFormatCode, rec)
	var encodeErr *pgtype.EncodeError
	require.ErrorAs(t, err, &encodeErr)

	_, err = pgtype.Encode[pgtype.Record](pgtype.RecordCodec{}, pgtype.BinaryFormatCode, pgtype.Record{{Format: pgtype.BinaryFormatCode, Bytes: []byte{1}}})
	require.ErrorAs(t, err, &encodeErr)
}

func TestRecordCodecDecodeErrors(t *testing.T) {
	for _, src := range [][]byte{
		{0, 0, 0, 2, 0, 0, 0, 23, 0, 0, 0, 4, 0, 0, 0, 1},
		{0, 0, 0, 1, 0, 0, 0, 23, 0, 0, 0, 4, 0, 0},
		{0, 0},
	} {
		_, err := pgtype.Decode[pgtype.Record](pgtype.RecordCodec{}, pgtype.BinaryFormatCode, src)
		var decodeErr *pgtype.DecodeError
		assert.ErrorAsf(t, err, &decodeErr, "%x", src)
	}

	_, err := pgtype.Decode[pgtype.Record](pgtype.RecordCodec{}, pgtype.TextFormatCode, []byte("(1,2"))
	assert.Error(t, err)
}
