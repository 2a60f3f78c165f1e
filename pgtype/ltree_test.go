package pgtype_test

import (
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLtreeCodec(t *testing.T) {
	c := pgtype.LtreeCodec(nil)
	testutil.RunRoundTripTests[pgtype.Ltree](t, c, []testutil.RoundTripTest[pgtype.Ltree]{
		{Value: pgtype.Ltree{"Top", "Science", "Astronomy"}, Text: "Top.Science.Astronomy", Binary: []byte("\x01Top.Science.Astronomy")},
		{Value: pgtype.Ltree{"a_b-c1"}, Text: "a_b-c1"},
		{Value: pgtype.Ltree{}, Binary: []byte{1}},
	})

	for _, s := range []string{"a..b", ".a", "a.b c", "a.$"} {
		testutil.RequireDecodeError[pgtype.Ltree](t, c, pgtype.TextFormatCode, []byte(s))
	}
	testutil.RequireDecodeError[pgtype.Ltree](t, c, pgtype.BinaryFormatCode, []byte("\x02a.b"))
	testutil.RequireDecodeError[pgtype.Ltree](t, c, pgtype.BinaryFormatCode, []byte{})

	_, err := pgtype.Encode[pgtype.Ltree](c, pgtype.TextFormatCode, pgtype.Ltree{"ok", "not ok"})
	var encodeErr *pgtype.EncodeError
	require.ErrorAs(t, err, &encodeErr)
}

func TestParseLtree(t *testing.T) {
	l, err := pgtype.ParseLtree(" a.b ")
	require.NoError(t, err)
	assert.Equal(t, pgtype.Ltree{"a", "b"}, l)
	assert.Equal(t, "a.b", l.String())
}
