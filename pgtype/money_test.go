package pgtype_test

import (
	"math"
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyCodec(t *testing.T) {
	testutil.RunRoundTripTests[pgtype.Money](t, pgtype.MoneyCodec{}, []testutil.RoundTripTest[pgtype.Money]{
		{Value: 0, Text: "$0.00", Binary: make([]byte, 8)},
		{Value: 5, Text: "$0.05"},
		{Value: -5, Text: "-$0.05"},
		{Value: 123456, Text: "$1,234.56", Binary: []byte{0, 0, 0, 0, 0, 1, 0xe2, 0x40}},
		{Value: -123456789, Text: "-$1,234,567.89"},
		{Value: math.MaxInt64, Text: "$92,233,720,368,547,758.07"},
		{Value: math.MinInt64, Text: "-$92,233,720,368,547,758.08"},
	})
	testutil.RequireNotNull[pgtype.Money](t, pgtype.MoneyCodec{})
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		s string
		m pgtype.Money
	}{
		{s: "($1,234.56)", m: -123456},
		{s: "1234", m: 123400},
		{s: "$.5", m: 50},
		{s: " -12.3 ", m: -1230},
	}
	for _, tt := range tests {
		m, err := pgtype.ParseMoney(tt.s)
		require.NoError(t, err, tt.s)
		assert.Equal(t, tt.m, m, tt.s)
	}

	for _, s := range []string{"", "$", "abc", "$1.234", "$92,233,720,368,547,758.08"} {
		_, err := pgtype.ParseMoney(s)
		assert.Error(t, err, s)
	}
}
