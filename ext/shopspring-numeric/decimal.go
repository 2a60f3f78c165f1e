// Package numeric provides numeric codecs for github.com/shopspring/decimal.
package numeric

import (
	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Codec returns the numeric codec for decimal.Decimal. NaN and infinite numerics cannot be represented and fail to
// decode.
func Codec() pgtype.ConvertCodec[pgtype.Numeric, decimal.Decimal] {
	return pgtype.ConvertCodec[pgtype.Numeric, decimal.Decimal]{
		Codec: pgtype.NumericCodec{},
		From:  numericToDecimal,
		To: func(d decimal.Decimal) (pgtype.Numeric, error) {
			return decimalToNumeric(d), nil
		},
	}
}

// NullCodec returns the numeric codec for decimal.NullDecimal.
func NullCodec() pgtype.ConvertCodec[*pgtype.Numeric, decimal.NullDecimal] {
	return pgtype.ConvertCodec[*pgtype.Numeric, decimal.NullDecimal]{
		Codec: pgtype.Nullable[pgtype.Numeric](pgtype.NumericCodec{}),
		From: func(n *pgtype.Numeric) (decimal.NullDecimal, error) {
			if n == nil {
				return decimal.NullDecimal{}, nil
			}
			d, err := numericToDecimal(*n)
			if err != nil {
				return decimal.NullDecimal{}, err
			}
			return decimal.NullDecimal{Decimal: d, Valid: true}, nil
		},
		To: func(d decimal.NullDecimal) (*pgtype.Numeric, error) {
			if !d.Valid {
				return nil, nil
			}
			n := decimalToNumeric(d.Decimal)
			return &n, nil
		},
	}
}

// Register makes pgcodec.StructSchema use Codec for decimal.Decimal fields and NullCodec for decimal.NullDecimal
// fields.
func Register() {
	pgcodec.RegisterStructCodec[decimal.Decimal](Codec())
	pgcodec.RegisterStructCodec[decimal.NullDecimal](NullCodec())
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	switch {
	case n.NaN:
		return decimal.Decimal{}, errors.New("cannot convert NaN to decimal.Decimal")
	case n.InfinityModifier != pgtype.Finite:
		return decimal.Decimal{}, errors.Errorf("cannot convert %s to decimal.Decimal", n.String())
	case n.Int == nil:
		return decimal.New(0, n.Exp), nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent()}
}
