package pgtype

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in cents. The text format assumes an lc_monetary with a '$' symbol, ',' grouping and two
// fractional digits, which is the server default.
type Money int64

var moneyPrinter = message.NewPrinter(language.English)

func (m Money) String() string {
	return string(appendMoney(nil, m))
}

func appendMoney(buf []byte, m Money) []byte {
	u := uint64(m)
	if m < 0 {
		buf = append(buf, '-')
		u = uint64(-(m + 1)) + 1
	}
	buf = append(buf, '$')
	buf = append(buf, moneyPrinter.Sprintf("%d", u/100)...)
	cents := u % 100
	buf = append(buf, '.', byte('0'+cents/10), byte('0'+cents%10))
	return buf
}

// ParseMoney parses amounts such as "$1,234.56", "-$1,234.56" and "($1,234.56)".
func ParseMoney(s string) (Money, error) {
	orig := s
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" || len(frac) > 2 {
		return 0, errors.Errorf("invalid money %q", orig)
	}
	frac += strings.Repeat("0", 2-len(frac))

	cents, err := strconv.ParseInt("-"+whole+frac, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid money %q", orig)
	}
	if !neg {
		if cents == math.MinInt64 {
			return 0, errors.Errorf("money out of range %q", orig)
		}
		cents = -cents
	}
	return Money(cents), nil
}

// MoneyCodec is the codec for money.
type MoneyCodec struct{}

func (MoneyCodec) Type() *Type {
	return builtinType(MoneyOID)
}

func (MoneyCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (MoneyCodec) Decode(oid uint32, format int16, src []byte) (Money, error) {
	if src == nil {
		return 0, newNotNullError[Money](oid)
	}

	switch format {
	case BinaryFormatCode:
		if len(src) != 8 {
			return 0, newDecodeError[Money](oid, format, src, errInvalidLength("money", 8, len(src)))
		}
		return Money(binary.BigEndian.Uint64(src)), nil
	case TextFormatCode:
		m, err := ParseMoney(string(src))
		if err != nil {
			return 0, newDecodeError[Money](oid, format, src, err)
		}
		return m, nil
	default:
		return 0, newDecodeError[Money](oid, format, src, errUnknownFormat(format))
	}
}

func (MoneyCodec) Encode(format int16, v Money, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return pgio.AppendInt64(buf, int64(v)), nil
	case TextFormatCode:
		return appendMoney(buf, v), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
