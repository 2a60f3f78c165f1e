package pgtype

import (
	"encoding/binary"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd"
	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// PostgreSQL internal numeric storage uses 16-bit "digits" with base of 10,000
const nbase = 10000

// NumericSign is the sign word of the numeric binary format.
type NumericSign uint16

const (
	NumericPositive NumericSign = 0x0000
	NumericNegative NumericSign = 0x4000
	NumericNaN      NumericSign = 0xC000
	NumericPosInf   NumericSign = 0xD000
	NumericNegInf   NumericSign = 0xF000
)

// maxDisplayScale is the largest dscale the binary format can carry.
const maxDisplayScale = 0x3FFF

// The decimal positions of the most significant digit that an int16 base 10000 weight can address.
const (
	minDecimalPosition = 4 * -32768
	maxDecimalPosition = 4*32767 + 3
)

var big0 *big.Int = big.NewInt(0)
var big10 *big.Int = big.NewInt(10)
var bigNBase *big.Int = big.NewInt(nbase)

// PgNumeric is the numeric binary format: Digits are base 10000 and the first digit is multiplied by
// 10000^Weight. DisplayScale is the number of decimal digits after the point.
type PgNumeric struct {
	Weight       int16
	Sign         NumericSign
	DisplayScale uint16
	Digits       []uint16
}

func (dst *PgNumeric) DecodeBinary(src []byte) error {
	if len(src) < 8 {
		return errShortBuffer("numeric header", 8, len(src))
	}

	ndigits := int(binary.BigEndian.Uint16(src))
	*dst = PgNumeric{
		Weight:       int16(binary.BigEndian.Uint16(src[2:])),
		Sign:         NumericSign(binary.BigEndian.Uint16(src[4:])),
		DisplayScale: binary.BigEndian.Uint16(src[6:]),
	}
	rp := 8

	switch dst.Sign {
	case NumericPositive, NumericNegative, NumericNaN, NumericPosInf, NumericNegInf:
	default:
		return errors.Errorf("invalid numeric sign 0x%04x", uint16(dst.Sign))
	}
	if dst.DisplayScale > maxDisplayScale {
		return errors.Errorf("invalid numeric scale %d", dst.DisplayScale)
	}

	if len(src[rp:]) != ndigits*2 {
		return errInvalidLength("numeric digits", ndigits*2, len(src[rp:]))
	}
	if ndigits > 0 {
		dst.Digits = make([]uint16, ndigits)
	}
	for i := range dst.Digits {
		d := binary.BigEndian.Uint16(src[rp:])
		if d >= nbase {
			return errors.Errorf("invalid numeric digit %d", d)
		}
		dst.Digits[i] = d
		rp += 2
	}

	return nil
}

func (src PgNumeric) AppendBinary(buf []byte) []byte {
	buf = pgio.AppendInt16(buf, int16(len(src.Digits)))
	buf = pgio.AppendInt16(buf, src.Weight)
	buf = pgio.AppendUint16(buf, uint16(src.Sign))
	buf = pgio.AppendUint16(buf, src.DisplayScale)
	for _, d := range src.Digits {
		buf = pgio.AppendUint16(buf, d)
	}
	return buf
}

// Numeric converts the wire form to a Numeric whose Exp is -DisplayScale.
func (src PgNumeric) Numeric() Numeric {
	switch src.Sign {
	case NumericNaN:
		return Numeric{NaN: true}
	case NumericPosInf:
		return Numeric{InfinityModifier: Infinity}
	case NumericNegInf:
		return Numeric{InfinityModifier: NegativeInfinity}
	}

	acc := new(big.Int)
	for _, d := range src.Digits {
		acc.Mul(acc, bigNBase)
		acc.Add(acc, big.NewInt(int64(d)))
	}

	exp := 4 * (int32(src.Weight) - int32(len(src.Digits)) + 1)
	target := -int32(src.DisplayScale)

	switch {
	case len(src.Digits) == 0:
		exp = target
	case exp > target:
		acc.Mul(acc, pow10(exp-target))
		exp = target
	case exp < target:
		acc.Quo(acc, pow10(target-exp))
		exp = target
	}

	if src.Sign == NumericNegative {
		acc.Neg(acc)
	}

	return Numeric{Int: acc, Exp: exp}
}

// Numeric is an arbitrary precision decimal: Int * 10^Exp, NaN or an infinity.
type Numeric struct {
	Int              *big.Int
	Exp              int32
	NaN              bool
	InfinityModifier InfinityModifier
}

// PgNumeric converts n to the wire form. The display scale is -Exp when Exp is negative.
func (n Numeric) PgNumeric() (PgNumeric, error) {
	switch {
	case n.NaN:
		return PgNumeric{Sign: NumericNaN}, nil
	case n.InfinityModifier == Infinity:
		return PgNumeric{Sign: NumericPosInf}, nil
	case n.InfinityModifier == NegativeInfinity:
		return PgNumeric{Sign: NumericNegInf}, nil
	}

	var dst PgNumeric

	exp := n.Exp
	if exp < 0 {
		if -exp > maxDisplayScale {
			return dst, errors.Errorf("numeric scale %d is too large", -exp)
		}
		dst.DisplayScale = uint16(-exp)
	}

	if n.Int == nil || n.Int.Sign() == 0 {
		return dst, nil
	}

	abs := new(big.Int).Abs(n.Int)
	if n.Int.Sign() < 0 {
		dst.Sign = NumericNegative
	}

	// Align the exponent to a multiple of 4 so that the coefficient splits into whole base 10000 digits.
	k := ((exp % 4) + 4) % 4
	if k != 0 {
		abs.Mul(abs, pow10(k))
		exp -= k
	}

	var digits []uint16
	var rem big.Int
	for abs.Sign() != 0 {
		abs.QuoRem(abs, bigNBase, &rem)
		digits = append(digits, uint16(rem.Int64()))
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}

	weight := int64(len(digits)) - 1 + int64(exp/4)
	if weight > 32767 || weight < -32768 {
		return PgNumeric{}, errors.Errorf("numeric weight %d is out of range", weight)
	}
	dst.Weight = int16(weight)

	for len(digits) > 0 && digits[len(digits)-1] == 0 {
		digits = digits[:len(digits)-1]
	}
	dst.Digits = digits

	return dst, nil
}

// checkRange returns an error if n is finite and its weight or scale does not fit the binary format. Both formats are
// held to these limits.
func (n Numeric) checkRange() error {
	if n.NaN || n.InfinityModifier != Finite {
		return nil
	}
	if n.Exp < -maxDisplayScale {
		return errors.Errorf("numeric scale %d is too large", -int64(n.Exp))
	}
	if n.Int == nil || n.Int.Sign() == 0 {
		return nil
	}

	pos := int64(len(new(big.Int).Abs(n.Int).String())) - 1 + int64(n.Exp)
	if pos < minDecimalPosition || pos > maxDecimalPosition {
		return errors.Errorf("numeric weight %d is out of range", floorDiv(pos, 4))
	}
	return nil
}

// String returns the text format of n.
func (n Numeric) String() string {
	switch {
	case n.NaN:
		return "NaN"
	case n.InfinityModifier == Infinity:
		return "Infinity"
	case n.InfinityModifier == NegativeInfinity:
		return "-Infinity"
	}

	i := n.Int
	if i == nil {
		i = big0
	}
	digits := new(big.Int).Abs(i).String()

	var sb strings.Builder
	if i.Sign() < 0 {
		sb.WriteByte('-')
	}

	if n.Exp >= 0 {
		sb.WriteString(digits)
		if i.Sign() != 0 {
			sb.WriteString(strings.Repeat("0", int(n.Exp)))
		}
		return sb.String()
	}

	scale := int(-n.Exp)
	if len(digits) <= scale {
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", scale-len(digits)))
		sb.WriteString(digits)
	} else {
		sb.WriteString(digits[:len(digits)-scale])
		sb.WriteByte('.')
		sb.WriteString(digits[len(digits)-scale:])
	}
	return sb.String()
}

// ParseNumeric parses the numeric text format, which also accepts an exponent. The scale of the input is kept:
// "1.50" has Int 150 and Exp -2.
func ParseNumeric(s string) (Numeric, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan":
		return Numeric{NaN: true}, nil
	case "infinity", "inf", "+infinity", "+inf":
		return Numeric{InfinityModifier: Infinity}, nil
	case "-infinity", "-inf":
		return Numeric{InfinityModifier: NegativeInfinity}, nil
	}

	mantissa := s
	var exp int64
	if idx := strings.IndexAny(s, "eE"); idx >= 0 {
		var err error
		exp, err = strconv.ParseInt(s[idx+1:], 10, 32)
		if err != nil {
			return Numeric{}, errors.Errorf("invalid numeric %q", s)
		}
		mantissa = s[:idx]
	}

	sign := ""
	if mantissa != "" && (mantissa[0] == '-' || mantissa[0] == '+') {
		if mantissa[0] == '-' {
			sign = "-"
		}
		mantissa = mantissa[1:]
	}

	intPart, fracPart := mantissa, ""
	if idx := strings.IndexByte(mantissa, '.'); idx >= 0 {
		intPart, fracPart = mantissa[:idx], mantissa[idx+1:]
	}
	if intPart == "" && fracPart == "" {
		return Numeric{}, errors.Errorf("invalid numeric %q", s)
	}
	for _, part := range []string{intPart, fracPart} {
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return Numeric{}, errors.Errorf("invalid numeric %q", s)
			}
		}
	}

	num, ok := new(big.Int).SetString(sign+intPart+fracPart, 10)
	if !ok {
		return Numeric{}, errors.Errorf("invalid numeric %q", s)
	}
	exp -= int64(len(fracPart))
	if exp > 1<<31-1 || exp < -1<<31 {
		return Numeric{}, errors.Errorf("numeric exponent out of range %q", s)
	}

	n := Numeric{Int: num, Exp: int32(exp)}
	if err := n.checkRange(); err != nil {
		return Numeric{}, errors.Wrapf(err, "invalid numeric %q", s)
	}
	return n, nil
}

// Decimal converts n to an apd.Decimal.
func (n Numeric) Decimal() *apd.Decimal {
	d := &apd.Decimal{}
	switch {
	case n.NaN:
		d.Form = apd.NaN
	case n.InfinityModifier == Infinity:
		d.Form = apd.Infinite
	case n.InfinityModifier == NegativeInfinity:
		d.Form = apd.Infinite
		d.Negative = true
	default:
		if n.Int != nil {
			d.Coeff.Abs(n.Int)
			d.Negative = n.Int.Sign() < 0
		}
		d.Exponent = n.Exp
	}
	return d
}

// NumericFromDecimal converts d to a Numeric. Signaling NaN becomes NaN.
func NumericFromDecimal(d *apd.Decimal) Numeric {
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		return Numeric{NaN: true}
	case apd.Infinite:
		if d.Negative {
			return Numeric{InfinityModifier: NegativeInfinity}
		}
		return Numeric{InfinityModifier: Infinity}
	}

	i := new(big.Int).Set(&d.Coeff)
	if d.Negative {
		i.Neg(i)
	}
	return Numeric{Int: i, Exp: d.Exponent}
}

// NumericCodec is the codec for numeric.
type NumericCodec struct{}

func (NumericCodec) Type() *Type {
	return builtinType(NumericOID)
}

func (NumericCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (NumericCodec) Decode(oid uint32, format int16, src []byte) (Numeric, error) {
	if src == nil {
		return Numeric{}, newNotNullError[Numeric](oid)
	}

	switch format {
	case BinaryFormatCode:
		var pn PgNumeric
		if err := pn.DecodeBinary(src); err != nil {
			return Numeric{}, newDecodeError[Numeric](oid, format, src, err)
		}
		return pn.Numeric(), nil
	case TextFormatCode:
		n, err := ParseNumeric(string(src))
		if err != nil {
			return Numeric{}, newDecodeError[Numeric](oid, format, src, err)
		}
		return n, nil
	default:
		return Numeric{}, newDecodeError[Numeric](oid, format, src, errUnknownFormat(format))
	}
}

func (NumericCodec) Encode(format int16, v Numeric, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		pn, err := v.PgNumeric()
		if err != nil {
			return nil, newEncodeError(NumericOID, "", err)
		}
		return pn.AppendBinary(buf), nil
	case TextFormatCode:
		if err := v.checkRange(); err != nil {
			return nil, newEncodeError(NumericOID, "", err)
		}
		return append(buf, v.String()...), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

// DecimalCodec is the numeric codec for apd decimals.
func DecimalCodec() ConvertCodec[Numeric, *apd.Decimal] {
	return ConvertCodec[Numeric, *apd.Decimal]{
		Codec: NumericCodec{},
		From:  func(n Numeric) (*apd.Decimal, error) { return n.Decimal(), nil },
		To: func(d *apd.Decimal) (Numeric, error) {
			if d == nil {
				return Numeric{}, errors.New("nil decimal")
			}
			return NumericFromDecimal(d), nil
		},
	}
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big10, big.NewInt(int64(n)), nil)
}
