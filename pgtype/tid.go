package pgtype

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// TID is a tuple identifier: the physical location of a row version within its table.
type TID struct {
	BlockNumber  uint32
	OffsetNumber uint16
}

func (t TID) String() string {
	return "(" + strconv.FormatUint(uint64(t.BlockNumber), 10) + "," + strconv.FormatUint(uint64(t.OffsetNumber), 10) + ")"
}

// TIDCodec is the codec for tid.
type TIDCodec struct{}

func (TIDCodec) Type() *Type {
	return builtinType(TIDOID)
}

func (TIDCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (TIDCodec) Decode(oid uint32, format int16, src []byte) (TID, error) {
	if src == nil {
		return TID{}, newNotNullError[TID](oid)
	}

	switch format {
	case BinaryFormatCode:
		if len(src) != 6 {
			return TID{}, newDecodeError[TID](oid, format, src, errInvalidLength("tid", 6, len(src)))
		}
		return TID{
			BlockNumber:  binary.BigEndian.Uint32(src),
			OffsetNumber: binary.BigEndian.Uint16(src[4:]),
		}, nil
	case TextFormatCode:
		s := strings.TrimSpace(string(src))
		if len(s) < 5 || s[0] != '(' || s[len(s)-1] != ')' {
			return TID{}, newDecodeError[TID](oid, format, src, errors.Errorf("invalid tid %q", s))
		}
		block, offset, ok := strings.Cut(s[1:len(s)-1], ",")
		if !ok {
			return TID{}, newDecodeError[TID](oid, format, src, errors.Errorf("invalid tid %q", s))
		}
		b, err := strconv.ParseUint(block, 10, 32)
		if err != nil {
			return TID{}, newDecodeError[TID](oid, format, src, errors.Wrap(err, "invalid tid block number"))
		}
		o, err := strconv.ParseUint(offset, 10, 16)
		if err != nil {
			return TID{}, newDecodeError[TID](oid, format, src, errors.Wrap(err, "invalid tid offset number"))
		}
		return TID{BlockNumber: uint32(b), OffsetNumber: uint16(o)}, nil
	default:
		return TID{}, newDecodeError[TID](oid, format, src, errUnknownFormat(format))
	}
}

func (TIDCodec) Encode(format int16, v TID, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		buf = pgio.AppendUint32(buf, v.BlockNumber)
		return pgio.AppendUint16(buf, v.OffsetNumber), nil
	case TextFormatCode:
		return append(buf, v.String()...), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
