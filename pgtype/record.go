package pgtype

import (
	"github.com/pkg/errors"
)

// RecordField is one field of an anonymous record. Bytes is nil for NULL.
type RecordField struct {
	// OID is the field type. It is 0 for records decoded from the text format, which does not carry field types.
	OID    uint32
	Format int16
	Bytes  []byte
}

// Record is an anonymous record value, such as the result of selecting row(...). Its fields are left undecoded
// because their types are only known at run time.
type Record []RecordField

// DecodeRecordField decodes f with c.
func DecodeRecordField[T any](f RecordField, c Codec[T]) (T, error) {
	oid := f.OID
	if oid == 0 {
		oid = c.Type().OID
	}
	return c.Decode(oid, f.Format, f.Bytes)
}

// RecordCodec is the codec for the record pseudo-type. Decoded field bytes are copied out of the source.
type RecordCodec struct{}

func (RecordCodec) Type() *Type {
	return builtinType(RecordOID)
}

func (RecordCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (RecordCodec) Decode(oid uint32, format int16, src []byte) (Record, error) {
	if src == nil {
		return nil, newNotNullError[Record](oid)
	}

	var rec Record
	switch format {
	case BinaryFormatCode:
		scanner := NewCompositeBinaryScanner(src)
		if scanner.Err() == nil {
			rec = make(Record, 0, scanner.FieldCount())
		}
		for scanner.Next() {
			rec = append(rec, RecordField{OID: scanner.OID(), Format: BinaryFormatCode, Bytes: copyBytes(scanner.Bytes())})
		}
		if err := scanner.Err(); err != nil {
			return nil, newDecodeError[Record](oid, format, src, err)
		}
		if len(rec) != scanner.FieldCount() {
			return nil, newDecodeError[Record](oid, format, src, errors.Errorf("record declares %d fields but has %d", scanner.FieldCount(), len(rec)))
		}
	case TextFormatCode:
		scanner := NewCompositeTextScanner(src)
		for scanner.Next() {
			rec = append(rec, RecordField{Format: TextFormatCode, Bytes: copyBytes(scanner.Bytes())})
		}
		if err := scanner.Err(); err != nil {
			return nil, newDecodeError[Record](oid, format, src, err)
		}
	default:
		return nil, newDecodeError[Record](oid, format, src, errUnknownFormat(format))
	}

	return rec, nil
}

// Encode encodes rec. In the binary format every field must carry its OID. Fields whose Format differs from format
// cannot be re-encoded.
func (RecordCodec) Encode(format int16, rec Record, buf []byte) ([]byte, error) {
	for i, f := range rec {
		if f.Bytes != nil && f.Format != format {
			return nil, newEncodeError(RecordOID, "", errors.Errorf("field %d is in %s format", i, formatName(f.Format)))
		}
	}

	switch format {
	case BinaryFormatCode:
		b := NewCompositeBinaryBuilder(buf)
		for i, f := range rec {
			if f.OID == 0 {
				return nil, newEncodeError(RecordOID, "", errors.Errorf("field %d has no type", i))
			}
			f := f
			b.AppendField(f.OID, func(buf []byte) ([]byte, error) { return appendRaw(buf, f.Bytes), nil })
		}
		return b.Finish()
	case TextFormatCode:
		b := NewCompositeTextBuilder(buf)
		for _, f := range rec {
			f := f
			b.AppendField(func(buf []byte) ([]byte, error) { return appendRaw(buf, f.Bytes), nil })
		}
		return b.Finish()
	default:
		return nil, errUnknownFormat(format)
	}
}

func appendRaw(buf, src []byte) []byte {
	if src == nil {
		return nil
	}
	return append(buf, src...)
}

func copyBytes(src []byte) []byte {
	if src == nil {
		return nil
	}
	return append(make([]byte, 0, len(src)), src...)
}
