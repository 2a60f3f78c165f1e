package pgtype

import (
	"encoding/binary"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// CompositeField is one field of a composite type mapped onto a field of the Go struct R.
type CompositeField[R any] interface {
	// Name is the name of the field in the composite type.
	Name() string
	Type() *Type
	PreferredFormat() int16

	// DecodeInto decodes src into the field of dst.
	DecodeInto(dst *R, oid uint32, format int16, src []byte) error

	// EncodeFrom appends the encoding of the field of src. A nil result is NULL.
	EncodeFrom(src *R, format int16, buf []byte) ([]byte, error)

	// Reset sets the field of dst to its zero value.
	Reset(dst *R)
}

type compositeField[R, F any] struct {
	name  string
	codec Codec[F]
	field func(*R) *F
}

// Field maps the composite field name to the Go field returned by field, encoded with codec.
func Field[R, F any](name string, codec Codec[F], field func(*R) *F) CompositeField[R] {
	return compositeField[R, F]{name: name, codec: codec, field: field}
}

func (f compositeField[R, F]) Name() string {
	return f.name
}

func (f compositeField[R, F]) Type() *Type {
	return f.codec.Type()
}

func (f compositeField[R, F]) PreferredFormat() int16 {
	return f.codec.PreferredFormat()
}

func (f compositeField[R, F]) DecodeInto(dst *R, oid uint32, format int16, src []byte) error {
	v, err := f.codec.Decode(oid, format, src)
	if err != nil {
		return err
	}
	*f.field(dst) = v
	return nil
}

func (f compositeField[R, F]) EncodeFrom(src *R, format int16, buf []byte) ([]byte, error) {
	return f.codec.Encode(format, *f.field(src), buf)
}

func (f compositeField[R, F]) Reset(dst *R) {
	var zero F
	*f.field(dst) = zero
}

// CompositeCodec is the codec for a composite (row) type whose fields map onto the Go struct R. Fields must be in
// the order the composite type declares them.
type CompositeCodec[R any] struct {
	T      *Type
	Fields []CompositeField[R]
}

func (c CompositeCodec[R]) Type() *Type {
	if c.T == nil {
		return builtinType(RecordOID)
	}
	return c.T
}

func (c CompositeCodec[R]) PreferredFormat() int16 {
	for _, f := range c.Fields {
		if f.PreferredFormat() != BinaryFormatCode {
			return TextFormatCode
		}
	}
	return BinaryFormatCode
}

func (c CompositeCodec[R]) Decode(oid uint32, format int16, src []byte) (R, error) {
	var r R
	if src == nil {
		return r, newNotNullError[R](oid)
	}

	var err error
	switch format {
	case BinaryFormatCode:
		err = c.decodeBinary(&r, src)
	case TextFormatCode:
		err = c.decodeText(&r, src)
	default:
		err = errUnknownFormat(format)
	}
	if err != nil {
		var zero R
		return zero, newDecodeError[R](oid, format, src, err)
	}
	return r, nil
}

func (c CompositeCodec[R]) errArity(actual int) error {
	return errors.Errorf("%s has %d fields but the value has %d", c.Type().Name, len(c.Fields), actual)
}

func (c CompositeCodec[R]) decodeBinary(r *R, src []byte) error {
	scanner := NewCompositeBinaryScanner(src)
	if scanner.Err() != nil {
		return scanner.Err()
	}
	if scanner.FieldCount() != len(c.Fields) {
		return c.errArity(scanner.FieldCount())
	}

	for i, f := range c.Fields {
		if !scanner.Next() {
			if scanner.Err() != nil {
				return scanner.Err()
			}
			return c.errArity(i)
		}
		if err := f.DecodeInto(r, f.Type().OID, BinaryFormatCode, scanner.Bytes()); err != nil {
			return errors.Wrapf(err, "field %s", f.Name())
		}
	}

	if scanner.Next() {
		return errTrailingBytes(len(src) - scanner.rp)
	}
	return scanner.Err()
}

func (c CompositeCodec[R]) decodeText(r *R, src []byte) error {
	scanner := NewCompositeTextScanner(src)
	var fields [][]byte
	for scanner.Next() {
		fields = append(fields, scanner.Bytes())
	}
	if scanner.Err() != nil {
		return scanner.Err()
	}

	// "()" is a row with no fields or a row with a single NULL field.
	if len(c.Fields) == 0 && len(fields) == 1 && fields[0] == nil {
		return nil
	}
	if len(fields) != len(c.Fields) {
		return c.errArity(len(fields))
	}

	for i, f := range c.Fields {
		if err := f.DecodeInto(r, f.Type().OID, TextFormatCode, fields[i]); err != nil {
			return errors.Wrapf(err, "field %s", f.Name())
		}
	}
	return nil
}

func (c CompositeCodec[R]) Encode(format int16, v R, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		b := NewCompositeBinaryBuilder(buf)
		for _, f := range c.Fields {
			b.AppendField(f.Type().OID, func(buf []byte) ([]byte, error) {
				newBuf, err := f.EncodeFrom(&v, BinaryFormatCode, buf)
				return newBuf, errors.Wrapf(err, "field %s", f.Name())
			})
		}
		return b.Finish()
	case TextFormatCode:
		b := NewCompositeTextBuilder(buf)
		for _, f := range c.Fields {
			b.AppendField(func(buf []byte) ([]byte, error) {
				newBuf, err := f.EncodeFrom(&v, TextFormatCode, buf)
				return newBuf, errors.Wrapf(err, "field %s", f.Name())
			})
		}
		return b.Finish()
	default:
		return nil, errUnknownFormat(format)
	}
}

type CompositeBinaryScanner struct {
	rp  int
	src []byte

	fieldCount int32
	fieldBytes []byte
	fieldOID   uint32
	err        error
}

// NewCompositeBinaryScanner a scanner over a binary encoded composite value.
func NewCompositeBinaryScanner(src []byte) *CompositeBinaryScanner {
	rp := 0
	if len(src[rp:]) < 4 {
		return &CompositeBinaryScanner{err: errShortBuffer("record field count", 4, len(src))}
	}

	fieldCount := int32(binary.BigEndian.Uint32(src[rp:]))
	rp += 4
	if fieldCount < 0 {
		return &CompositeBinaryScanner{err: errors.Errorf("invalid record field count %d", fieldCount)}
	}

	return &CompositeBinaryScanner{
		rp:         rp,
		src:        src,
		fieldCount: fieldCount,
	}
}

// Next advances the scanner to the next field. It returns false after the last field is read or an error occurs. After
// Next returns false, the Err method can be called to check if any errors occurred.
func (cfs *CompositeBinaryScanner) Next() bool {
	if cfs.err != nil {
		return false
	}

	if cfs.rp == len(cfs.src) {
		return false
	}

	if len(cfs.src[cfs.rp:]) < 8 {
		cfs.err = errShortBuffer("record field header", 8, len(cfs.src[cfs.rp:]))
		return false
	}
	cfs.fieldOID = binary.BigEndian.Uint32(cfs.src[cfs.rp:])
	cfs.rp += 4

	fieldLen := int(int32(binary.BigEndian.Uint32(cfs.src[cfs.rp:])))
	cfs.rp += 4

	if fieldLen >= 0 {
		if len(cfs.src[cfs.rp:]) < fieldLen {
			cfs.err = errShortBuffer("record field", fieldLen, len(cfs.src[cfs.rp:]))
			return false
		}
		cfs.fieldBytes = cfs.src[cfs.rp : cfs.rp+fieldLen]
		cfs.rp += fieldLen
	} else {
		cfs.fieldBytes = nil
	}

	return true
}

func (cfs *CompositeBinaryScanner) FieldCount() int {
	return int(cfs.fieldCount)
}

// Bytes returns the bytes of the field most recently read by Next.
func (cfs *CompositeBinaryScanner) Bytes() []byte {
	return cfs.fieldBytes
}

// OID returns the OID of the field most recently read by Next.
func (cfs *CompositeBinaryScanner) OID() uint32 {
	return cfs.fieldOID
}

// Err returns any error encountered by the scanner.
func (cfs *CompositeBinaryScanner) Err() error {
	return cfs.err
}

type CompositeTextScanner struct {
	rp  int
	src []byte

	fieldBytes []byte
	err        error
}

// NewCompositeTextScanner a scanner over a text encoded composite value.
func NewCompositeTextScanner(src []byte) *CompositeTextScanner {
	if len(src) < 2 {
		return &CompositeTextScanner{err: errors.Errorf("record incomplete %q", src)}
	}

	if src[0] != '(' {
		return &CompositeTextScanner{err: errors.New("composite text format must start with '('")}
	}

	if src[len(src)-1] != ')' {
		return &CompositeTextScanner{err: errors.New("composite text format must end with ')'")}
	}

	return &CompositeTextScanner{
		rp:  1,
		src: src,
	}
}

// Next advances the scanner to the next field. It returns false after the last field is read or an error occurs. After
// Next returns false, the Err method can be called to check if any errors occurred.
func (cfs *CompositeTextScanner) Next() bool {
	if cfs.err != nil {
		return false
	}

	if cfs.rp >= len(cfs.src) {
		return false
	}

	switch cfs.src[cfs.rp] {
	case ',', ')': // null
		if cfs.src[cfs.rp] == ')' && cfs.rp != len(cfs.src)-1 {
			cfs.err = errors.Errorf("unexpected data after record end: %q", cfs.src[cfs.rp+1:])
			return false
		}
		cfs.rp++
		cfs.fieldBytes = nil
		return true
	}

	// A field may mix quoted and unquoted sections. Inside quotes "" is a literal quote; anywhere a backslash escapes
	// the next byte.
	cfs.fieldBytes = make([]byte, 0, 16)
	inQuotes := false
	for {
		if cfs.rp >= len(cfs.src) {
			cfs.err = errors.Errorf("record incomplete %q", cfs.src)
			return false
		}
		ch := cfs.src[cfs.rp]

		switch {
		case ch == '\\':
			cfs.rp++
			if cfs.rp >= len(cfs.src) {
				cfs.err = errors.Errorf("record incomplete %q", cfs.src)
				return false
			}
			cfs.fieldBytes = append(cfs.fieldBytes, cfs.src[cfs.rp])
		case ch == '"' && inQuotes && cfs.rp+1 < len(cfs.src) && cfs.src[cfs.rp+1] == '"':
			cfs.fieldBytes = append(cfs.fieldBytes, '"')
			cfs.rp++
		case ch == '"':
			inQuotes = !inQuotes
		case !inQuotes && (ch == ',' || ch == ')'):
			if ch == ')' && cfs.rp != len(cfs.src)-1 {
				cfs.err = errors.Errorf("unexpected data after record end: %q", cfs.src[cfs.rp+1:])
				return false
			}
			cfs.rp++
			return true
		default:
			cfs.fieldBytes = append(cfs.fieldBytes, ch)
		}
		cfs.rp++
	}
}

// Bytes returns the bytes of the field most recently read by Next. nil is NULL.
func (cfs *CompositeTextScanner) Bytes() []byte {
	return cfs.fieldBytes
}

// Err returns any error encountered by the scanner.
func (cfs *CompositeTextScanner) Err() error {
	return cfs.err
}

// CompositeBinaryBuilder builds the binary format of a composite value field by field.
type CompositeBinaryBuilder struct {
	buf        []byte
	startIdx   int
	fieldCount uint32
	err        error
}

func NewCompositeBinaryBuilder(buf []byte) *CompositeBinaryBuilder {
	startIdx := len(buf)
	buf = append(buf, 0, 0, 0, 0) // allocate room for number of fields
	return &CompositeBinaryBuilder{buf: buf, startIdx: startIdx}
}

// AppendField appends a field of type oid whose value is appended by encode. encode returning nil appends NULL.
func (b *CompositeBinaryBuilder) AppendField(oid uint32, encode func(buf []byte) ([]byte, error)) {
	if b.err != nil {
		return
	}

	b.buf = pgio.AppendUint32(b.buf, oid)
	lengthPos := len(b.buf)
	b.buf = pgio.AppendInt32(b.buf, -1)
	fieldBuf, err := encode(b.buf)
	if err != nil {
		b.err = err
		return
	}
	if fieldBuf != nil {
		binary.BigEndian.PutUint32(fieldBuf[lengthPos:], uint32(len(fieldBuf)-len(b.buf)))
		b.buf = fieldBuf
	}

	b.fieldCount++
}

func (b *CompositeBinaryBuilder) Finish() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}

	binary.BigEndian.PutUint32(b.buf[b.startIdx:], b.fieldCount)
	return b.buf, nil
}

// CompositeTextBuilder builds the text format of a composite value field by field.
type CompositeTextBuilder struct {
	buf        []byte
	fieldCount int
	err        error
	fieldBuf   [32]byte
}

func NewCompositeTextBuilder(buf []byte) *CompositeTextBuilder {
	buf = append(buf, '(')
	return &CompositeTextBuilder{buf: buf}
}

// AppendField appends a field whose text is appended by encode. encode returning nil appends NULL.
func (b *CompositeTextBuilder) AppendField(encode func(buf []byte) ([]byte, error)) {
	if b.err != nil {
		return
	}

	if b.fieldCount > 0 {
		b.buf = append(b.buf, ',')
	}
	b.fieldCount++

	fieldBuf, err := encode(b.fieldBuf[0:0])
	if err != nil {
		b.err = err
		return
	}
	if fieldBuf != nil {
		b.buf = append(b.buf, quoteCompositeFieldIfNeeded(string(fieldBuf))...)
	}
}

func (b *CompositeTextBuilder) Finish() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}

	return append(b.buf, ')'), nil
}

var quoteCompositeReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteCompositeField(src string) string {
	return `"` + quoteCompositeReplacer.Replace(src) + `"`
}

func quoteCompositeFieldIfNeeded(src string) string {
	if src == "" || strings.ContainsAny(src, "(),\"\\ \t\n\r\v\f") {
		return quoteCompositeField(src)
	}
	return src
}
