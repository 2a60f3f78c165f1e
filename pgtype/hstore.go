package pgtype

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Hstore is a set of string keys with nullable string values.
type Hstore map[string]*string

// hstoreType stands in when no registered type is supplied. hstore is an extension type, so its OID differs per
// database; 0 lets the server infer it from context.
var hstoreType = &Type{Name: "hstore", Category: ScalarCategory}

// HstoreCodec is the codec for the hstore extension type.
type HstoreCodec struct {
	// T is the registered hstore type.
	T *Type
}

func (c HstoreCodec) Type() *Type {
	if c.T == nil {
		return hstoreType
	}
	return c.T
}

func (HstoreCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (c HstoreCodec) Decode(oid uint32, format int16, src []byte) (Hstore, error) {
	if src == nil {
		return nil, newNotNullError[Hstore](oid)
	}

	var h Hstore
	var err error
	switch format {
	case BinaryFormatCode:
		h, err = decodeHstoreBinary(src)
	case TextFormatCode:
		if err = checkUTF8(src); err == nil {
			h, err = parseHstore(string(src))
		}
	default:
		err = errUnknownFormat(format)
	}
	if err != nil {
		return nil, newDecodeError[Hstore](oid, format, src, err)
	}
	return h, nil
}

func decodeHstoreBinary(src []byte) (Hstore, error) {
	rp := 0
	readLen := func(what string) (int, error) {
		if len(src[rp:]) < 4 {
			return 0, errShortBuffer(what, 4, len(src[rp:]))
		}
		n := int(int32(binary.BigEndian.Uint32(src[rp:])))
		rp += 4
		return n, nil
	}
	readString := func(n int, what string) (string, error) {
		if n < 0 || len(src[rp:]) < n {
			return "", errors.Errorf("invalid hstore %s length %d", what, n)
		}
		s := src[rp : rp+n]
		rp += n
		if err := checkUTF8(s); err != nil {
			return "", err
		}
		return string(s), nil
	}

	pairCount, err := readLen("hstore pair count")
	if err != nil {
		return nil, err
	}
	if pairCount < 0 || pairCount > len(src)/8 {
		return nil, errors.Errorf("invalid hstore pair count %d", pairCount)
	}

	h := make(Hstore, pairCount)
	for i := 0; i < pairCount; i++ {
		keyLen, err := readLen("hstore key length")
		if err != nil {
			return nil, err
		}
		key, err := readString(keyLen, "key")
		if err != nil {
			return nil, err
		}

		valueLen, err := readLen("hstore value length")
		if err != nil {
			return nil, err
		}
		if valueLen == -1 {
			h[key] = nil
			continue
		}
		value, err := readString(valueLen, "value")
		if err != nil {
			return nil, err
		}
		h[key] = &value
	}

	if rp != len(src) {
		return nil, errTrailingBytes(len(src) - rp)
	}
	return h, nil
}

func (h Hstore) sortedKeys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode encodes v with keys in sorted order.
func (HstoreCodec) Encode(format int16, v Hstore, buf []byte) ([]byte, error) {
	keys := v.sortedKeys()

	switch format {
	case BinaryFormatCode:
		buf = pgio.AppendInt32(buf, int32(len(keys)))
		for _, k := range keys {
			buf = pgio.AppendInt32(buf, int32(len(k)))
			buf = append(buf, k...)
			if val := v[k]; val == nil {
				buf = pgio.AppendInt32(buf, -1)
			} else {
				buf = pgio.AppendInt32(buf, int32(len(*val)))
				buf = append(buf, *val...)
			}
		}
		return buf, nil
	case TextFormatCode:
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = appendHstoreString(buf, k)
			buf = append(buf, "=>"...)
			if val := v[k]; val == nil {
				buf = append(buf, "NULL"...)
			} else {
				buf = appendHstoreString(buf, *val)
			}
		}
		return buf, nil
	default:
		return nil, errUnknownFormat(format)
	}
}

var quoteHstoreReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func appendHstoreString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	buf = append(buf, quoteHstoreReplacer.Replace(s)...)
	return append(buf, '"')
}

type hstoreParser struct {
	src string
	pos int
}

func (p *hstoreParser) skipSpace() {
	for p.pos < len(p.src) && isArraySpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *hstoreParser) atEnd() bool {
	return p.pos >= len(p.src)
}

// token reads a quoted or unquoted string. quoted reports whether it was quoted so that an unquoted NULL can be
// told apart from "NULL".
func (p *hstoreParser) token() (s string, quoted bool, err error) {
	if p.atEnd() {
		return "", false, errors.New("unexpected end of hstore")
	}

	var sb strings.Builder
	if p.src[p.pos] == '"' {
		p.pos++
		for {
			if p.atEnd() {
				return "", false, errors.New("unterminated quoted string in hstore")
			}
			ch := p.src[p.pos]
			p.pos++
			switch ch {
			case '"':
				return sb.String(), true, nil
			case '\\':
				if p.atEnd() {
					return "", false, errors.New("unexpected end of hstore after backslash")
				}
				sb.WriteByte(p.src[p.pos])
				p.pos++
			default:
				sb.WriteByte(ch)
			}
		}
	}

	for !p.atEnd() {
		ch := p.src[p.pos]
		if isArraySpace(ch) || ch == ',' || ch == '=' {
			break
		}
		if ch == '\\' {
			p.pos++
			if p.atEnd() {
				return "", false, errors.New("unexpected end of hstore after backslash")
			}
			ch = p.src[p.pos]
		}
		sb.WriteByte(ch)
		p.pos++
	}
	if sb.Len() == 0 {
		return "", false, errors.Errorf("unexpected %q in hstore at offset %d", p.src[p.pos], p.pos)
	}
	return sb.String(), false, nil
}

// parseHstore parses the hstore text format, such as `"a"=>"1", b=>NULL`.
func parseHstore(s string) (Hstore, error) {
	p := &hstoreParser{src: s}
	h := Hstore{}

	p.skipSpace()
	for !p.atEnd() {
		key, _, err := p.token()
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "=>") {
			return nil, errors.Errorf("expected '=>' after hstore key at offset %d", p.pos)
		}
		p.pos += 2
		p.skipSpace()

		value, quoted, err := p.token()
		if err != nil {
			return nil, err
		}
		if !quoted && strings.EqualFold(value, "NULL") {
			h[key] = nil
		} else {
			h[key] = &value
		}

		p.skipSpace()
		if p.atEnd() {
			break
		}
		if p.src[p.pos] != ',' {
			return nil, errors.Errorf("expected ',' in hstore at offset %d", p.pos)
		}
		p.pos++
		p.skipSpace()
		if p.atEnd() {
			return nil, errors.New("unexpected end of hstore after ','")
		}
	}

	return h, nil
}
