package pgtype

import (
	"github.com/goccy/go-json"
)

// JSONCodec is the codec for json and jsonb. Values are unmarshaled into T; use json.RawMessage to keep the
// document unparsed. The jsonb binary format is the text behind a version byte.
type JSONCodec[T any] struct {
	// T is the declared type. nil means json.
	T *Type
}

// JSONBCodec returns a jsonb codec over T.
func JSONBCodec[T any]() JSONCodec[T] {
	return JSONCodec[T]{T: builtinType(JSONBOID)}
}

func (c JSONCodec[T]) Type() *Type {
	if c.T == nil {
		return builtinType(JSONOID)
	}
	return c.T
}

func (c JSONCodec[T]) version() byte {
	if c.Type().OID == JSONBOID {
		return 1
	}
	return 0
}

func (JSONCodec[T]) PreferredFormat() int16 {
	return TextFormatCode
}

func (c JSONCodec[T]) Decode(oid uint32, format int16, src []byte) (T, error) {
	var v T
	if src == nil {
		return v, newNotNullError[T](oid)
	}
	text, err := versionedText(format, c.version(), src)
	if err != nil {
		return v, newDecodeError[T](oid, format, src, err)
	}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return v, newDecodeError[T](oid, format, src, err)
	}
	return v, nil
}

func (c JSONCodec[T]) Encode(format int16, v T, buf []byte) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, newEncodeError(c.Type().OID, "", err)
	}
	return appendVersionedText(format, c.version(), buf, string(b))
}

// JSONPathCodec returns the codec for jsonpath. Paths are kept as strings.
func JSONPathCodec() TextParsedCodec[string] {
	return TextParsedCodec[string]{
		T:         builtinType(JSONPathOID),
		Version:   1,
		Preferred: TextFormatCode,
		Parse:     func(s string) (string, error) { return s, nil },
		Format:    func(s string) (string, error) { return s, nil },
	}
}
