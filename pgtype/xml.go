package pgtype

import (
	"encoding/xml"

	"github.com/clbanning/mxj"
)

// XMLCodec is the codec for xml. Both formats carry the document as text. string and []byte values hold the
// document unparsed, mxj.Map values are converted with mxj, and any other T is unmarshaled with encoding/xml.
type XMLCodec[T any] struct{}

func (XMLCodec[T]) Type() *Type {
	return builtinType(XMLOID)
}

func (XMLCodec[T]) PreferredFormat() int16 {
	return TextFormatCode
}

func (XMLCodec[T]) Decode(oid uint32, format int16, src []byte) (T, error) {
	var v T
	if src == nil {
		return v, newNotNullError[T](oid)
	}
	text, err := versionedText(format, 0, src)
	if err != nil {
		return v, newDecodeError[T](oid, format, src, err)
	}

	switch dst := any(&v).(type) {
	case *string:
		*dst = text
	case *[]byte:
		*dst = []byte(text)
	case *mxj.Map:
		*dst, err = mxj.NewMapXml([]byte(text))
	default:
		err = xml.Unmarshal([]byte(text), &v)
	}
	if err != nil {
		return v, newDecodeError[T](oid, format, src, err)
	}
	return v, nil
}

func (XMLCodec[T]) Encode(format int16, v T, buf []byte) ([]byte, error) {
	var doc []byte
	var err error
	switch src := any(v).(type) {
	case string:
		doc = []byte(src)
	case []byte:
		doc = src
	case mxj.Map:
		doc, err = src.Xml()
	default:
		doc, err = xml.Marshal(v)
	}
	if err != nil {
		return nil, newEncodeError(XMLOID, "", err)
	}
	return appendVersionedText(format, 0, buf, string(doc))
}
