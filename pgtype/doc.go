// Package pgtype converts between Go and PostgreSQL values.
/*
The primary abstraction is the Codec interface. A Codec[T] converts between the text and binary wire formats of one
PostgreSQL type and the Go type T. Decode receives the OID the server declared, the format code and the raw bytes;
a nil src is the SQL value NULL. Encode appends to a caller supplied buffer and returns nil to encode NULL.

Codecs for the builtin types are plain values such as Int4Codec{}, TextCodec{} or DateCodec{}. None of them
accept NULL. Wrap a codec with Nullable to decode NULL into a nil pointer:

	c := pgtype.Nullable[int32](pgtype.Int4Codec{})
	v, err := c.Decode(pgtype.Int4OID, pgtype.TextFormatCode, nil) // v == nil, err == nil

Type Registry

Every codec reports the Type it encodes. The builtin types are available through TypeForOID, TypeForName,
ArrayTypeOf, RangeTypeOf and MultirangeTypeOf. Extension and user defined types (hstore, ltree, enums, composites,
domains) have OIDs that differ per database, so they are added to a Registry when a connection is set up.
NewRegistryForServer leaves out types the server version does not have.

Array Support

ArrayCodec supports arrays of any element codec, including multi-dimensional arrays and arrays with lower bounds
other than 1. Array elements that may be NULL need a Nullable element codec.

Composite Support

CompositeCodec maps a composite type onto a Go struct with one Field per attribute, in declaration order. Record
types that refer to themselves or to each other are built with LazyCodec. Anonymous records decode into Record,
whose fields are decoded later with DecodeRecordField.

Range and Multirange Support

RangeCodec and MultirangeCodec support ranges over any element codec. Empty ranges are rejected with ErrEmptyRange.

Enum Support

EnumCodec treats an enum as its label. When Labels is set, unknown labels are rejected.

Extending Existing Type Support

ConvertCodec adapts an existing codec to another Go type, such as numeric to a third party decimal type. See the ext
directory for examples. TextParsedCodec builds a codec for a type whose binary format is its text format.
*/
package pgtype
