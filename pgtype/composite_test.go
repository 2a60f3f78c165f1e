package pgtype_test

import (
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  *int32
	Tags pgtype.Array[string]
}

func int32Ptr(n int32) *int32 {
	return &n
}

func personCodec(t *testing.T) pgtype.CompositeCodec[person] {
	r := pgtype.NewRegistry()
	typ, err := r.RegisterComposite(16500, "person")
	require.NoError(t, err)

	return pgtype.CompositeCodec[person]{
		T: typ,
		Fields: []pgtype.CompositeField[person]{
			pgtype.Field("name", pgtype.TextCodec{}, func(p *person) *string { return &p.Name }),
			pgtype.Field("age", pgtype.Nullable[int32](pgtype.Int4Codec{}), func(p *person) **int32 { return &p.Age }),
			pgtype.Field("tags", pgtype.ArrayCodec[string]{Element: pgtype.TextCodec{}}, func(p *person) *pgtype.Array[string] { return &p.Tags }),
		},
	}
}

func TestCompositeCodec(t *testing.T) {
	c := personCodec(t)
	assert.EqualValues(t, 16500, c.Type().OID)
	assert.EqualValues(t, pgtype.TextFormatCode, c.PreferredFormat())

	testutil.RunRoundTripTests[person](t, c, []testutil.RoundTripTest[person]{
		{
			Value: person{Name: "ann", Age: int32Ptr(30), Tags: pgtype.NewArray([]string{"a", "b"})},
			Text:  `(ann,30,"{a,b}")`,
		},
		{
			Value: person{Name: "", Age: nil, Tags: pgtype.NewArray([]string{})},
			Text:  `("",,{})`,
			Binary: []byte{
				0, 0, 0, 3,
				0, 0, 0, 25, 0, 0, 0, 0,
				0, 0, 0, 23, 0xff, 0xff, 0xff, 0xff,
				0, 0, 3, 0xf1, 0, 0, 0, 12, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 25,
			},
		},
		{
			Value: person{Name: `say "hi", (friend) \o/`, Age: int32Ptr(-1), Tags: pgtype.NewArray([]string{"x y"})},
			Text:  `("say \"hi\", (friend) \\o/",-1,"{\"x y\"}")`,
		},
	})
	testutil.RequireNotNull[person](t, c)
}

func TestCompositeCodecDecodeText(t *testing.T) {
	c := personCodec(t)

	tests := []struct {
		src    string
		result person
	}{
		{src: `(bob,,{})`, result: person{Name: "bob", Tags: pgtype.NewArray([]string{})}},
		{src: `("x""y",7,{z})`, result: person{Name: `x"y`, Age: int32Ptr(7), Tags: pgtype.NewArray([]string{"z"})}},
		{src: `(a"b,c"d,1,{})`, result: person{Name: "ab,cd", Age: int32Ptr(1), Tags: pgtype.NewArray([]string{})}},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.result, testutil.MustDecodeText[person](t, c, tt.src), "%s", tt.src)
	}
}

func TestCompositeCodecArity(t *testing.T) {
	c := personCodec(t)

	decodeErr := testutil.RequireDecodeError[person](t, c, pgtype.TextFormatCode, []byte("(ann,30)"))
	assert.Contains(t, decodeErr.Error(), "person has 3 fields but the value has 2")

	decodeErr = testutil.RequireDecodeError[person](t, c, pgtype.BinaryFormatCode, []byte{0, 0, 0, 1, 0, 0, 0, 25, 0, 0, 0, 1, 'a'})
	assert.Contains(t, decodeErr.Error(), "person has 3 fields but the value has 1")

	for _, src := range []string{"", "ann,30,{}", "(ann,30,{})x", `("ann,30,{})`, "(ann,x,{})"} {
		testutil.RequireDecodeError[person](t, c, pgtype.TextFormatCode, []byte(src))
	}
}

func TestCompositeCodecEncodeError(t *testing.T) {
	c := pgtype.CompositeCodec[person]{
		Fields: []pgtype.CompositeField[person]{
			pgtype.Field("tags", pgtype.ArrayCodec[string]{Element: pgtype.TextCodec{}}, func(p *person) *pgtype.Array[string] { return &p.Tags }),
		},
	}
	bad := person{Tags: pgtype.Array[string]{Elements: []string{"a"}}}
	for _, format := range testutil.Formats {
		_, err := pgtype.Encode[person](c, format.Code, bad)
		var encodeErr *pgtype.EncodeError
		require.ErrorAsf(t, err, &encodeErr, format.Name)
		assert.Contains(t, err.Error(), "field tags")
	}
}

type treeNode struct {
	Value int32
	Next  *treeNode
}

func TestCompositeCodecRecursive(t *testing.T) {
	r := pgtype.NewRegistry()
	typ, err := r.RegisterComposite(16600, "tree_node")
	require.NoError(t, err)

	lazy := pgtype.NewLazyCodec[treeNode](typ)
	c := pgtype.CompositeCodec[treeNode]{
		T: typ,
		Fields: []pgtype.CompositeField[treeNode]{
			pgtype.Field("value", pgtype.Int4Codec{}, func(n *treeNode) *int32 { return &n.Value }),
			pgtype.Field("next", pgtype.Nullable[treeNode](lazy), func(n *treeNode) **treeNode { return &n.Next }),
		},
	}

	_, err = pgtype.Decode[treeNode](lazy, pgtype.TextFormatCode, []byte("(1,)"))
	require.ErrorIs(t, err, pgtype.ErrUnboundCodec)

	lazy.Bind(c)
	assert.Panics(t, func() { lazy.Bind(c) })

	testutil.RunRoundTripTests[treeNode](t, c, []testutil.RoundTripTest[treeNode]{
		{Value: treeNode{Value: 1}, Text: "(1,)"},
		{Value: treeNode{Value: 1, Next: &treeNode{Value: 2, Next: &treeNode{Value: 3}}}, Text: `(1,"(2,\"(3,)\")")`},
	})
}

func TestCompositeBinaryScanner(t *testing.T) {
	src := []byte{
		0, 0, 0, 2,
		0, 0, 0, 23, 0, 0, 0, 4, 0, 0, 0, 9,
		0, 0, 0, 25, 0xff, 0xff, 0xff, 0xff,
	}
	scanner := pgtype.NewCompositeBinaryScanner(src)
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, scanner.FieldCount())

	require.True(t, scanner.Next())
	assert.EqualValues(t, pgtype.Int4OID, scanner.OID())
	assert.Equal(t, []byte{0, 0, 0, 9}, scanner.Bytes())

	require.True(t, scanner.Next())
	assert.EqualValues(t, pgtype.TextOID, scanner.OID())
	assert.Nil(t, scanner.Bytes())

	assert.False(t, scanner.Next())
	assert.NoError(t, scanner.Err())

	scanner = pgtype.NewCompositeBinaryScanner([]byte{0, 0, 0, 1, 0, 0, 0, 23, 0, 0, 0, 4, 0})
	assert.False(t, scanner.Next())
	assert.Error(t, scanner.Err())

	assert.Error(t, pgtype.NewCompositeBinaryScanner([]byte{0, 0}).Err())
}

func TestCompositeTextScanner(t *testing.T) {
	tests := []struct {
		src    string
		fields [][]byte
	}{
		{src: "()", fields: [][]byte{nil}},
		{src: "(,)", fields: [][]byte{nil, nil}},
		{src: `(a,"b c",,"")`, fields: [][]byte{[]byte("a"), []byte("b c"), nil, {}}},
		{src: `("a\\b","x""y")`, fields: [][]byte{[]byte(`a\b`), []byte(`x"y`)}},
	}
	for _, tt := range tests {
		scanner := pgtype.NewCompositeTextScanner([]byte(tt.src))
		var fields [][]byte
		for scanner.Next() {
			fields = append(fields, scanner.Bytes())
		}
		require.NoErrorf(t, scanner.Err(), "%s", tt.src)
		assert.Equalf(t, tt.fields, fields, "%s", tt.src)
	}
}

func TestCompositeBuilders(t *testing.T) {
	tb := pgtype.NewCompositeTextBuilder(nil)
	tb.AppendField(func(buf []byte) ([]byte, error) { return append(buf, "a,b"...), nil })
	tb.AppendField(func(buf []byte) ([]byte, error) { return nil, nil })
	tb.AppendField(func(buf []byte) ([]byte, error) { return append(buf, '1'), nil })
	text, err := tb.Finish()
	require.NoError(t, err)
	assert.Equal(t, `("a,b",,1)`, string(text))

	bb := pgtype.NewCompositeBinaryBuilder(nil)
	bb.AppendField(pgtype.Int4OID, func(buf []byte) ([]byte, error) { return append(buf, 0, 0, 0, 1), nil })
	bb.AppendField(pgtype.TextOID, func(buf []byte) ([]byte, error) { return nil, nil })
	bin, err := bb.Finish()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 0, 2,
		0, 0, 0, 23, 0, 0, 0, 4, 0, 0, 0, 1,
		0, 0, 0, 25, 0xff, 0xff, 0xff, 0xff,
	}, bin)
}
