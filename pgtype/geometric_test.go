package pgtype_test

import (
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPointCodec(t *testing.T) {
	testutil.RunRoundTripTests(t, pgtype.PointCodec(), []testutil.RoundTripTest[pgtype.Point]{
		{Value: pgtype.Point{X: 1.5, Y: -2}, Text: "(1.5,-2)", Binary: []byte{0x3f, 0xf8, 0, 0, 0, 0, 0, 0, 0xc0, 0, 0, 0, 0, 0, 0, 0}},
		{Value: pgtype.Point{X: 0.000001, Y: 123456789}, Text: "(0.000001,123456789)"},
	})
	testutil.RequireNotNull(t, pgtype.PointCodec())

	assert.Equal(t, pgtype.Point{X: 1, Y: 2}, testutil.MustDecodeText(t, pgtype.PointCodec(), " ( 1 , 2 ) "))
	testutil.RequireDecodeError(t, pgtype.PointCodec(), pgtype.TextFormatCode, []byte("(1)"))
	testutil.RequireDecodeError(t, pgtype.PointCodec(), pgtype.TextFormatCode, []byte("(a,b)"))
	testutil.RequireDecodeError(t, pgtype.PointCodec(), pgtype.BinaryFormatCode, make([]byte, 15))
}

func TestLineCodec(t *testing.T) {
	testutil.RunRoundTripTests(t, pgtype.LineCodec(), []testutil.RoundTripTest[pgtype.Line]{
		{Value: pgtype.Line{A: 1, B: 2, C: 3}, Text: "{1,2,3}"},
		{Value: pgtype.Line{A: -1.5, B: 0, C: 0.25}, Text: "{-1.5,0,0.25}"},
	})
}

func TestLsegCodec(t *testing.T) {
	testutil.RunRoundTripTests(t, pgtype.LsegCodec(), []testutil.RoundTripTest[pgtype.Lseg]{
		{Value: pgtype.Lseg{P: [2]pgtype.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}}, Text: "[(1,2),(3,4)]"},
	})
	testutil.RequireDecodeError(t, pgtype.LsegCodec(), pgtype.TextFormatCode, []byte("[(1,2),(3)]"))
}

func TestBoxCodec(t *testing.T) {
	testutil.RunRoundTripTests(t, pgtype.BoxCodec(), []testutil.RoundTripTest[pgtype.Box]{
		{Value: pgtype.Box{P: [2]pgtype.Point{{X: 3, Y: 4}, {X: 1, Y: 2}}}, Text: "(3,4),(1,2)"},
	})
	assert.Equal(t, byte(';'), pgtype.BoxCodec().Type().Delimiter)
}

func TestPathCodec(t *testing.T) {
	testutil.RunRoundTripTests(t, pgtype.PathCodec(), []testutil.RoundTripTest[pgtype.Path]{
		{Value: pgtype.Path{P: []pgtype.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}}, Text: "[(1,2),(3,4)]"},
		{
			Value:  pgtype.Path{P: []pgtype.Point{{X: 1, Y: 2}}, Closed: true},
			Text:   "((1,2))",
			Binary: []byte{1, 0, 0, 0, 1, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0, 0x40, 0, 0, 0, 0, 0, 0, 0},
		},
		{Value: pgtype.Path{P: []pgtype.Point{}}, Text: "[]"},
	})
	testutil.RequireDecodeError(t, pgtype.PathCodec(), pgtype.BinaryFormatCode, []byte{0, 0, 0, 0, 2})
	testutil.RequireDecodeError(t, pgtype.PathCodec(), pgtype.TextFormatCode, []byte("[(1,2),(3)]"))
}

func TestPolygonCodec(t *testing.T) {
	testutil.RunRoundTripTests(t, pgtype.PolygonCodec(), []testutil.RoundTripTest[pgtype.Polygon]{
		{Value: pgtype.Polygon{P: []pgtype.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}}, Text: "((0,0),(0,1),(1,1))"},
	})
}

func TestCircleCodec(t *testing.T) {
	testutil.RunRoundTripTests(t, pgtype.CircleCodec(), []testutil.RoundTripTest[pgtype.Circle]{
		{Value: pgtype.Circle{P: pgtype.Point{X: 1, Y: 2}, R: 3}, Text: "<(1,2),3>"},
	})
	testutil.RequireDecodeError(t, pgtype.CircleCodec(), pgtype.TextFormatCode, []byte("<(1,2)>"))
}

func TestTIDCodec(t *testing.T) {
	testutil.RunRoundTripTests[pgtype.TID](t, pgtype.TIDCodec{}, []testutil.RoundTripTest[pgtype.TID]{
		{Value: pgtype.TID{BlockNumber: 1, OffsetNumber: 2}, Text: "(1,2)", Binary: []byte{0, 0, 0, 1, 0, 2}},
		{Value: pgtype.TID{BlockNumber: 4294967295, OffsetNumber: 65535}, Text: "(4294967295,65535)"},
	})
	for _, s := range []string{"(1)", "(1,x)", "1,2", "(1,70000)"} {
		testutil.RequireDecodeError[pgtype.TID](t, pgtype.TIDCodec{}, pgtype.TextFormatCode, []byte(s))
	}
}
