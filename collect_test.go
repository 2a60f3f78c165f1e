package pgcodec_test

import (
	"testing"

	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int32
	Name string
}

var itemSchema = pgcodec.NewSchema("item",
	pgcodec.Col("id", pgtype.Int4Codec{}, func(i *item) *int32 { return &i.ID }, pgcodec.PrimaryKey),
	pgcodec.Col("name", pgtype.TextCodec{}, func(i *item) *string { return &i.Name }),
)

func itemResultSet(rows ...[][]byte) *testResultSet {
	return &testResultSet{
		fields: []testField{textField("id", pgtype.Int4OID), textField("name", pgtype.TextOID)},
		rows:   rows,
	}
}

func TestCollectRecords(t *testing.T) {
	t.Parallel()

	items, err := pgcodec.CollectRecords(itemResultSet(textRow("1", "a"), textRow("2", "b")), itemSchema)
	require.NoError(t, err)
	assert.Equal(t, []item{{1, "a"}, {2, "b"}}, items)

	items, err = pgcodec.CollectRecords(itemResultSet(), itemSchema)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = pgcodec.CollectRecords(itemResultSet(textRow("1", "a"), textRow("x", "b")), itemSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1: item: field id: ")
	var decodeErr *pgtype.DecodeError
	assert.True(t, errors.As(err, &decodeErr))

	_, err = pgcodec.CollectRecords(&testResultSet{fields: []testField{textField("id", pgtype.Int4OID)}}, itemSchema)
	var missingErr *pgcodec.MissingFieldError
	assert.True(t, errors.As(err, &missingErr))
}

func TestCollectOneRecord(t *testing.T) {
	t.Parallel()

	i, err := pgcodec.CollectOneRecord(itemResultSet(textRow("1", "a"), textRow("2", "b")), itemSchema)
	require.NoError(t, err)
	assert.Equal(t, item{1, "a"}, i)

	_, err = pgcodec.CollectOneRecord(itemResultSet(), itemSchema)
	assert.ErrorIs(t, err, pgcodec.ErrNoRows)

	i, err = pgcodec.CollectOneRecord(itemResultSet(textRow("1", nil)), itemSchema)
	var notNullErr *pgtype.NotNullError
	assert.True(t, errors.As(err, &notNullErr))
	assert.Equal(t, item{}, i)
}

func TestCollectExactlyOneRecord(t *testing.T) {
	t.Parallel()

	i, err := pgcodec.CollectExactlyOneRecord(itemResultSet(textRow("1", "a")), itemSchema)
	require.NoError(t, err)
	assert.Equal(t, item{1, "a"}, i)

	_, err = pgcodec.CollectExactlyOneRecord(itemResultSet(), itemSchema)
	assert.ErrorIs(t, err, pgcodec.ErrNoRows)

	_, err = pgcodec.CollectExactlyOneRecord(itemResultSet(textRow("1", "a"), textRow("2", "b")), itemSchema)
	assert.ErrorIs(t, err, pgcodec.ErrTooManyRows)
}

func TestForEachRecord(t *testing.T) {
	t.Parallel()

	rs := itemResultSet(textRow("1", "a"), textRow("2", "b"), textRow("3", "c"))

	var names []string
	err := pgcodec.ForEachRecord(rs, itemSchema, func(i item) error {
		names = append(names, i.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	stop := errors.New("stop")
	var ids []int32
	err = pgcodec.ForEachRecord(rs, itemSchema, func(i item) error {
		ids = append(ids, i.ID)
		if i.ID == 2 {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, []int32{1, 2}, ids)

	err = pgcodec.ForEachRecord(itemResultSet(textRow("1", "a"), textRow("2", nil)), itemSchema, func(i item) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1: ")
}
