package pgcodec

import (
	"github.com/pkg/errors"
)

// ErrNoRows occurs when rows are expected but none are returned.
var ErrNoRows = errors.New("no rows in result set")

// ErrTooManyRows occurs when more rows than expected are returned.
var ErrTooManyRows = errors.New("too many rows in result set")

// CollectRecords decodes every row of rs with s.
func CollectRecords[R any](rs RawResultSet, s *Schema[R]) ([]R, error) {
	positions, err := s.resolve(rs)
	if err != nil {
		return nil, err
	}

	records := make([]R, rs.RowCount())
	for i := range records {
		if err := s.decodeRow(&records[i], RowView{rs: rs, row: i}, positions); err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
	}

	return records, nil
}

// CollectOneRecord decodes the first row of rs with s. If rs has no rows it returns an error where
// errors.Is(ErrNoRows) is true.
func CollectOneRecord[R any](rs RawResultSet, s *Schema[R]) (R, error) {
	var r R
	if rs.RowCount() == 0 {
		return r, ErrNoRows
	}

	positions, err := s.resolve(rs)
	if err != nil {
		return r, err
	}

	if err := s.decodeRow(&r, RowView{rs: rs, row: 0}, positions); err != nil {
		var zero R
		return zero, err
	}
	return r, nil
}

// CollectExactlyOneRecord decodes the only row of rs with s.
//   - If rs has no rows it returns an error where errors.Is(ErrNoRows) is true.
//   - If rs has more than 1 row it returns an error where errors.Is(ErrTooManyRows) is true.
func CollectExactlyOneRecord[R any](rs RawResultSet, s *Schema[R]) (R, error) {
	if rs.RowCount() > 1 {
		var zero R
		return zero, ErrTooManyRows
	}
	return CollectOneRecord(rs, s)
}

// ForEachRecord decodes each row of rs with s and calls fn with the record. It stops at the first error. The same
// record is not reused between calls.
func ForEachRecord[R any](rs RawResultSet, s *Schema[R], fn func(R) error) error {
	positions, err := s.resolve(rs)
	if err != nil {
		return err
	}

	for i := 0; i < rs.RowCount(); i++ {
		var r R
		if err := s.decodeRow(&r, RowView{rs: rs, row: i}, positions); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		if err := fn(r); err != nil {
			return err
		}
	}

	return nil
}
