// Package pgcodec materializes PostgreSQL result rows into typed Go records.
/*
pgcodec sits between an executor that exchanges protocol messages with the server and code that wants typed
values. The executor supplies complete result sets through the RawResultSet interface, with every value still in
its text or binary wire format. The pgtype package converts single values; this package maps whole rows.

Schemas

A Schema declares how the fields of a record type are read from result columns and written as parameters:

	type User struct {
		ID    int64
		Name  string
		Email *string
		Score pgtype.Numeric
	}

	var userSchema = pgcodec.NewSchema("user",
		pgcodec.Col("id", pgtype.Int8Codec{}, func(u *User) *int64 { return &u.ID }, pgcodec.PrimaryKey),
		pgcodec.Col("name", pgtype.TextCodec{}, func(u *User) *string { return &u.Name }),
		pgcodec.Col("email", pgtype.Nullable[string](pgtype.TextCodec{}), func(u *User) **string { return &u.Email }, pgcodec.Optional),
		pgcodec.Col("score", pgtype.NumericCodec{}, func(u *User) *pgtype.Numeric { return &u.Score }, pgcodec.Virtual),
	)

StructSchema builds the same schema from struct tags:

	type User struct {
		ID    int64          `db:"id,pk"`
		Name  string         `db:"name"`
		Email *string        `db:"email,optional"`
		Score pgtype.Numeric `db:"score,virtual"`
	}

Columns are matched to result fields by name, case-insensitively. A column missing from a result is an error unless
it is flagged DefaultIfMissing, which sets the zero value, or Optional, which leaves the field alone. Virtual
columns are read but never written.

Collecting Records

CollectRecords, CollectOneRecord, CollectExactlyOneRecord and ForEachRecord decode a RawResultSet. Query, QueryOne,
Exec and Insert encode parameters, send them through an Executor and collect the result. The pgwire package has an
Executor that speaks the extended query protocol.

Logging and Tracing

Executors report statements to a QueryTracer. Query and QueryOne report optional and defaulted columns missing from
a result to executors that implement RecordTracer. The tracelog package implements both on top of Logger, and the
log directory has Logger adapters for common logging packages.
*/
package pgcodec
