// Package zeronull contains codecs that convert between database NULLs and Go zero values.
/*
Sometimes the distinction between a zero value and a NULL value is not useful at the application level. For example,
in PostgreSQL an empty string may be stored as NULL. There is usually no application level distinction between an
empty string and a NULL string. Package zeronull wraps codecs so that NULL decodes to the zero value and the zero value
encodes as NULL.

In the example below an empty middlename column is stored as NULL.

	middlename := pgcodec.Col("middlename", zeronull.Text(), func(p *Person) *string { return &p.Middlename })
*/
package zeronull
