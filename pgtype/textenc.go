package pgtype

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

var clientEncodings = map[string]encoding.Encoding{
	"LATIN1":     charmap.ISO8859_1,
	"LATIN2":     charmap.ISO8859_2,
	"LATIN3":     charmap.ISO8859_3,
	"LATIN4":     charmap.ISO8859_4,
	"LATIN5":     charmap.ISO8859_9,
	"LATIN6":     charmap.ISO8859_10,
	"LATIN7":     charmap.ISO8859_13,
	"LATIN8":     charmap.ISO8859_14,
	"LATIN9":     charmap.ISO8859_15,
	"LATIN10":    charmap.ISO8859_16,
	"ISO_8859_5": charmap.ISO8859_5,
	"ISO_8859_6": charmap.ISO8859_6,
	"ISO_8859_7": charmap.ISO8859_7,
	"ISO_8859_8": charmap.ISO8859_8,
	"WIN866":     charmap.CodePage866,
	"WIN874":     charmap.Windows874,
	"WIN1250":    charmap.Windows1250,
	"WIN1251":    charmap.Windows1251,
	"WIN1252":    charmap.Windows1252,
	"WIN1253":    charmap.Windows1253,
	"WIN1254":    charmap.Windows1254,
	"WIN1255":    charmap.Windows1255,
	"WIN1256":    charmap.Windows1256,
	"WIN1257":    charmap.Windows1257,
	"WIN1258":    charmap.Windows1258,
	"KOI8R":      charmap.KOI8R,
	"KOI8U":      charmap.KOI8U,
	"EUC_JP":     japanese.EUCJP,
	"SJIS":       japanese.ShiftJIS,
	"EUC_KR":     korean.EUCKR,
	"BIG5":       traditionalchinese.Big5,
	"GBK":        simplifiedchinese.GBK,
	"GB18030":    simplifiedchinese.GB18030,
}

// ClientEncoding returns the charset for a PostgreSQL client_encoding name. It returns nil for UTF8 and SQL_ASCII,
// which need no conversion. Names PostgreSQL does not use are looked up in the IANA registry.
func ClientEncoding(name string) (encoding.Encoding, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch upper {
	case "", "UTF8", "UTF-8", "UNICODE", "SQL_ASCII":
		return nil, nil
	}
	if enc, ok := clientEncodings[upper]; ok {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown client encoding %q", name)
	}
	if enc == nil {
		return nil, errors.Errorf("unsupported client encoding %q", name)
	}
	return enc, nil
}
