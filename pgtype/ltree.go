package pgtype

import (
	"strings"

	"github.com/pkg/errors"
)

// Ltree is a label path such as Top.Science.Astronomy. The empty path has no labels.
type Ltree []string

const maxLtreeLabelLength = 1000

var ltreeType = &Type{Name: "ltree", Category: ScalarCategory}

func (l Ltree) String() string {
	return strings.Join(l, ".")
}

func validLtreeLabel(label string) error {
	if label == "" {
		return errors.New("empty ltree label")
	}
	if len(label) > maxLtreeLabelLength {
		return errors.Errorf("ltree label longer than %d bytes", maxLtreeLabelLength)
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return errors.Errorf("invalid character %q in ltree label %q", r, label)
		}
	}
	return nil
}

// ParseLtree parses a dot separated label path.
func ParseLtree(s string) (Ltree, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ltree{}, nil
	}
	labels := strings.Split(s, ".")
	for _, label := range labels {
		if err := validLtreeLabel(label); err != nil {
			return nil, err
		}
	}
	return Ltree(labels), nil
}

// LtreeCodec returns the codec for the ltree extension type t. A nil t leaves the OID for the server to infer.
// The binary format is the text form behind a version byte.
func LtreeCodec(t *Type) TextParsedCodec[Ltree] {
	if t == nil {
		t = ltreeType
	}
	return TextParsedCodec[Ltree]{
		T:         t,
		Version:   1,
		Preferred: TextFormatCode,
		Parse:     ParseLtree,
		Format: func(l Ltree) (string, error) {
			for _, label := range l {
				if err := validLtreeLabel(label); err != nil {
					return "", err
				}
			}
			return l.String(), nil
		},
	}
}
