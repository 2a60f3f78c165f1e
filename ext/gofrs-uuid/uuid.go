// Package uuid provides uuid codecs for github.com/gofrs/uuid.
package uuid

import (
	"github.com/gofrs/uuid"
	guuid "github.com/google/uuid"
	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/pgtype"
)

// Codec returns the uuid codec for uuid.UUID.
func Codec() pgtype.ConvertCodec[guuid.UUID, uuid.UUID] {
	return pgtype.ConvertCodec[guuid.UUID, uuid.UUID]{
		Codec: pgtype.UUIDCodec{},
		From:  func(u guuid.UUID) (uuid.UUID, error) { return uuid.UUID(u), nil },
		To:    func(u uuid.UUID) (guuid.UUID, error) { return guuid.UUID(u), nil },
	}
}

// NullCodec returns the uuid codec for uuid.NullUUID.
func NullCodec() pgtype.ConvertCodec[*guuid.UUID, uuid.NullUUID] {
	return pgtype.ConvertCodec[*guuid.UUID, uuid.NullUUID]{
		Codec: pgtype.Nullable[guuid.UUID](pgtype.UUIDCodec{}),
		From: func(u *guuid.UUID) (uuid.NullUUID, error) {
			if u == nil {
				return uuid.NullUUID{}, nil
			}
			return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}, nil
		},
		To: func(u uuid.NullUUID) (*guuid.UUID, error) {
			if !u.Valid {
				return nil, nil
			}
			g := guuid.UUID(u.UUID)
			return &g, nil
		},
	}
}

// Register makes pgcodec.StructSchema use Codec for uuid.UUID fields and NullCodec for uuid.NullUUID fields.
func Register() {
	pgcodec.RegisterStructCodec[uuid.UUID](Codec())
	pgcodec.RegisterStructCodec[uuid.NullUUID](NullCodec())
}
