package gameid

import (
	"encoding/base32"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32, lowercase)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an encoded game ID.
const Length = 26

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator creates game IDs from a configurable entropy source
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator reading randomness from r. A nil reader uses
// crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate creates a new game ID: a UUIDv7 encoded as a 26-character base32
// string, so IDs sort by creation time.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new game ID using the generator's entropy source
func (g *Generator) Generate() string {
	var id uuid.UUID
	if g.rand == nil {
		id = uuid.Must(uuid.NewV7())
	} else {
		id = uuid.Must(uuid.NewV7FromReader(g.rand))
	}
	return encoding.EncodeToString(id[:])
}

// Parse decodes a game ID back into its UUID
func Parse(id string) (uuid.UUID, error) {
	if len(id) != Length {
		return uuid.Nil, fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}

	raw, err := encoding.DecodeString(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("game ID is not valid base32: %w", err)
	}

	u, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, err
	}
	if u.Version() != 7 {
		return uuid.Nil, fmt.Errorf("game ID has version %d, want 7", u.Version())
	}
	return u, nil
}

// Validate checks if a game ID is well formed
func Validate(id string) error {
	_, err := Parse(id)
	return err
}

// CreatedAt returns the creation time embedded in a game ID
func CreatedAt(id string) (time.Time, error) {
	u, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}
