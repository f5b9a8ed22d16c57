// Package handid generates sortable identifiers for hands.
//
// IDs are UUIDv7 values encoded with Crockford's base32 alphabet into 26
// lowercase characters, so they sort by creation time.
package handid

import (
	"encoding/base32"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator produces hand IDs. A nil random source uses crypto/rand.
type Generator struct {
	random io.Reader
}

// NewGenerator creates a generator reading random bits from r.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{random: r}
}

// Generate returns a new hand ID using crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a new hand ID.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.random != nil {
		id, err = uuid.NewV7FromReader(g.random)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("handid: failed to read random bytes: " + err.Error())
	}
	return encoding.EncodeToString(id[:])
}

// Validate checks that id is a well formed hand ID.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("hand ID must be exactly 26 characters, got %d", len(id))
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return fmt.Errorf("hand ID %q is not base32: %w", id, err)
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		return fmt.Errorf("hand ID %q: %w", id, err)
	}
	if u.Version() != 7 {
		return fmt.Errorf("hand ID %q has version %d, want 7", id, u.Version())
	}
	return nil
}
