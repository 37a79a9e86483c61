package internal

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/google/uuid"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MinOpaqueLength is the smallest accepted random body length. 35 base-62
// characters carry just over 208 bits of entropy before the uuid suffix.
const MinOpaqueLength = 35

// Generator produces opaque refresh token strings from a single process-wide
// entropy source. Construct one at engine build time and share it; per-call
// instantiation is exactly the low-entropy pattern this type exists to avoid.
type Generator struct {
	reader io.Reader
	length int
}

// NewGenerator creates a Generator drawing from r (crypto/rand.Reader when
// nil) with the given random body length.
func NewGenerator(r io.Reader, length int) (*Generator, error) {
	if r == nil {
		r = rand.Reader
	}
	if length < MinOpaqueLength {
		return nil, errors.New("opaque token length below minimum")
	}
	return &Generator{reader: r, length: length}, nil
}

// OpaqueToken returns a fresh opaque token: the random alphanumeric body,
// a dash, and a uuid suffix. Collisions are negligible but the store's
// uniqueness check remains the authority.
func (g *Generator) OpaqueToken() (string, error) {
	body := make([]byte, g.length)

	// Rejection sampling keeps the character distribution uniform: 248 is
	// the largest multiple of len(alphanumeric) below 256.
	var buf [64]byte
	filled := 0
	for filled < len(body) {
		n, err := g.reader.Read(buf[:])
		if err != nil {
			return "", err
		}
		for _, b := range buf[:n] {
			if b >= 248 {
				continue
			}
			body[filled] = alphanumeric[int(b)%len(alphanumeric)]
			filled++
			if filled == len(body) {
				break
			}
		}
	}

	return string(body) + "-" + uuid.NewString(), nil
}
