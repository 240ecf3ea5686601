package crypto

import (
	"crypto/rand"
	"io"

	"fusionswap/internal/domain"
)

// RandomSecret reads a fresh secret from r, or from crypto/rand when r is nil.
func RandomSecret(r io.Reader) (s domain.Secret, err error) {
	if r == nil {
		r = rand.Reader
	}
	_, err = io.ReadFull(r, s[:])
	return s, err
}
