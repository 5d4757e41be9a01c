package envelope

import (
	"crypto/cipher"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize   = chacha20poly1305.KeySize
	NonceSize = chacha20poly1305.NonceSize

	// MinSaltSize is the shortest salt Argon2 accepts.
	MinSaltSize = 8
)

// Argon2id cost parameters (19 MiB, two passes, one lane).
const (
	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
)

// Key is a derived ChaCha20-Poly1305 key. It is immutable and safe for
// concurrent use.
type Key struct {
	aead cipher.AEAD
}

// DeriveKey stretches password with salt using Argon2id into a 256-bit key.
func DeriveKey(password, salt []byte) (*Key, error) {
	if len(salt) < MinSaltSize {
		return nil, errors.Wrapf(ErrKeyDerivation, "salt is %d bytes, need at least %d", len(salt), MinSaltSize)
	}

	raw := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeySize)
	aead, err := chacha20poly1305.New(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrKeyDerivation, "init cipher: %v", err)
	}
	return &Key{aead: aead}, nil
}
