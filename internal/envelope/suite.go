package envelope

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
)

// Suite bundles the process key with the random source used for nonces.
// It is built once at startup and passed to whatever needs to seal or open
// payloads.
type Suite struct {
	key  *Key
	rand io.Reader
}

// NewSuite returns a Suite drawing nonces from rng. A nil rng selects
// crypto/rand, which is safe for concurrent use; a custom rng must be too.
func NewSuite(key *Key, rng io.Reader) *Suite {
	if rng == nil {
		rng = rand.Reader
	}
	return &Suite{key: key, rand: rng}
}

// NewSuiteFromSecret derives the key and returns a Suite over crypto/rand.
func NewSuiteFromSecret(password, salt []byte) (*Suite, error) {
	key, err := DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	return NewSuite(key, nil), nil
}

func (s *Suite) newNonce() (Nonce, error) {
	var n Nonce
	if _, err := io.ReadFull(s.rand, n[:]); err != nil {
		return Nonce{}, errors.Wrapf(ErrNonceSource, "%v", err)
	}
	return n, nil
}
