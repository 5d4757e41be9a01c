package envelope

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Nonce is the 96-bit per-message nonce stored next to the ciphertext.
type Nonce [NonceSize]byte

// NonceFromBytes converts a stored nonce. A wrong length can only come from
// a damaged row and is reported as an authentication failure.
func NonceFromBytes(b []byte) (Nonce, error) {
	var n Nonce
	if len(b) != NonceSize {
		return n, errors.Wrapf(ErrAuthenticationFailed, "nonce is %d bytes", len(b))
	}
	copy(n[:], b)
	return n, nil
}

// Sealed is ciphertext (with tag) of a CBOR-encoded T. The type parameter
// keeps a sealed value from being opened as a different type.
type Sealed[T any] struct {
	data []byte
}

// SealedFromBytes wraps stored ciphertext.
func SealedFromBytes[T any](b []byte) Sealed[T] {
	return Sealed[T]{data: b}
}

// Bytes returns the ciphertext for storage.
func (c Sealed[T]) Bytes() []byte { return c.data }

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// Seal encodes v and encrypts it under a fresh nonce. The caller must store
// the nonce with the ciphertext.
func Seal[T any](s *Suite, v T) (Sealed[T], Nonce, error) {
	plain, err := encMode.Marshal(v)
	if err != nil {
		return Sealed[T]{}, Nonce{}, errors.Wrap(err, "envelope.Seal.Marshal")
	}

	nonce, err := s.newNonce()
	if err != nil {
		return Sealed[T]{}, Nonce{}, err
	}

	data := s.key.aead.Seal(nil, nonce[:], plain, nil)
	return Sealed[T]{data: data}, nonce, nil
}

// Open verifies and decrypts c, then decodes the payload into T.
func (c Sealed[T]) Open(s *Suite, nonce Nonce) (T, error) {
	var out T

	plain, err := s.key.aead.Open(nil, nonce[:], c.data, nil)
	if err != nil {
		return out, ErrAuthenticationFailed
	}

	if err := cbor.Unmarshal(plain, &out); err != nil {
		var zero T
		return zero, errors.Wrapf(ErrPayloadMalformed, "%v", err)
	}
	return out, nil
}
