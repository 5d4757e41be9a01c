package envelope

import "github.com/pkg/errors"

var (
	// ErrKeyDerivation is returned when the password/salt pair is rejected.
	ErrKeyDerivation = errors.New("envelope: key derivation failed")
	// ErrAuthenticationFailed means the tag did not verify. No plaintext is
	// ever returned alongside it.
	ErrAuthenticationFailed = errors.New("envelope: authentication failed")
	// ErrPayloadMalformed means the payload decrypted but did not decode
	// into the expected type.
	ErrPayloadMalformed = errors.New("envelope: payload malformed")
	// ErrNonceSource is returned when the random source cannot fill a nonce.
	ErrNonceSource = errors.New("envelope: nonce source failed")
)
