package repositories

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rohits-web03/marketchat/internal/envelope"
)

// Kind classifies a storage failure.
type Kind uint8

const (
	KindUnavailable Kind = iota + 1
	KindNotFound
	KindPermissionDenied
	KindDecryptionFailed
	KindPayloadMalformed
	KindEncryptionFailed
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "storage unavailable"
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindDecryptionFailed:
		return "decryption failed"
	case KindPayloadMalformed:
		return "payload malformed"
	case KindEncryptionFailed:
		return "encryption failed"
	case KindInvalidArgument:
		return "invalid argument"
	}
	return "unknown"
}

// Error carries the failed operation and the entity it was acting on.
// Match a class of failure with errors.Is against the Err* values below.
type Error struct {
	Op     string
	Kind   Kind
	Entity string
	ID     int64
	Err    error
}

var (
	ErrStorageUnavailable = &Error{Kind: KindUnavailable}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrPermissionDenied   = &Error{Kind: KindPermissionDenied}
	ErrDecryptionFailed   = &Error{Kind: KindDecryptionFailed}
	ErrPayloadMalformed   = &Error{Kind: KindPayloadMalformed}
	ErrEncryptionFailed   = &Error{Kind: KindEncryptionFailed}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = "repositories." + e.Op + ": " + msg
	}
	if e.Entity != "" {
		msg += fmt.Sprintf(" (%s %d)", e.Entity, e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf reports the Kind of err, or 0 when err is not a storage error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func fail(op string, kind Kind, entity string, id int64, cause error) error {
	return &Error{Op: op, Kind: kind, Entity: entity, ID: id, Err: cause}
}

// dbErr classifies an error coming back from gorm. Errors that are already
// classified pass through untouched.
func dbErr(op, entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(op, KindNotFound, entity, id, nil)
	}
	return fail(op, KindUnavailable, entity, id, err)
}

// sealErr classifies an envelope failure while keeping the envelope error
// in the chain.
func sealErr(op string, id int64, err error) error {
	switch {
	case errors.Is(err, envelope.ErrAuthenticationFailed):
		return fail(op, KindDecryptionFailed, "message", id, err)
	case errors.Is(err, envelope.ErrPayloadMalformed):
		return fail(op, KindPayloadMalformed, "message", id, err)
	}
	return fail(op, KindEncryptionFailed, "message", id, err)
}
