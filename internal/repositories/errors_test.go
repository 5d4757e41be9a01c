package repositories

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/rohits-web03/marketchat/internal/envelope"
)

func TestErrorClassification(t *testing.T) {
	err := dbErr("GetMessage", "message", 7, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, "repositories.GetMessage: not found (message 7)", err.Error())

	err = dbErr("PostMessage", "conversation", 3, errors.New("connection reset by peer"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "connection reset by peer")

	// already classified errors are kept as they are
	denied := fail("GetPeer", KindPermissionDenied, "conversation", 3, nil)
	assert.Same(t, denied, dbErr("other", "x", 0, denied))

	assert.Nil(t, dbErr("x", "y", 0, nil))
}

func TestSealErrorClassification(t *testing.T) {
	err := sealErr("GetMessage", 1, envelope.ErrAuthenticationFailed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
	assert.ErrorIs(t, err, envelope.ErrAuthenticationFailed)

	err = sealErr("GetMessage", 1, errors.Wrap(envelope.ErrPayloadMalformed, "cbor"))
	assert.ErrorIs(t, err, ErrPayloadMalformed)
	assert.Equal(t, KindPayloadMalformed, KindOf(err))

	err = sealErr("PostMessage", 0, envelope.ErrNonceSource)
	assert.ErrorIs(t, err, ErrEncryptionFailed)

	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}
