package repositories

import (
	"github.com/rohits-web03/marketchat/internal/envelope"
	"github.com/rohits-web03/marketchat/internal/models"
)

// DefaultPageSize is the number of messages in a page when no limit is given.
const DefaultPageSize = 32

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return limit
}

func openMessage(op string, suite *envelope.Suite, m models.Message) (models.Entry, error) {
	nonce, err := envelope.NonceFromBytes(m.Nonce)
	if err != nil {
		return models.Entry{}, sealErr(op, int64(m.ID), err)
	}
	text, err := envelope.SealedFromBytes[models.MessageText](m.Content).Open(suite, nonce)
	if err != nil {
		return models.Entry{}, sealErr(op, int64(m.ID), err)
	}
	return models.Entry{
		ID:       m.ID,
		Sender:   m.SenderID,
		Text:     text,
		Previous: m.PreviousMessageID,
		SentAt:   m.CreatedAt,
	}, nil
}

// buildPage decrypts rows given newest first and returns them oldest first.
// The cursor is the backward link of the oldest row. Any decryption failure
// discards the whole page.
func buildPage(op string, suite *envelope.Suite, newestFirst []models.Message) (models.Page, error) {
	page := models.Page{Entries: make([]models.Entry, 0, len(newestFirst))}
	for i := len(newestFirst) - 1; i >= 0; i-- {
		e, err := openMessage(op, suite, newestFirst[i])
		if err != nil {
			return models.Page{}, err
		}
		page.Entries = append(page.Entries, e)
	}
	if n := len(newestFirst); n > 0 {
		page.Cursor = newestFirst[n-1].PreviousMessageID
	}
	return page, nil
}
