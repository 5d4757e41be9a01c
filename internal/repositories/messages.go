package repositories

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/marketchat/internal/envelope"
	"github.com/rohits-web03/marketchat/internal/models"
)

func (s *GormStore) PostMessage(ctx context.Context, text models.MessageText, sender models.UserID, conversation models.ConversationID) (models.MessageID, error) {
	const op = "PostMessage"
	if !utf8.ValidString(string(text)) {
		return 0, fail(op, KindInvalidArgument, "conversation", int64(conversation), errors.New("message text is not valid UTF-8"))
	}

	sealed, nonce, err := envelope.Seal(s.suite, text)
	if err != nil {
		return 0, sealErr(op, 0, err)
	}

	var id models.MessageID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock keeps concurrent posters from linking to the same head.
		var c models.Conversation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "last_message_id").
			Where("id = ?", conversation).
			Take(&c).Error
		if err != nil {
			return err
		}

		msg := models.Message{
			ConversationID:    conversation,
			SenderID:          sender,
			Content:           sealed.Bytes(),
			Nonce:             nonce[:],
			PreviousMessageID: c.LastMessageID,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		err = tx.Model(&models.Conversation{}).
			Where("id = ?", conversation).
			Update("last_message_id", msg.ID).Error
		if err != nil {
			return err
		}
		id = msg.ID
		return nil
	})
	if err != nil {
		return 0, dbErr(op, "conversation", int64(conversation), err)
	}
	return id, nil
}

func (s *GormStore) GetLatestMessage(ctx context.Context, conversation models.ConversationID) (*models.MessageID, error) {
	var c models.Conversation
	err := s.db.WithContext(ctx).Select("last_message_id").Where("id = ?", conversation).Take(&c).Error
	if err != nil {
		return nil, dbErr("GetLatestMessage", "conversation", int64(conversation), err)
	}
	return c.LastMessageID, nil
}

func (s *GormStore) GetMessage(ctx context.Context, id models.MessageID) (models.Entry, error) {
	const op = "GetMessage"
	var m models.Message
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return models.Entry{}, dbErr(op, "message", int64(id), err)
	}
	return openMessage(op, s.suite, m)
}

func (s *GormStore) GetMostRecentMessages(ctx context.Context, conversation models.ConversationID, limit int) (models.Page, error) {
	return s.page(ctx, "GetMostRecentMessages", conversation, nil, limit)
}

func (s *GormStore) GetMessagesBefore(ctx context.Context, conversation models.ConversationID, cursor models.MessageID, limit int) (models.Page, error) {
	return s.page(ctx, "GetMessagesBefore", conversation, &cursor, limit)
}

// page selects the newest rows of the conversation (bounded by cursor when
// set) and hands them to buildPage.
func (s *GormStore) page(ctx context.Context, op string, conversation models.ConversationID, cursor *models.MessageID, limit int) (models.Page, error) {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Conversation{}).Where("id = ?", conversation).Count(&n).Error; err != nil {
		return models.Page{}, dbErr(op, "conversation", int64(conversation), err)
	}
	if n == 0 {
		return models.Page{}, fail(op, KindNotFound, "conversation", int64(conversation), nil)
	}

	q := db.Where("conversation_id = ?", conversation)
	if cursor != nil {
		q = q.Where("id <= ?", *cursor)
	}
	var rows []models.Message
	if err := q.Order("id DESC").Limit(pageSize(limit)).Find(&rows).Error; err != nil {
		return models.Page{}, dbErr(op, "conversation", int64(conversation), err)
	}
	return buildPage(op, s.suite, rows)
}
