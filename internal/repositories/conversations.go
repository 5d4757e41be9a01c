package repositories

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/marketchat/internal/models"
)

func (s *GormStore) StartConversation(ctx context.Context, a, b models.UserID, product models.ProductID) (models.ConversationID, error) {
	const op = "StartConversation"
	pa, pb := models.OrderedPair(a, b)

	var id models.ConversationID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		find := func(c *models.Conversation) error {
			return tx.Select("id").
				Where("participant_a = ? AND participant_b = ? AND product_id = ?", pa, pb, product).
				Take(c).Error
		}

		var existing models.Conversation
		err := find(&existing)
		if err == nil {
			id = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row := models.Conversation{ParticipantA: pa, ParticipantB: pb, ProductID: product}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "participant_a"}, {Name: "participant_b"}, {Name: "product_id"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return err
		}

		if err := find(&existing); err != nil {
			return err
		}
		id = existing.ID
		return nil
	})
	if err != nil {
		return 0, dbErr(op, "product", int64(product), err)
	}
	return id, nil
}

func (s *GormStore) GetConversations(ctx context.Context, user models.UserID) ([]models.ConversationID, error) {
	ids := []models.ConversationID{}
	err := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("participant_a = ? OR participant_b = ?", user, user).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, dbErr("GetConversations", "user", int64(user), err)
	}
	return ids, nil
}

func (s *GormStore) GetPeer(ctx context.Context, user models.UserID, conversation models.ConversationID) (models.UserID, error) {
	const op = "GetPeer"
	var c models.Conversation
	if err := s.db.WithContext(ctx).Where("id = ?", conversation).Take(&c).Error; err != nil {
		return 0, dbErr(op, "conversation", int64(conversation), err)
	}
	if !c.Has(user) {
		return 0, fail(op, KindPermissionDenied, "conversation", int64(conversation), nil)
	}
	return c.Peer(user), nil
}

func (s *GormStore) GetConversationFromMessage(ctx context.Context, message models.MessageID) (models.ConversationID, error) {
	var m models.Message
	err := s.db.WithContext(ctx).Select("conversation_id").Where("id = ?", message).Take(&m).Error
	if err != nil {
		return 0, dbErr("GetConversationFromMessage", "message", int64(message), err)
	}
	return m.ConversationID, nil
}

// BelongsToConversation fails with ErrPermissionDenied unless user is one of
// the two participants. A missing conversation is also a denial.
func (s *GormStore) BelongsToConversation(ctx context.Context, user models.UserID, conversation models.ConversationID) error {
	const op = "BelongsToConversation"
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ? AND (participant_a = ? OR participant_b = ?)", conversation, user, user).
		Count(&n).Error
	if err != nil {
		return dbErr(op, "conversation", int64(conversation), err)
	}
	if n == 0 {
		return fail(op, KindPermissionDenied, "conversation", int64(conversation), nil)
	}
	return nil
}
