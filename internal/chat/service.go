// Package chat is the access-controlled entry point to the message store.
// Callers arrive with an already resolved user id; every method that reads
// or writes message content checks membership first and returns nothing
// else when the check fails.
package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/marketchat/internal/models"
	"github.com/rohits-web03/marketchat/internal/repositories"
)

const maxUsernameLen = 64

type Service struct {
	store repositories.Store
	log   logrus.FieldLogger
}

func NewService(store repositories.Store, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: log}
}

// Thread is one inbox row.
type Thread struct {
	Conversation models.ConversationID
	Peer         models.User
	Product      models.Product
	Latest       *models.Entry
}

func invalid(op, msg string) error {
	return &repositories.Error{Op: op, Kind: repositories.KindInvalidArgument, Err: errors.New(msg)}
}

func (s *Service) RegisterUser(ctx context.Context, username, name string) (models.UserID, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLen {
		return 0, invalid("RegisterUser", "username must be 1-64 characters")
	}
	return s.store.UpsertUser(ctx, models.User{Username: username, Name: strings.TrimSpace(name)})
}

// SyncProduct records a catalog listing for its seller. A listing that is
// already known may only be changed by its current seller.
func (s *Service) SyncProduct(ctx context.Context, caller models.UserID, p models.Product) (models.ProductID, error) {
	if p.SellerID != caller {
		return 0, &repositories.Error{Op: "SyncProduct", Kind: repositories.KindPermissionDenied, Entity: "product", ID: p.ExternalID}
	}
	return s.store.ClaimProduct(ctx, p)
}

// StartConversation opens (or returns) the conversation between caller and
// peerUsername about product. One of the two must be the product's seller.
func (s *Service) StartConversation(ctx context.Context, caller models.UserID, peerUsername string, product models.ProductID) (models.ConversationID, error) {
	const op = "StartConversation"

	peer, err := s.store.GetUserIDByUsername(ctx, peerUsername)
	if err != nil {
		return 0, err
	}
	if peer == caller {
		return 0, invalid(op, "cannot start a conversation with yourself")
	}

	p, err := s.store.GetProduct(ctx, product)
	if err != nil {
		return 0, err
	}
	if p.SellerID != caller && p.SellerID != peer {
		return 0, invalid(op, "neither participant sells this product")
	}
	return s.store.StartConversation(ctx, caller, peer, product)
}

func (s *Service) Conversations(ctx context.Context, caller models.UserID) ([]models.ConversationID, error) {
	return s.store.GetConversations(ctx, caller)
}

func (s *Service) Peer(ctx context.Context, caller models.UserID, conversation models.ConversationID) (models.User, error) {
	if err := s.store.BelongsToConversation(ctx, caller, conversation); err != nil {
		return models.User{}, err
	}
	peer, err := s.store.GetPeer(ctx, caller, conversation)
	if err != nil {
		return models.User{}, err
	}
	return s.store.GetUserProfile(ctx, peer)
}

func (s *Service) PostMessage(ctx context.Context, caller models.UserID, conversation models.ConversationID, text string) (models.MessageID, error) {
	if strings.TrimSpace(text) == "" {
		return 0, invalid("PostMessage", "empty message")
	}
	if !utf8.ValidString(text) {
		return 0, invalid("PostMessage", "message is not valid UTF-8")
	}
	if err := s.store.BelongsToConversation(ctx, caller, conversation); err != nil {
		return 0, err
	}
	return s.store.PostMessage(ctx, models.MessageText(text), caller, conversation)
}

// Message returns a single message if caller takes part in its conversation.
func (s *Service) Message(ctx context.Context, caller models.UserID, id models.MessageID) (models.Entry, error) {
	const op = "Message"

	// An unknown id is refused like a foreign one.
	conversation, err := s.store.GetConversationFromMessage(ctx, id)
	if repositories.KindOf(err) == repositories.KindNotFound {
		return models.Entry{}, &repositories.Error{Op: op, Kind: repositories.KindPermissionDenied, Entity: "message", ID: int64(id)}
	}
	if err != nil {
		return models.Entry{}, err
	}
	if err := s.store.BelongsToConversation(ctx, caller, conversation); err != nil {
		return models.Entry{}, err
	}
	e, err := s.store.GetMessage(ctx, id)
	if err != nil {
		s.logIntegrity(err)
		return models.Entry{}, err
	}
	return e, nil
}

func (s *Service) Latest(ctx context.Context, caller models.UserID, conversation models.ConversationID) (*models.MessageID, error) {
	if err := s.store.BelongsToConversation(ctx, caller, conversation); err != nil {
		return nil, err
	}
	return s.store.GetLatestMessage(ctx, conversation)
}

// Recent returns the newest page of the conversation.
func (s *Service) Recent(ctx context.Context, caller models.UserID, conversation models.ConversationID) (models.Page, error) {
	if err := s.store.BelongsToConversation(ctx, caller, conversation); err != nil {
		return models.Page{}, err
	}
	page, err := s.store.GetMostRecentMessages(ctx, conversation, repositories.DefaultPageSize)
	s.logIntegrity(err)
	return page, err
}

// Before continues from the cursor of a previous page.
func (s *Service) Before(ctx context.Context, caller models.UserID, conversation models.ConversationID, cursor models.MessageID) (models.Page, error) {
	if err := s.store.BelongsToConversation(ctx, caller, conversation); err != nil {
		return models.Page{}, err
	}
	page, err := s.store.GetMessagesBefore(ctx, conversation, cursor, repositories.DefaultPageSize)
	s.logIntegrity(err)
	return page, err
}

// Inbox lists caller's conversations with peer, product and newest message.
func (s *Service) Inbox(ctx context.Context, caller models.UserID) ([]Thread, error) {
	ids, err := s.store.GetConversations(ctx, caller)
	if err != nil {
		return nil, err
	}

	threads := make([]Thread, 0, len(ids))
	for _, id := range ids {
		peer, err := s.Peer(ctx, caller, id)
		if err != nil {
			return nil, err
		}
		productID, err := s.store.GetProductFromConversation(ctx, id)
		if err != nil {
			return nil, err
		}
		product, err := s.store.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}

		t := Thread{Conversation: id, Peer: peer, Product: product}
		latest, err := s.store.GetLatestMessage(ctx, id)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			e, err := s.store.GetMessage(ctx, *latest)
			if err != nil {
				s.logIntegrity(err)
				return nil, err
			}
			t.Latest = &e
		}
		threads = append(threads, t)
	}
	return threads, nil
}

// logIntegrity reports failures that point at damaged or foreign data.
func (s *Service) logIntegrity(err error) {
	switch repositories.KindOf(err) {
	case repositories.KindDecryptionFailed, repositories.KindPayloadMalformed:
		entry := s.log.WithError(err)
		var e *repositories.Error
		if errors.As(err, &e) {
			entry = entry.WithFields(logrus.Fields{"op": e.Op, "message": e.ID})
		}
		entry.Error("message failed integrity check")
	}
}
