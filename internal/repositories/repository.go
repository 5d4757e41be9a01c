package repositories

import (
	"context"

	"github.com/rohits-web03/marketchat/internal/models"
)

// Store is the message store contract. Implementations encrypt message text
// on write and decrypt it on read; callers never see ciphertext.
//
// Access checks (BelongsToConversation, BelongsToSeller) are separate calls;
// the store itself does not gate reads on them.
type Store interface {
	// UpsertUser returns the id for profile.Username, inserting the profile
	// when the username is new. An existing row is never modified.
	UpsertUser(ctx context.Context, profile models.User) (models.UserID, error)
	GetUserIDByUsername(ctx context.Context, username string) (models.UserID, error)
	GetUserProfile(ctx context.Context, id models.UserID) (models.User, error)

	// UpsertProduct inserts p or, when its ExternalID is known, updates the
	// name and seller of the existing row.
	UpsertProduct(ctx context.Context, p models.Product) (models.ProductID, error)
	// ClaimProduct is UpsertProduct for a seller acting on their own
	// listing: it inserts p, or renames the existing row when p.SellerID
	// already sells it, and fails with ErrPermissionDenied otherwise. The
	// check and the write are one atomic step.
	ClaimProduct(ctx context.Context, p models.Product) (models.ProductID, error)
	GetProduct(ctx context.Context, id models.ProductID) (models.Product, error)
	GetProductByExternalID(ctx context.Context, externalID int64) (models.Product, error)
	GetProductFromConversation(ctx context.Context, conversation models.ConversationID) (models.ProductID, error)

	// StartConversation returns the conversation between a and b over
	// product, creating it when needed. Argument order does not matter.
	StartConversation(ctx context.Context, a, b models.UserID, product models.ProductID) (models.ConversationID, error)
	GetConversations(ctx context.Context, user models.UserID) ([]models.ConversationID, error)
	GetPeer(ctx context.Context, user models.UserID, conversation models.ConversationID) (models.UserID, error)
	GetConversationFromMessage(ctx context.Context, message models.MessageID) (models.ConversationID, error)

	// PostMessage appends text to the conversation chain and moves the
	// conversation head to the new message. Text that is not valid UTF-8 is
	// rejected with ErrInvalidArgument.
	PostMessage(ctx context.Context, text models.MessageText, sender models.UserID, conversation models.ConversationID) (models.MessageID, error)
	GetLatestMessage(ctx context.Context, conversation models.ConversationID) (*models.MessageID, error)
	GetMessage(ctx context.Context, id models.MessageID) (models.Entry, error)
	// GetMostRecentMessages returns the newest limit messages, oldest first.
	GetMostRecentMessages(ctx context.Context, conversation models.ConversationID, limit int) (models.Page, error)
	// GetMessagesBefore continues a walk from a Page cursor: the newest
	// limit messages with id <= cursor, oldest first.
	GetMessagesBefore(ctx context.Context, conversation models.ConversationID, cursor models.MessageID, limit int) (models.Page, error)

	BelongsToConversation(ctx context.Context, user models.UserID, conversation models.ConversationID) error
	BelongsToSeller(ctx context.Context, user models.UserID, product models.ProductID) error

	Close() error
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
