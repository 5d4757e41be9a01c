package repositories

import (
	"context"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/rohits-web03/marketchat/internal/envelope"
	"github.com/rohits-web03/marketchat/internal/models"
)

type pairKey struct {
	a, b    models.UserID
	product models.ProductID
}

// MemoryStore is a map-backed Store guarded by one mutex. It seals message
// text exactly like GormStore and is meant for tests and demos.
type MemoryStore struct {
	suite *envelope.Suite
	now   func() time.Time

	mu            sync.Mutex
	users         map[models.UserID]models.User
	usernames     map[string]models.UserID
	products      map[models.ProductID]models.Product
	catalog       map[int64]models.ProductID
	conversations map[models.ConversationID]models.Conversation
	pairs         map[pairKey]models.ConversationID
	messages      map[models.MessageID]models.Message
	chains        map[models.ConversationID][]models.MessageID // ascending ids

	lastUser, lastProduct, lastConversation, lastMessage int64
}

func NewMemoryStore(suite *envelope.Suite) *MemoryStore {
	return &MemoryStore{
		suite:         suite,
		now:           time.Now,
		users:         make(map[models.UserID]models.User),
		usernames:     make(map[string]models.UserID),
		products:      make(map[models.ProductID]models.Product),
		catalog:       make(map[int64]models.ProductID),
		conversations: make(map[models.ConversationID]models.Conversation),
		pairs:         make(map[pairKey]models.ConversationID),
		messages:      make(map[models.MessageID]models.Message),
		chains:        make(map[models.ConversationID][]models.MessageID),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) UpsertUser(_ context.Context, profile models.User) (models.UserID, error) {
	if profile.Username == "" {
		return 0, fail("UpsertUser", KindInvalidArgument, "", 0, errors.New("empty username"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.usernames[profile.Username]; ok {
		return id, nil
	}
	m.lastUser++
	id := models.UserID(m.lastUser)
	m.users[id] = models.User{ID: id, Username: profile.Username, Name: profile.Name, CreatedAt: m.now()}
	m.usernames[profile.Username] = id
	return id, nil
}

func (m *MemoryStore) GetUserIDByUsername(_ context.Context, username string) (models.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.usernames[username]
	if !ok {
		return 0, fail("GetUserIDByUsername", KindNotFound, "user", 0, nil)
	}
	return id, nil
}

func (m *MemoryStore) GetUserProfile(_ context.Context, id models.UserID) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, fail("GetUserProfile", KindNotFound, "user", int64(id), nil)
	}
	return u, nil
}

func (m *MemoryStore) UpsertProduct(_ context.Context, p models.Product) (models.ProductID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.catalog[p.ExternalID]; ok {
		row := m.products[id]
		row.Name = p.Name
		row.SellerID = p.SellerID
		row.UpdatedAt = m.now()
		m.products[id] = row
		return id, nil
	}
	m.lastProduct++
	id := models.ProductID(m.lastProduct)
	m.products[id] = models.Product{ID: id, ExternalID: p.ExternalID, Name: p.Name, SellerID: p.SellerID, UpdatedAt: m.now()}
	m.catalog[p.ExternalID] = id
	return id, nil
}

func (m *MemoryStore) ClaimProduct(_ context.Context, p models.Product) (models.ProductID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.catalog[p.ExternalID]; ok {
		row := m.products[id]
		if row.SellerID != p.SellerID {
			return 0, fail("ClaimProduct", KindPermissionDenied, "product", p.ExternalID, nil)
		}
		row.Name = p.Name
		row.UpdatedAt = m.now()
		m.products[id] = row
		return id, nil
	}
	m.lastProduct++
	id := models.ProductID(m.lastProduct)
	m.products[id] = models.Product{ID: id, ExternalID: p.ExternalID, Name: p.Name, SellerID: p.SellerID, UpdatedAt: m.now()}
	m.catalog[p.ExternalID] = id
	return id, nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id models.ProductID) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return models.Product{}, fail("GetProduct", KindNotFound, "product", int64(id), nil)
	}
	return p, nil
}

func (m *MemoryStore) GetProductByExternalID(_ context.Context, externalID int64) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.catalog[externalID]
	if !ok {
		return models.Product{}, fail("GetProductByExternalID", KindNotFound, "product", externalID, nil)
	}
	return m.products[id], nil
}

func (m *MemoryStore) GetProductFromConversation(_ context.Context, conversation models.ConversationID) (models.ProductID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[conversation]
	if !ok {
		return 0, fail("GetProductFromConversation", KindNotFound, "conversation", int64(conversation), nil)
	}
	return c.ProductID, nil
}

func (m *MemoryStore) BelongsToSeller(_ context.Context, user models.UserID, product models.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[product]
	if !ok || p.SellerID != user {
		return fail("BelongsToSeller", KindPermissionDenied, "product", int64(product), nil)
	}
	return nil
}

func (m *MemoryStore) StartConversation(_ context.Context, a, b models.UserID, product models.ProductID) (models.ConversationID, error) {
	pa, pb := models.OrderedPair(a, b)
	key := pairKey{a: pa, b: pb, product: product}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.pairs[key]; ok {
		return id, nil
	}
	m.lastConversation++
	id := models.ConversationID(m.lastConversation)
	m.conversations[id] = models.Conversation{ID: id, ParticipantA: pa, ParticipantB: pb, ProductID: product, CreatedAt: m.now()}
	m.pairs[key] = id
	return id, nil
}

func (m *MemoryStore) GetConversations(_ context.Context, user models.UserID) ([]models.ConversationID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := []models.ConversationID{}
	for id, c := range m.conversations {
		if c.Has(user) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MemoryStore) GetPeer(_ context.Context, user models.UserID, conversation models.ConversationID) (models.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[conversation]
	if !ok {
		return 0, fail("GetPeer", KindNotFound, "conversation", int64(conversation), nil)
	}
	if !c.Has(user) {
		return 0, fail("GetPeer", KindPermissionDenied, "conversation", int64(conversation), nil)
	}
	return c.Peer(user), nil
}

func (m *MemoryStore) GetConversationFromMessage(_ context.Context, message models.MessageID) (models.ConversationID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messages[message]
	if !ok {
		return 0, fail("GetConversationFromMessage", KindNotFound, "message", int64(message), nil)
	}
	return msg.ConversationID, nil
}

func (m *MemoryStore) BelongsToConversation(_ context.Context, user models.UserID, conversation models.ConversationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[conversation]
	if !ok || !c.Has(user) {
		return fail("BelongsToConversation", KindPermissionDenied, "conversation", int64(conversation), nil)
	}
	return nil
}

func (m *MemoryStore) PostMessage(_ context.Context, text models.MessageText, sender models.UserID, conversation models.ConversationID) (models.MessageID, error) {
	const op = "PostMessage"
	if !utf8.ValidString(string(text)) {
		return 0, fail(op, KindInvalidArgument, "conversation", int64(conversation), errors.New("message text is not valid UTF-8"))
	}

	sealed, nonce, err := envelope.Seal(m.suite, text)
	if err != nil {
		return 0, sealErr(op, 0, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[conversation]
	if !ok {
		return 0, fail(op, KindNotFound, "conversation", int64(conversation), nil)
	}
	m.lastMessage++
	id := models.MessageID(m.lastMessage)
	m.messages[id] = models.Message{
		ID:                id,
		ConversationID:    conversation,
		SenderID:          sender,
		Content:           sealed.Bytes(),
		Nonce:             nonce[:],
		PreviousMessageID: c.LastMessageID,
		CreatedAt:         m.now(),
	}
	m.chains[conversation] = append(m.chains[conversation], id)
	c.LastMessageID = &id
	m.conversations[conversation] = c
	return id, nil
}

func (m *MemoryStore) GetLatestMessage(_ context.Context, conversation models.ConversationID) (*models.MessageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[conversation]
	if !ok {
		return nil, fail("GetLatestMessage", KindNotFound, "conversation", int64(conversation), nil)
	}
	return c.LastMessageID, nil
}

func (m *MemoryStore) GetMessage(_ context.Context, id models.MessageID) (models.Entry, error) {
	m.mu.Lock()
	msg, ok := m.messages[id]
	m.mu.Unlock()

	if !ok {
		return models.Entry{}, fail("GetMessage", KindNotFound, "message", int64(id), nil)
	}
	return openMessage("GetMessage", m.suite, msg)
}

func (m *MemoryStore) GetMostRecentMessages(_ context.Context, conversation models.ConversationID, limit int) (models.Page, error) {
	return m.page("GetMostRecentMessages", conversation, nil, limit)
}

func (m *MemoryStore) GetMessagesBefore(_ context.Context, conversation models.ConversationID, cursor models.MessageID, limit int) (models.Page, error) {
	return m.page("GetMessagesBefore", conversation, &cursor, limit)
}

func (m *MemoryStore) page(op string, conversation models.ConversationID, cursor *models.MessageID, limit int) (models.Page, error) {
	m.mu.Lock()
	if _, ok := m.conversations[conversation]; !ok {
		m.mu.Unlock()
		return models.Page{}, fail(op, KindNotFound, "conversation", int64(conversation), nil)
	}
	chain := m.chains[conversation]
	end := len(chain)
	if cursor != nil {
		end = sort.Search(len(chain), func(i int) bool { return chain[i] > *cursor })
	}
	start := end - pageSize(limit)
	if start < 0 {
		start = 0
	}
	rows := make([]models.Message, 0, end-start)
	for i := end - 1; i >= start; i-- {
		rows = append(rows, m.messages[chain[i]])
	}
	m.mu.Unlock()

	return buildPage(op, m.suite, rows)
}
