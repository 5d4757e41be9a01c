package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/marketchat/internal/envelope"
	"github.com/rohits-web03/marketchat/internal/models"
	"github.com/rohits-web03/marketchat/internal/repositories"
)

// spyStore records which content-bearing store methods were reached.
type spyStore struct {
	repositories.Store

	mu     sync.Mutex
	calls  []string
	getErr error
}

func (s *spyStore) record(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
}

func (s *spyStore) reached(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (s *spyStore) reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func (s *spyStore) PostMessage(ctx context.Context, text models.MessageText, sender models.UserID, c models.ConversationID) (models.MessageID, error) {
	s.record("PostMessage")
	return s.Store.PostMessage(ctx, text, sender, c)
}

func (s *spyStore) GetMessage(ctx context.Context, id models.MessageID) (models.Entry, error) {
	s.record("GetMessage")
	s.mu.Lock()
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return models.Entry{}, err
	}
	return s.Store.GetMessage(ctx, id)
}

func (s *spyStore) GetMostRecentMessages(ctx context.Context, c models.ConversationID, limit int) (models.Page, error) {
	s.record("GetMostRecentMessages")
	return s.Store.GetMostRecentMessages(ctx, c, limit)
}

func (s *spyStore) GetMessagesBefore(ctx context.Context, c models.ConversationID, cursor models.MessageID, limit int) (models.Page, error) {
	s.record("GetMessagesBefore")
	return s.Store.GetMessagesBefore(ctx, c, cursor, limit)
}

var suite = func() *envelope.Suite {
	s, err := envelope.NewSuiteFromSecret([]byte("test_password"), []byte("test_salt_value"))
	if err != nil {
		panic(err)
	}
	return s
}()

type world struct {
	svc                 *Service
	spy                 *spyStore
	logs                *logtest.Hook
	alice, bob, mallory models.UserID
	bike                models.ProductID
	convo               models.ConversationID
}

func newWorld(t *testing.T) world {
	t.Helper()
	ctx := context.Background()
	log, logs := logtest.NewNullLogger()

	spy := &spyStore{Store: repositories.NewMemoryStore(suite)}
	w := world{svc: NewService(spy, log), spy: spy, logs: logs}

	var err error
	w.alice, err = w.svc.RegisterUser(ctx, "alice", "Alice")
	require.NoError(t, err)
	w.bob, err = w.svc.RegisterUser(ctx, "bob", "Bob")
	require.NoError(t, err)
	w.mallory, err = w.svc.RegisterUser(ctx, "mallory", "Mallory")
	require.NoError(t, err)

	w.bike, err = w.svc.SyncProduct(ctx, w.bob, models.Product{ExternalID: 100, Name: "Bicycle", SellerID: w.bob})
	require.NoError(t, err)
	w.convo, err = w.svc.StartConversation(ctx, w.alice, "bob", w.bike)
	require.NoError(t, err)
	return w
}

func TestConversationFlow(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	again, err := w.svc.StartConversation(ctx, w.bob, "alice", w.bike)
	require.NoError(t, err)
	assert.Equal(t, w.convo, again)

	hello, err := w.svc.PostMessage(ctx, w.alice, w.convo, "Hello Bob!")
	require.NoError(t, err)
	hi, err := w.svc.PostMessage(ctx, w.bob, w.convo, "Hi Alice!")
	require.NoError(t, err)

	latest, err := w.svc.Latest(ctx, w.alice, w.convo)
	require.NoError(t, err)
	assert.Equal(t, &hi, latest)

	e, err := w.svc.Message(ctx, w.alice, hi)
	require.NoError(t, err)
	assert.Equal(t, models.MessageText("Hi Alice!"), e.Text)
	assert.Equal(t, w.bob, e.Sender)
	assert.Equal(t, &hello, e.Previous)

	page, err := w.svc.Recent(ctx, w.bob, w.convo)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, hello, page.Entries[0].ID)
	assert.Nil(t, page.Cursor)

	peer, err := w.svc.Peer(ctx, w.alice, w.convo)
	require.NoError(t, err)
	assert.Equal(t, "bob", peer.Username)

	inbox, err := w.svc.Inbox(ctx, w.alice)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Bicycle", inbox[0].Product.Name)
	assert.Equal(t, "bob", inbox[0].Peer.Username)
	require.NotNil(t, inbox[0].Latest)
	assert.Equal(t, models.MessageText("Hi Alice!"), inbox[0].Latest.Text)
}

func TestOutsiderGetsNothing(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	secret, err := w.svc.PostMessage(ctx, w.alice, w.convo, "my address is ...")
	require.NoError(t, err)
	w.spy.reset()

	_, err = w.svc.Message(ctx, w.mallory, secret)
	assert.ErrorIs(t, err, repositories.ErrPermissionDenied)
	_, err = w.svc.Recent(ctx, w.mallory, w.convo)
	assert.ErrorIs(t, err, repositories.ErrPermissionDenied)
	_, err = w.svc.Before(ctx, w.mallory, w.convo, secret)
	assert.ErrorIs(t, err, repositories.ErrPermissionDenied)
	_, err = w.svc.Latest(ctx, w.mallory, w.convo)
	assert.ErrorIs(t, err, repositories.ErrPermissionDenied)
	_, err = w.svc.Peer(ctx, w.mallory, w.convo)
	assert.ErrorIs(t, err, repositories.ErrPermissionDenied)
	_, err = w.svc.PostMessage(ctx, w.mallory, w.convo, "spam")
	assert.ErrorIs(t, err, repositories.ErrPermissionDenied)

	for _, m := range []string{"GetMessage", "GetMostRecentMessages", "GetMessagesBefore", "PostMessage"} {
		assert.False(t, w.spy.reached(m), "%s reached without membership", m)
	}

	inbox, err := w.svc.Inbox(ctx, w.mallory)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestUnknownMessageLooksForeign(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	mine, err := w.svc.PostMessage(ctx, w.alice, w.convo, "hello")
	require.NoError(t, err)

	_, foreign := w.svc.Message(ctx, w.mallory, mine)
	_, missing := w.svc.Message(ctx, w.mallory, 999)
	assert.ErrorIs(t, foreign, repositories.ErrPermissionDenied)
	assert.ErrorIs(t, missing, repositories.ErrPermissionDenied)
	assert.False(t, errors.Is(missing, repositories.ErrNotFound))
	assert.False(t, w.spy.reached("GetMessage"))
}

func TestIntegrityFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	id, err := w.svc.PostMessage(ctx, w.alice, w.convo, "hello")
	require.NoError(t, err)

	w.spy.mu.Lock()
	w.spy.getErr = &repositories.Error{Op: "GetMessage", Kind: repositories.KindDecryptionFailed, Entity: "message", ID: int64(id)}
	w.spy.mu.Unlock()

	_, err = w.svc.Message(ctx, w.bob, id)
	require.ErrorIs(t, err, repositories.ErrDecryptionFailed)

	entry := w.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, int64(id), entry.Data["message"])
	assert.Equal(t, "GetMessage", entry.Data["op"])
}

func TestStartConversationRules(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	_, err := w.svc.StartConversation(ctx, w.alice, "alice", w.bike)
	assert.ErrorIs(t, err, repositories.ErrInvalidArgument)

	_, err = w.svc.StartConversation(ctx, w.alice, "mallory", w.bike)
	assert.ErrorIs(t, err, repositories.ErrInvalidArgument)

	_, err = w.svc.StartConversation(ctx, w.alice, "nobody", w.bike)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = w.svc.StartConversation(ctx, w.alice, "bob", 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSyncProductOwnership(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	_, err := w.svc.SyncProduct(ctx, w.mallory, models.Product{ExternalID: 100, Name: "Stolen", SellerID: w.mallory})
	assert.ErrorIs(t, err, repositories.ErrPermissionDenied)

	_, err = w.svc.SyncProduct(ctx, w.mallory, models.Product{ExternalID: 100, Name: "Stolen", SellerID: w.bob})
	assert.ErrorIs(t, err, repositories.ErrPermissionDenied)

	id, err := w.svc.SyncProduct(ctx, w.bob, models.Product{ExternalID: 100, Name: "Blue bicycle", SellerID: w.bob})
	require.NoError(t, err)
	assert.Equal(t, w.bike, id)
}

func TestRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	_, err := w.svc.RegisterUser(ctx, "   ", "blank")
	assert.ErrorIs(t, err, repositories.ErrInvalidArgument)

	_, err = w.svc.PostMessage(ctx, w.alice, w.convo, "  \n")
	assert.ErrorIs(t, err, repositories.ErrInvalidArgument)

	w.spy.reset()
	_, err = w.svc.PostMessage(ctx, w.alice, w.convo, "caf\xe9")
	assert.ErrorIs(t, err, repositories.ErrInvalidArgument)
	assert.False(t, w.spy.reached("PostMessage"))
}
