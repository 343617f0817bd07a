package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remodela/remodela-backend/internal/repository"
)

type fakeSessionRepo struct {
	sessions map[string]*repository.Session
	created  []*repository.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*repository.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *repository.Session) error {
	session.ID = "session-1"
	f.sessions[session.ID] = session
	f.created = append(f.created, session)
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, id string) (*repository.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeSessionRepo) List(ctx context.Context) ([]*repository.Session, error) {
	out := make([]*repository.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSessionRepo) Touch(ctx context.Context, id string) error {
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

type fakeMessageRepo struct {
	messages []repository.Message
}

func (f *fakeMessageRepo) Append(ctx context.Context, message repository.Message) (string, error) {
	f.messages = append(f.messages, message)
	return "msg-1", nil
}

func (f *fakeMessageRepo) ListBySession(ctx context.Context, sessionID string) ([]repository.Message, error) {
	var out []repository.Message
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestCreateSessionDefaultTitle(t *testing.T) {
	sessions := newFakeSessionRepo()
	svc := NewService(nil, nil, sessions, &fakeMessageRepo{}, quietLogger())

	session, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "New Chat", session.Title)
	assert.NotEmpty(t, session.ID)
}

func TestAskInSessionUnknownSession(t *testing.T) {
	svc := NewService(nil, nil, newFakeSessionRepo(), &fakeMessageRepo{}, quietLogger())

	_, err := svc.AskInSession(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionMessagesUnknownSession(t *testing.T) {
	svc := NewService(nil, nil, newFakeSessionRepo(), &fakeMessageRepo{}, quietLogger())

	_, err := svc.SessionMessages(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSessionRoundTrip(t *testing.T) {
	sessions := newFakeSessionRepo()
	svc := NewService(nil, nil, sessions, &fakeMessageRepo{}, quietLogger())

	created, err := svc.CreateSession(context.Background(), "Remodel planning")
	require.NoError(t, err)

	got, err := svc.GetSession(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Remodel planning", got.Title)
}
