package chat

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/remodela/remodela-backend/internal/catalog"
	"github.com/remodela/remodela-backend/internal/llm"
	"github.com/remodela/remodela-backend/internal/repository"
	"github.com/remodela/remodela-backend/internal/retrieval"
)

var ErrSessionNotFound = errors.New("session not found")

// Service fronts the retrieval engine for both one-shot questions and
// session-scoped conversations. History lives in the conversation store,
// keyed by a session ID owned by the caller; the engine itself stays
// stateless across sessions.
type Service struct {
	engine   *retrieval.Engine
	composer *Composer
	sessions repository.SessionRepository
	messages repository.MessageRepository
	log      *logrus.Logger
}

func NewService(
	engine *retrieval.Engine,
	composer *Composer,
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	log *logrus.Logger,
) *Service {
	return &Service{
		engine:   engine,
		composer: composer,
		sessions: sessions,
		messages: messages,
		log:      log,
	}
}

// Ask answers a standalone question with no conversation state.
func (s *Service) Ask(ctx context.Context, question string) (*catalog.AskResult, error) {
	return s.engine.Ask(ctx, retrieval.AskRequest{Question: question})
}

// AskInSession answers a question inside a conversation. Retrieval runs on
// the history-aware rewrite of the question; generation stays conditioned on
// the original question plus history. Both turns are appended afterwards.
func (s *Service) AskInSession(ctx context.Context, sessionID, question string) (*catalog.AskResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	stored, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	searchQuery := s.composer.Rewrite(ctx, question, history)

	result, err := s.engine.Ask(ctx, retrieval.AskRequest{
		Question:    question,
		SearchQuery: searchQuery,
		History:     history,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.messages.Append(ctx, repository.Message{
		SessionID: sessionID, Role: llm.RoleUser, Content: question,
	}); err != nil {
		s.log.WithError(err).Warn("Failed to store user turn")
	}
	if _, err := s.messages.Append(ctx, repository.Message{
		SessionID: sessionID, Role: llm.RoleAssistant, Content: result.Answer,
	}); err != nil {
		s.log.WithError(err).Warn("Failed to store assistant turn")
	}
	if err := s.sessions.Touch(ctx, sessionID); err != nil {
		s.log.WithError(err).Warn("Failed to touch session")
	}

	return result, nil
}

// CreateSession starts a new conversation.
func (s *Service) CreateSession(ctx context.Context, title string) (*repository.Session, error) {
	if title == "" {
		title = "New Chat"
	}
	session := &repository.Session{Title: title}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession fetches one session.
func (s *Service) GetSession(ctx context.Context, id string) (*repository.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ListSessions lists sessions, most recently active first.
func (s *Service) ListSessions(ctx context.Context) ([]*repository.Session, error) {
	return s.sessions.List(ctx)
}

// DeleteSession removes a session and its messages.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// SessionMessages returns a session's turns in conversation order.
func (s *Service) SessionMessages(ctx context.Context, id string) ([]repository.Message, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return s.messages.ListBySession(ctx, id)
}
