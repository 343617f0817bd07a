package repository

import (
	"context"
	"time"
)

// Session is one conversation, owned by the caller via its ID. History is
// scoped to the session, never process-global.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Message is one conversation turn, append-only within its session.
type Message struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SessionRepository defines session storage operations.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// MessageRepository defines message storage operations.
type MessageRepository interface {
	Append(ctx context.Context, message Message) (string, error)
	ListBySession(ctx context.Context, sessionID string) ([]Message, error)
}
