package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/remodela/remodela-backend/internal/repository"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *repository.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()

	query := `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (:id, :title, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, session)
	return err
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*repository.Session, error) {
	var session repository.Session
	query := `
		SELECT id, title, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// List retrieves all sessions, most recently active first
func (r *SessionRepository) List(ctx context.Context) ([]*repository.Session, error) {
	var sessions []*repository.Session
	query := `
		SELECT id, title, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
	`

	err := r.db.SelectContext(ctx, &sessions, query)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// Touch bumps the session's updated_at after a new turn
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	query := "UPDATE sessions SET updated_at = $1 WHERE id = $2"
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

// Delete deletes a session and, via cascade, its messages
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := "DELETE FROM sessions WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
