package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scorewire/warroom/internal/domain"
)

// SessionStore implements domain.SessionStore using PostgreSQL.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a SessionStore backed by the given connection pool.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

var _ domain.SessionStore = (*SessionStore)(nil)

const sessionSelectCols = `id, user_key, team_key, sport, created_at, updated_at`

// Create inserts a session envelope.
func (s *SessionStore) Create(ctx context.Context, rec domain.SessionRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_key, team_key, sport, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.UserKey, rec.TeamKey, rec.Sport, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create session: %w", err)
	}
	return nil
}

// GetByID returns the session with the given id, or domain.ErrNotFound.
func (s *SessionStore) GetByID(ctx context.Context, id string) (domain.SessionRecord, error) {
	var rec domain.SessionRecord
	err := s.pool.QueryRow(ctx,
		`SELECT `+sessionSelectCols+` FROM sessions WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.UserKey, &rec.TeamKey, &rec.Sport, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SessionRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("postgres: get session: %w", err)
	}
	return rec, nil
}

// Touch bumps a session's updated_at timestamp.
func (s *SessionStore) Touch(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("postgres: touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser returns a user's sessions, most recently active first.
func (s *SessionStore) ListByUser(ctx context.Context, userKey string, opts domain.ListOpts) ([]domain.SessionRecord, error) {
	query := `SELECT ` + sessionSelectCols + ` FROM sessions WHERE user_key = $1`
	args := []any{userKey}
	argIdx := 2

	if opts.Since != nil {
		query += fmt.Sprintf(" AND updated_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND updated_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY updated_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sessions by user: %w", err)
	}
	defer rows.Close()

	var recs []domain.SessionRecord
	for rows.Next() {
		var rec domain.SessionRecord
		if err := rows.Scan(&rec.ID, &rec.UserKey, &rec.TeamKey, &rec.Sport, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan session: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
