package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scorewire/warroom/internal/domain"
)

// TradeRecordStore implements domain.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *pgxpool.Pool
}

// NewTradeRecordStore creates a TradeRecordStore backed by the given pool.
func NewTradeRecordStore(pool *pgxpool.Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

var _ domain.TradeRecordStore = (*TradeRecordStore)(nil)

const tradeRecordSelectCols = `id, session_id, user_key, mode, sport,
	home_team, partner_team, partner_team2, request, grade, reasoning, danger, created_at`

func scanTradeRecordRows(rows pgx.Rows) ([]domain.TradeRecord, error) {
	var recs []domain.TradeRecord
	for rows.Next() {
		var rec domain.TradeRecord
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.UserKey, &rec.Mode, &rec.Sport,
			&rec.HomeTeam, &rec.PartnerTeam, &rec.PartnerTeam2,
			&rec.Request, &rec.Grade, &rec.Reasoning, &rec.Danger, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Insert stores a graded trade.
func (s *TradeRecordStore) Insert(ctx context.Context, rec domain.TradeRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trade_records (
			id, session_id, user_key, mode, sport,
			home_team, partner_team, partner_team2,
			request, grade, reasoning, danger, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.SessionID, rec.UserKey, rec.Mode, rec.Sport,
		rec.HomeTeam, rec.PartnerTeam, rec.PartnerTeam2,
		rec.Request, rec.Grade, rec.Reasoning, rec.Danger, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert trade record: %w", err)
	}
	return nil
}

// GetByID returns the trade record with the given id, or domain.ErrNotFound.
func (s *TradeRecordStore) GetByID(ctx context.Context, id string) (domain.TradeRecord, error) {
	var rec domain.TradeRecord
	err := s.pool.QueryRow(ctx,
		`SELECT `+tradeRecordSelectCols+` FROM trade_records WHERE id = $1`, id,
	).Scan(
		&rec.ID, &rec.SessionID, &rec.UserKey, &rec.Mode, &rec.Sport,
		&rec.HomeTeam, &rec.PartnerTeam, &rec.PartnerTeam2,
		&rec.Request, &rec.Grade, &rec.Reasoning, &rec.Danger, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TradeRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.TradeRecord{}, fmt.Errorf("postgres: get trade record: %w", err)
	}
	return rec, nil
}

func (s *TradeRecordStore) list(ctx context.Context, where, label string, key string, opts domain.ListOpts) ([]domain.TradeRecord, error) {
	query := `SELECT ` + tradeRecordSelectCols + ` FROM trade_records WHERE ` + where
	args := []any{key}
	argIdx := 2

	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

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
		return nil, fmt.Errorf("postgres: list trade records by %s: %w", label, err)
	}
	defer rows.Close()

	recs, err := scanTradeRecordRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trade records by %s: %w", label, err)
	}
	return recs, nil
}

// ListBySession returns a session's graded trades, newest first.
func (s *TradeRecordStore) ListBySession(ctx context.Context, sessionID string, opts domain.ListOpts) ([]domain.TradeRecord, error) {
	return s.list(ctx, "session_id = $1", "session", sessionID, opts)
}

// ListByUser returns a user's graded trades across sessions, newest first.
func (s *TradeRecordStore) ListByUser(ctx context.Context, userKey string, opts domain.ListOpts) ([]domain.TradeRecord, error) {
	return s.list(ctx, "user_key = $1", "user", userKey, opts)
}

// Delete removes a trade record. Missing ids map to domain.ErrNotFound.
func (s *TradeRecordStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trade_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete trade record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
