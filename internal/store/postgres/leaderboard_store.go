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

// LeaderboardStore implements domain.LeaderboardStore using PostgreSQL.
// Aggregates are maintained incrementally on upsert rather than recomputed
// from trade_records, so reads are a single indexed scan.
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

// NewLeaderboardStore creates a LeaderboardStore backed by the given pool.
func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

var _ domain.LeaderboardStore = (*LeaderboardStore)(nil)

// RecordGrade folds one graded trade into the user's aggregate row. The
// best grade is kept by numeric point, not by string comparison, so "A-"
// beats "B+".
func (s *LeaderboardStore) RecordGrade(ctx context.Context, userKey, grade string, point float64, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leaderboard (user_key, trade_count, point_sum, best_point, best_grade, updated_at)
		VALUES ($1, 1, $2, $2, $3, $4)
		ON CONFLICT (user_key) DO UPDATE SET
			trade_count = leaderboard.trade_count + 1,
			point_sum   = leaderboard.point_sum + EXCLUDED.point_sum,
			best_point  = GREATEST(leaderboard.best_point, EXCLUDED.best_point),
			best_grade  = CASE
				WHEN EXCLUDED.best_point > leaderboard.best_point THEN EXCLUDED.best_grade
				ELSE leaderboard.best_grade
			END,
			updated_at  = EXCLUDED.updated_at`,
		userKey, point, grade, at,
	)
	if err != nil {
		return fmt.Errorf("postgres: record grade: %w", err)
	}
	return nil
}

const leaderboardSelectCols = `user_key, trade_count,
	point_sum / GREATEST(trade_count, 1), best_grade, updated_at`

// ListTop returns the highest-average users, ties broken by trade count.
func (s *LeaderboardStore) ListTop(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+leaderboardSelectCols+`
		FROM leaderboard
		ORDER BY point_sum / GREATEST(trade_count, 1) DESC, trade_count DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserKey, &e.TradeCount, &e.AveragePoint, &e.BestGrade, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetByUser returns one user's standing, or domain.ErrNotFound if they have
// no graded trades yet.
func (s *LeaderboardStore) GetByUser(ctx context.Context, userKey string) (domain.LeaderboardEntry, error) {
	var e domain.LeaderboardEntry
	err := s.pool.QueryRow(ctx, `
		SELECT `+leaderboardSelectCols+`
		FROM leaderboard WHERE user_key = $1`, userKey,
	).Scan(&e.UserKey, &e.TradeCount, &e.AveragePoint, &e.BestGrade, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LeaderboardEntry{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("postgres: get leaderboard entry: %w", err)
	}
	return e, nil
}
