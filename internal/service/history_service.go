package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scorewire/warroom/internal/domain"
)

// LeaderboardChannel is the bus channel carrying leaderboard snapshots.
const LeaderboardChannel = "leaderboard"

const leaderboardLockKey = "leaderboard:publish"

// HistoryService serves graded-trade history and the leaderboard.
type HistoryService struct {
	records     domain.TradeRecordStore
	sessions    domain.SessionStore
	leaderboard domain.LeaderboardStore
	locks       domain.LockManager
	bus         domain.SignalBus
	logger      *slog.Logger
}

// NewHistoryService creates a HistoryService. locks and bus may be nil when
// leaderboard publishing is not wired.
func NewHistoryService(
	records domain.TradeRecordStore,
	sessions domain.SessionStore,
	leaderboard domain.LeaderboardStore,
	locks domain.LockManager,
	bus domain.SignalBus,
	logger *slog.Logger,
) *HistoryService {
	return &HistoryService{
		records:     records,
		sessions:    sessions,
		leaderboard: leaderboard,
		locks:       locks,
		bus:         bus,
		logger:      logger,
	}
}

// SessionTrades returns a session's graded trades, newest first.
func (s *HistoryService) SessionTrades(ctx context.Context, sessionID string, opts domain.ListOpts) ([]domain.TradeRecord, error) {
	recs, err := s.records.ListBySession(ctx, sessionID, opts)
	if err != nil {
		return nil, fmt.Errorf("history_service: session trades: %w", err)
	}
	return recs, nil
}

// UserTrades returns a user's graded trades across all sessions.
func (s *HistoryService) UserTrades(ctx context.Context, userKey string, opts domain.ListOpts) ([]domain.TradeRecord, error) {
	recs, err := s.records.ListByUser(ctx, userKey, opts)
	if err != nil {
		return nil, fmt.Errorf("history_service: user trades: %w", err)
	}
	return recs, nil
}

// Trade returns one graded trade by id.
func (s *HistoryService) Trade(ctx context.Context, id string) (domain.TradeRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return domain.TradeRecord{}, err
	}
	return rec, nil
}

// DeleteTrade removes a graded trade from history. Only the owner may
// delete; mismatches map to domain.ErrUnauthorized.
func (s *HistoryService) DeleteTrade(ctx context.Context, id, userKey string) error {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserKey != userKey {
		return domain.ErrUnauthorized
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return fmt.Errorf("history_service: delete trade: %w", err)
	}
	return nil
}

// UserSessions returns a user's session envelopes, most recent first.
func (s *HistoryService) UserSessions(ctx context.Context, userKey string, opts domain.ListOpts) ([]domain.SessionRecord, error) {
	recs, err := s.sessions.ListByUser(ctx, userKey, opts)
	if err != nil {
		return nil, fmt.Errorf("history_service: user sessions: %w", err)
	}
	return recs, nil
}

// Leaderboard returns the top standings.
func (s *HistoryService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.leaderboard.ListTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history_service: leaderboard: %w", err)
	}
	return entries, nil
}

// UserStanding returns one user's leaderboard entry.
func (s *HistoryService) UserStanding(ctx context.Context, userKey string) (domain.LeaderboardEntry, error) {
	entry, err := s.leaderboard.GetByUser(ctx, userKey)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	return entry, nil
}

// PublishLeaderboard pushes the current standings onto the signal bus so
// connected war rooms update live. A distributed lock keeps it to one
// replica per interval; losing the race is not an error.
func (s *HistoryService) PublishLeaderboard(ctx context.Context, limit int, ttl time.Duration) error {
	if s.locks == nil || s.bus == nil {
		return nil
	}

	unlock, err := s.locks.Acquire(ctx, leaderboardLockKey, ttl)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			s.logger.DebugContext(ctx, "history_service: leaderboard publish already running")
			return nil
		}
		return fmt.Errorf("history_service: acquire leaderboard lock: %w", err)
	}
	defer unlock()

	entries, err := s.leaderboard.ListTop(ctx, limit)
	if err != nil {
		return fmt.Errorf("history_service: leaderboard: %w", err)
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("history_service: marshal leaderboard: %w", err)
	}
	if err := s.bus.Publish(ctx, LeaderboardChannel, payload); err != nil {
		return fmt.Errorf("history_service: publish leaderboard: %w", err)
	}

	s.logger.DebugContext(ctx, "history_service: leaderboard published",
		slog.Int("entries", len(entries)),
	)
	return nil
}
