// Package service orchestrates the war-room use cases on top of the trade
// engine, the platform clients, and the stores.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scorewire/warroom/internal/domain"
	"github.com/scorewire/warroom/internal/trade"
)

// GradeNotifier announces graded trades to chat channels.
type GradeNotifier interface {
	NotifyGrade(ctx context.Context, rec domain.TradeRecord) error
}

// TradeService owns the live sessions and drives the full submit path:
// build the wire request, grade it, persist the verdict, fold it into the
// leaderboard, archive it, and announce it.
type TradeService struct {
	mu    sync.RWMutex
	live  map[string]*trade.Session
	stops map[string]*trade.Scheduler

	sessions    domain.SessionStore
	records     domain.TradeRecordStore
	leaderboard domain.LeaderboardStore
	validator   domain.TradeValidator
	grader      domain.Grader
	archiver    domain.GradeArchiver
	bus         domain.SignalBus
	notifier    GradeNotifier
	debounce    time.Duration
	logger      *slog.Logger
}

// NewTradeService creates a TradeService. archiver, bus, and notifier may be
// nil; those steps are skipped.
func NewTradeService(
	sessions domain.SessionStore,
	records domain.TradeRecordStore,
	leaderboard domain.LeaderboardStore,
	validator domain.TradeValidator,
	grader domain.Grader,
	archiver domain.GradeArchiver,
	bus domain.SignalBus,
	notifier GradeNotifier,
	debounce time.Duration,
	logger *slog.Logger,
) *TradeService {
	if debounce <= 0 {
		debounce = trade.DefaultDebounce
	}
	return &TradeService{
		live:        map[string]*trade.Session{},
		stops:       map[string]*trade.Scheduler{},
		sessions:    sessions,
		records:     records,
		leaderboard: leaderboard,
		validator:   validator,
		grader:      grader,
		archiver:    archiver,
		bus:         bus,
		notifier:    notifier,
		debounce:    debounce,
		logger:      logger,
	}
}

// SessionChannel is the bus channel carrying state snapshots for a session.
func SessionChannel(id string) string {
	return "session:" + id
}

// CreateSession starts a new war-room session for the given home team,
// persists its envelope, and registers it as live.
func (s *TradeService) CreateSession(ctx context.Context, userKey string, home domain.Team) (trade.State, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	rec := domain.SessionRecord{
		ID:        id,
		UserKey:   userKey,
		TeamKey:   home.Key,
		Sport:     home.Sport,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, rec); err != nil {
		return trade.State{}, fmt.Errorf("trade_service: create session: %w", err)
	}

	sched := trade.NewScheduler(s.validator, s.debounce, s.logger)
	sess := trade.NewSession(id, userKey, home, sched)

	s.mu.Lock()
	s.live[id] = sess
	s.stops[id] = sched
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "trade_service: session created",
		slog.String("session_id", id),
		slog.String("user", userKey),
		slog.String("team", home.Key),
	)

	return sess.Snapshot(), nil
}

// CloseSession stops a session's scheduler and drops it from the live set.
// The persisted envelope and its trade records remain.
func (s *TradeService) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.live[id]
	sched := s.stops[id]
	delete(s.live, id)
	delete(s.stops, id)
	s.mu.Unlock()

	if !ok {
		return domain.ErrNotFound
	}
	if sched != nil {
		sched.Stop()
	}

	s.logger.InfoContext(ctx, "trade_service: session closed",
		slog.String("session_id", id),
		slog.String("user", sess.UserKey()),
	)
	return nil
}

// Session returns the live session with the given id.
func (s *TradeService) Session(id string) (*trade.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.live[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// Snapshot returns the current state of a live session.
func (s *TradeService) Snapshot(id string) (trade.State, error) {
	sess, err := s.Session(id)
	if err != nil {
		return trade.State{}, err
	}
	return sess.Snapshot(), nil
}

// apply runs a mutation against a live session, touches the envelope, and
// publishes the resulting snapshot. The mutation's error is returned as-is
// so sentinel checks at the handler layer keep working.
func (s *TradeService) apply(ctx context.Context, id string, fn func(*trade.Session) error) (trade.State, error) {
	sess, err := s.Session(id)
	if err != nil {
		return trade.State{}, err
	}
	if err := fn(sess); err != nil {
		return trade.State{}, err
	}

	if err := s.sessions.Touch(ctx, id, time.Now().UTC()); err != nil {
		s.logger.WarnContext(ctx, "trade_service: touch failed",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
	}

	st := sess.Snapshot()
	s.publishState(ctx, st)
	return st, nil
}

func (s *TradeService) publishState(ctx context.Context, st trade.State) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(st)
	if err != nil {
		s.logger.WarnContext(ctx, "trade_service: marshal snapshot failed",
			slog.String("session_id", st.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.bus.Publish(ctx, SessionChannel(st.ID), payload); err != nil {
		s.logger.WarnContext(ctx, "trade_service: publish failed",
			slog.String("session_id", st.ID),
			slog.String("error", err.Error()),
		)
	}
}

// SetPartner binds a team to a counterparty seat.
func (s *TradeService) SetPartner(ctx context.Context, id string, role domain.TeamRole, team domain.Team) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		return sess.SetPartner(role, team)
	})
}

// ToggleAsset adds an asset to the trade or removes it if already present.
func (s *TradeService) ToggleAsset(ctx context.Context, id string, role domain.TeamRole, asset domain.Asset) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		_, err := sess.ToggleAsset(role, asset)
		return err
	})
}

// AddDraftPick adds a draft pick from the given team's side.
func (s *TradeService) AddDraftPick(ctx context.Context, id string, role domain.TeamRole, pick domain.DraftPick) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		_, err := sess.AddDraftPick(role, pick)
		return err
	})
}

// RemoveDraftPick removes the index-th outgoing pick of the given team.
func (s *TradeService) RemoveDraftPick(ctx context.Context, id string, role domain.TeamRole, index int) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		return sess.RemoveDraftPick(role, index)
	})
}

// AddCash adds a cash consideration from the given team's side.
func (s *TradeService) AddCash(ctx context.Context, id string, role domain.TeamRole, amount float64) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		_, err := sess.AddCash(role, amount)
		return err
	})
}

// SetSalaryRetention sets the retention percentage for a traded player.
func (s *TradeService) SetSalaryRetention(ctx context.Context, id, playerID string, pct float64) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		return sess.SetSalaryRetention(playerID, pct)
	})
}

// ResolveDestination routes the pending asset to the chosen team.
func (s *TradeService) ResolveDestination(ctx context.Context, id string, target domain.TeamRole) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		return sess.ResolveDestination(target)
	})
}

// CancelDestination abandons the pending destination choice.
func (s *TradeService) CancelDestination(ctx context.Context, id string) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		return sess.CancelDestination()
	})
}

// SetMode switches between two-team and three-team construction.
func (s *TradeService) SetMode(ctx context.Context, id string, mode domain.TradeMode) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		return sess.SetMode(mode)
	})
}

// SetHomeTeam rebinds the session to a new home team, discarding the trade
// in progress.
func (s *TradeService) SetHomeTeam(ctx context.Context, id string, team domain.Team) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		sess.SetHomeTeam(team)
		return nil
	})
}

// Reset clears the trade in progress but keeps the home team.
func (s *TradeService) Reset(ctx context.Context, id string) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		sess.Reset()
		return nil
	})
}

// ClearGrade dismisses the last grade so the user can keep editing.
func (s *TradeService) ClearGrade(ctx context.Context, id string) (trade.State, error) {
	return s.apply(ctx, id, func(sess *trade.Session) error {
		sess.ClearGradeResult()
		return nil
	})
}

// Submit grades the current trade. At most one submit per session runs at a
// time; concurrent calls get domain.ErrSubmitInFlight. Archival and
// notification failures are logged, never surfaced: the grade is already
// durable by then.
func (s *TradeService) Submit(ctx context.Context, id string) (trade.State, error) {
	sess, err := s.Session(id)
	if err != nil {
		return trade.State{}, err
	}

	if err := sess.BeginSubmit(); err != nil {
		return trade.State{}, err
	}
	defer sess.EndSubmit()

	if !sess.CanSubmit() {
		return trade.State{}, domain.ErrTradeIncomplete
	}

	st := sess.Snapshot()
	req, err := trade.BuildRequest(st)
	if err != nil {
		return trade.State{}, fmt.Errorf("trade_service: build request: %w", err)
	}
	wire, err := json.Marshal(req)
	if err != nil {
		return trade.State{}, fmt.Errorf("trade_service: marshal request: %w", err)
	}

	result, err := s.grader.Grade(ctx, req)
	if err != nil {
		return trade.State{}, fmt.Errorf("trade_service: grade: %w", err)
	}

	rec := tradeRecordFrom(st, wire, result)
	if err := s.records.Insert(ctx, rec); err != nil {
		return trade.State{}, fmt.Errorf("trade_service: persist grade: %w", err)
	}

	if err := s.leaderboard.RecordGrade(ctx, rec.UserKey, rec.Grade, GradePoint(rec.Grade), rec.CreatedAt); err != nil {
		s.logger.ErrorContext(ctx, "trade_service: leaderboard update failed",
			slog.String("trade_id", rec.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveGrade(ctx, rec); err != nil {
			s.logger.WarnContext(ctx, "trade_service: archive failed",
				slog.String("trade_id", rec.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyGrade(ctx, rec); err != nil {
			s.logger.WarnContext(ctx, "trade_service: notify failed",
				slog.String("trade_id", rec.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	sess.SetGradeResult(result)

	s.logger.InfoContext(ctx, "trade_service: trade graded",
		slog.String("trade_id", rec.ID),
		slog.String("session_id", id),
		slog.String("grade", rec.Grade),
		slog.Bool("danger", rec.Danger),
	)

	out := sess.Snapshot()
	s.publishState(ctx, out)
	return out, nil
}

func tradeRecordFrom(st trade.State, wire []byte, result domain.GradeResult) domain.TradeRecord {
	rec := domain.TradeRecord{
		ID:        uuid.New().String(),
		SessionID: st.ID,
		UserKey:   st.UserKey,
		Mode:      st.Mode,
		Sport:     st.Teams[domain.RoleHome].Sport,
		HomeTeam:  st.Teams[domain.RoleHome].Key,
		Request:   wire,
		Grade:     result.Grade,
		Reasoning: result.Reasoning,
		Danger:    result.Danger,
		CreatedAt: time.Now().UTC(),
	}
	if t, ok := st.Teams[domain.RolePartner1]; ok {
		rec.PartnerTeam = t.Key
	}
	if t, ok := st.Teams[domain.RolePartner2]; ok {
		rec.PartnerTeam2 = t.Key
	}
	return rec
}

// GradePoint maps a letter grade to the numeric scale used by the
// leaderboard. Unknown grades score zero.
func GradePoint(grade string) float64 {
	points := map[string]float64{
		"A+": 4.3, "A": 4.0, "A-": 3.7,
		"B+": 3.3, "B": 3.0, "B-": 2.7,
		"C+": 2.3, "C": 2.0, "C-": 1.7,
		"D+": 1.3, "D": 1.0, "D-": 0.7,
		"F": 0,
	}
	return points[strings.ToUpper(strings.TrimSpace(grade))]
}
