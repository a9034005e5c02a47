package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// SessionRecord is the persisted identity of a war-room session: who is
// playing GM for which team. The live trade state stays in memory; only the
// envelope is stored so history and leaderboard rows have something to hang
// off.
type SessionRecord struct {
	ID        string
	UserKey   string
	TeamKey   string
	Sport     Sport
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionStore persists session envelopes.
type SessionStore interface {
	Create(ctx context.Context, rec SessionRecord) error
	GetByID(ctx context.Context, id string) (SessionRecord, error)
	Touch(ctx context.Context, id string, at time.Time) error
	ListByUser(ctx context.Context, userKey string, opts ListOpts) ([]SessionRecord, error)
}

// TradeRecord is a graded trade: the request that was submitted and the
// verdict that came back.
type TradeRecord struct {
	ID          string
	SessionID   string
	UserKey     string
	Mode        TradeMode
	Sport       Sport
	HomeTeam    string
	PartnerTeam string
	// PartnerTeam2 is empty for two-team trades.
	PartnerTeam2 string
	Request      []byte // wire-format JSON as submitted
	Grade        string
	Reasoning    string
	Danger       bool
	CreatedAt    time.Time
}

// TradeRecordStore persists graded trades.
type TradeRecordStore interface {
	Insert(ctx context.Context, rec TradeRecord) error
	GetByID(ctx context.Context, id string) (TradeRecord, error)
	ListBySession(ctx context.Context, sessionID string, opts ListOpts) ([]TradeRecord, error)
	ListByUser(ctx context.Context, userKey string, opts ListOpts) ([]TradeRecord, error)
	Delete(ctx context.Context, id string) error
}

// LeaderboardEntry is one user's standing: how many trades they have had
// graded and their numeric average.
type LeaderboardEntry struct {
	UserKey      string
	TradeCount   int
	AveragePoint float64
	BestGrade    string
	UpdatedAt    time.Time
}

// LeaderboardStore persists per-user grade aggregates.
type LeaderboardStore interface {
	RecordGrade(ctx context.Context, userKey, grade string, point float64, at time.Time) error
	ListTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	GetByUser(ctx context.Context, userKey string) (LeaderboardEntry, error)
}
