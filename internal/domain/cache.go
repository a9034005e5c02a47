package domain

import (
	"context"
	"time"
)

// RosterCache caches roster and prospect lists per team key.
type RosterCache interface {
	GetRoster(ctx context.Context, teamKey string) ([]Player, error)
	SetRoster(ctx context.Context, teamKey string, players []Player) error
	GetProspects(ctx context.Context, teamKey string) ([]Prospect, error)
	SetProspects(ctx context.Context, teamKey string, prospects []Prospect) error
}

// CapCache caches cap summaries per team key.
type CapCache interface {
	Get(ctx context.Context, teamKey string) (CapSummary, error)
	Set(ctx context.Context, teamKey string, summary CapSummary) error
}

// LockManager provides distributed locks for work that must run on at most
// one replica at a time, such as the leaderboard refresh.
type LockManager interface {
	// Acquire returns an unlock function on success, or ErrLockHeld if
	// another holder has the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// BusMessage is one delivery from a SignalBus subscription. Channel is the
// concrete channel the payload was published on, never the subscription
// pattern, so wildcard subscribers can still route per channel.
type BusMessage struct {
	Channel string
	Payload []byte
}

// SignalBus publishes session events (validation updates, grades received)
// for the WebSocket hub and any other subscriber.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of deliveries. The subscription ends
	// and the channel closes when ctx is cancelled. The channel argument
	// may contain glob wildcards.
	Subscribe(ctx context.Context, channel string) (<-chan BusMessage, error)
}
