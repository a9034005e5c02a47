package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scorewire/warroom/internal/domain"
)

// Roster data changes on front-office timescales, so a long TTL is fine;
// the service invalidates explicitly when staleness matters.
const rosterTTL = 15 * time.Minute

// RosterCache implements domain.RosterCache using JSON-serialized lists
// keyed per team.
//
// Key schema:
//
//	roster:{teamKey}    - JSON array of players
//	prospects:{teamKey} - JSON array of prospects
type RosterCache struct {
	rdb *redis.Client
}

// NewRosterCache creates a RosterCache backed by the given Client.
func NewRosterCache(c *Client) *RosterCache {
	return &RosterCache{rdb: c.Underlying()}
}

func rosterKey(teamKey string) string    { return "roster:" + teamKey }
func prospectsKey(teamKey string) string { return "prospects:" + teamKey }

func (rc *RosterCache) getList(ctx context.Context, key string, dst any) error {
	data, err := rc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("redis: unmarshal %s: %w", key, err)
	}
	return nil
}

func (rc *RosterCache) setList(ctx context.Context, key string, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("redis: marshal %s: %w", key, err)
	}
	if err := rc.rdb.Set(ctx, key, data, rosterTTL).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// GetRoster returns the cached roster for a team, or domain.ErrNotFound on
// a cache miss.
func (rc *RosterCache) GetRoster(ctx context.Context, teamKey string) ([]domain.Player, error) {
	var players []domain.Player
	if err := rc.getList(ctx, rosterKey(teamKey), &players); err != nil {
		return nil, err
	}
	return players, nil
}

// SetRoster caches a team's roster.
func (rc *RosterCache) SetRoster(ctx context.Context, teamKey string, players []domain.Player) error {
	return rc.setList(ctx, rosterKey(teamKey), players)
}

// GetProspects returns the cached prospect list for a team, or
// domain.ErrNotFound on a cache miss.
func (rc *RosterCache) GetProspects(ctx context.Context, teamKey string) ([]domain.Prospect, error) {
	var prospects []domain.Prospect
	if err := rc.getList(ctx, prospectsKey(teamKey), &prospects); err != nil {
		return nil, err
	}
	return prospects, nil
}

// SetProspects caches a team's prospect list.
func (rc *RosterCache) SetProspects(ctx context.Context, teamKey string, prospects []domain.Prospect) error {
	return rc.setList(ctx, prospectsKey(teamKey), prospects)
}

// Compile-time interface check.
var _ domain.RosterCache = (*RosterCache)(nil)
