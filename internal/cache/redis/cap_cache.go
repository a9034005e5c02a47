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

// Cap figures move with every signing, so keep the TTL short.
const capTTL = 2 * time.Minute

// CapCache implements domain.CapCache with JSON values keyed per team.
//
// Key schema:
//
//	cap:{teamKey} - JSON-encoded CapSummary
type CapCache struct {
	rdb *redis.Client
}

// NewCapCache creates a CapCache backed by the given Client.
func NewCapCache(c *Client) *CapCache {
	return &CapCache{rdb: c.Underlying()}
}

func capKey(teamKey string) string { return "cap:" + teamKey }

// Get returns the cached cap summary for a team, or domain.ErrNotFound on
// a cache miss.
func (cc *CapCache) Get(ctx context.Context, teamKey string) (domain.CapSummary, error) {
	data, err := cc.rdb.Get(ctx, capKey(teamKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CapSummary{}, domain.ErrNotFound
		}
		return domain.CapSummary{}, fmt.Errorf("redis: get cap %s: %w", teamKey, err)
	}

	var summary domain.CapSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return domain.CapSummary{}, fmt.Errorf("redis: unmarshal cap %s: %w", teamKey, err)
	}
	return summary, nil
}

// Set caches a team's cap summary.
func (cc *CapCache) Set(ctx context.Context, teamKey string, summary domain.CapSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("redis: marshal cap %s: %w", teamKey, err)
	}
	if err := cc.rdb.Set(ctx, capKey(teamKey), data, capTTL).Err(); err != nil {
		return fmt.Errorf("redis: set cap %s: %w", teamKey, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.CapCache = (*CapCache)(nil)
