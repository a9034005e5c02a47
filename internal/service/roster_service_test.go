package service

import (
	"context"
	"errors"
	"testing"

	"github.com/scorewire/warroom/internal/domain"
)

type fakeRosterProvider struct {
	calls   int
	players []domain.Player
	err     error
}

func (f *fakeRosterProvider) Roster(context.Context, domain.Team) ([]domain.Player, error) {
	f.calls++
	return f.players, f.err
}

func (f *fakeRosterProvider) Prospects(context.Context, domain.Team) ([]domain.Prospect, error) {
	f.calls++
	return nil, f.err
}

type memRosterCache struct {
	rosters map[string][]domain.Player
}

func (m *memRosterCache) GetRoster(_ context.Context, teamKey string) ([]domain.Player, error) {
	players, ok := m.rosters[teamKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return players, nil
}

func (m *memRosterCache) SetRoster(_ context.Context, teamKey string, players []domain.Player) error {
	if m.rosters == nil {
		m.rosters = map[string][]domain.Player{}
	}
	m.rosters[teamKey] = players
	return nil
}

func (m *memRosterCache) GetProspects(context.Context, string) ([]domain.Prospect, error) {
	return nil, domain.ErrNotFound
}

func (m *memRosterCache) SetProspects(context.Context, string, []domain.Prospect) error {
	return nil
}

func TestRosterCacheMissBackfills(t *testing.T) {
	provider := &fakeRosterProvider{players: []domain.Player{{ID: "p1", Name: "Aaron Quick"}}}
	cache := &memRosterCache{}
	svc := NewRosterService(provider, nil, cache, nil, discardLogger())

	players, err := svc.Roster(context.Background(), jets)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(players) != 1 || provider.calls != 1 {
		t.Fatalf("players = %v, provider calls = %d", players, provider.calls)
	}

	// Second read is served from the cache.
	if _, err := svc.Roster(context.Background(), jets); err != nil {
		t.Fatalf("cached roster: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider called %d times, want 1", provider.calls)
	}
}

func TestRosterProviderErrorPropagates(t *testing.T) {
	provider := &fakeRosterProvider{err: errors.New("front office down")}
	svc := NewRosterService(provider, nil, &memRosterCache{}, nil, discardLogger())

	if _, err := svc.Roster(context.Background(), jets); err == nil {
		t.Fatal("expected error")
	}
}
