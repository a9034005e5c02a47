package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scorewire/warroom/internal/domain"
)

type ownedRecordStore struct {
	fakeRecordStore
	rec     domain.TradeRecord
	deleted []string
}

func (f *ownedRecordStore) GetByID(_ context.Context, id string) (domain.TradeRecord, error) {
	if id != f.rec.ID {
		return domain.TradeRecord{}, domain.ErrNotFound
	}
	return f.rec, nil
}

func (f *ownedRecordStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeLocks struct {
	held     bool
	acquired int
}

func (f *fakeLocks) Acquire(context.Context, string, time.Duration) (func(), error) {
	if f.held {
		return nil, domain.ErrLockHeld
	}
	f.acquired++
	return func() {}, nil
}

type memBus struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func (m *memBus) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.published == nil {
		m.published = map[string][][]byte{}
	}
	m.published[channel] = append(m.published[channel], payload)
	return nil
}

func (m *memBus) Subscribe(context.Context, string) (<-chan domain.BusMessage, error) {
	return nil, errors.New("not implemented")
}

type listingLeaderboard struct {
	fakeLeaderboard
	entries []domain.LeaderboardEntry
}

func (f *listingLeaderboard) ListTop(context.Context, int) ([]domain.LeaderboardEntry, error) {
	return f.entries, nil
}

func TestDeleteTradeOwnerOnly(t *testing.T) {
	records := &ownedRecordStore{rec: domain.TradeRecord{ID: "t1", UserKey: "gm-1"}}
	svc := NewHistoryService(records, &fakeSessionStore{}, &fakeLeaderboard{}, nil, nil, discardLogger())

	if err := svc.DeleteTrade(context.Background(), "t1", "gm-2"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("foreign delete err = %v, want ErrUnauthorized", err)
	}
	if len(records.deleted) != 0 {
		t.Fatal("record deleted despite authorization failure")
	}

	if err := svc.DeleteTrade(context.Background(), "t1", "gm-1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if len(records.deleted) != 1 || records.deleted[0] != "t1" {
		t.Fatalf("deleted = %v", records.deleted)
	}

	if err := svc.DeleteTrade(context.Background(), "missing", "gm-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing delete err = %v, want ErrNotFound", err)
	}
}

func TestPublishLeaderboard(t *testing.T) {
	board := &listingLeaderboard{entries: []domain.LeaderboardEntry{{UserKey: "gm-1", TradeCount: 3, AveragePoint: 3.5}}}
	locks := &fakeLocks{}
	bus := &memBus{}
	svc := NewHistoryService(&fakeRecordStore{}, &fakeSessionStore{}, board, locks, bus, discardLogger())

	if err := svc.PublishLeaderboard(context.Background(), 10, time.Minute); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if locks.acquired != 1 {
		t.Fatalf("lock acquired %d times", locks.acquired)
	}
	if len(bus.published[LeaderboardChannel]) != 1 {
		t.Fatalf("published = %v", bus.published)
	}
}

func TestPublishLeaderboardSkipsWhenLockHeld(t *testing.T) {
	locks := &fakeLocks{held: true}
	bus := &memBus{}
	svc := NewHistoryService(&fakeRecordStore{}, &fakeSessionStore{}, &listingLeaderboard{}, locks, bus, discardLogger())

	if err := svc.PublishLeaderboard(context.Background(), 10, time.Minute); err != nil {
		t.Fatalf("publish with held lock: %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatalf("published despite held lock: %v", bus.published)
	}
}
