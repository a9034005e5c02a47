package trade

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/scorewire/warroom/internal/domain"
)

type fakeValidator struct {
	mu      sync.Mutex
	calls   int
	results []func() (domain.ValidationResult, error)
}

func (f *fakeValidator) ValidateTrade(ctx context.Context, req domain.ValidationRequest) (domain.ValidationResult, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	var fn func() (domain.ValidationResult, error)
	if idx < len(f.results) {
		fn = f.results[idx]
	}
	f.mu.Unlock()
	if fn == nil {
		return domain.ValidationResult{Status: domain.ValidationValid}, nil
	}
	return fn()
}

func (f *fakeValidator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stateRecorder struct {
	mu     sync.Mutex
	states []domain.ValidationState
}

func (r *stateRecorder) apply(st domain.ValidationState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *stateRecorder) last() (domain.ValidationState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return domain.ValidationState{}, false
	}
	return r.states[len(r.states)-1], true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readyInput() ValidationInput {
	return ValidationInput{
		Ready: true,
		Request: domain.ValidationRequest{
			HomeTeam:    "nyj",
			PartnerTeam: "chi",
			PlayersSent: []string{"p1"},
		},
	}
}

func TestDebounceCollapsesBurst(t *testing.T) {
	v := &fakeValidator{}
	rec := &stateRecorder{}
	s := NewScheduler(v, 40*time.Millisecond, testLogger())
	s.Bind(rec.apply)

	for i := 0; i < 5; i++ {
		s.Trigger(readyInput())
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, func() bool {
		st, ok := rec.last()
		return ok && st.Status == domain.ValidationValid
	})
	if v.callCount() != 1 {
		t.Fatalf("burst of triggers made %d calls, want 1", v.callCount())
	}
}

func TestUnmetPreconditionsForceIdle(t *testing.T) {
	v := &fakeValidator{}
	rec := &stateRecorder{}
	s := NewScheduler(v, 10*time.Millisecond, testLogger())
	s.Bind(rec.apply)

	s.Trigger(ValidationInput{Ready: false})

	st, ok := rec.last()
	if !ok || st.Status != domain.ValidationIdle {
		t.Fatalf("expected idle, got %+v", st)
	}
	time.Sleep(50 * time.Millisecond)
	if v.callCount() != 0 {
		t.Fatalf("no call should be made when preconditions unmet, got %d", v.callCount())
	}
}

func TestTransportErrorFailsOpen(t *testing.T) {
	v := &fakeValidator{results: []func() (domain.ValidationResult, error){
		func() (domain.ValidationResult, error) {
			return domain.ValidationResult{}, errors.New("connection refused")
		},
	}}
	rec := &stateRecorder{}
	s := NewScheduler(v, 10*time.Millisecond, testLogger())
	s.Bind(rec.apply)

	s.Trigger(readyInput())

	waitFor(t, func() bool {
		st, ok := rec.last()
		return ok && st.Status == domain.ValidationValid
	})
	st, _ := rec.last()
	if len(st.Issues) != 0 {
		t.Fatalf("fail-open must carry no issues, got %+v", st.Issues)
	}
}

func TestInvalidVerdictApplied(t *testing.T) {
	v := &fakeValidator{results: []func() (domain.ValidationResult, error){
		func() (domain.ValidationResult, error) {
			return domain.ValidationResult{
				Status: domain.ValidationInvalid,
				Issues: []domain.Issue{{Code: "cap_over", Severity: "error", Message: "over the cap"}},
			}, nil
		},
	}}
	rec := &stateRecorder{}
	s := NewScheduler(v, 10*time.Millisecond, testLogger())
	s.Bind(rec.apply)

	s.Trigger(readyInput())

	waitFor(t, func() bool {
		st, ok := rec.last()
		return ok && st.Status == domain.ValidationInvalid
	})
	st, _ := rec.last()
	if len(st.Issues) != 1 || st.Issues[0].Code != "cap_over" {
		t.Fatalf("issues not applied: %+v", st.Issues)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	v := &fakeValidator{results: []func() (domain.ValidationResult, error){
		func() (domain.ValidationResult, error) {
			<-release
			return domain.ValidationResult{
				Status: domain.ValidationInvalid,
				Issues: []domain.Issue{{Code: "stale", Severity: "error", Message: "old"}},
			}, nil
		},
		func() (domain.ValidationResult, error) {
			return domain.ValidationResult{Status: domain.ValidationValid}, nil
		},
	}}
	rec := &stateRecorder{}
	s := NewScheduler(v, 10*time.Millisecond, testLogger())
	s.Bind(rec.apply)

	// First trigger fires and blocks inside the validator.
	s.Trigger(readyInput())
	waitFor(t, func() bool { return v.callCount() == 1 })

	// Second trigger advances the generation and completes quickly.
	s.Trigger(readyInput())
	waitFor(t, func() bool { return v.callCount() == 2 })
	waitFor(t, func() bool {
		st, ok := rec.last()
		return ok && st.Status == domain.ValidationValid
	})

	// Now the slow first response lands. It must be discarded.
	close(release)
	time.Sleep(50 * time.Millisecond)
	st, _ := rec.last()
	if st.Status != domain.ValidationValid {
		t.Fatalf("stale response overwrote newer state: %+v", st)
	}
}

func TestSessionWiresScheduler(t *testing.T) {
	v := &fakeValidator{}
	sched := NewScheduler(v, 10*time.Millisecond, testLogger())
	s := NewSession("sess-1", "user-1", jets, sched)
	s.SetPartner(domain.RolePartner1, bears)

	// One side empty: preconditions unmet, state stays idle.
	s.ToggleAsset(domain.RoleHome, playerAsset("p1", "A"))
	time.Sleep(50 * time.Millisecond)
	if got := s.Validation().Status; got != domain.ValidationIdle {
		t.Fatalf("one-sided trade validation = %q, want idle", got)
	}

	// Both sides populated: the debounced call runs and applies its verdict.
	s.ToggleAsset(domain.RolePartner1, playerAsset("p2", "B"))
	waitFor(t, func() bool {
		return s.Validation().Status == domain.ValidationValid
	})
	if v.callCount() == 0 {
		t.Fatal("expected a validation call")
	}
}
