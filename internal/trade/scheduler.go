package trade

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/scorewire/warroom/internal/domain"
)

// DefaultDebounce is the delay between the last trade mutation and the
// validation network call.
const DefaultDebounce = 500 * time.Millisecond

// ValidationInput is one trigger's view of the session. Ready is false when
// the scheduler preconditions are unmet (teams unresolved or a side with
// zero assets); the state is then forced to idle and no call is made.
type ValidationInput struct {
	Ready   bool
	Request domain.ValidationRequest
}

// Scheduler debounces trade-state changes and asynchronously checks the
// pending trade with the validation collaborator. Each trigger resets the
// delay timer, so only the last trigger in a burst results in a network
// call.
//
// Transport failures are deliberately fail-open: the state becomes valid
// with no issues, so a validation outage never blocks grading. Every trigger
// also advances a generation counter; a response whose generation is no
// longer current is discarded, so a slow early response can never overwrite
// a newer one.
type Scheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64

	delay       time.Duration
	callTimeout time.Duration
	validator   domain.TradeValidator
	apply       func(domain.ValidationState)
	logger      *slog.Logger
}

// NewScheduler creates a Scheduler around the given validator. A
// non-positive delay falls back to DefaultDebounce.
func NewScheduler(validator domain.TradeValidator, delay time.Duration, logger *slog.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Scheduler{
		delay:       delay,
		callTimeout: 10 * time.Second,
		validator:   validator,
		logger:      logger.With(slog.String("component", "validation_scheduler")),
	}
}

// Bind attaches the session's write-back callback. Called once by
// NewSession before any trigger.
func (s *Scheduler) Bind(apply func(domain.ValidationState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply = apply
}

// Trigger re-arms the debounce timer with a fresh snapshot of the trade.
// Any in-flight response is invalidated by advancing the generation.
func (s *Scheduler) Trigger(in ValidationInput) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	apply := s.apply
	if !in.Ready {
		s.mu.Unlock()
		if apply != nil {
			apply(domain.ValidationState{Status: domain.ValidationIdle})
		}
		return
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.dispatch(gen, in.Request)
	})
	s.mu.Unlock()
}

// Stop cancels any armed timer. In-flight calls are left to finish and be
// discarded by the generation check.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// dispatch runs on the timer goroutine once the debounce window closes.
func (s *Scheduler) dispatch(gen uint64, req domain.ValidationRequest) {
	if !s.current(gen) {
		return
	}
	s.apply(domain.ValidationState{Status: domain.ValidationValidating})

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()
	res, err := s.validator.ValidateTrade(ctx, req)

	if !s.current(gen) {
		s.logger.Debug("stale validation response discarded",
			slog.Uint64("generation", gen),
		)
		return
	}

	if err != nil {
		// Fail-open: a transport failure must never block grading.
		s.logger.Warn("validation call failed, failing open",
			slog.String("error", err.Error()),
		)
		s.apply(domain.ValidationState{Status: domain.ValidationValid, Issues: []domain.Issue{}})
		return
	}

	s.apply(domain.ValidationState{Status: res.Status, Issues: res.Issues})
}
