package domain

import "context"

// CapSummary is the salary-cap picture for one team, as reported by the
// front-office data service. Field meaning is sport-specific; luxury-tax
// figures are zero for sports without one.
type CapSummary struct {
	TeamKey       string  `json:"team_key"`
	Sport         Sport   `json:"sport"`
	CapTotal      float64 `json:"cap_total"`
	CapUsed       float64 `json:"cap_used"`
	CapSpace      float64 `json:"cap_space"`
	LuxuryTaxLine float64 `json:"luxury_tax_line,omitempty"`
	DeadMoney     float64 `json:"dead_money,omitempty"`
}

// RosterProvider returns the rosterable players for a team.
type RosterProvider interface {
	Roster(ctx context.Context, team Team) ([]Player, error)
	Prospects(ctx context.Context, team Team) ([]Prospect, error)
}

// CapProvider returns salary-cap summary figures for a team.
type CapProvider interface {
	CapSummary(ctx context.Context, team Team) (CapSummary, error)
}

// TradeValidator checks a pending trade for legality and fairness issues.
// Callers treat a transport error as "no verdict"; the engine's fail-open
// policy turns it into a clean ValidationState.
type TradeValidator interface {
	ValidateTrade(ctx context.Context, req ValidationRequest) (ValidationResult, error)
}

// Grader scores a built trade request. Implementations own the
// primary-then-legacy endpoint fallback.
type Grader interface {
	Grade(ctx context.Context, req GradeRequest) (GradeResult, error)
}

// GradeArchiver writes a permanent copy of a graded trade to long-term
// storage.
type GradeArchiver interface {
	ArchiveGrade(ctx context.Context, rec TradeRecord) error
}
