package domain

// ValidationStatus is the lifecycle of the debounced legality check.
type ValidationStatus string

const (
	ValidationIdle       ValidationStatus = "idle"
	ValidationValidating ValidationStatus = "validating"
	ValidationValid      ValidationStatus = "valid"
	ValidationInvalid    ValidationStatus = "invalid"
)

// Issue is a single structured problem the validation service found with the
// pending trade. Issues are advisory; they never block submission.
type Issue struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ValidationState is the session's current view of trade legality.
type ValidationState struct {
	Status ValidationStatus `json:"status"`
	Issues []Issue          `json:"issues"`
}

// ValidationRequest carries the four asset lists the validation service
// checks, identified the way the front-office service keys them.
type ValidationRequest struct {
	HomeTeam        string      `json:"home_team"`
	PartnerTeam     string      `json:"partner_team"`
	PlayersSent     []string    `json:"players_sent"`
	PlayersReceived []string    `json:"players_received"`
	PicksSent       []DraftPick `json:"draft_picks_sent"`
	PicksReceived   []DraftPick `json:"draft_picks_received"`
}

// ValidationResult is the validation service's verdict.
type ValidationResult struct {
	Status ValidationStatus `json:"status"`
	Issues []Issue          `json:"issues"`
}
