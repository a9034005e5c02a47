// Package trade implements the war-room trade-construction engine: a
// session aggregate whose only mutations are explicit user actions, the
// destination router for three-team adds, the debounced validation
// scheduler, and the grade-request builders.
package trade

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/scorewire/warroom/internal/domain"
)

// Step is the derived progress indicator. It is never stored; it is
// recomputed from the graph and validation state on every snapshot.
type Step string

const (
	StepSelectingOutgoing Step = "selecting_outgoing"
	StepSelectingIncoming Step = "selecting_incoming"
	StepValidating        Step = "validating"
	StepReadyToSubmit     Step = "ready_to_submit"
)

// PendingChoice is an asset detached from its origin but not yet assigned a
// destination. It exists only between an ambiguous add and the following
// resolve or cancel, and never survives a session reset.
type PendingChoice struct {
	Asset  domain.Asset   `json:"asset"`
	Origin domain.TeamRole `json:"origin"`
}

// State is a consistent snapshot of a session, safe to hand to builders and
// handlers after the session lock is released.
type State struct {
	ID         string                               `json:"id"`
	UserKey    string                               `json:"user_key"`
	Mode       domain.TradeMode                     `json:"mode"`
	Teams      map[domain.TeamRole]domain.Team      `json:"teams"`
	Flows      []domain.Flow                        `json:"flows"`
	Selections map[domain.TeamRole]domain.SelectionSet `json:"selections"`
	Pending    *PendingChoice                       `json:"pending_choice,omitempty"`
	Validation domain.ValidationState               `json:"validation"`
	Retentions map[string]float64                   `json:"salary_retentions,omitempty"`
	CanSubmit  bool                                 `json:"can_submit"`
	Step       Step                                 `json:"step"`
	LastGrade  *domain.GradeResult                  `json:"last_grade,omitempty"`
}

// Session is the aggregate for one war-room negotiation. All local state
// mutations are synchronous and atomic under the session mutex; the only
// asynchronous pieces are the debounced validation call (owned by the
// Scheduler) and the grade submission (single-flighted by the submitting
// flag).
type Session struct {
	mu sync.Mutex

	id      string
	userKey string
	mode    domain.TradeMode
	teams   map[domain.TeamRole]*domain.Team
	graph   *domain.FlowGraph
	pending *PendingChoice

	// validation has its own mutex: the scheduler writes it back
	// synchronously from Trigger while the session mutex is still held by
	// the mutating call.
	vmu        sync.Mutex
	validation domain.ValidationState
	scheduler  *Scheduler // nil when validation is disabled (tests)

	// Baseball-only per-player salary retention percentages, keyed by
	// player id.
	retentions map[string]float64

	submitting bool
	lastGrade  *domain.GradeResult

	canSubmit      bool
	canSubmitDirty bool
}

// NewSession creates a fresh session for the given home team. Every
// downstream structure starts empty; attaching a Scheduler is optional.
func NewSession(id, userKey string, home domain.Team, sched *Scheduler) *Session {
	s := &Session{
		id:      id,
		userKey: userKey,
		mode:    domain.ModeTwoTeam,
		teams: map[domain.TeamRole]*domain.Team{
			domain.RoleHome: &home,
		},
		graph:          domain.NewFlowGraph(),
		retentions:     map[string]float64{},
		validation:     domain.ValidationState{Status: domain.ValidationIdle},
		scheduler:      sched,
		canSubmitDirty: true,
	}
	if sched != nil {
		sched.Bind(s.applyValidation)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserKey returns the owning user.
func (s *Session) UserKey() string { return s.userKey }

// SetHomeTeam re-selects the home team. Per the session lifecycle this
// discards the entire negotiation: graph, pending choice, retentions,
// validation state and prior grade are all cleared.
func (s *Session) SetHomeTeam(team domain.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = map[domain.TeamRole]*domain.Team{domain.RoleHome: &team}
	s.mode = domain.ModeTwoTeam
	s.graph.Clear()
	s.pending = nil
	s.retentions = map[string]float64{}
	s.setValidation(domain.ValidationState{Status: domain.ValidationIdle})
	s.lastGrade = nil
	s.bumpLocked()
}

// SetPartner resolves a partner team. RolePartner2 is only addressable in
// three-team mode.
func (s *Session) SetPartner(role domain.TeamRole, team domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch role {
	case domain.RolePartner1:
	case domain.RolePartner2:
		if s.mode != domain.ModeThreeTeam {
			return fmt.Errorf("trade: partner2 requires three-team mode: %w", domain.ErrUnknownRole)
		}
	default:
		return fmt.Errorf("trade: cannot set team for role %q: %w", role, domain.ErrUnknownRole)
	}
	s.teams[role] = &team
	s.bumpLocked()
	return nil
}

// Team returns the resolved team for the role, if any.
func (s *Session) Team(role domain.TeamRole) (domain.Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.teams[role]
	if t == nil {
		return domain.Team{}, false
	}
	return *t, true
}

// Mode returns the current trade mode.
func (s *Session) Mode() domain.TradeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// knownRolesLocked returns the roles with a resolved team, honoring the
// mode: partner2 does not exist outside three-team mode.
func (s *Session) knownRolesLocked() []domain.TeamRole {
	roles := []domain.TeamRole{domain.RoleHome, domain.RolePartner1}
	if s.mode == domain.ModeThreeTeam {
		roles = append(roles, domain.RolePartner2)
	}
	var known []domain.TeamRole
	for _, r := range roles {
		if s.teams[r] != nil {
			known = append(known, r)
		}
	}
	return known
}

// routeLocked decides the destination for an asset added with the given
// origin. When exactly one other role is known the destination is
// deterministic; when the two other roles are both populated the add is
// ambiguous and must go through the destination router.
func (s *Session) routeLocked(origin domain.TeamRole) (dest domain.TeamRole, ambiguous bool, err error) {
	if s.teams[origin] == nil {
		return "", false, fmt.Errorf("trade: origin %q: %w", origin, domain.ErrTeamUnresolved)
	}
	var others []domain.TeamRole
	for _, r := range s.knownRolesLocked() {
		if r != origin {
			others = append(others, r)
		}
	}
	switch len(others) {
	case 0:
		return "", false, fmt.Errorf("trade: no counterparty for %q: %w", origin, domain.ErrTeamUnresolved)
	case 1:
		return others[0], false, nil
	default:
		return "", true, nil
	}
}

// addLocked routes a new asset from origin into the graph, or parks it as a
// pending destination choice. It reports whether a choice is now pending.
func (s *Session) addLocked(origin domain.TeamRole, asset domain.Asset) (bool, error) {
	dest, ambiguous, err := s.routeLocked(origin)
	if err != nil {
		return false, err
	}
	if ambiguous {
		if s.pending != nil {
			return false, domain.ErrChoicePending
		}
		s.pending = &PendingChoice{Asset: asset, Origin: origin}
		return true, nil
	}
	s.graph.Upsert(origin, dest, asset)
	s.bumpLocked()
	return false, nil
}

// ToggleAsset adds or removes a player or prospect for the role. Removing
// also detaches the asset from whichever flow carries it, pruning the flow
// if it empties. Adding in three-team mode with both counterparties resolved
// parks the asset on the destination router instead; the returned bool
// reports that case.
func (s *Session) ToggleAsset(role domain.TeamRole, asset domain.Asset) (pending bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph.Remove(asset.ID) {
		delete(s.retentions, asset.ID)
		s.bumpLocked()
		return false, nil
	}
	return s.addLocked(role, asset)
}

// AddDraftPick adds a draft pick for the role, minting a session-unique
// asset id for it. Routing follows the same rules as ToggleAsset.
func (s *Session) AddDraftPick(role domain.TeamRole, pick domain.DraftPick) (pending bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset := domain.NewPickAsset(uuid.New().String(), pick)
	return s.addLocked(role, asset)
}

// RemoveDraftPick removes the index-th pick from the role's outgoing pick
// list, detaching it from its flow.
func (s *Session) RemoveDraftPick(role domain.TeamRole, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := domain.ProjectSelection(s.graph, role)
	if index < 0 || index >= len(sel.Picks) {
		return fmt.Errorf("trade: pick index %d out of range: %w", index, domain.ErrNotFound)
	}
	s.graph.Remove(sel.Picks[index].ID)
	s.bumpLocked()
	return nil
}

// AddCash adds a cash consideration from the role. Only baseball trades may
// carry cash.
func (s *Session) AddCash(role domain.TeamRole, amount float64) (pending bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	home := s.teams[domain.RoleHome]
	if home == nil || !home.Sport.AllowsCash() {
		return false, fmt.Errorf("trade: cash not allowed for this sport")
	}
	asset := domain.NewCashAsset(uuid.New().String(), amount)
	return s.addLocked(role, asset)
}

// SetSalaryRetention records the percentage of a traded player's salary the
// sending club keeps paying. Baseball only.
func (s *Session) SetSalaryRetention(playerID string, pct float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	home := s.teams[domain.RoleHome]
	if home == nil || !home.Sport.AllowsCash() {
		return fmt.Errorf("trade: salary retention not allowed for this sport")
	}
	if pct < 0 || pct > 100 {
		return fmt.Errorf("trade: retention pct %0.1f out of range", pct)
	}
	if _, _, ok := s.graph.Locate(playerID); !ok {
		return fmt.Errorf("trade: player %s not in trade: %w", playerID, domain.ErrNotFound)
	}
	s.retentions[playerID] = pct
	s.bumpLocked()
	return nil
}

// ResolveDestination routes the pending asset to the chosen counterparty,
// merging it into the (origin -> target) flow, and returns the router to
// idle.
func (s *Session) ResolveDestination(target domain.TeamRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.ErrNoPendingChoice
	}
	if target == s.pending.Origin {
		return fmt.Errorf("trade: destination cannot equal origin %q", target)
	}
	if s.teams[target] == nil {
		return fmt.Errorf("trade: destination %q: %w", target, domain.ErrTeamUnresolved)
	}
	s.graph.Upsert(s.pending.Origin, target, s.pending.Asset)
	s.pending = nil
	s.bumpLocked()
	return nil
}

// CancelDestination discards the pending asset without touching the graph.
func (s *Session) CancelDestination() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.ErrNoPendingChoice
	}
	s.pending = nil
	return nil
}

// SetMode switches between two-team and three-team negotiation. Entering
// three-team mode migrates existing two-team selections into flow entries;
// because the graph is the canonical store in both modes the migration is
// idempotent. Leaving three-team mode discards all partner2 state
// unconditionally.
func (s *Session) SetMode(mode domain.TradeMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode != domain.ModeTwoTeam && mode != domain.ModeThreeTeam {
		return fmt.Errorf("trade: unknown mode %q", mode)
	}
	if mode == s.mode {
		return nil
	}
	if mode == domain.ModeTwoTeam {
		s.graph.DropRole(domain.RolePartner2)
		delete(s.teams, domain.RolePartner2)
		// Destination ambiguity cannot exist with one counterparty.
		s.pending = nil
	}
	s.mode = mode
	s.bumpLocked()
	return nil
}

// CanSubmit reports whether every required side of the active topology has
// at least one asset. The result is memoized and invalidated by every
// mutation.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Session) canSubmitLocked() bool {
	if !s.canSubmitDirty {
		return s.canSubmit
	}
	required := []domain.TeamRole{domain.RoleHome, domain.RolePartner1}
	if s.mode == domain.ModeThreeTeam {
		required = append(required, domain.RolePartner2)
	}
	ok := true
	for _, r := range required {
		if s.teams[r] == nil || len(s.graph.AssetsForRole(r, domain.Outgoing)) == 0 {
			ok = false
			break
		}
	}
	s.canSubmit = ok
	s.canSubmitDirty = false
	return ok
}

func (s *Session) stepLocked() Step {
	if len(s.graph.AssetsForRole(domain.RoleHome, domain.Outgoing)) == 0 {
		return StepSelectingOutgoing
	}
	if len(s.graph.AssetsForRole(domain.RoleHome, domain.Incoming)) == 0 {
		return StepSelectingIncoming
	}
	if s.readValidation().Status == domain.ValidationValidating {
		return StepValidating
	}
	return StepReadyToSubmit
}

func (s *Session) setValidation(state domain.ValidationState) {
	s.vmu.Lock()
	defer s.vmu.Unlock()
	s.validation = state
}

func (s *Session) readValidation() domain.ValidationState {
	s.vmu.Lock()
	defer s.vmu.Unlock()
	return s.validation
}

// bumpLocked runs after every mutation: it invalidates the memoized
// can-submit predicate and re-arms the validation scheduler with a fresh
// snapshot.
func (s *Session) bumpLocked() {
	s.canSubmitDirty = true
	if s.scheduler != nil {
		s.scheduler.Trigger(s.validationInputLocked())
	}
}

// validationInputLocked builds the debounced validation call's input. The
// preconditions follow the scheduler contract: unresolved teams or an empty
// side force idle with no network call.
func (s *Session) validationInputLocked() ValidationInput {
	home := s.teams[domain.RoleHome]
	partner := s.teams[domain.RolePartner1]
	sent := s.graph.AssetsForRole(domain.RoleHome, domain.Outgoing)
	recv := s.graph.AssetsForRole(domain.RoleHome, domain.Incoming)
	if home == nil || partner == nil || len(sent) == 0 || len(recv) == 0 {
		return ValidationInput{}
	}
	req := domain.ValidationRequest{
		HomeTeam:    home.Key,
		PartnerTeam: partner.Key,
	}
	for _, a := range sent {
		switch a.Kind {
		case domain.AssetPlayer, domain.AssetProspect:
			req.PlayersSent = append(req.PlayersSent, a.ID)
		case domain.AssetPick:
			req.PicksSent = append(req.PicksSent, *a.Pick)
		}
	}
	for _, a := range recv {
		switch a.Kind {
		case domain.AssetPlayer, domain.AssetProspect:
			req.PlayersReceived = append(req.PlayersReceived, a.ID)
		case domain.AssetPick:
			req.PicksReceived = append(req.PicksReceived, *a.Pick)
		}
	}
	return ValidationInput{Ready: true, Request: req}
}

// applyValidation is the scheduler's write-back into the session.
func (s *Session) applyValidation(state domain.ValidationState) {
	s.setValidation(state)
}

// Validation returns the current validation state.
func (s *Session) Validation() domain.ValidationState {
	return s.readValidation()
}

// BeginSubmit takes the single-flight submission flag. It fails with
// ErrSubmitInFlight while a previous submission has not finished.
func (s *Session) BeginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return domain.ErrSubmitInFlight
	}
	s.submitting = true
	return nil
}

// EndSubmit releases the submission flag.
func (s *Session) EndSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// SetGradeResult records a received grade. It does not mutate the graph or
// selections; starting a new trade is a separate explicit action.
func (s *Session) SetGradeResult(res domain.GradeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGrade = &res
}

// ClearGradeResult implements "edit trade": the prior verdict is dropped but
// the selections stay intact.
func (s *Session) ClearGradeResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGrade = nil
}

// Reset discards the negotiation wholesale while keeping the session
// identity and home team.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	home := s.teams[domain.RoleHome]
	s.teams = map[domain.TeamRole]*domain.Team{}
	if home != nil {
		s.teams[domain.RoleHome] = home
	}
	s.mode = domain.ModeTwoTeam
	s.graph.Clear()
	s.pending = nil
	s.retentions = map[string]float64{}
	s.setValidation(domain.ValidationState{Status: domain.ValidationIdle})
	s.lastGrade = nil
	s.bumpLocked()
}

// Snapshot returns a consistent copy of the whole session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams := make(map[domain.TeamRole]domain.Team, len(s.teams))
	for r, t := range s.teams {
		if t != nil {
			teams[r] = *t
		}
	}
	selections := map[domain.TeamRole]domain.SelectionSet{}
	for r := range teams {
		selections[r] = domain.ProjectSelection(s.graph, r)
	}
	var pending *PendingChoice
	if s.pending != nil {
		p := *s.pending
		pending = &p
	}
	var retentions map[string]float64
	if len(s.retentions) > 0 {
		retentions = make(map[string]float64, len(s.retentions))
		for k, v := range s.retentions {
			retentions[k] = v
		}
	}
	var lastGrade *domain.GradeResult
	if s.lastGrade != nil {
		g := *s.lastGrade
		lastGrade = &g
	}

	return State{
		ID:         s.id,
		UserKey:    s.userKey,
		Mode:       s.mode,
		Teams:      teams,
		Flows:      s.graph.Flows(),
		Selections: selections,
		Pending:    pending,
		Validation: s.readValidation(),
		Retentions: retentions,
		CanSubmit:  s.canSubmitLocked(),
		Step:       s.stepLocked(),
		LastGrade:  lastGrade,
	}
}
