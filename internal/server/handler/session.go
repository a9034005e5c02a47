package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/scorewire/warroom/internal/domain"
	"github.com/scorewire/warroom/internal/trade"
)

// TradeService defines what the session handler needs from the service
// layer. Declared locally so the handler package does not depend on the
// concrete implementation.
type TradeService interface {
	CreateSession(ctx context.Context, userKey string, home domain.Team) (trade.State, error)
	CloseSession(ctx context.Context, id string) error
	Snapshot(id string) (trade.State, error)
	SetHomeTeam(ctx context.Context, id string, team domain.Team) (trade.State, error)
	SetPartner(ctx context.Context, id string, role domain.TeamRole, team domain.Team) (trade.State, error)
	SetMode(ctx context.Context, id string, mode domain.TradeMode) (trade.State, error)
	ToggleAsset(ctx context.Context, id string, role domain.TeamRole, asset domain.Asset) (trade.State, error)
	AddDraftPick(ctx context.Context, id string, role domain.TeamRole, pick domain.DraftPick) (trade.State, error)
	RemoveDraftPick(ctx context.Context, id string, role domain.TeamRole, index int) (trade.State, error)
	AddCash(ctx context.Context, id string, role domain.TeamRole, amount float64) (trade.State, error)
	SetSalaryRetention(ctx context.Context, id, playerID string, pct float64) (trade.State, error)
	ResolveDestination(ctx context.Context, id string, target domain.TeamRole) (trade.State, error)
	CancelDestination(ctx context.Context, id string) (trade.State, error)
	Submit(ctx context.Context, id string) (trade.State, error)
	Reset(ctx context.Context, id string) (trade.State, error)
	ClearGrade(ctx context.Context, id string) (trade.State, error)
}

// SessionHandler serves the session lifecycle and construction endpoints.
type SessionHandler struct {
	trades TradeService
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(trades TradeService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{trades: trades, logger: logger}
}

type createSessionRequest struct {
	UserKey string      `json:"user_key"`
	Team    domain.Team `json:"team"`
}

// Create starts a war-room session.
// POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserKey == "" || req.Team.Key == "" {
		writeError(w, http.StatusBadRequest, "user_key and team are required")
		return
	}

	st, err := h.trades.CreateSession(r.Context(), req.UserKey, req.Team)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: create session failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// Get returns the current state of a session.
// GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.trades.Snapshot(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Close ends a live session.
// DELETE /api/sessions/{id}
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.trades.CloseSession(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mutate runs a state transition and writes the resulting snapshot.
func (h *SessionHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (trade.State, error)) {
	st, err := fn(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SetHome rebinds the session's home team, discarding the trade in progress.
// PUT /api/sessions/{id}/home
func (h *SessionHandler) SetHome(w http.ResponseWriter, r *http.Request) {
	var team domain.Team
	if err := decodeBody(r, &team); err != nil || team.Key == "" {
		writeError(w, http.StatusBadRequest, "invalid team")
		return
	}
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.SetHomeTeam(ctx, id, team)
	})
}

type setPartnerRequest struct {
	Role domain.TeamRole `json:"role"`
	Team domain.Team     `json:"team"`
}

// SetPartner binds a counterparty seat.
// PUT /api/sessions/{id}/partner
func (h *SessionHandler) SetPartner(w http.ResponseWriter, r *http.Request) {
	var req setPartnerRequest
	if err := decodeBody(r, &req); err != nil || req.Team.Key == "" {
		writeError(w, http.StatusBadRequest, "invalid partner request")
		return
	}
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.SetPartner(ctx, id, req.Role, req.Team)
	})
}

type setModeRequest struct {
	Mode domain.TradeMode `json:"mode"`
}

// SetMode switches between two-team and three-team construction.
// PUT /api/sessions/{id}/mode
func (h *SessionHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid mode request")
		return
	}
	if req.Mode != domain.ModeTwoTeam && req.Mode != domain.ModeThreeTeam {
		writeError(w, http.StatusBadRequest, "unknown trade mode")
		return
	}
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.SetMode(ctx, id, req.Mode)
	})
}

type toggleAssetRequest struct {
	Role  domain.TeamRole `json:"role"`
	Asset domain.Asset    `json:"asset"`
}

// ToggleAsset adds an asset to the trade or removes it if present.
// POST /api/sessions/{id}/assets/toggle
func (h *SessionHandler) ToggleAsset(w http.ResponseWriter, r *http.Request) {
	var req toggleAssetRequest
	if err := decodeBody(r, &req); err != nil || req.Asset.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid asset")
		return
	}
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.ToggleAsset(ctx, id, req.Role, req.Asset)
	})
}

type addPickRequest struct {
	Role domain.TeamRole  `json:"role"`
	Pick domain.DraftPick `json:"pick"`
}

// AddPick adds a draft pick from one team's side.
// POST /api/sessions/{id}/picks
func (h *SessionHandler) AddPick(w http.ResponseWriter, r *http.Request) {
	var req addPickRequest
	if err := decodeBody(r, &req); err != nil || req.Pick.Year == 0 || req.Pick.Round == 0 {
		writeError(w, http.StatusBadRequest, "invalid pick")
		return
	}
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.AddDraftPick(ctx, id, req.Role, req.Pick)
	})
}

// RemovePick removes one team's outgoing pick by list position.
// DELETE /api/sessions/{id}/picks/{index}?role=home
func (h *SessionHandler) RemovePick(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid pick index")
		return
	}
	role := domain.TeamRole(r.URL.Query().Get("role"))
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.RemoveDraftPick(ctx, id, role, index)
	})
}

type addCashRequest struct {
	Role   domain.TeamRole `json:"role"`
	Amount float64         `json:"amount"`
}

// AddCash adds a cash consideration. Baseball sessions only.
// POST /api/sessions/{id}/cash
func (h *SessionHandler) AddCash(w http.ResponseWriter, r *http.Request) {
	var req addCashRequest
	if err := decodeBody(r, &req); err != nil || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid cash amount")
		return
	}
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.AddCash(ctx, id, req.Role, req.Amount)
	})
}

type retentionRequest struct {
	PlayerID string  `json:"player_id"`
	Percent  float64 `json:"percent"`
}

// SetRetention sets the salary retention percentage for a traded player.
// PUT /api/sessions/{id}/retentions
func (h *SessionHandler) SetRetention(w http.ResponseWriter, r *http.Request) {
	var req retentionRequest
	if err := decodeBody(r, &req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "invalid retention request")
		return
	}
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.SetSalaryRetention(ctx, id, req.PlayerID, req.Percent)
	})
}

type destinationRequest struct {
	Target domain.TeamRole `json:"target"`
}

// ResolveDestination routes the pending asset to the chosen team.
// POST /api/sessions/{id}/destination
func (h *SessionHandler) ResolveDestination(w http.ResponseWriter, r *http.Request) {
	var req destinationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid destination request")
		return
	}
	h.mutate(w, r, func(ctx context.Context, id string) (trade.State, error) {
		return h.trades.ResolveDestination(ctx, id, req.Target)
	})
}

// CancelDestination abandons the pending destination choice.
// DELETE /api/sessions/{id}/destination
func (h *SessionHandler) CancelDestination(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.trades.CancelDestination)
}

// Submit grades the current trade.
// POST /api/sessions/{id}/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	st, err := h.trades.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: submit failed",
			slog.String("session_id", r.PathValue("id")),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Reset clears the trade in progress but keeps the home team.
// POST /api/sessions/{id}/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.trades.Reset)
}

// ClearGrade dismisses the last grade so the user can keep editing.
// DELETE /api/sessions/{id}/grade
func (h *SessionHandler) ClearGrade(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.trades.ClearGrade)
}
