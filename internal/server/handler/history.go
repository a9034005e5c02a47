package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/scorewire/warroom/internal/domain"
)

// HistoryService defines what the history handler needs from the service
// layer.
type HistoryService interface {
	SessionTrades(ctx context.Context, sessionID string, opts domain.ListOpts) ([]domain.TradeRecord, error)
	UserTrades(ctx context.Context, userKey string, opts domain.ListOpts) ([]domain.TradeRecord, error)
	UserSessions(ctx context.Context, userKey string, opts domain.ListOpts) ([]domain.SessionRecord, error)
	Trade(ctx context.Context, id string) (domain.TradeRecord, error)
	DeleteTrade(ctx context.Context, id, userKey string) error
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	UserStanding(ctx context.Context, userKey string) (domain.LeaderboardEntry, error)
}

// HistoryHandler serves graded-trade history and the leaderboard.
type HistoryHandler struct {
	history HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(history HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// tradeRecordView is the JSON shape for a graded trade. Request is emitted
// raw since it is already wire-format JSON.
type tradeRecordView struct {
	ID           string `json:"id"`
	SessionID    string `json:"session_id"`
	UserKey      string `json:"user_key"`
	Mode         string `json:"mode"`
	Sport        string `json:"sport"`
	HomeTeam     string `json:"home_team"`
	PartnerTeam  string `json:"partner_team"`
	PartnerTeam2 string `json:"partner_team2,omitempty"`
	Request      any    `json:"request"`
	Grade        string `json:"grade"`
	Reasoning    string `json:"reasoning,omitempty"`
	Danger       bool   `json:"danger"`
	CreatedAt    string `json:"created_at"`
}

func viewOf(rec domain.TradeRecord) tradeRecordView {
	return tradeRecordView{
		ID:           rec.ID,
		SessionID:    rec.SessionID,
		UserKey:      rec.UserKey,
		Mode:         string(rec.Mode),
		Sport:        string(rec.Sport),
		HomeTeam:     rec.HomeTeam,
		PartnerTeam:  rec.PartnerTeam,
		PartnerTeam2: rec.PartnerTeam2,
		Request:      jsonRaw(rec.Request),
		Grade:        rec.Grade,
		Reasoning:    rec.Reasoning,
		Danger:       rec.Danger,
		CreatedAt:    rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func viewsOf(recs []domain.TradeRecord) []tradeRecordView {
	views := make([]tradeRecordView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, viewOf(rec))
	}
	return views
}

// SessionTrades lists a session's graded trades.
// GET /api/sessions/{id}/trades
func (h *HistoryHandler) SessionTrades(w http.ResponseWriter, r *http.Request) {
	recs, err := h.history.SessionTrades(r.Context(), r.PathValue("id"), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: session trades failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": viewsOf(recs)})
}

// UserTrades lists a user's graded trades across sessions.
// GET /api/users/{key}/trades
func (h *HistoryHandler) UserTrades(w http.ResponseWriter, r *http.Request) {
	recs, err := h.history.UserTrades(r.Context(), r.PathValue("key"), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: user trades failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": viewsOf(recs)})
}

// UserSessions lists a user's session envelopes.
// GET /api/users/{key}/sessions
func (h *HistoryHandler) UserSessions(w http.ResponseWriter, r *http.Request) {
	recs, err := h.history.UserSessions(r.Context(), r.PathValue("key"), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: user sessions failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": recs})
}

// Trade returns one graded trade.
// GET /api/trades/{id}
func (h *HistoryHandler) Trade(w http.ResponseWriter, r *http.Request) {
	rec, err := h.history.Trade(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(rec))
}

// DeleteTrade removes a graded trade. The acting user comes from the
// X-User-Key header and must own the record.
// DELETE /api/trades/{id}
func (h *HistoryHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	key := userKey(r)
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Key header")
		return
	}
	if err := h.history.DeleteTrade(r.Context(), r.PathValue("id"), key); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard returns the top standings.
// GET /api/leaderboard?limit=25
func (h *HistoryHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries, err := h.history.Leaderboard(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: leaderboard failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// UserStanding returns one user's leaderboard entry.
// GET /api/leaderboard/{key}
func (h *HistoryHandler) UserStanding(w http.ResponseWriter, r *http.Request) {
	entry, err := h.history.UserStanding(r.Context(), r.PathValue("key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
