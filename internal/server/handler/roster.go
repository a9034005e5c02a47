package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/scorewire/warroom/internal/domain"
)

// RosterService defines what the roster handler needs from the service layer.
type RosterService interface {
	Roster(ctx context.Context, team domain.Team) ([]domain.Player, error)
	Prospects(ctx context.Context, team domain.Team) ([]domain.Prospect, error)
	CapSummary(ctx context.Context, team domain.Team) (domain.CapSummary, error)
}

// RosterHandler serves roster, prospect, and cap lookups.
type RosterHandler struct {
	rosters RosterService
	logger  *slog.Logger
}

// NewRosterHandler creates a RosterHandler.
func NewRosterHandler(rosters RosterService, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{rosters: rosters, logger: logger}
}

// teamFromRequest builds the team identity from the path key and the sport
// query parameter.
func teamFromRequest(r *http.Request) domain.Team {
	return domain.Team{
		Key:   r.PathValue("key"),
		Name:  r.URL.Query().Get("name"),
		Sport: domain.Sport(r.URL.Query().Get("sport")),
	}
}

// Roster returns a team's players.
// GET /api/teams/{key}/roster?sport=football
func (h *RosterHandler) Roster(w http.ResponseWriter, r *http.Request) {
	team := teamFromRequest(r)
	players, err := h.rosters.Roster(r.Context(), team)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: roster failed",
			slog.String("team", team.Key),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": players})
}

// Prospects returns a team's prospect pool.
// GET /api/teams/{key}/prospects?sport=baseball
func (h *RosterHandler) Prospects(w http.ResponseWriter, r *http.Request) {
	team := teamFromRequest(r)
	prospects, err := h.rosters.Prospects(r.Context(), team)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: prospects failed",
			slog.String("team", team.Key),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prospects": prospects})
}

// Cap returns a team's salary-cap summary.
// GET /api/teams/{key}/cap?sport=football
func (h *RosterHandler) Cap(w http.ResponseWriter, r *http.Request) {
	team := teamFromRequest(r)
	summary, err := h.rosters.CapSummary(r.Context(), team)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: cap failed",
			slog.String("team", team.Key),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
