package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scorewire/warroom/internal/domain"
)

// RosterService serves rosters, prospect lists, and cap summaries with a
// cache in front of the front-office client.
type RosterService struct {
	provider domain.RosterProvider
	caps     domain.CapProvider
	roster   domain.RosterCache
	capCache domain.CapCache
	logger   *slog.Logger
}

// NewRosterService creates a RosterService. The caches may be nil, in which
// case every read goes to the provider.
func NewRosterService(
	provider domain.RosterProvider,
	caps domain.CapProvider,
	roster domain.RosterCache,
	capCache domain.CapCache,
	logger *slog.Logger,
) *RosterService {
	return &RosterService{
		provider: provider,
		caps:     caps,
		roster:   roster,
		capCache: capCache,
		logger:   logger,
	}
}

// Roster returns a team's players, cache first.
func (s *RosterService) Roster(ctx context.Context, team domain.Team) ([]domain.Player, error) {
	if s.roster != nil {
		players, err := s.roster.GetRoster(ctx, team.Key)
		if err == nil {
			return players, nil
		}
	}

	players, err := s.provider.Roster(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("roster_service: roster %s: %w", team.Key, err)
	}

	if s.roster != nil {
		if cacheErr := s.roster.SetRoster(ctx, team.Key, players); cacheErr != nil {
			s.logger.WarnContext(ctx, "roster_service: cache set failed",
				slog.String("team", team.Key),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return players, nil
}

// Prospects returns a team's prospect pool, cache first.
func (s *RosterService) Prospects(ctx context.Context, team domain.Team) ([]domain.Prospect, error) {
	if s.roster != nil {
		prospects, err := s.roster.GetProspects(ctx, team.Key)
		if err == nil {
			return prospects, nil
		}
	}

	prospects, err := s.provider.Prospects(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("roster_service: prospects %s: %w", team.Key, err)
	}

	if s.roster != nil {
		if cacheErr := s.roster.SetProspects(ctx, team.Key, prospects); cacheErr != nil {
			s.logger.WarnContext(ctx, "roster_service: cache set failed",
				slog.String("team", team.Key),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return prospects, nil
}

// CapSummary returns a team's cap picture, cache first.
func (s *RosterService) CapSummary(ctx context.Context, team domain.Team) (domain.CapSummary, error) {
	if s.capCache != nil {
		summary, err := s.capCache.Get(ctx, team.Key)
		if err == nil {
			return summary, nil
		}
	}

	summary, err := s.caps.CapSummary(ctx, team)
	if err != nil {
		return domain.CapSummary{}, fmt.Errorf("roster_service: cap %s: %w", team.Key, err)
	}

	if s.capCache != nil {
		if cacheErr := s.capCache.Set(ctx, team.Key, summary); cacheErr != nil {
			s.logger.WarnContext(ctx, "roster_service: cap cache set failed",
				slog.String("team", team.Key),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return summary, nil
}
