package trade

import (
	"fmt"

	"github.com/scorewire/warroom/internal/domain"
)

// BuildRequest serializes the session state into the grading wire format.
// Builder selection is driven purely by the trade mode.
func BuildRequest(st State) (domain.GradeRequest, error) {
	switch st.Mode {
	case domain.ModeThreeTeam:
		return BuildThreeParty(st)
	default:
		return BuildTwoParty(st)
	}
}

// BuildTwoParty produces the flat two-party wire shape. Players and
// prospects are concatenated into the players arrays, prospects tagged with
// the prospect marker fields; draft picks pass through unchanged. For
// baseball the cash and salary-retention capability is included; for every
// other sport those fields are omitted entirely.
func BuildTwoParty(st State) (domain.TwoTeamGradeRequest, error) {
	home, ok := st.Teams[domain.RoleHome]
	if !ok {
		return domain.TwoTeamGradeRequest{}, fmt.Errorf("trade: build two-party: home: %w", domain.ErrTeamUnresolved)
	}
	partner, ok := st.Teams[domain.RolePartner1]
	if !ok {
		return domain.TwoTeamGradeRequest{}, fmt.Errorf("trade: build two-party: partner: %w", domain.ErrTeamUnresolved)
	}

	req := domain.TwoTeamGradeRequest{
		HomeTeam:           home.Key,
		PartnerTeam:        partner.Key,
		PlayersSent:        []domain.TradePlayer{},
		PlayersReceived:    []domain.TradePlayer{},
		DraftPicksSent:     []domain.DraftPick{},
		DraftPicksReceived: []domain.DraftPick{},
		SessionID:          st.ID,
	}

	var cashSent, cashReceived float64
	for _, f := range st.Flows {
		outgoing := f.From == domain.RoleHome
		for _, a := range f.Assets {
			switch a.Kind {
			case domain.AssetPlayer, domain.AssetProspect:
				tp := toTradePlayer(a)
				if outgoing {
					req.PlayersSent = append(req.PlayersSent, tp)
				} else {
					req.PlayersReceived = append(req.PlayersReceived, tp)
				}
			case domain.AssetPick:
				if outgoing {
					req.DraftPicksSent = append(req.DraftPicksSent, *a.Pick)
				} else {
					req.DraftPicksReceived = append(req.DraftPicksReceived, *a.Pick)
				}
			case domain.AssetCash:
				if outgoing {
					cashSent += a.Amount
				} else {
					cashReceived += a.Amount
				}
			}
		}
	}

	if home.Sport.AllowsCash() {
		cs, cr := cashSent, cashReceived
		req.CashSent = &cs
		req.CashReceived = &cr
		if len(st.Retentions) > 0 {
			req.SalaryRetentions = st.Retentions
		}
	}

	return req, nil
}

// toTradePlayer flattens a player or prospect asset into the two-team wire
// entry.
func toTradePlayer(a domain.Asset) domain.TradePlayer {
	if a.Kind == domain.AssetProspect && a.Prospect != nil {
		p := a.Prospect
		return domain.TradePlayer{
			ID:            p.ID,
			Name:          p.Name,
			IsProspect:    true,
			ProspectGrade: p.Grade,
			OrgRank:       p.OrgRank,
			Level:         p.Level,
		}
	}
	if a.Player != nil {
		p := a.Player
		return domain.TradePlayer{
			ID:            p.ID,
			Name:          p.Name,
			Position:      p.Position,
			Age:           p.Age,
			HeightInches:  p.HeightInches,
			WeightPounds:  p.WeightPounds,
			Salary:        p.Salary,
			ContractYears: p.ContractYears,
			Stats:         p.Stats,
		}
	}
	return domain.TradePlayer{ID: a.ID, Name: a.Label}
}

// BuildThreeParty produces the three-party wire shape. Every flow's assets
// are formatted to canonical display strings and appended to exactly one
// sends bucket and its mirrored receives bucket; both buckets are populated
// from the same flow in the same step, so for any directed pair the two
// arrays always carry the same strings.
func BuildThreeParty(st State) (domain.ThreeTeamGradeRequest, error) {
	home, ok := st.Teams[domain.RoleHome]
	if !ok {
		return domain.ThreeTeamGradeRequest{}, fmt.Errorf("trade: build three-party: home: %w", domain.ErrTeamUnresolved)
	}
	partner1, ok := st.Teams[domain.RolePartner1]
	if !ok {
		return domain.ThreeTeamGradeRequest{}, fmt.Errorf("trade: build three-party: partner1: %w", domain.ErrTeamUnresolved)
	}
	partner2, ok := st.Teams[domain.RolePartner2]
	if !ok {
		return domain.ThreeTeamGradeRequest{}, fmt.Errorf("trade: build three-party: partner2: %w", domain.ErrTeamUnresolved)
	}

	req := domain.ThreeTeamGradeRequest{
		HomeTeam:     home.Key,
		PartnerTeam:  partner1.Key,
		PartnerTeam2: partner2.Key,
		IsThreeTeam:  true,
		Sport:        home.Sport,
		SessionID:    st.ID,
	}

	for _, f := range st.Flows {
		sends, receives, err := exchangeBuckets(&req.Details, f.From, f.To)
		if err != nil {
			return domain.ThreeTeamGradeRequest{}, err
		}
		for _, a := range f.Assets {
			s := a.DisplayString()
			*sends = append(*sends, s)
			*receives = append(*receives, s)
		}
	}

	return req, nil
}

// exchangeBuckets maps a directed role pair onto its sends/receives array
// pair inside the details block.
func exchangeBuckets(d *domain.ThreeTeamDetails, from, to domain.TeamRole) (sends, receives *[]string, err error) {
	switch {
	case from == domain.RoleHome && to == domain.RolePartner1:
		return &d.HomeSendsToPartner1, &d.Partner1ReceivesFromHome, nil
	case from == domain.RoleHome && to == domain.RolePartner2:
		return &d.HomeSendsToPartner2, &d.Partner2ReceivesFromHome, nil
	case from == domain.RolePartner1 && to == domain.RoleHome:
		return &d.Partner1SendsToHome, &d.HomeReceivesFromPartner1, nil
	case from == domain.RolePartner1 && to == domain.RolePartner2:
		return &d.Partner1SendsToPartner2, &d.Partner2ReceivesFromPartner1, nil
	case from == domain.RolePartner2 && to == domain.RoleHome:
		return &d.Partner2SendsToHome, &d.HomeReceivesFromPartner2, nil
	case from == domain.RolePartner2 && to == domain.RolePartner1:
		return &d.Partner2SendsToPartner1, &d.Partner1ReceivesFromPartner2, nil
	default:
		return nil, nil, fmt.Errorf("trade: no exchange bucket for %s -> %s", from, to)
	}
}
