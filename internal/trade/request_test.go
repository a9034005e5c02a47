package trade

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/scorewire/warroom/internal/domain"
)

func TestBuildTwoParty(t *testing.T) {
	s := twoTeamSession(t)
	s.ToggleAsset(domain.RoleHome, domain.NewPlayerAsset(domain.Player{
		ID: "p1", Name: "Aaron Quick", Position: "QB", Age: 28, Salary: 32_000_000, ContractYears: 3,
	}))
	s.ToggleAsset(domain.RolePartner1, domain.NewPlayerAsset(domain.Player{
		ID: "p2", Name: "Ben Ruff", Position: "WR", Age: 25,
	}))
	s.AddDraftPick(domain.RolePartner1, domain.DraftPick{Year: 2026, Round: 1})

	if !s.CanSubmit() {
		t.Fatal("expected submittable trade")
	}

	req, err := BuildTwoParty(s.Snapshot())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.HomeTeam != "nyj" || req.PartnerTeam != "chi" || req.SessionID != "sess-1" {
		t.Fatalf("header fields wrong: %+v", req)
	}
	if len(req.PlayersSent) != 1 || req.PlayersSent[0].ID != "p1" {
		t.Fatalf("players_sent = %+v", req.PlayersSent)
	}
	if req.PlayersSent[0].Salary != 32_000_000 || req.PlayersSent[0].ContractYears != 3 {
		t.Fatalf("full attribute set not carried: %+v", req.PlayersSent[0])
	}
	if len(req.PlayersReceived) != 1 || req.PlayersReceived[0].ID != "p2" {
		t.Fatalf("players_received = %+v", req.PlayersReceived)
	}
	if len(req.DraftPicksSent) != 0 {
		t.Fatalf("draft_picks_sent = %+v", req.DraftPicksSent)
	}
	if len(req.DraftPicksReceived) != 1 || req.DraftPicksReceived[0].Year != 2026 || req.DraftPicksReceived[0].Round != 1 {
		t.Fatalf("draft_picks_received = %+v", req.DraftPicksReceived)
	}

	// Football: the cash capability is omitted entirely.
	if req.CashSent != nil || req.CashReceived != nil || req.SalaryRetentions != nil {
		t.Fatalf("cash fields must be absent outside baseball: %+v", req)
	}
}

func TestBuildTwoPartyProspectTagging(t *testing.T) {
	s := twoTeamSession(t)
	s.ToggleAsset(domain.RoleHome, domain.NewProspectAsset(domain.Prospect{
		ID: "x1", Name: "Sam Hill", Grade: 55, OrgRank: 3, Level: "AA",
	}))
	s.ToggleAsset(domain.RolePartner1, playerAsset("p2", "B"))

	req, err := BuildTwoParty(s.Snapshot())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := req.PlayersSent[0]
	if !got.IsProspect || got.ProspectGrade != 55 || got.OrgRank != 3 || got.Level != "AA" {
		t.Fatalf("prospect fields not tagged: %+v", got)
	}
}

func TestBuildTwoPartyBaseballCash(t *testing.T) {
	s := NewSession("sess-2", "user-1", mets, nil)
	s.SetPartner(domain.RolePartner1, cubs)
	s.ToggleAsset(domain.RoleHome, playerAsset("p1", "A"))
	s.ToggleAsset(domain.RolePartner1, playerAsset("p2", "B"))
	s.AddCash(domain.RoleHome, 500_000)
	s.SetSalaryRetention("p1", 50)

	req, err := BuildTwoParty(s.Snapshot())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.CashSent == nil || *req.CashSent != 500_000 {
		t.Fatalf("cash_sent = %v", req.CashSent)
	}
	if req.CashReceived == nil || *req.CashReceived != 0 {
		t.Fatalf("cash_received = %v", req.CashReceived)
	}
	if req.SalaryRetentions["p1"] != 50 {
		t.Fatalf("salary_retentions = %+v", req.SalaryRetentions)
	}
}

func TestBuildTwoPartyRequiresPartner(t *testing.T) {
	s := NewSession("sess-1", "user-1", jets, nil)
	if _, err := BuildTwoParty(s.Snapshot()); !errors.Is(err, domain.ErrTeamUnresolved) {
		t.Fatalf("expected ErrTeamUnresolved, got %v", err)
	}
}

func TestBuildThreePartyBuckets(t *testing.T) {
	s := threeTeamSession(t)

	// home -> partner2: a 2026 round-1 pick, via the destination router.
	s.AddDraftPick(domain.RoleHome, domain.DraftPick{Year: 2026, Round: 1})
	s.ResolveDestination(domain.RolePartner2)
	// partner1 -> home, partner2 -> partner1: players.
	s.ToggleAsset(domain.RolePartner1, playerAsset("p2", "Ben Ruff"))
	s.ResolveDestination(domain.RoleHome)
	s.ToggleAsset(domain.RolePartner2, playerAsset("p3", "Cal Moss"))
	s.ResolveDestination(domain.RolePartner1)

	req, err := BuildThreeParty(s.Snapshot())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !req.IsThreeTeam || req.Sport != domain.SportFootball {
		t.Fatalf("header fields wrong: %+v", req)
	}
	if req.HomeTeam != "nyj" || req.PartnerTeam != "chi" || req.PartnerTeam2 != "den" {
		t.Fatalf("team mapping wrong: %+v", req)
	}

	d := req.Details
	if !reflect.DeepEqual(d.HomeSendsToPartner2, []string{"2026 R1"}) {
		t.Fatalf("home_sends_to_partner2 = %v", d.HomeSendsToPartner2)
	}
	if !reflect.DeepEqual(d.Partner2ReceivesFromHome, []string{"2026 R1"}) {
		t.Fatalf("partner2_receives_from_home = %v", d.Partner2ReceivesFromHome)
	}
	if !reflect.DeepEqual(d.Partner1SendsToHome, []string{"Ben Ruff"}) {
		t.Fatalf("partner1_sends_to_home = %v", d.Partner1SendsToHome)
	}
	if !reflect.DeepEqual(d.Partner2SendsToPartner1, []string{"Cal Moss"}) {
		t.Fatalf("partner2_sends_to_partner1 = %v", d.Partner2SendsToPartner1)
	}
	if len(d.HomeSendsToPartner1) != 0 || len(d.Partner1SendsToPartner2) != 0 {
		t.Fatalf("unused buckets must stay empty: %+v", d)
	}
}

// Every sends bucket must mirror its receives bucket exactly, for any graph.
func TestThreePartySendsReceivesMirror(t *testing.T) {
	s := threeTeamSession(t)
	adds := []struct {
		origin, dest domain.TeamRole
		asset        domain.Asset
	}{
		{domain.RoleHome, domain.RolePartner1, playerAsset("p1", "A")},
		{domain.RoleHome, domain.RolePartner2, playerAsset("p2", "B")},
		{domain.RolePartner1, domain.RolePartner2, playerAsset("p3", "C")},
		{domain.RolePartner2, domain.RoleHome, playerAsset("p4", "D")},
		{domain.RolePartner1, domain.RoleHome, playerAsset("p5", "E")},
		{domain.RolePartner2, domain.RolePartner1, playerAsset("p6", "F")},
	}
	for _, a := range adds {
		if _, err := s.ToggleAsset(a.origin, a.asset); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if err := s.ResolveDestination(a.dest); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}

	req, err := BuildThreeParty(s.Snapshot())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	d := req.Details
	pairs := [][2][]string{
		{d.HomeSendsToPartner1, d.Partner1ReceivesFromHome},
		{d.HomeSendsToPartner2, d.Partner2ReceivesFromHome},
		{d.Partner1SendsToHome, d.HomeReceivesFromPartner1},
		{d.Partner1SendsToPartner2, d.Partner2ReceivesFromPartner1},
		{d.Partner2SendsToHome, d.HomeReceivesFromPartner2},
		{d.Partner2SendsToPartner1, d.Partner1ReceivesFromPartner2},
	}
	for i, pair := range pairs {
		sends := append([]string(nil), pair[0]...)
		recvs := append([]string(nil), pair[1]...)
		sort.Strings(sends)
		sort.Strings(recvs)
		if !reflect.DeepEqual(sends, recvs) {
			t.Fatalf("pair %d: sends %v != receives %v", i, pair[0], pair[1])
		}
		if len(sends) != 1 {
			t.Fatalf("pair %d: expected exactly one asset, got %v", i, sends)
		}
	}
}

func TestBuildRequestSelectsOnMode(t *testing.T) {
	two := twoTeamSession(t)
	two.ToggleAsset(domain.RoleHome, playerAsset("p1", "A"))
	req, err := BuildRequest(two.Snapshot())
	if err != nil {
		t.Fatalf("build two: %v", err)
	}
	if _, ok := req.(domain.TwoTeamGradeRequest); !ok {
		t.Fatalf("expected two-team request, got %T", req)
	}

	three := threeTeamSession(t)
	req, err = BuildRequest(three.Snapshot())
	if err != nil {
		t.Fatalf("build three: %v", err)
	}
	if _, ok := req.(domain.ThreeTeamGradeRequest); !ok {
		t.Fatalf("expected three-team request, got %T", req)
	}
}
