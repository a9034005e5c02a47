package domain

import "testing"

func pick(id string, year, round int) Asset {
	return NewPickAsset(id, DraftPick{Year: year, Round: round})
}

func player(id, name string) Asset {
	return NewPlayerAsset(Player{ID: id, Name: name})
}

func TestUpsertMergesOrderedPair(t *testing.T) {
	g := NewFlowGraph()
	g.Upsert(RoleHome, RolePartner1, player("p1", "A"))
	g.Upsert(RoleHome, RolePartner1, player("p2", "B"))

	if g.Len() != 1 {
		t.Fatalf("expected 1 flow for repeated (home, partner1) pair, got %d", g.Len())
	}
	flows := g.FlowsForRole(RoleHome, Outgoing)
	if len(flows) != 1 || len(flows[0].Assets) != 2 {
		t.Fatalf("expected one flow with 2 assets, got %+v", flows)
	}
}

func TestUpsertOppositeDirectionIsSeparateFlow(t *testing.T) {
	g := NewFlowGraph()
	g.Upsert(RoleHome, RolePartner1, player("p1", "A"))
	g.Upsert(RolePartner1, RoleHome, player("p2", "B"))

	if g.Len() != 2 {
		t.Fatalf("expected 2 flows for opposite directions, got %d", g.Len())
	}
}

func TestAssetInAtMostOneFlow(t *testing.T) {
	g := NewFlowGraph()
	g.Upsert(RoleHome, RolePartner1, player("p1", "A"))
	// Re-adding the same asset toward a different destination must move it,
	// not duplicate it.
	g.Upsert(RoleHome, RolePartner2, player("p1", "A"))

	count := 0
	for _, f := range g.Flows() {
		for _, a := range f.Assets {
			if a.ID == "p1" {
				count++
			}
		}
	}
	if count != 1 {
		t.Fatalf("asset p1 appears in %d flows, want 1", count)
	}
	if from, to, ok := g.Locate("p1"); !ok || from != RoleHome || to != RolePartner2 {
		t.Fatalf("expected p1 on home->partner2, got %s->%s ok=%v", from, to, ok)
	}
}

func TestRemoveLastAssetPrunesFlow(t *testing.T) {
	g := NewFlowGraph()
	g.Upsert(RoleHome, RolePartner1, pick("k1", 2026, 1))
	g.Upsert(RolePartner1, RoleHome, player("p2", "B"))

	before := g.Len()
	if !g.RemoveAsset(RoleHome, RolePartner1, "k1") {
		t.Fatal("expected removal to succeed")
	}
	if g.Len() != before-1 {
		t.Fatalf("expected graph size to decrease by exactly one, got %d -> %d", before, g.Len())
	}
	if _, _, ok := g.Locate("k1"); ok {
		t.Fatal("removed asset still locatable")
	}
}

func TestRemoveDetachesFromUnknownEdge(t *testing.T) {
	g := NewFlowGraph()
	g.Upsert(RolePartner1, RolePartner2, pick("k1", 2027, 2))

	if !g.Remove("k1") {
		t.Fatal("expected Remove to find the asset without knowing the edge")
	}
	if g.Len() != 0 {
		t.Fatalf("expected empty graph, got %d flows", g.Len())
	}
	if g.Remove("k1") {
		t.Fatal("second Remove should report not found")
	}
}

func TestDropRole(t *testing.T) {
	g := NewFlowGraph()
	g.Upsert(RoleHome, RolePartner1, player("p1", "A"))
	g.Upsert(RoleHome, RolePartner2, player("p2", "B"))
	g.Upsert(RolePartner2, RoleHome, pick("k1", 2026, 3))

	g.DropRole(RolePartner2)

	if g.Len() != 1 {
		t.Fatalf("expected only home->partner1 to survive, got %d flows", g.Len())
	}
	if _, _, ok := g.Locate("p2"); ok {
		t.Fatal("partner2-bound asset survived DropRole")
	}
}

func TestFlowsForRoleDirections(t *testing.T) {
	g := NewFlowGraph()
	g.Upsert(RoleHome, RolePartner1, player("p1", "A"))
	g.Upsert(RolePartner1, RoleHome, player("p2", "B"))
	g.Upsert(RolePartner2, RoleHome, player("p3", "C"))

	if n := len(g.FlowsForRole(RoleHome, Outgoing)); n != 1 {
		t.Fatalf("expected 1 outgoing flow for home, got %d", n)
	}
	if n := len(g.FlowsForRole(RoleHome, Incoming)); n != 2 {
		t.Fatalf("expected 2 incoming flows for home, got %d", n)
	}
	if n := len(g.AssetsForRole(RoleHome, Incoming)); n != 2 {
		t.Fatalf("expected 2 incoming assets for home, got %d", n)
	}
}

func TestProjectSelection(t *testing.T) {
	g := NewFlowGraph()
	g.Upsert(RoleHome, RolePartner1, player("p1", "A"))
	g.Upsert(RoleHome, RolePartner1, NewProspectAsset(Prospect{ID: "x9", Name: "Kid"}))
	g.Upsert(RoleHome, RolePartner1, pick("k1", 2026, 1))
	g.Upsert(RolePartner1, RoleHome, player("p2", "B"))

	sel := ProjectSelection(g, RoleHome)
	if !sel.PlayerIDs["p1"] || sel.PlayerIDs["p2"] {
		t.Fatalf("unexpected player projection: %+v", sel.PlayerIDs)
	}
	if !sel.ProspectIDs["x9"] {
		t.Fatalf("prospect missing from projection: %+v", sel.ProspectIDs)
	}
	if len(sel.Picks) != 1 || sel.Picks[0].ID != "k1" {
		t.Fatalf("unexpected pick projection: %+v", sel.Picks)
	}
}

func TestPickLabel(t *testing.T) {
	overall := 12
	tests := []struct {
		name string
		pick DraftPick
		want string
	}{
		{"round only", DraftPick{Year: 2026, Round: 1}, "2026 R1"},
		{"with overall", DraftPick{Year: 2027, Round: 2, OverallPick: &overall}, "2027 R2 #12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pick.Label(); got != tt.want {
				t.Fatalf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayString(t *testing.T) {
	if got := player("p1", "Jo Adell").DisplayString(); got != "Jo Adell" {
		t.Fatalf("player display = %q", got)
	}
	pr := NewProspectAsset(Prospect{ID: "x1", Name: "Sam Hill"})
	if got := pr.DisplayString(); got != "Sam Hill (P)" {
		t.Fatalf("prospect display = %q", got)
	}
	if got := pick("k1", 2026, 1).DisplayString(); got != "2026 R1" {
		t.Fatalf("pick display = %q", got)
	}
}
