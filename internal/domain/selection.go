package domain

// SelectionSet is the flat per-role view of a trade: the player and prospect
// ids a role is sending plus its ordered outgoing pick list. It is always a
// projection of the FlowGraph, never an independent store; callers that need
// it derive it with ProjectSelection.
type SelectionSet struct {
	PlayerIDs   map[string]bool `json:"player_ids"`
	ProspectIDs map[string]bool `json:"prospect_ids"`
	Picks       []Asset         `json:"picks"`
}

// NewSelectionSet returns an empty selection.
func NewSelectionSet() SelectionSet {
	return SelectionSet{
		PlayerIDs:   map[string]bool{},
		ProspectIDs: map[string]bool{},
	}
}

// Contains reports whether the asset id is selected in any category.
func (s SelectionSet) Contains(assetID string) bool {
	if s.PlayerIDs[assetID] || s.ProspectIDs[assetID] {
		return true
	}
	for _, p := range s.Picks {
		if p.ID == assetID {
			return true
		}
	}
	return false
}

// Empty reports whether nothing is selected.
func (s SelectionSet) Empty() bool {
	return len(s.PlayerIDs) == 0 && len(s.ProspectIDs) == 0 && len(s.Picks) == 0
}

// ProjectSelection derives the role's outgoing SelectionSet from the graph.
// Cash assets do not appear in the flat view; they only surface through the
// two-team wire format.
func ProjectSelection(g *FlowGraph, role TeamRole) SelectionSet {
	sel := NewSelectionSet()
	for _, a := range g.AssetsForRole(role, Outgoing) {
		switch a.Kind {
		case AssetPlayer:
			sel.PlayerIDs[a.ID] = true
		case AssetProspect:
			sel.ProspectIDs[a.ID] = true
		case AssetPick:
			sel.Picks = append(sel.Picks, a)
		}
	}
	return sel
}
