package domain

// Flow is a directed edge in the trade graph: the ordered list of assets
// moving from one party to another. At most one Flow exists per ordered
// (From, To) pair, and a Flow never persists with an empty asset list; both
// invariants are enforced by FlowGraph.
type Flow struct {
	From   TeamRole `json:"from"`
	To     TeamRole `json:"to"`
	Assets []Asset  `json:"assets"`
}

// FlowDirection selects which side of a flow a role is on.
type FlowDirection string

const (
	Outgoing FlowDirection = "outgoing"
	Incoming FlowDirection = "incoming"
)

// FlowGraph is the canonical directed multigraph of asset movement for a
// trade session. It is the single source of truth in every trade mode; the
// per-role SelectionSet views are projections of it. FlowGraph is not safe
// for concurrent use; the owning session serializes access.
type FlowGraph struct {
	flows []*Flow
}

// NewFlowGraph returns an empty graph.
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{}
}

func (g *FlowGraph) find(from, to TeamRole) *Flow {
	for _, f := range g.flows {
		if f.From == from && f.To == to {
			return f
		}
	}
	return nil
}

func (g *FlowGraph) drop(target *Flow) {
	for i, f := range g.flows {
		if f == target {
			g.flows = append(g.flows[:i], g.flows[i+1:]...)
			return
		}
	}
}

// Upsert appends the asset to the flow for the ordered (from, to) pair,
// creating the flow if the pair has none yet. If the asset is already
// present anywhere in the graph it is detached first, so an asset can never
// appear on two edges at once.
func (g *FlowGraph) Upsert(from, to TeamRole, asset Asset) {
	g.Remove(asset.ID)
	f := g.find(from, to)
	if f == nil {
		f = &Flow{From: from, To: to}
		g.flows = append(g.flows, f)
	}
	f.Assets = append(f.Assets, asset)
}

// RemoveAsset removes the asset from the flow for the ordered (from, to)
// pair. It reports whether the asset was found. A flow whose last asset is
// removed is deleted from the graph immediately.
func (g *FlowGraph) RemoveAsset(from, to TeamRole, assetID string) bool {
	f := g.find(from, to)
	if f == nil {
		return false
	}
	for i, a := range f.Assets {
		if a.ID == assetID {
			f.Assets = append(f.Assets[:i], f.Assets[i+1:]...)
			if len(f.Assets) == 0 {
				g.drop(f)
			}
			return true
		}
	}
	return false
}

// Remove detaches the asset from whichever flow contains it, pruning the
// flow if it becomes empty. It reports whether the asset was found.
func (g *FlowGraph) Remove(assetID string) bool {
	from, to, ok := g.Locate(assetID)
	if !ok {
		return false
	}
	return g.RemoveAsset(from, to, assetID)
}

// Locate returns the edge currently carrying the asset.
func (g *FlowGraph) Locate(assetID string) (from, to TeamRole, ok bool) {
	for _, f := range g.flows {
		for _, a := range f.Assets {
			if a.ID == assetID {
				return f.From, f.To, true
			}
		}
	}
	return "", "", false
}

// FlowsForRole returns copies of every flow where the role is the origin
// (Outgoing) or the destination (Incoming).
func (g *FlowGraph) FlowsForRole(role TeamRole, dir FlowDirection) []Flow {
	var out []Flow
	for _, f := range g.flows {
		if (dir == Outgoing && f.From == role) || (dir == Incoming && f.To == role) {
			out = append(out, copyFlow(f))
		}
	}
	return out
}

// Flows returns a copy of every flow in insertion order.
func (g *FlowGraph) Flows() []Flow {
	out := make([]Flow, 0, len(g.flows))
	for _, f := range g.flows {
		out = append(out, copyFlow(f))
	}
	return out
}

// AssetsForRole returns copies of the assets the role is sending (Outgoing)
// or receiving (Incoming), across all counterparties, in flow order.
func (g *FlowGraph) AssetsForRole(role TeamRole, dir FlowDirection) []Asset {
	var out []Asset
	for _, f := range g.FlowsForRole(role, dir) {
		out = append(out, f.Assets...)
	}
	return out
}

// DropRole removes every flow that touches the role as origin or
// destination. Used when a party leaves the negotiation.
func (g *FlowGraph) DropRole(role TeamRole) {
	kept := g.flows[:0]
	for _, f := range g.flows {
		if f.From == role || f.To == role {
			continue
		}
		kept = append(kept, f)
	}
	g.flows = kept
}

// Clear removes every flow.
func (g *FlowGraph) Clear() {
	g.flows = nil
}

// Len returns the number of flows (edges) in the graph.
func (g *FlowGraph) Len() int {
	return len(g.flows)
}

func copyFlow(f *Flow) Flow {
	assets := make([]Asset, len(f.Assets))
	copy(assets, f.Assets)
	return Flow{From: f.From, To: f.To, Assets: assets}
}
