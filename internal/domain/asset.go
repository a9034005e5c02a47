package domain

import "fmt"

// Sport identifies the league a team plays in. Cash and salary-retention
// terms are only expressible for baseball trades.
type Sport string

const (
	SportBaseball   Sport = "baseball"
	SportFootball   Sport = "football"
	SportBasketball Sport = "basketball"
	SportHockey     Sport = "hockey"
)

// AllowsCash reports whether trades in this sport may carry cash
// considerations and per-player salary retention.
func (s Sport) AllowsCash() bool {
	return s == SportBaseball
}

// TeamRole names a negotiating party's seat at the table. RolePartner2 only
// exists while the session is in three-team mode.
type TeamRole string

const (
	RoleHome     TeamRole = "home"
	RolePartner1 TeamRole = "partner1"
	RolePartner2 TeamRole = "partner2"
)

// Team is a resolved team identity.
type Team struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Sport Sport  `json:"sport"`
}

// AssetKind discriminates the Asset tagged union.
type AssetKind string

const (
	AssetPlayer   AssetKind = "player"
	AssetPick     AssetKind = "pick"
	AssetProspect AssetKind = "prospect"
	AssetCash     AssetKind = "cash"
)

// Player is a rosterable player with the full attribute set the grading
// service scores on.
type Player struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Position      string             `json:"position"`
	Age           int                `json:"age"`
	HeightInches  int                `json:"height_inches"`
	WeightPounds  int                `json:"weight_pounds"`
	Salary        float64            `json:"salary"`
	ContractYears int                `json:"contract_years"`
	Stats         map[string]float64 `json:"stats,omitempty"`
}

// Prospect is a minor-league or draft-eligible player. Prospects travel
// through the same selection paths as players but carry scouting fields
// instead of production stats.
type Prospect struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Grade   float64 `json:"grade"`
	OrgRank int     `json:"organizational_rank"`
	Level   string  `json:"level"`
}

// DraftPick is a future draft selection. OverallPick is only known once the
// draft order is set; Condition carries protection language ("top-10
// protected") verbatim.
type DraftPick struct {
	Year        int    `json:"year"`
	Round       int    `json:"round"`
	OverallPick *int   `json:"overall_pick,omitempty"`
	Condition   string `json:"condition,omitempty"`
}

// Label renders the pick in the canonical "{year} R{round}" form, with the
// overall pick number appended when known.
func (p DraftPick) Label() string {
	s := fmt.Sprintf("%d R%d", p.Year, p.Round)
	if p.OverallPick != nil {
		s += fmt.Sprintf(" #%d", *p.OverallPick)
	}
	return s
}

// Asset is the tagged union of everything that can move in a trade. Exactly
// one payload field matching Kind is set. ID is unique across kinds; the
// front-office service assigns player and prospect identifiers, and the
// session mints identifiers for picks and cash when they are added.
type Asset struct {
	Kind  AssetKind `json:"kind"`
	ID    string    `json:"id"`
	Label string    `json:"label"`

	Player   *Player    `json:"player,omitempty"`
	Prospect *Prospect  `json:"prospect,omitempty"`
	Pick     *DraftPick `json:"pick,omitempty"`
	Amount   float64    `json:"amount,omitempty"` // cash only, USD
}

// prospectMarker is appended to a prospect's name wherever assets are
// rendered as display strings, so graders can tell prospects from
// established players.
const prospectMarker = " (P)"

// DisplayString renders the asset in the canonical form the three-team wire
// format carries: a player is its full name, a prospect is its name with the
// prospect marker, a pick is its Label, cash is a dollar amount.
func (a Asset) DisplayString() string {
	switch a.Kind {
	case AssetPlayer:
		if a.Player != nil {
			return a.Player.Name
		}
	case AssetProspect:
		if a.Prospect != nil {
			return a.Prospect.Name + prospectMarker
		}
	case AssetPick:
		if a.Pick != nil {
			return a.Pick.Label()
		}
	case AssetCash:
		return fmt.Sprintf("$%.0f", a.Amount)
	}
	return a.Label
}

// NewPlayerAsset wraps a Player as a tradable asset.
func NewPlayerAsset(p Player) Asset {
	return Asset{Kind: AssetPlayer, ID: p.ID, Label: p.Name, Player: &p}
}

// NewProspectAsset wraps a Prospect as a tradable asset.
func NewProspectAsset(p Prospect) Asset {
	return Asset{Kind: AssetProspect, ID: p.ID, Label: p.Name, Prospect: &p}
}

// NewPickAsset wraps a DraftPick as a tradable asset under the given
// session-minted identifier.
func NewPickAsset(id string, pick DraftPick) Asset {
	return Asset{Kind: AssetPick, ID: id, Label: pick.Label(), Pick: &pick}
}

// NewCashAsset wraps a cash amount as a tradable asset.
func NewCashAsset(id string, amount float64) Asset {
	return Asset{Kind: AssetCash, ID: id, Label: fmt.Sprintf("$%.0f", amount), Amount: amount}
}
