package domain

// TradeMode is the number of parties negotiating. Switching modes is an
// explicit session operation with migration semantics owned by the engine.
type TradeMode string

const (
	ModeTwoTeam   TradeMode = "two_team"
	ModeThreeTeam TradeMode = "three_team"
)

// GradeRequest is the wire DTO submitted to the grading service. The
// concrete shape depends on the trade mode: TwoTeamGradeRequest or
// ThreeTeamGradeRequest.
type GradeRequest interface {
	gradeRequest()
}

// TradePlayer is a player or prospect entry in the two-team wire format.
// Real players carry the full attribute set; prospects are tagged with
// IsProspect and carry scouting fields instead.
type TradePlayer struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Position      string             `json:"position,omitempty"`
	Age           int                `json:"age,omitempty"`
	HeightInches  int                `json:"height_inches,omitempty"`
	WeightPounds  int                `json:"weight_pounds,omitempty"`
	Salary        float64            `json:"salary,omitempty"`
	ContractYears int                `json:"contract_years,omitempty"`
	Stats         map[string]float64 `json:"stats,omitempty"`

	IsProspect    bool    `json:"is_prospect,omitempty"`
	ProspectGrade float64 `json:"prospect_grade,omitempty"`
	OrgRank       int     `json:"organizational_rank,omitempty"`
	Level         string  `json:"level,omitempty"`
}

// TwoTeamGradeRequest is the flat two-party wire shape. The retention and
// cash fields are a sport-gated capability: they are present only for
// baseball trades and omitted entirely for every other sport.
type TwoTeamGradeRequest struct {
	HomeTeam           string        `json:"home_team"`
	PartnerTeam        string        `json:"partner_team"`
	PlayersSent        []TradePlayer `json:"players_sent"`
	PlayersReceived    []TradePlayer `json:"players_received"`
	DraftPicksSent     []DraftPick   `json:"draft_picks_sent"`
	DraftPicksReceived []DraftPick   `json:"draft_picks_received"`
	SessionID          string        `json:"session_id"`

	SalaryRetentions map[string]float64 `json:"salary_retentions,omitempty"`
	CashSent         *float64           `json:"cash_sent,omitempty"`
	CashReceived     *float64           `json:"cash_received,omitempty"`
}

func (TwoTeamGradeRequest) gradeRequest() {}

// ThreeTeamDetails holds the twelve named exchange buckets, one "sends" and
// one "receives" array for every ordered pair among the three roles. For any
// directed pair the two arrays carry the same formatted strings; the builder
// fills both from the same flow in the same step.
type ThreeTeamDetails struct {
	HomeSendsToPartner1      []string `json:"home_sends_to_partner1"`
	Partner1ReceivesFromHome []string `json:"partner1_receives_from_home"`

	HomeSendsToPartner2      []string `json:"home_sends_to_partner2"`
	Partner2ReceivesFromHome []string `json:"partner2_receives_from_home"`

	Partner1SendsToHome      []string `json:"partner1_sends_to_home"`
	HomeReceivesFromPartner1 []string `json:"home_receives_from_partner1"`

	Partner1SendsToPartner2      []string `json:"partner1_sends_to_partner2"`
	Partner2ReceivesFromPartner1 []string `json:"partner2_receives_from_partner1"`

	Partner2SendsToHome      []string `json:"partner2_sends_to_home"`
	HomeReceivesFromPartner2 []string `json:"home_receives_from_partner2"`

	Partner2SendsToPartner1      []string `json:"partner2_sends_to_partner1"`
	Partner1ReceivesFromPartner2 []string `json:"partner1_receives_from_partner2"`
}

// ThreeTeamGradeRequest is the three-party wire shape.
type ThreeTeamGradeRequest struct {
	HomeTeam     string           `json:"home_team"`
	PartnerTeam  string           `json:"partner_team"`
	PartnerTeam2 string           `json:"partner_team_2"`
	IsThreeTeam  bool             `json:"is_three_team"`
	Sport        Sport            `json:"sport"`
	Details      ThreeTeamDetails `json:"three_team_details"`
	SessionID    string           `json:"session_id"`
}

func (ThreeTeamGradeRequest) gradeRequest() {}

// SuggestedTrade is the grading service's counter-proposal.
type SuggestedTrade struct {
	Summary string   `json:"summary"`
	Sends   []string `json:"sends"`
	Gets    []string `json:"gets"`
}

// HistoricalComparison points at a real past trade the grader considered
// similar.
type HistoricalComparison struct {
	Season      int    `json:"season"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
}

// GradeResult is the grading service's verdict on a submitted trade.
type GradeResult struct {
	Grade     string `json:"grade"`
	Reasoning string `json:"reasoning"`
	Danger    bool   `json:"danger"`

	CapDetail       map[string]float64     `json:"cap_detail,omitempty"`
	DraftDetail     map[string]string      `json:"draft_detail,omitempty"`
	ValuationDetail map[string]float64     `json:"valuation_detail,omitempty"`
	SuggestedTrade  *SuggestedTrade        `json:"suggested_trade,omitempty"`
	Comparisons     []HistoricalComparison `json:"historical_comparisons,omitempty"`
}
