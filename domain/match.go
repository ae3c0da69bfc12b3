package domain

// PersonalizedScore is derived on demand and never persisted. Breakdown is a
// per-index diagnostic scaled around the neutral weight of 3; it is
// deliberately not a partition of Score.
type PersonalizedScore struct {
	Score     int            `json:"score"`
	Grade     string         `json:"grade"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
}

const (
	VisibilityFull            = "full"
	VisibilityTeaser          = "teaser"
	VisibilityUpgradeRequired = "upgrade_required"
)

// MatchResult is one ranked candidate. Every candidate the orchestrator sees
// produces exactly one result; quota exhaustion shows up as the visibility
// state, never as a dropped or errored item.
type MatchResult struct {
	JobID         uint64            `json:"job_id"`
	Title         string            `json:"title"`
	Specialty     string            `json:"specialty,omitempty"`
	Shift         string            `json:"shift,omitempty"`
	City          string            `json:"city,omitempty"`
	PayFloor      float64           `json:"pay_floor,omitempty"`
	PayCeiling    float64           `json:"pay_ceiling,omitempty"`
	FacilityID    string            `json:"facility_id,omitempty"`
	FacilityName  string            `json:"facility_name,omitempty"`
	FacilityScore int               `json:"facility_score"`
	FacilityGrade string            `json:"facility_grade"`
	Match         PersonalizedScore `json:"match"`
	Visibility    string            `json:"visibility"`
}
