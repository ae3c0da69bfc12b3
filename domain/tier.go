package domain

import "time"

// Unlimited is the sentinel limit meaning "no cap".
const Unlimited = -1

// TierPolicy is the capability/quota table for one subscription tier.
type TierPolicy struct {
	JobViewLimit          int  `json:"job_view_limit"`
	SavedJobLimit         int  `json:"saved_job_limit"`
	DailyChatLimit        int  `json:"daily_chat_limit"`
	PreferenceChangeLimit int  `json:"preference_change_limit"`
	CanSeeIndices         bool `json:"can_see_indices"`
	CanUseAdvancedMoods   bool `json:"can_use_advanced_moods"`
}

// Allows reports whether used consumptions are still under a limit,
// honoring the Unlimited sentinel.
func Allows(limit, used int) bool {
	return limit == Unlimited || used < limit
}

// TierPolicyRecord is the versioned DB override for a tier's policy. The
// table deploys independently of user data; resolution falls back to the
// in-code defaults when a tier has no row.
type TierPolicyRecord struct {
	Tier                  string `gorm:"column:tier;primaryKey" json:"tier"`
	Version               int    `gorm:"column:version;not null;default:1" json:"version"`
	JobViewLimit          int    `gorm:"column:job_view_limit;not null" json:"job_view_limit"`
	SavedJobLimit         int    `gorm:"column:saved_job_limit;not null" json:"saved_job_limit"`
	DailyChatLimit        int    `gorm:"column:daily_chat_limit;not null" json:"daily_chat_limit"`
	PreferenceChangeLimit int    `gorm:"column:preference_change_limit;not null" json:"preference_change_limit"`
	CanSeeIndices         bool   `gorm:"column:can_see_indices;not null;default:false" json:"can_see_indices"`
	CanUseAdvancedMoods   bool   `gorm:"column:can_use_advanced_moods;not null;default:false" json:"can_use_advanced_moods"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (TierPolicyRecord) TableName() string {
	return "tier_policies"
}

// Policy converts a DB record into the runtime policy table.
func (r TierPolicyRecord) Policy() TierPolicy {
	return TierPolicy{
		JobViewLimit:          r.JobViewLimit,
		SavedJobLimit:         r.SavedJobLimit,
		DailyChatLimit:        r.DailyChatLimit,
		PreferenceChangeLimit: r.PreferenceChangeLimit,
		CanSeeIndices:         r.CanSeeIndices,
		CanUseAdvancedMoods:   r.CanUseAdvancedMoods,
	}
}
