package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TierFree           = "free"
	TierFacilitiesOnly = "facilities_only"
	TierStarter        = "starter"
	TierPro            = "pro"
	TierPremium        = "premium"
	TierHRAdmin        = "hr_admin"
)

// UnlockFlagNoFilter enables the unfiltered chat persona, independent of tier.
const UnlockFlagNoFilter = "no_filter"

// EntitlementState holds a user's lifetime consumption counters. Created
// lazily on first use; counters only grow except saved_job_count, which
// unsaving frees. The daily chat counter lives in Redis, not here.
type EntitlementState struct {
	UserID                uint              `gorm:"column:user_id;primaryKey" json:"user_id"`
	Tier                  string            `gorm:"column:tier;not null;default:free" json:"tier"`
	SavedJobCount         int               `gorm:"column:saved_job_count;not null;default:0" json:"saved_job_count"`
	PreferenceChangeCount int               `gorm:"column:preference_change_count;not null;default:0" json:"preference_change_count"`
	UnlockFlags           datatypes.JSONMap `gorm:"column:unlock_flags;type:jsonb" json:"unlock_flags"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (EntitlementState) TableName() string {
	return "entitlement_states"
}

// HasUnlock reports whether a durable unlock flag is set.
func (s *EntitlementState) HasUnlock(flag string) bool {
	if s.UnlockFlags == nil {
		return false
	}
	v, ok := s.UnlockFlags[flag]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// JobView is one row of the append-only viewed-jobs set. The unique
// (user_id, job_id) index is what makes RecordView idempotent and race-safe.
type JobView struct {
	ID       string    `gorm:"column:id;primaryKey" json:"id"`
	UserID   uint      `gorm:"column:user_id;not null;uniqueIndex:ux_job_views_user_job" json:"user_id"`
	JobID    uint64    `gorm:"column:job_id;not null;uniqueIndex:ux_job_views_user_job" json:"job_id"`
	ViewedAt time.Time `gorm:"column:viewed_at;not null" json:"viewed_at"`
}

func (JobView) TableName() string {
	return "job_views"
}

// SavedJob is a user's bookmark. Unsaving deletes the row and frees a slot.
type SavedJob struct {
	UserID  uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	JobID   uint64    `gorm:"column:job_id;primaryKey" json:"job_id"`
	SavedAt time.Time `gorm:"column:saved_at;not null" json:"saved_at"`
}

func (SavedJob) TableName() string {
	return "saved_jobs"
}

// UsageSummary is the display-cache payload clients may show; the server
// remains the enforcement source of truth.
type UsageSummary struct {
	Tier                  string         `json:"tier"`
	ViewedJobs            int            `json:"viewed_jobs"`
	JobViewLimit          int            `json:"job_view_limit"`
	SavedJobs             int            `json:"saved_jobs"`
	SavedJobLimit         int            `json:"saved_job_limit"`
	ChatUsedToday         int            `json:"chat_used_today"`
	DailyChatLimit        int            `json:"daily_chat_limit"`
	PreferenceChanges     int            `json:"preference_changes"`
	PreferenceChangeLimit int            `json:"preference_change_limit"`
	UnlockFlags           map[string]any `json:"unlock_flags,omitempty"`
}
