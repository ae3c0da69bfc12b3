package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MinPriorityWeight     = 1
	MaxPriorityWeight     = 5
	DefaultPriorityWeight = 3
)

// PriorityVector maps sub-index names to an importance weight in [1,5].
// Missing entries mean the user never set that index and read as 3.
type PriorityVector map[string]int

// Weight returns the clamped weight for an index, defaulting to 3 when unset.
// Out-of-range values are clamped, never rejected.
func (p PriorityVector) Weight(index string) int {
	w, ok := p[index]
	if !ok {
		return DefaultPriorityWeight
	}
	if w < MinPriorityWeight {
		return MinPriorityWeight
	}
	if w > MaxPriorityWeight {
		return MaxPriorityWeight
	}
	return w
}

type UserPreference struct {
	UserID    uint              `gorm:"column:user_id;primaryKey" json:"user_id"`
	Weights   datatypes.JSONMap `gorm:"column:weights;type:jsonb" json:"weights"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

// Vector converts the stored JSONB map into a PriorityVector. JSON numbers
// come back as float64; anything non-numeric is skipped and reads as default.
func (u *UserPreference) Vector() PriorityVector {
	out := make(PriorityVector, len(u.Weights))
	for k, v := range u.Weights {
		switch n := v.(type) {
		case float64:
			out[k] = int(n)
		case int:
			out[k] = n
		}
	}
	return out
}
