package postgres

import (
	"context"
	"errors"

	"nurseNav/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

func (r *PreferenceRepository) GetPreference(ctx context.Context, userID uint) (domain.UserPreference, bool, error) {
	var pref domain.UserPreference

	err := r.DB.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserPreference{}, false, nil
	}
	if err != nil {
		return domain.UserPreference{}, false, err
	}

	return pref, true, nil
}

func (r *PreferenceRepository) UpsertPreference(ctx context.Context, pref domain.UserPreference) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"weights", "updated_at"}),
		}).
		Create(&pref).Error
}
