package postgres

import (
	"context"
	"errors"

	"nurseNav/business/tier"
	"nurseNav/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TierPolicyRepository struct {
	DB *gorm.DB
}

var _ tier.PolicyRepository = (*TierPolicyRepository)(nil)

func NewTierPolicyRepository(db *gorm.DB) *TierPolicyRepository {
	return &TierPolicyRepository{DB: db}
}

func (r *TierPolicyRepository) GetPolicy(ctx context.Context, tierName string) (domain.TierPolicyRecord, bool, error) {
	var rec domain.TierPolicyRecord

	err := r.DB.WithContext(ctx).First(&rec, "tier = ?", tierName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TierPolicyRecord{}, false, nil
	}
	if err != nil {
		return domain.TierPolicyRecord{}, false, err
	}

	return rec, true, nil
}

func (r *TierPolicyRepository) UpsertPolicy(ctx context.Context, rec domain.TierPolicyRecord) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tier"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"version",
				"job_view_limit",
				"saved_job_limit",
				"daily_chat_limit",
				"preference_change_limit",
				"can_see_indices",
				"can_use_advanced_moods",
				"updated_at",
			}),
		}).
		Create(&rec).Error
}

func (r *TierPolicyRepository) ListPolicies(ctx context.Context) ([]domain.TierPolicyRecord, error) {
	var recs []domain.TierPolicyRecord

	if err := r.DB.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, err
	}

	return recs, nil
}
