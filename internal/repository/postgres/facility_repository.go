package postgres

import (
	"context"

	"nurseNav/domain"

	"gorm.io/gorm"
)

type FacilityRepository struct {
	DB *gorm.DB
}

func NewFacilityRepository(db *gorm.DB) *FacilityRepository {
	return &FacilityRepository{DB: db}
}

func (r *FacilityRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.FacilityScoreVector, error) {
	if len(ids) == 0 {
		return map[string]*domain.FacilityScoreVector{}, nil
	}

	var vectors []domain.FacilityScoreVector
	err := r.DB.WithContext(ctx).
		Where("facility_id IN ?", ids).
		Find(&vectors).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]*domain.FacilityScoreVector, len(vectors))
	for i := range vectors {
		out[vectors[i].FacilityID] = &vectors[i]
	}

	return out, nil
}
