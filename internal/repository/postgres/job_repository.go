package postgres

import (
	"context"

	"nurseNav/domain"

	"gorm.io/gorm"
)

type JobRepository struct {
	DB *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{DB: db}
}

func (r *JobRepository) FindAll(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job

	if err := r.DB.WithContext(ctx).Find(&jobs).Error; err != nil {
		return nil, err
	}

	return jobs, nil
}
