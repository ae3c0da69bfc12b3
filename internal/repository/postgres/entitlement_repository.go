package postgres

import (
	"context"
	"errors"
	"time"

	"nurseNav/business/entitlement"
	"nurseNav/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntitlementRepository struct {
	DB *gorm.DB
}

var _ entitlement.StateRepository = (*EntitlementRepository)(nil)

func NewEntitlementRepository(db *gorm.DB) *EntitlementRepository {
	return &EntitlementRepository{DB: db}
}

// lockState serializes all conditional writers for one user on the state
// row. This is the single-writer-per-user point that prevents two racing
// requests from both observing "under limit".
func lockState(tx *gorm.DB, userID uint) (domain.EntitlementState, error) {
	q := tx
	// sqlite (used in tests) has a single writer and no FOR UPDATE
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var state domain.EntitlementState
	err := q.First(&state, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = domain.EntitlementState{UserID: userID, Tier: domain.TierFree, UnlockFlags: datatypes.JSONMap{}}
		if err := tx.Create(&state).Error; err != nil {
			return domain.EntitlementState{}, err
		}
		return state, nil
	}
	if err != nil {
		return domain.EntitlementState{}, err
	}
	return state, nil
}

func (r *EntitlementRepository) EnsureState(ctx context.Context, userID uint, tierHint string) (domain.EntitlementState, error) {
	initialTier := domain.TierFree
	if tierHint != "" {
		initialTier = tierHint
	}

	state := domain.EntitlementState{
		UserID:      userID,
		Tier:        initialTier,
		UnlockFlags: datatypes.JSONMap{},
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&state).Error
	if err != nil {
		return domain.EntitlementState{}, err
	}

	var out domain.EntitlementState
	if err := r.DB.WithContext(ctx).First(&out, "user_id = ?", userID).Error; err != nil {
		return domain.EntitlementState{}, err
	}

	// the billing provider is authoritative for the tier; sync on drift
	if tierHint != "" && out.Tier != tierHint {
		err := r.DB.WithContext(ctx).
			Model(&domain.EntitlementState{}).
			Where("user_id = ?", userID).
			Update("tier", tierHint).Error
		if err != nil {
			return domain.EntitlementState{}, err
		}
		out.Tier = tierHint
	}

	return out, nil
}

func (r *EntitlementRepository) GetState(ctx context.Context, userID uint) (domain.EntitlementState, bool, error) {
	var state domain.EntitlementState

	err := r.DB.WithContext(ctx).First(&state, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.EntitlementState{}, false, nil
	}
	if err != nil {
		return domain.EntitlementState{}, false, err
	}

	return state, true, nil
}

func (r *EntitlementRepository) CountViews(ctx context.Context, userID uint) (int, error) {
	var total int64

	err := r.DB.WithContext(ctx).
		Model(&domain.JobView{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}

	return int(total), nil
}

func (r *EntitlementRepository) ListViews(ctx context.Context, userID uint) ([]uint64, error) {
	var jobIDs []uint64

	err := r.DB.WithContext(ctx).
		Model(&domain.JobView{}).
		Where("user_id = ?", userID).
		Pluck("job_id", &jobIDs).Error
	if err != nil {
		return nil, err
	}

	return jobIDs, nil
}

func (r *EntitlementRepository) HasViewed(ctx context.Context, userID uint, jobID uint64) (bool, error) {
	var total int64

	err := r.DB.WithContext(ctx).
		Model(&domain.JobView{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&total).Error
	if err != nil {
		return false, err
	}

	return total > 0, nil
}

func (r *EntitlementRepository) InsertViewIfUnder(ctx context.Context, userID uint, jobID uint64, limit int) (entitlement.ViewInsert, error) {
	var res entitlement.ViewInsert

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockState(tx, userID); err != nil {
			return err
		}

		var already int64
		if err := tx.Model(&domain.JobView{}).
			Where("user_id = ? AND job_id = ?", userID, jobID).
			Count(&already).Error; err != nil {
			return err
		}

		var total int64
		if err := tx.Model(&domain.JobView{}).
			Where("user_id = ?", userID).
			Count(&total).Error; err != nil {
			return err
		}
		res.Used = int(total)

		if already > 0 {
			res.AlreadyViewed = true
			return nil
		}

		if limit != domain.Unlimited && int(total) >= limit {
			return nil
		}

		view := domain.JobView{
			ID:       uuid.NewString(),
			UserID:   userID,
			JobID:    jobID,
			ViewedAt: time.Now().UTC(),
		}
		if err := tx.Create(&view).Error; err != nil {
			return err
		}

		res.Inserted = true
		res.Used = int(total) + 1
		return nil
	})

	return res, err
}

func (r *EntitlementRepository) SaveJobIfUnder(ctx context.Context, userID uint, jobID uint64, limit int) (entitlement.SaveInsert, error) {
	var res entitlement.SaveInsert

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := lockState(tx, userID)
		if err != nil {
			return err
		}
		res.Used = state.SavedJobCount

		var already int64
		if err := tx.Model(&domain.SavedJob{}).
			Where("user_id = ? AND job_id = ?", userID, jobID).
			Count(&already).Error; err != nil {
			return err
		}
		if already > 0 {
			res.AlreadySaved = true
			return nil
		}

		if limit != domain.Unlimited && state.SavedJobCount >= limit {
			return nil
		}

		saved := domain.SavedJob{UserID: userID, JobID: jobID, SavedAt: time.Now().UTC()}
		if err := tx.Create(&saved).Error; err != nil {
			return err
		}

		err = tx.Model(&domain.EntitlementState{}).
			Where("user_id = ?", userID).
			UpdateColumn("saved_job_count", gorm.Expr("saved_job_count + 1")).Error
		if err != nil {
			return err
		}

		res.Inserted = true
		res.Used = state.SavedJobCount + 1
		return nil
	})

	return res, err
}

func (r *EntitlementRepository) DeleteSave(ctx context.Context, userID uint, jobID uint64) (bool, int, error) {
	var (
		removed bool
		used    int
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := lockState(tx, userID)
		if err != nil {
			return err
		}
		used = state.SavedJobCount

		result := tx.Where("user_id = ? AND job_id = ?", userID, jobID).Delete(&domain.SavedJob{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		err = tx.Model(&domain.EntitlementState{}).
			Where("user_id = ? AND saved_job_count > 0", userID).
			UpdateColumn("saved_job_count", gorm.Expr("saved_job_count - 1")).Error
		if err != nil {
			return err
		}

		removed = true
		if used > 0 {
			used--
		}
		return nil
	})

	return removed, used, err
}

// IncrementPreferenceChangeIfUnder is a single conditional UPDATE: the
// check and the increment happen in one statement, so concurrent callers
// cannot both pass the limit.
func (r *EntitlementRepository) IncrementPreferenceChangeIfUnder(ctx context.Context, userID uint, limit int) (bool, error) {
	result := r.DB.WithContext(ctx).
		Model(&domain.EntitlementState{}).
		Where("user_id = ? AND (? = ? OR preference_change_count < ?)", userID, limit, domain.Unlimited, limit).
		UpdateColumn("preference_change_count", gorm.Expr("preference_change_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *EntitlementRepository) SetUnlockFlag(ctx context.Context, userID uint, flag string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := lockState(tx, userID)
		if err != nil {
			return err
		}

		if state.UnlockFlags == nil {
			state.UnlockFlags = datatypes.JSONMap{}
		}
		state.UnlockFlags[flag] = true

		return tx.Model(&domain.EntitlementState{}).
			Where("user_id = ?", userID).
			Update("unlock_flags", state.UnlockFlags).Error
	})
}
