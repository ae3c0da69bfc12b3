package preferences

import (
	"context"
	"fmt"

	"nurseNav/business/entitlement"
	"nurseNav/domain"
	"nurseNav/pkg/logger"
)

type Repository interface {
	GetPreference(ctx context.Context, userID uint) (domain.UserPreference, bool, error)
	UpsertPreference(ctx context.Context, pref domain.UserPreference) error
}

type EntitlementLedger interface {
	CanChangePreferences(ctx context.Context, userID uint) (bool, error)
	RecordPreferenceChange(ctx context.Context, userID uint) (entitlement.Decision, error)
}

type Service struct {
	repo   Repository
	ledger EntitlementLedger
}

func NewService(repo Repository, ledger EntitlementLedger) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// Get returns the user's priority vector with every index filled in;
// unset indices read as the default weight.
func (s *Service) Get(ctx context.Context, userID uint) (domain.PriorityVector, error) {
	pref, ok, err := s.repo.GetPreference(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	vector := domain.PriorityVector{}
	if ok {
		vector = pref.Vector()
	}

	full := make(domain.PriorityVector, len(domain.SubIndexNames))
	for _, idx := range domain.SubIndexNames {
		full[idx] = vector.Weight(idx)
	}
	return full, nil
}

// Update stores new weights. The first write is onboarding and free; every
// later mutation charges the lifetime preference-change quota before
// persisting. Unknown index names and out-of-range weights are sanitized,
// not rejected.
func (s *Service) Update(ctx context.Context, userID uint, weights map[string]int) (entitlement.Decision, error) {
	sanitized := sanitize(weights)

	_, exists, err := s.repo.GetPreference(ctx, userID)
	if err != nil {
		return entitlement.Decision{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	decision := entitlement.Decision{Granted: true, Remaining: domain.Unlimited}
	if exists {
		decision, err = s.ledger.RecordPreferenceChange(ctx, userID)
		if err != nil {
			return entitlement.Decision{}, err
		}
		if !decision.Granted {
			return decision, nil
		}
	}

	stored := make(map[string]any, len(sanitized))
	for k, v := range sanitized {
		stored[k] = v
	}

	if err := s.repo.UpsertPreference(ctx, domain.UserPreference{
		UserID:  userID,
		Weights: stored,
	}); err != nil {
		return entitlement.Decision{}, fmt.Errorf("failed to store preferences: %w", err)
	}

	return decision, nil
}

func sanitize(weights map[string]int) domain.PriorityVector {
	known := make(map[string]bool, len(domain.SubIndexNames))
	for _, idx := range domain.SubIndexNames {
		known[idx] = true
	}

	out := domain.PriorityVector{}
	for idx, w := range weights {
		if !known[idx] {
			// data-quality signal only, never a user-facing failure
			logger.Warn("dropping unknown preference index", "index", idx)
			continue
		}
		if w < domain.MinPriorityWeight {
			w = domain.MinPriorityWeight
		}
		if w > domain.MaxPriorityWeight {
			w = domain.MaxPriorityWeight
		}
		out[idx] = w
	}
	return out
}
