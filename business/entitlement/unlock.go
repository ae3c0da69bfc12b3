package entitlement

import (
	"context"
	"fmt"

	"nurseNav/domain"
	"nurseNav/pkg/metrics"

	"golang.org/x/crypto/bcrypt"
)

// UnlockValidator checks feature-unlock codes. Codes are independent of the
// billing tier; a valid code sets a durable flag on the entitlement state.
// Only bcrypt hashes of the codes are configured server-side.
type UnlockValidator struct {
	stateRepo  StateRepository
	codeHashes map[string][]string
}

func NewUnlockValidator(stateRepo StateRepository, noFilterHashes []string) *UnlockValidator {
	return &UnlockValidator{
		stateRepo: stateRepo,
		codeHashes: map[string][]string{
			domain.UnlockFlagNoFilter: noFilterHashes,
		},
	}
}

// Validate compares the submitted code against every configured hash and, on
// a match, persists the corresponding unlock flag. Rejection is a plain
// false: no detail that would help enumerate valid codes.
func (v *UnlockValidator) Validate(ctx context.Context, userID uint, code string) (bool, error) {
	if code == "" {
		metrics.UnlockAttempts.WithLabelValues("denied").Inc()
		return false, nil
	}

	for flag, hashes := range v.codeHashes {
		for _, hash := range hashes {
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
				continue
			}

			if err := v.stateRepo.SetUnlockFlag(ctx, userID, flag); err != nil {
				return false, fmt.Errorf("failed to persist unlock: %w", err)
			}

			metrics.UnlockAttempts.WithLabelValues("granted").Inc()
			return true, nil
		}
	}

	metrics.UnlockAttempts.WithLabelValues("denied").Inc()
	return false, nil
}
