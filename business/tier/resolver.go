package tier

import (
	"context"
	"fmt"

	"nurseNav/domain"
)

// PolicyRepository reads versioned per-tier overrides. The bool return is
// false when no override row exists for a tier.
type PolicyRepository interface {
	GetPolicy(ctx context.Context, tier string) (domain.TierPolicyRecord, bool, error)
	UpsertPolicy(ctx context.Context, rec domain.TierPolicyRecord) error
	ListPolicies(ctx context.Context) ([]domain.TierPolicyRecord, error)
}

type Resolver struct {
	policyRepo PolicyRepository
}

// NewResolver builds a resolver; policyRepo may be nil, in which case only
// the in-code defaults apply.
func NewResolver(policyRepo PolicyRepository) *Resolver {
	return &Resolver{policyRepo: policyRepo}
}

// Resolve maps a tier identifier to its policy. Unknown tiers resolve to the
// free policy: the fallback must always be the most restrictive table, never
// the most permissive. Repository errors also fall back rather than failing
// the caller's request.
func (r *Resolver) Resolve(ctx context.Context, tier string) domain.TierPolicy {
	if !KnownTier(tier) {
		tier = domain.TierFree
	}

	if r.policyRepo != nil {
		rec, ok, err := r.policyRepo.GetPolicy(ctx, tier)
		if err == nil && ok {
			return rec.Policy()
		}
	}

	return defaultPolicies[tier]
}

// Upsert stores a versioned policy override for a known tier.
func (r *Resolver) Upsert(ctx context.Context, rec domain.TierPolicyRecord) error {
	if r.policyRepo == nil {
		return fmt.Errorf("policy overrides are not configured")
	}
	if !KnownTier(rec.Tier) {
		return fmt.Errorf("unknown tier %q", rec.Tier)
	}
	if rec.Version <= 0 {
		rec.Version = 1
	}

	for _, limit := range []int{rec.JobViewLimit, rec.SavedJobLimit, rec.DailyChatLimit, rec.PreferenceChangeLimit} {
		if limit < domain.Unlimited {
			return fmt.Errorf("limit must be >= %d", domain.Unlimited)
		}
	}

	return r.policyRepo.UpsertPolicy(ctx, rec)
}

// List returns the effective policy for every known tier, marking which ones
// carry a DB override.
func (r *Resolver) List(ctx context.Context) (map[string]domain.TierPolicy, error) {
	out := make(map[string]domain.TierPolicy, len(defaultPolicies))
	for t, p := range defaultPolicies {
		out[t] = p
	}

	if r.policyRepo == nil {
		return out, nil
	}

	recs, err := r.policyRepo.ListPolicies(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if KnownTier(rec.Tier) {
			out[rec.Tier] = rec.Policy()
		}
	}

	return out, nil
}
