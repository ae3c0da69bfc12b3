package matching

import (
	"context"
	"fmt"
	"sort"

	"nurseNav/business/entitlement"
	"nurseNav/business/scoring"
	"nurseNav/domain"
	"nurseNav/pkg/logger"
)

const (
	SortMatch    = "match"
	SortFacility = "facility"
	SortPay      = "pay"
)

// Options controls ranking and filtering of the candidate list.
type Options struct {
	Sort     string
	Index    string // optional sub-index predicate, e.g. "safety"
	MinIndex float64
}

// ---- Repository interfaces ----

type JobRepository interface {
	FindAll(ctx context.Context) ([]domain.Job, error)
}

type FacilityRepository interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.FacilityScoreVector, error)
}

type PreferenceRepository interface {
	GetPreference(ctx context.Context, userID uint) (domain.UserPreference, bool, error)
}

// EntitlementLedger is the admission collaborator; the orchestrator only
// reads from it, never charges quota.
type EntitlementLedger interface {
	ViewSnapshot(ctx context.Context, userID uint) (entitlement.ViewSnapshot, error)
}

// ---- Usecase / Service ----

type Orchestrator struct {
	jobRepo      JobRepository
	facilityRepo FacilityRepository
	prefRepo     PreferenceRepository
	ledger       EntitlementLedger
}

func NewOrchestrator(
	jobRepo JobRepository,
	facilityRepo FacilityRepository,
	prefRepo PreferenceRepository,
	ledger EntitlementLedger,
) *Orchestrator {
	return &Orchestrator{
		jobRepo:      jobRepo,
		facilityRepo: facilityRepo,
		prefRepo:     prefRepo,
		ledger:       ledger,
	}
}

// MatchedResults scores, sorts, filters and visibility-annotates the job
// catalog for one user. Every surviving candidate yields exactly one result
// with an explicit visibility state; exhausted quota becomes
// "upgrade_required", never a missing item.
func (o *Orchestrator) MatchedResults(ctx context.Context, userID uint, opts Options) ([]domain.MatchResult, error) {
	jobs, err := o.jobRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load job catalog: %w", err)
	}

	facilityIDs := make([]string, 0, len(jobs))
	seen := map[string]bool{}
	for _, j := range jobs {
		if !seen[j.FacilityID] {
			seen[j.FacilityID] = true
			facilityIDs = append(facilityIDs, j.FacilityID)
		}
	}

	facilities, err := o.facilityRepo.FindByIDs(ctx, facilityIDs)
	if err != nil {
		// score provider outage: fall back to neutral vectors rather than
		// failing the whole page
		logger.Warn("facility scores unavailable, scoring neutrally", "error", err)
		facilities = map[string]*domain.FacilityScoreVector{}
	}

	weights := o.userWeights(ctx, userID)

	type candidate struct {
		job      domain.Job
		facility *domain.FacilityScoreVector
		match    domain.PersonalizedScore
	}

	candidates := make([]candidate, 0, len(jobs))
	for _, job := range jobs {
		facility := facilities[job.FacilityID]
		if facility == nil {
			facility = &domain.FacilityScoreVector{FacilityID: job.FacilityID}
		}

		if opts.Index != "" {
			v, ok := facility.SubIndex(opts.Index)
			if !ok || v < opts.MinIndex {
				continue
			}
		}

		candidates = append(candidates, candidate{
			job:      job,
			facility: facility,
			match:    scoring.Aggregate(facility, weights),
		})
	}

	// stable sorts keep input order on ties
	switch opts.Sort {
	case SortFacility:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].facility.OverallScore > candidates[j].facility.OverallScore
		})
	case SortPay:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].job.PayCeiling > candidates[j].job.PayCeiling
		})
	default:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].match.Score > candidates[j].match.Score
		})
	}

	snapshot, err := o.ledger.ViewSnapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlement snapshot: %w", err)
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		visibility := domain.VisibilityTeaser
		switch {
		case snapshot.Viewed[c.job.ID]:
			// includes over-limit states: already granted views are never
			// retroactively revoked
			visibility = domain.VisibilityFull
		case snapshot.Remaining == domain.Unlimited || snapshot.Remaining > 0:
			visibility = domain.VisibilityTeaser
		default:
			visibility = domain.VisibilityUpgradeRequired
		}

		results = append(results, buildResult(c.job, c.facility, c.match, visibility, snapshot.Policy))
	}

	return results, nil
}

// userWeights loads the user's priority vector; provider failure or a user
// who never onboarded reads as uniform default weights.
func (o *Orchestrator) userWeights(ctx context.Context, userID uint) domain.PriorityVector {
	pref, ok, err := o.prefRepo.GetPreference(ctx, userID)
	if err != nil {
		logger.Warn("preferences unavailable, using defaults", "user_id", userID, "error", err)
		return domain.PriorityVector{}
	}
	if !ok {
		return domain.PriorityVector{}
	}
	return pref.Vector()
}

// buildResult redacts by visibility: teasers and paywalled items hide the
// facility identity and pay numbers, and the per-index breakdown only ships
// to tiers allowed to see indices on fully visible items.
func buildResult(
	job domain.Job,
	facility *domain.FacilityScoreVector,
	match domain.PersonalizedScore,
	visibility string,
	policy domain.TierPolicy,
) domain.MatchResult {
	r := domain.MatchResult{
		JobID:         job.ID,
		Title:         job.Title,
		Shift:         job.Shift,
		City:          job.City,
		FacilityScore: int(facility.OverallScore),
		FacilityGrade: facility.OverallGrade,
		Match: domain.PersonalizedScore{
			Score: match.Score,
			Grade: match.Grade,
		},
		Visibility: visibility,
	}

	if visibility == domain.VisibilityFull {
		r.Specialty = job.Specialty
		r.PayFloor = job.PayFloor
		r.PayCeiling = job.PayCeiling
		r.FacilityID = facility.FacilityID
		r.FacilityName = facility.FacilityName
		if policy.CanSeeIndices {
			r.Match.Breakdown = match.Breakdown
		}
	}

	return r
}
