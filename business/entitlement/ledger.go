package entitlement

import (
	"context"
	"fmt"

	"nurseNav/business/tier"
	"nurseNav/domain"
	"nurseNav/pkg/logger"
	"nurseNav/pkg/metrics"
)

// ViewInsert is the outcome of an atomic conditional view insert.
type ViewInsert struct {
	Inserted      bool
	AlreadyViewed bool
	Used          int
}

// SaveInsert is the outcome of an atomic conditional save.
type SaveInsert struct {
	Inserted     bool
	AlreadySaved bool
	Used         int
}

// StateRepository persists lifetime entitlement state. The conditional
// operations must be atomic with respect to all writers for the same user;
// the postgres implementation serializes on the user's state row.
type StateRepository interface {
	EnsureState(ctx context.Context, userID uint, tier string) (domain.EntitlementState, error)
	GetState(ctx context.Context, userID uint) (domain.EntitlementState, bool, error)
	CountViews(ctx context.Context, userID uint) (int, error)
	ListViews(ctx context.Context, userID uint) ([]uint64, error)
	HasViewed(ctx context.Context, userID uint, jobID uint64) (bool, error)
	InsertViewIfUnder(ctx context.Context, userID uint, jobID uint64, limit int) (ViewInsert, error)
	SaveJobIfUnder(ctx context.Context, userID uint, jobID uint64, limit int) (SaveInsert, error)
	DeleteSave(ctx context.Context, userID uint, jobID uint64) (removed bool, used int, err error)
	IncrementPreferenceChangeIfUnder(ctx context.Context, userID uint, limit int) (bool, error)
	SetUnlockFlag(ctx context.Context, userID uint, flag string) error
}

// ChatQuotaRepository tracks the daily chat counter. ConsumeIfUnder must be
// an atomic check-and-increment; the counter resets at midnight UTC.
type ChatQuotaRepository interface {
	ConsumeIfUnder(ctx context.Context, userID uint, limit int) (allowed bool, used int, err error)
	UsedToday(ctx context.Context, userID uint) (int, error)
}

// TierProvider is the billing collaborator reporting a user's current tier.
type TierProvider interface {
	CurrentTier(ctx context.Context, userID uint) (string, error)
}

// Decision is an admission result plus the remaining quota after it.
// Remaining is -1 for unlimited tiers.
type Decision struct {
	Granted   bool `json:"granted"`
	Remaining int  `json:"remaining"`
}

type Ledger struct {
	stateRepo    StateRepository
	chatRepo     ChatQuotaRepository
	resolver     *tier.Resolver
	tierProvider TierProvider
}

func NewLedger(
	stateRepo StateRepository,
	chatRepo ChatQuotaRepository,
	resolver *tier.Resolver,
	tierProvider TierProvider,
) *Ledger {
	return &Ledger{
		stateRepo:    stateRepo,
		chatRepo:     chatRepo,
		resolver:     resolver,
		tierProvider: tierProvider,
	}
}

// policyFor resolves the caller's effective policy. The billing provider
// wins when reachable; otherwise the stored tier applies, and unknown or
// missing state resolves fail-closed through the resolver.
func (l *Ledger) policyFor(ctx context.Context, userID uint) (domain.EntitlementState, domain.TierPolicy, error) {
	tierHint := ""
	if l.tierProvider != nil {
		if t, err := l.tierProvider.CurrentTier(ctx, userID); err == nil {
			tierHint = t
		} else {
			logger.Warn("tier provider unavailable, using stored tier", "user_id", userID, "error", err)
		}
	}

	state, err := l.stateRepo.EnsureState(ctx, userID, tierHint)
	if err != nil {
		return domain.EntitlementState{}, domain.TierPolicy{}, fmt.Errorf("failed to load entitlement state: %w", err)
	}

	return state, l.resolver.Resolve(ctx, state.Tier), nil
}

// CanViewJob reports whether the user may open a job's full detail. Already
// viewed jobs are always exempt: re-viewing never costs quota.
func (l *Ledger) CanViewJob(ctx context.Context, userID uint, jobID uint64) (bool, error) {
	viewed, err := l.stateRepo.HasViewed(ctx, userID, jobID)
	if err != nil {
		// fail open on read: unknown state counts as zero used
		logger.Warn("view lookup failed, treating as not viewed", "user_id", userID, "error", err)
	}
	if viewed {
		return true, nil
	}

	_, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return false, err
	}
	if policy.JobViewLimit == domain.Unlimited {
		return true, nil
	}

	used, err := l.stateRepo.CountViews(ctx, userID)
	if err != nil {
		logger.Warn("view count failed, treating as zero used", "user_id", userID, "error", err)
		used = 0
	}

	return used < policy.JobViewLimit, nil
}

// RecordView charges one view slot. Idempotent per job: re-recording a
// previously viewed job is a granted no-op. Write failures propagate; an
// outage must never grant unmetered access.
func (l *Ledger) RecordView(ctx context.Context, userID uint, jobID uint64) (Decision, error) {
	_, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	res, err := l.stateRepo.InsertViewIfUnder(ctx, userID, jobID, policy.JobViewLimit)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to record view: %w", err)
	}

	granted := res.Inserted || res.AlreadyViewed
	observe("record_view", granted)

	return Decision{
		Granted:   granted,
		Remaining: remaining(policy.JobViewLimit, res.Used),
	}, nil
}

// CanSaveJob checks the saved-jobs slot count. Unlike views, saves are not a
// lifetime set: unsaving frees a slot.
func (l *Ledger) CanSaveJob(ctx context.Context, userID uint) (bool, error) {
	state, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return false, err
	}

	return domain.Allows(policy.SavedJobLimit, state.SavedJobCount), nil
}

// RecordSave occupies a save slot; saving an already saved job is a granted
// no-op.
func (l *Ledger) RecordSave(ctx context.Context, userID uint, jobID uint64) (Decision, error) {
	_, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	res, err := l.stateRepo.SaveJobIfUnder(ctx, userID, jobID, policy.SavedJobLimit)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to record save: %w", err)
	}

	granted := res.Inserted || res.AlreadySaved
	observe("record_save", granted)

	return Decision{
		Granted:   granted,
		Remaining: remaining(policy.SavedJobLimit, res.Used),
	}, nil
}

// RecordUnsave releases a save slot. Removing a job that was never saved is
// a granted no-op.
func (l *Ledger) RecordUnsave(ctx context.Context, userID uint, jobID uint64) (Decision, error) {
	_, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	_, used, err := l.stateRepo.DeleteSave(ctx, userID, jobID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to remove save: %w", err)
	}

	observe("record_unsave", true)

	return Decision{
		Granted:   true,
		Remaining: remaining(policy.SavedJobLimit, used),
	}, nil
}

// ConsumeChatQuestion charges one question against the daily counter, which
// resets at midnight UTC. Lifetime counters are untouched.
func (l *Ledger) ConsumeChatQuestion(ctx context.Context, userID uint) (Decision, error) {
	_, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	allowed, used, err := l.chatRepo.ConsumeIfUnder(ctx, userID, policy.DailyChatLimit)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to consume chat quota: %w", err)
	}

	observe("consume_chat", allowed)

	return Decision{
		Granted:   allowed,
		Remaining: remaining(policy.DailyChatLimit, used),
	}, nil
}

// CanChangePreferences checks the lifetime preference-change counter.
func (l *Ledger) CanChangePreferences(ctx context.Context, userID uint) (bool, error) {
	state, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return false, err
	}

	return domain.Allows(policy.PreferenceChangeLimit, state.PreferenceChangeCount), nil
}

// RecordPreferenceChange charges one lifetime preference change.
func (l *Ledger) RecordPreferenceChange(ctx context.Context, userID uint) (Decision, error) {
	_, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	granted, err := l.stateRepo.IncrementPreferenceChangeIfUnder(ctx, userID, policy.PreferenceChangeLimit)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to record preference change: %w", err)
	}

	observe("preference_change", granted)

	state, ok, err := l.stateRepo.GetState(ctx, userID)
	used := 0
	if err == nil && ok {
		used = state.PreferenceChangeCount
	}

	return Decision{
		Granted:   granted,
		Remaining: remaining(policy.PreferenceChangeLimit, used),
	}, nil
}

// Usage summarizes current consumption for client display. Read failures
// degrade to zero used rather than erroring: the summary is a hint, the
// admission checks above stay authoritative.
func (l *Ledger) Usage(ctx context.Context, userID uint) (domain.UsageSummary, error) {
	state, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		return domain.UsageSummary{}, err
	}

	views, err := l.stateRepo.CountViews(ctx, userID)
	if err != nil {
		logger.Warn("view count failed for usage summary", "user_id", userID, "error", err)
		views = 0
	}

	chatUsed := 0
	if l.chatRepo != nil {
		if used, err := l.chatRepo.UsedToday(ctx, userID); err == nil {
			chatUsed = used
		}
	}

	return domain.UsageSummary{
		Tier:                  state.Tier,
		ViewedJobs:            views,
		JobViewLimit:          policy.JobViewLimit,
		SavedJobs:             state.SavedJobCount,
		SavedJobLimit:         policy.SavedJobLimit,
		ChatUsedToday:         chatUsed,
		DailyChatLimit:        policy.DailyChatLimit,
		PreferenceChanges:     state.PreferenceChangeCount,
		PreferenceChangeLimit: policy.PreferenceChangeLimit,
		UnlockFlags:           state.UnlockFlags,
	}, nil
}

// ViewSnapshot is a stale-tolerant read of the viewed set and remaining view
// quota, used to annotate result lists. Display only: the authoritative
// admission decision happens inside RecordView's conditional insert.
type ViewSnapshot struct {
	Viewed    map[uint64]bool
	Remaining int
	Policy    domain.TierPolicy
}

func (l *Ledger) ViewSnapshot(ctx context.Context, userID uint) (ViewSnapshot, error) {
	_, policy, err := l.policyFor(ctx, userID)
	if err != nil {
		// ledger storage down: read as zero used, limits fail closed via the
		// resolver default
		logger.Warn("entitlement state unavailable for snapshot", "user_id", userID, "error", err)
		policy = l.resolver.Resolve(ctx, domain.TierFree)
	}

	viewed := map[uint64]bool{}
	jobIDs, err := l.stateRepo.ListViews(ctx, userID)
	if err != nil {
		logger.Warn("view list failed, treating as empty", "user_id", userID, "error", err)
	} else {
		for _, id := range jobIDs {
			viewed[id] = true
		}
	}

	return ViewSnapshot{
		Viewed:    viewed,
		Remaining: remaining(policy.JobViewLimit, len(viewed)),
		Policy:    policy,
	}, nil
}

func remaining(limit, used int) int {
	if limit == domain.Unlimited {
		return domain.Unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

func observe(operation string, granted bool) {
	outcome := "denied"
	if granted {
		outcome = "granted"
	}
	metrics.AdmissionDecisions.WithLabelValues(operation, outcome).Inc()
}
