package entitlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nurseNav/business/tier"
	"nurseNav/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStateRepo mimics the postgres repository: all conditional operations
// run under one lock, matching the row-lock serialization of the real thing.
type memStateRepo struct {
	mu        sync.Mutex
	states    map[uint]*domain.EntitlementState
	views     map[uint]map[uint64]bool
	saves     map[uint]map[uint64]bool
	failWrite bool
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{
		states: map[uint]*domain.EntitlementState{},
		views:  map[uint]map[uint64]bool{},
		saves:  map[uint]map[uint64]bool{},
	}
}

func (m *memStateRepo) ensureLocked(userID uint, tierHint string) *domain.EntitlementState {
	s, ok := m.states[userID]
	if !ok {
		s = &domain.EntitlementState{UserID: userID, Tier: domain.TierFree, UnlockFlags: map[string]any{}}
		m.states[userID] = s
	}
	if tierHint != "" {
		s.Tier = tierHint
	}
	return s
}

func (m *memStateRepo) EnsureState(_ context.Context, userID uint, tierHint string) (domain.EntitlementState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.ensureLocked(userID, tierHint), nil
}

func (m *memStateRepo) GetState(_ context.Context, userID uint) (domain.EntitlementState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[userID]
	if !ok {
		return domain.EntitlementState{}, false, nil
	}
	return *s, true, nil
}

func (m *memStateRepo) CountViews(_ context.Context, userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views[userID]), nil
}

func (m *memStateRepo) ListViews(_ context.Context, userID uint) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint64, 0, len(m.views[userID]))
	for id := range m.views[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (m *memStateRepo) HasViewed(_ context.Context, userID uint, jobID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.views[userID][jobID], nil
}

func (m *memStateRepo) InsertViewIfUnder(_ context.Context, userID uint, jobID uint64, limit int) (ViewInsert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ViewInsert{}, errors.New("storage unavailable")
	}
	m.ensureLocked(userID, "")
	if m.views[userID] == nil {
		m.views[userID] = map[uint64]bool{}
	}
	if m.views[userID][jobID] {
		return ViewInsert{AlreadyViewed: true, Used: len(m.views[userID])}, nil
	}
	if limit != domain.Unlimited && len(m.views[userID]) >= limit {
		return ViewInsert{Used: len(m.views[userID])}, nil
	}
	m.views[userID][jobID] = true
	return ViewInsert{Inserted: true, Used: len(m.views[userID])}, nil
}

func (m *memStateRepo) SaveJobIfUnder(_ context.Context, userID uint, jobID uint64, limit int) (SaveInsert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return SaveInsert{}, errors.New("storage unavailable")
	}
	s := m.ensureLocked(userID, "")
	if m.saves[userID] == nil {
		m.saves[userID] = map[uint64]bool{}
	}
	if m.saves[userID][jobID] {
		return SaveInsert{AlreadySaved: true, Used: s.SavedJobCount}, nil
	}
	if limit != domain.Unlimited && s.SavedJobCount >= limit {
		return SaveInsert{Used: s.SavedJobCount}, nil
	}
	m.saves[userID][jobID] = true
	s.SavedJobCount++
	return SaveInsert{Inserted: true, Used: s.SavedJobCount}, nil
}

func (m *memStateRepo) DeleteSave(_ context.Context, userID uint, jobID uint64) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.ensureLocked(userID, "")
	if !m.saves[userID][jobID] {
		return false, s.SavedJobCount, nil
	}
	delete(m.saves[userID], jobID)
	if s.SavedJobCount > 0 {
		s.SavedJobCount--
	}
	return true, s.SavedJobCount, nil
}

func (m *memStateRepo) IncrementPreferenceChangeIfUnder(_ context.Context, userID uint, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.ensureLocked(userID, "")
	if !domain.Allows(limit, s.PreferenceChangeCount) {
		return false, nil
	}
	s.PreferenceChangeCount++
	return true, nil
}

func (m *memStateRepo) SetUnlockFlag(_ context.Context, userID uint, flag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.ensureLocked(userID, "")
	if s.UnlockFlags == nil {
		s.UnlockFlags = map[string]any{}
	}
	s.UnlockFlags[flag] = true
	return nil
}

// memChatRepo keys counters by UTC day, like the redis implementation. The
// clock is injectable so tests can cross the midnight boundary.
type memChatRepo struct {
	mu    sync.Mutex
	used  map[string]int
	now   func() time.Time
	keyOf func(userID uint, now time.Time) string
}

func newMemChatRepo() *memChatRepo {
	r := &memChatRepo{used: map[string]int{}, now: time.Now}
	r.keyOf = func(userID uint, now time.Time) string {
		return now.UTC().Format("2006-01-02")
	}
	return r
}

func (m *memChatRepo) ConsumeIfUnder(_ context.Context, userID uint, limit int) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.keyOf(userID, m.now())
	next := m.used[key] + 1
	m.used[key] = next
	if limit != domain.Unlimited && next > limit {
		return false, next, nil
	}
	return true, next, nil
}

func (m *memChatRepo) UsedToday(_ context.Context, userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used[m.keyOf(userID, m.now())], nil
}

type staticTierProvider struct {
	tier string
	err  error
}

func (p staticTierProvider) CurrentTier(_ context.Context, _ uint) (string, error) {
	return p.tier, p.err
}

func newTestLedger(t string) (*Ledger, *memStateRepo, *memChatRepo) {
	states := newMemStateRepo()
	chats := newMemChatRepo()
	l := NewLedger(states, chats, tier.NewResolver(nil), staticTierProvider{tier: t})
	return l, states, chats
}

func TestRecordViewIdempotent(t *testing.T) {
	l, states, _ := newTestLedger(domain.TierFree)
	ctx := context.Background()

	first, err := l.RecordView(ctx, 1, 101)
	require.NoError(t, err)
	assert.True(t, first.Granted)
	assert.Equal(t, 2, first.Remaining)

	second, err := l.RecordView(ctx, 1, 101)
	require.NoError(t, err)
	assert.True(t, second.Granted)
	assert.Equal(t, 2, second.Remaining)

	used, err := states.CountViews(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func TestRecordViewExhaustionKeepsViewedJobsExempt(t *testing.T) {
	l, _, _ := newTestLedger(domain.TierFree)
	ctx := context.Background()

	for _, jobID := range []uint64{101, 102, 103} {
		d, err := l.RecordView(ctx, 1, jobID)
		require.NoError(t, err)
		assert.True(t, d.Granted, "job %d", jobID)
	}

	denied, err := l.RecordView(ctx, 1, 104)
	require.NoError(t, err)
	assert.False(t, denied.Granted)
	assert.Equal(t, 0, denied.Remaining)

	ok, err := l.CanViewJob(ctx, 1, 104)
	require.NoError(t, err)
	assert.False(t, ok)

	// already viewed items never re-charge
	ok, err = l.CanViewJob(ctx, 1, 101)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordViewConcurrentLastSlotSingleWinner(t *testing.T) {
	l, _, _ := newTestLedger(domain.TierFree)
	ctx := context.Background()

	for _, jobID := range []uint64{101, 102} {
		_, err := l.RecordView(ctx, 1, jobID)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make([]Decision, 2)
	for i, jobID := range []uint64{103, 104} {
		wg.Add(1)
		go func(i int, jobID uint64) {
			defer wg.Done()
			d, err := l.RecordView(ctx, 1, jobID)
			require.NoError(t, err)
			results[i] = d
		}(i, jobID)
	}
	wg.Wait()

	granted := 0
	for _, d := range results {
		if d.Granted {
			granted++
		}
	}
	assert.Equal(t, 1, granted, "exactly one concurrent writer may take the last slot")
}

func TestUnlimitedTierNeverDenied(t *testing.T) {
	l, _, _ := newTestLedger(domain.TierPremium)
	ctx := context.Background()

	for jobID := uint64(1); jobID <= 50; jobID++ {
		d, err := l.RecordView(ctx, 7, jobID)
		require.NoError(t, err)
		assert.True(t, d.Granted)
		assert.Equal(t, domain.Unlimited, d.Remaining)
	}
}

func TestUnknownTierFailsClosedToFreeLimits(t *testing.T) {
	l, _, _ := newTestLedger("super-secret-tier")
	ctx := context.Background()

	for _, jobID := range []uint64{1, 2, 3} {
		d, err := l.RecordView(ctx, 9, jobID)
		require.NoError(t, err)
		assert.True(t, d.Granted)
	}

	d, err := l.RecordView(ctx, 9, 4)
	require.NoError(t, err)
	assert.False(t, d.Granted)
}

func TestSaveSlotsFreeOnUnsave(t *testing.T) {
	l, _, _ := newTestLedger(domain.TierFree)
	ctx := context.Background()

	d, err := l.RecordSave(ctx, 1, 101)
	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, 0, d.Remaining)

	// free tier allows one save
	d, err = l.RecordSave(ctx, 1, 102)
	require.NoError(t, err)
	assert.False(t, d.Granted)

	// saving the same job again is a no-op grant
	d, err = l.RecordSave(ctx, 1, 101)
	require.NoError(t, err)
	assert.True(t, d.Granted)

	d, err = l.RecordUnsave(ctx, 1, 101)
	require.NoError(t, err)
	assert.True(t, d.Granted)
	assert.Equal(t, 1, d.Remaining)

	d, err = l.RecordSave(ctx, 1, 102)
	require.NoError(t, err)
	assert.True(t, d.Granted)
}

func TestConsumeChatDailyReset(t *testing.T) {
	l, _, chats := newTestLedger(domain.TierFree)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)
	chats.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		d, err := l.ConsumeChatQuestion(ctx, 1)
		require.NoError(t, err)
		assert.True(t, d.Granted)
	}

	d, err := l.ConsumeChatQuestion(ctx, 1)
	require.NoError(t, err)
	assert.False(t, d.Granted)
	assert.Equal(t, 0, d.Remaining)

	// cross midnight UTC: quota resets, lifetime counters untouched
	now = now.Add(20 * time.Minute)

	d, err = l.ConsumeChatQuestion(ctx, 1)
	require.NoError(t, err)
	assert.True(t, d.Granted)

	usage, err := l.Usage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.ViewedJobs)
	assert.Equal(t, 0, usage.PreferenceChanges)
}

func TestPreferenceChangeLifetimeCounter(t *testing.T) {
	l, _, _ := newTestLedger(domain.TierStarter)
	ctx := context.Background()

	ok, err := l.CanChangePreferences(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	for i := 0; i < 3; i++ {
		d, err := l.RecordPreferenceChange(ctx, 1)
		require.NoError(t, err)
		assert.True(t, d.Granted)
	}

	d, err := l.RecordPreferenceChange(ctx, 1)
	require.NoError(t, err)
	assert.False(t, d.Granted)

	// free tier has zero preference changes
	lFree, _, _ := newTestLedger(domain.TierFree)
	ok, err = lFree.CanChangePreferences(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordViewWriteFailurePropagates(t *testing.T) {
	l, states, _ := newTestLedger(domain.TierFree)
	states.failWrite = true

	_, err := l.RecordView(context.Background(), 1, 101)
	assert.Error(t, err)
}

func TestTierProviderFailureUsesStoredTier(t *testing.T) {
	states := newMemStateRepo()
	_, err := states.EnsureState(context.Background(), 1, domain.TierPro)
	require.NoError(t, err)

	l := NewLedger(states, newMemChatRepo(), tier.NewResolver(nil), staticTierProvider{err: errors.New("billing down")})

	usage, err := l.Usage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, usage.Tier)
	assert.Equal(t, 100, usage.JobViewLimit)
}
