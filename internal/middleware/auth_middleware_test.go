package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"nurseNav/business/entitlement"
	"nurseNav/business/tier"
	"nurseNav/domain"
	psqlRepo "nurseNav/internal/repository/postgres"
	"nurseNav/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func authedRequest(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestAuthMiddlewarePropagatesClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.GenerateJWT("42", domain.TierPremium)
	require.NoError(t, err)

	c, _ := authedRequest(t, token)

	called := false
	handler := AuthMiddleware()(func(c echo.Context) error {
		called = true
		assert.Equal(t, uint(42), c.Get("user_id"))
		assert.Equal(t, domain.TierPremium, c.Get("tier"))

		// services see the tier through the request context
		got, ok := TierFromContext(c.Request().Context())
		assert.True(t, ok)
		assert.Equal(t, domain.TierPremium, got)
		return nil
	})

	require.NoError(t, handler(c))
	assert.True(t, called)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	c, rec := authedRequest(t, "")

	handler := AuthMiddleware()(func(c echo.Context) error {
		t.Fatal("handler must not run without credentials")
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsForgedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "other-secret")
	token, err := utils.GenerateJWT("42", domain.TierPremium)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "test-secret")
	c, rec := authedRequest(t, token)

	handler := AuthMiddleware()(func(c echo.Context) error {
		t.Fatal("handler must not run with a forged token")
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimsTierProvider(t *testing.T) {
	provider := ClaimsTierProvider{}

	_, err := provider.CurrentTier(context.Background(), 1)
	assert.Error(t, err)

	ctx := ContextWithTier(context.Background(), domain.TierPro)
	got, err := provider.CurrentTier(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, got)
}

// Full wiring check: the tier claim must reach the ledger, otherwise every
// caller is metered as free no matter what they pay for.
func TestTierClaimReachesLedger(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.EntitlementState{},
		&domain.JobView{},
		&domain.SavedJob{},
	))

	stateRepo := psqlRepo.NewEntitlementRepository(db)
	ledger := entitlement.NewLedger(stateRepo, nil, tier.NewResolver(nil), ClaimsTierProvider{})

	ctx := ContextWithTier(context.Background(), domain.TierPremium)

	// well past the free limit of 3 distinct views
	for jobID := uint64(1); jobID <= 10; jobID++ {
		decision, err := ledger.RecordView(ctx, 7, jobID)
		require.NoError(t, err)
		assert.True(t, decision.Granted, "premium views must not be metered as free")
	}

	state, ok, err := stateRepo.GetState(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.TierPremium, state.Tier)
}
