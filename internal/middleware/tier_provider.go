package middleware

import (
	"context"
	"errors"

	"nurseNav/business/entitlement"
)

type tierContextKey struct{}

// ContextWithTier stashes the caller's subscription tier on the context so
// it survives the hop from the echo context into service-layer calls.
func ContextWithTier(ctx context.Context, tier string) context.Context {
	return context.WithValue(ctx, tierContextKey{}, tier)
}

// TierFromContext reads the tier AuthMiddleware stored on the request
// context; ok is false outside an authenticated request.
func TierFromContext(ctx context.Context) (string, bool) {
	tier, ok := ctx.Value(tierContextKey{}).(string)
	return tier, ok
}

// ClaimsTierProvider reports the caller's current tier from the signed JWT
// claim. The token is minted by the billing side at login, so the claim is
// the freshest tier available per request; the ledger syncs it onto the
// stored entitlement state and falls back to that stored tier whenever no
// claim is on the context.
type ClaimsTierProvider struct{}

var _ entitlement.TierProvider = ClaimsTierProvider{}

func (ClaimsTierProvider) CurrentTier(ctx context.Context, _ uint) (string, error) {
	tier, ok := TierFromContext(ctx)
	if !ok || tier == "" {
		return "", errors.New("no tier claim on request context")
	}
	return tier, nil
}
