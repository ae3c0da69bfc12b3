package tier

import "nurseNav/domain"

// In-code default policy table. The tier_policies table can override any of
// these per tier; missing rows fall back here.
var defaultPolicies = map[string]domain.TierPolicy{
	domain.TierFree: {
		JobViewLimit:          3,
		SavedJobLimit:         1,
		DailyChatLimit:        3,
		PreferenceChangeLimit: 0,
		CanSeeIndices:         false,
		CanUseAdvancedMoods:   false,
	},
	domain.TierFacilitiesOnly: {
		JobViewLimit:          3,
		SavedJobLimit:         1,
		DailyChatLimit:        3,
		PreferenceChangeLimit: 0,
		CanSeeIndices:         true,
		CanUseAdvancedMoods:   false,
	},
	domain.TierStarter: {
		JobViewLimit:          25,
		SavedJobLimit:         10,
		DailyChatLimit:        10,
		PreferenceChangeLimit: 3,
		CanSeeIndices:         true,
		CanUseAdvancedMoods:   false,
	},
	domain.TierPro: {
		JobViewLimit:          100,
		SavedJobLimit:         50,
		DailyChatLimit:        30,
		PreferenceChangeLimit: 10,
		CanSeeIndices:         true,
		CanUseAdvancedMoods:   true,
	},
	domain.TierPremium: {
		JobViewLimit:          domain.Unlimited,
		SavedJobLimit:         domain.Unlimited,
		DailyChatLimit:        domain.Unlimited,
		PreferenceChangeLimit: domain.Unlimited,
		CanSeeIndices:         true,
		CanUseAdvancedMoods:   true,
	},
	domain.TierHRAdmin: {
		JobViewLimit:          domain.Unlimited,
		SavedJobLimit:         domain.Unlimited,
		DailyChatLimit:        domain.Unlimited,
		PreferenceChangeLimit: domain.Unlimited,
		CanSeeIndices:         true,
		CanUseAdvancedMoods:   true,
	},
}

// KnownTier reports whether the identifier belongs to the tier table.
func KnownTier(tier string) bool {
	_, ok := defaultPolicies[tier]
	return ok
}
