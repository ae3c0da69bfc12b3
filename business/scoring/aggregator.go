package scoring

import (
	"math"

	"nurseNav/domain"
)

// neutral value for sub-indices a facility has no data for; missing data must
// never read as zero
const neutralSubIndexValue = 50.0

// Aggregate combines a facility's sub-index scores with the user's priority
// weights into one personalized score plus a per-index breakdown. Pure and
// deterministic: it iterates domain.SubIndexNames in order and touches no
// shared state, so it is safe to call concurrently.
func Aggregate(scores *domain.FacilityScoreVector, weights domain.PriorityVector) domain.PersonalizedScore {
	var weightedSum, totalWeight float64
	breakdown := make(map[string]int, len(domain.SubIndexNames))

	for _, idx := range domain.SubIndexNames {
		value, ok := scores.SubIndex(idx)
		if !ok {
			value = neutralSubIndexValue
		}

		w := float64(weights.Weight(idx))

		weightedSum += value * w
		totalWeight += w

		// diagnostic figure scaled around the neutral weight of 3;
		// intentionally not a partition of the final score
		breakdown[idx] = int(math.Round(value * w / float64(domain.DefaultPriorityWeight)))
	}

	// totalWeight >= len(SubIndexNames), never zero
	score := int(math.Round(weightedSum / totalWeight))

	return domain.PersonalizedScore{
		Score:     score,
		Grade:     Classify(score),
		Breakdown: breakdown,
	}
}
