package scoring

import (
	"testing"

	"nurseNav/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 {
	return &v
}

// facilityWith builds a vector with every sub-index set to base, then applies
// overrides by index name.
func facilityWith(base float64, overrides map[string]float64) *domain.FacilityScoreVector {
	f := &domain.FacilityScoreVector{
		FacilityID:   "fac-1",
		FacilityName: "St. Anne Medical Center",
		Pay:          fp(base),
		Safety:       fp(base),
		Staffing:     fp(base),
		PatientExp:   fp(base),
		WorkLife:     fp(base),
		CareerGrowth: fp(base),
		Management:   fp(base),
		Amenities:    fp(base),
		Training:     fp(base),
	}
	for name, v := range overrides {
		switch name {
		case domain.IndexPay:
			f.Pay = fp(v)
		case domain.IndexSafety:
			f.Safety = fp(v)
		case domain.IndexStaffing:
			f.Staffing = fp(v)
		case domain.IndexPatientExperience:
			f.PatientExp = fp(v)
		case domain.IndexWorkLifeBalance:
			f.WorkLife = fp(v)
		case domain.IndexCareerGrowth:
			f.CareerGrowth = fp(v)
		case domain.IndexManagement:
			f.Management = fp(v)
		case domain.IndexAmenities:
			f.Amenities = fp(v)
		case domain.IndexTraining:
			f.Training = fp(v)
		}
	}
	return f
}

func TestAggregateUniformWeightsStaysWithinValueBounds(t *testing.T) {
	facility := facilityWith(40, map[string]float64{
		domain.IndexPay:    95,
		domain.IndexSafety: 20,
	})

	got := Aggregate(facility, domain.PriorityVector{})

	assert.GreaterOrEqual(t, got.Score, 20)
	assert.LessOrEqual(t, got.Score, 95)
}

func TestAggregateAllEqualValuesReturnsThatValue(t *testing.T) {
	got := Aggregate(facilityWith(70, nil), domain.PriorityVector{})

	assert.Equal(t, 70, got.Score)
	assert.Equal(t, "B", got.Grade)
}

func TestAggregateWeightMonotonicity(t *testing.T) {
	facility := facilityWith(40, map[string]float64{domain.IndexPay: 80})

	low := Aggregate(facility, domain.PriorityVector{domain.IndexPay: 1})
	mid := Aggregate(facility, domain.PriorityVector{domain.IndexPay: 3})
	high := Aggregate(facility, domain.PriorityVector{domain.IndexPay: 5})

	// raising the weight of the high-value index pulls the score toward it
	assert.Greater(t, mid.Score, low.Score)
	assert.Greater(t, high.Score, mid.Score)
}

func TestAggregateMissingIndexReadsAsNeutral(t *testing.T) {
	withAmenities := facilityWith(60, map[string]float64{domain.IndexAmenities: 50})
	without := facilityWith(60, nil)
	without.Amenities = nil

	weights := domain.PriorityVector{domain.IndexAmenities: 4, domain.IndexPay: 5}

	assert.Equal(t, Aggregate(withAmenities, weights), Aggregate(without, weights))
}

func TestAggregateDeterministic(t *testing.T) {
	facility := facilityWith(55, map[string]float64{
		domain.IndexPay:      88,
		domain.IndexStaffing: 31,
	})
	weights := domain.PriorityVector{
		domain.IndexPay:      5,
		domain.IndexStaffing: 2,
		domain.IndexTraining: 1,
	}

	first := Aggregate(facility, weights)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Aggregate(facility, weights))
	}
}

func TestAggregateClampsOutOfRangeWeights(t *testing.T) {
	facility := facilityWith(40, map[string]float64{domain.IndexPay: 80})

	clamped := Aggregate(facility, domain.PriorityVector{domain.IndexPay: 99})
	max := Aggregate(facility, domain.PriorityVector{domain.IndexPay: 5})
	assert.Equal(t, max.Score, clamped.Score)

	floored := Aggregate(facility, domain.PriorityVector{domain.IndexPay: -2})
	min := Aggregate(facility, domain.PriorityVector{domain.IndexPay: 1})
	assert.Equal(t, min.Score, floored.Score)
}

func TestAggregateBreakdownScalesAroundNeutralWeight(t *testing.T) {
	facility := facilityWith(60, nil)

	got := Aggregate(facility, domain.PriorityVector{domain.IndexPay: 5, domain.IndexSafety: 1})

	require.Len(t, got.Breakdown, len(domain.SubIndexNames))
	// value*weight/3: neutral weight reproduces the value itself
	assert.Equal(t, 60, got.Breakdown[domain.IndexStaffing])
	assert.Equal(t, 100, got.Breakdown[domain.IndexPay])
	assert.Equal(t, 20, got.Breakdown[domain.IndexSafety])
}
