package domain

import "time"

// Canonical sub-index names. Facility score vectors and user priority weights
// are both keyed by this set; scoring iterates SubIndexNames so results are
// stable regardless of map order.
const (
	IndexPay               = "pay"
	IndexSafety            = "safety"
	IndexStaffing          = "staffing"
	IndexPatientExperience = "patient_experience"
	IndexWorkLifeBalance   = "work_life_balance"
	IndexCareerGrowth      = "career_growth"
	IndexManagement        = "management"
	IndexAmenities         = "amenities"
	IndexTraining          = "training"
)

var SubIndexNames = []string{
	IndexPay,
	IndexSafety,
	IndexStaffing,
	IndexPatientExperience,
	IndexWorkLifeBalance,
	IndexCareerGrowth,
	IndexManagement,
	IndexAmenities,
	IndexTraining,
}

// FacilityScoreVector is owned by the facility-scoring pipeline and is
// read-only here. A nil sub-index means the facility has no data for it.
type FacilityScoreVector struct {
	FacilityID   string   `gorm:"column:facility_id;primaryKey" json:"facility_id"`
	FacilityName string   `gorm:"column:facility_name;not null" json:"facility_name"`
	Pay          *float64 `gorm:"column:pay" json:"pay,omitempty"`
	Safety       *float64 `gorm:"column:safety" json:"safety,omitempty"`
	Staffing     *float64 `gorm:"column:staffing" json:"staffing,omitempty"`
	PatientExp   *float64 `gorm:"column:patient_experience" json:"patient_experience,omitempty"`
	WorkLife     *float64 `gorm:"column:work_life_balance" json:"work_life_balance,omitempty"`
	CareerGrowth *float64 `gorm:"column:career_growth" json:"career_growth,omitempty"`
	Management   *float64 `gorm:"column:management" json:"management,omitempty"`
	Amenities    *float64 `gorm:"column:amenities" json:"amenities,omitempty"`
	Training     *float64 `gorm:"column:training" json:"training,omitempty"`
	OverallScore float64  `gorm:"column:overall_score" json:"overall_score"`
	OverallGrade string   `gorm:"column:overall_grade" json:"overall_grade"`
	UpdatedAt    time.Time
}

func (FacilityScoreVector) TableName() string {
	return "facility_scores"
}

// SubIndex returns the named sub-index value; ok is false when the facility
// has no data for that index.
func (f *FacilityScoreVector) SubIndex(name string) (float64, bool) {
	var v *float64
	switch name {
	case IndexPay:
		v = f.Pay
	case IndexSafety:
		v = f.Safety
	case IndexStaffing:
		v = f.Staffing
	case IndexPatientExperience:
		v = f.PatientExp
	case IndexWorkLifeBalance:
		v = f.WorkLife
	case IndexCareerGrowth:
		v = f.CareerGrowth
	case IndexManagement:
		v = f.Management
	case IndexAmenities:
		v = f.Amenities
	case IndexTraining:
		v = f.Training
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}
