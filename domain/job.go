package domain

import (
	"time"

	"gorm.io/gorm"
)

type Job struct {
	ID         uint64  `gorm:"primaryKey" json:"id"`
	FacilityID string  `gorm:"column:facility_id;not null;index" json:"facility_id"`
	Title      string  `gorm:"column:title;not null" json:"title"`
	Specialty  string  `gorm:"column:specialty" json:"specialty"`
	Shift      string  `gorm:"column:shift" json:"shift"`
	City       string  `gorm:"column:city" json:"city"`
	PayFloor   float64 `gorm:"column:pay_floor" json:"pay_floor"`
	PayCeiling float64 `gorm:"column:pay_ceiling" json:"pay_ceiling"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Job) TableName() string {
	return "jobs"
}
