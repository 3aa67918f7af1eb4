package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assessment is one barangay's SGLGB run for a performance year. Completion
// counters are derived by the completion engine on read, never stored here.
type Assessment struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BarangayID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_barangay_year,unique" json:"barangay_id"`
	Barangay        *Barangay      `gorm:"constraint:OnDelete:CASCADE;foreignKey:BarangayID;references:ID" json:"barangay,omitempty"`
	PerformanceYear int            `gorm:"column:performance_year;not null;index:idx_barangay_year,unique" json:"performance_year"`
	Status          string         `gorm:"column:status;not null;default:'Draft'" json:"status"`
	ReworkCount     int            `gorm:"column:rework_count;not null;default:0" json:"rework_count"`
	SubmittedAt     *time.Time     `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ResubmittedAt   *time.Time     `gorm:"column:resubmitted_at" json:"resubmitted_at,omitempty"`
	FinalizedAt     *time.Time     `gorm:"column:finalized_at" json:"finalized_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assessment) TableName() string { return "assessment" }
