package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationRecord is the assessor's verdict on one response. PublicComment
// is shown to the BLGU during rework; InternalNote is assessor-only.
type ValidationRecord struct {
	ID               uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ResponseID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"response_id"`
	Response         *AssessmentResponse `gorm:"constraint:OnDelete:CASCADE;foreignKey:ResponseID;references:ID" json:"response,omitempty"`
	AssessorID       uuid.UUID           `gorm:"type:uuid;column:assessor_id;not null" json:"assessor_id"`
	ValidationStatus string              `gorm:"column:validation_status;not null" json:"validation_status"`
	PublicComment    string              `gorm:"column:public_comment" json:"public_comment,omitempty"`
	InternalNote     string              `gorm:"column:internal_note" json:"internal_note,omitempty"`
	CreatedAt        time.Time           `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

func (ValidationRecord) TableName() string { return "validation_record" }
