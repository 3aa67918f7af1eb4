package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentResponse holds the raw field answers for one leaf indicator of
// one assessment. Created lazily on first answer; read-only once the
// assessment is finalized.
type AssessmentResponse struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_assessment_indicator,unique" json:"assessment_id"`
	Assessment   *Assessment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssessmentID;references:ID" json:"assessment,omitempty"`
	IndicatorID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_assessment_indicator,unique" json:"indicator_id"`
	Indicator    *Indicator     `gorm:"constraint:OnDelete:CASCADE;foreignKey:IndicatorID;references:ID" json:"indicator,omitempty"`
	ResponseData datatypes.JSON `gorm:"type:jsonb;column:response_data" json:"response_data"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AssessmentResponse) TableName() string { return "assessment_response" }
