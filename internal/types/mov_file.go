package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MOVFile is an uploaded means-of-verification attachment. The bytes live
// in blob storage under StoragePath; Section optionally ties the file to a
// schema-declared mov_upload_section.
type MOVFile struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ResponseID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"response_id"`
	Response    *AssessmentResponse `gorm:"constraint:OnDelete:CASCADE;foreignKey:ResponseID;references:ID" json:"response,omitempty"`
	Filename    string              `gorm:"column:filename;not null" json:"filename"`
	StoragePath string              `gorm:"column:storage_path;not null" json:"storage_path"`
	FileSize    int64               `gorm:"column:file_size;not null;default:0" json:"file_size"`
	ContentType string              `gorm:"column:content_type" json:"content_type"`
	Section     string              `gorm:"column:section" json:"section,omitempty"`
	UploadedBy  uuid.UUID           `gorm:"type:uuid;column:uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time           `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

func (MOVFile) TableName() string { return "mov_file" }
