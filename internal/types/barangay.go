package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Barangay struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Municipality string         `gorm:"column:municipality;not null" json:"municipality"`
	Province     string         `gorm:"column:province;not null" json:"province"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Barangay) TableName() string { return "barangay" }
