package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors the identity provider's account record. Authentication is
// external; this row carries the role and barangay linkage used for
// authorization and audit fields.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email      string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	FullName   string         `gorm:"column:full_name;not null" json:"full_name"`
	Role       string         `gorm:"column:role;not null" json:"role"`
	BarangayID *uuid.UUID     `gorm:"type:uuid;column:barangay_id" json:"barangay_id,omitempty"`
	Barangay   *Barangay      `gorm:"constraint:OnDelete:SET NULL;foreignKey:BarangayID;references:ID" json:"barangay,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
