package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Indicator is one node of the assessment tree. Root nodes are governance
// areas; a node with no children is a leaf and is the only kind that may
// carry form or calculation schemas.
type Indicator struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ParentID          *uuid.UUID     `gorm:"type:uuid;column:parent_id;index" json:"parent_id,omitempty"`
	Order             int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	Code              string         `gorm:"column:code;not null;default:''" json:"code"`
	Name              string         `gorm:"column:name;not null" json:"name"`
	Description       string         `gorm:"column:description" json:"description,omitempty"`
	IsActive          bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsAutoCalculable  bool           `gorm:"column:is_auto_calculable;not null;default:false" json:"is_auto_calculable"`
	IsProfilingOnly   bool           `gorm:"column:is_profiling_only;not null;default:false" json:"is_profiling_only"`
	FormSchema        datatypes.JSON `gorm:"type:jsonb;column:form_schema" json:"form_schema,omitempty"`
	CalculationSchema datatypes.JSON `gorm:"type:jsonb;column:calculation_schema" json:"calculation_schema,omitempty"`
	Metadata          datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Indicator) TableName() string { return "indicator" }
