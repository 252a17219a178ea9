// Package domain contains the purchasable catalog: courses, cohorts and
// their priced variants.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Course is a self-paced offering.
type Course struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Slug        string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Description string       `gorm:"type:text" json:"description"`
	Status      Status       `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Course) TableName() string { return "courses" }

// Cohort is a scheduled, coached offering.
type Cohort struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Slug        string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Description string       `gorm:"type:text" json:"description"`
	StartsOn    *time.Time   `gorm:"" json:"starts_on,omitempty"`
	Status      Status       `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Cohort) TableName() string { return "cohorts" }

// Variant is a purchasable tier of a course or cohort. Prices are stored in
// minor units per launch phase; a variant carries no single price of its own.
type Variant struct {
	ID            snowflake.ID           `gorm:"primaryKey" json:"id"`
	ParentKind    phasedomain.ParentKind `gorm:"type:text;not null;index:idx_variants_parent" json:"parent_kind"`
	ParentID      snowflake.ID           `gorm:"not null;index:idx_variants_parent" json:"parent_id"`
	Name          string                 `gorm:"type:text;not null" json:"name"`
	PricePhaseOne int64                  `gorm:"column:price_phase_1;not null" json:"price_phase_1"`
	PricePhaseTwo int64                  `gorm:"column:price_phase_2;not null" json:"price_phase_2"`
	Status        Status                 `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt     time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Variant) TableName() string { return "catalog_variants" }
