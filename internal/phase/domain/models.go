// Package domain contains launch phase definitions and the resolution rules
// that gate enrollment and pricing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Name identifies a launch phase window.
type Name string

const (
	BeforeLaunch Name = "before_launch"
	PhaseOne     Name = "phase_1"
	PhaseTwo     Name = "phase_2"
	Closed       Name = "closed"
)

// EnrollmentOpen reports whether purchases are allowed during the phase.
func (n Name) EnrollmentOpen() bool {
	return n == PhaseOne || n == PhaseTwo
}

func (n Name) Valid() bool {
	switch n {
	case BeforeLaunch, PhaseOne, PhaseTwo, Closed:
		return true
	default:
		return false
	}
}

// ParentKind scopes a phase schedule to a catalog parent. Global definitions
// leave both scope columns empty.
type ParentKind string

const (
	ParentCourse ParentKind = "course"
	ParentCohort ParentKind = "cohort"
)

// Definition is an administrator-managed phase window. starts_at is the only
// source of truth for resolution; is_active and notification_sent are
// idempotency/audit flags written by the broadcast job and never read by the
// pricing or checkout path.
type Definition struct {
	ID                     snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name                   Name          `gorm:"type:text;not null" json:"phase_name"`
	StartsAt               time.Time     `gorm:"not null;index" json:"starts_at"`
	ParentKind             *ParentKind   `gorm:"type:text" json:"parent_kind,omitempty"`
	ParentID               *snowflake.ID `gorm:"index" json:"parent_id,omitempty"`
	IsActive               bool          `gorm:"not null;default:false" json:"is_active"`
	NotificationTemplateID *int          `gorm:"" json:"notification_template_id,omitempty"`
	NotificationSent       bool          `gorm:"not null;default:false" json:"notification_sent"`
	CreatedAt              time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Definition) TableName() string { return "phase_definitions" }
