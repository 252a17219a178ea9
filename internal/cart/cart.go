// Package cart implements the client-local selection model. A Cart is
// single-user and never persisted; every mutation is gated by a Snapshot of
// the phase and enrollment state the caller already holds. Gating here is a
// UI safety net only, the server re-validates everything at checkout time.
package cart

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
)

var (
	ErrEnrollmentClosed      = errors.New("enrollment_closed")
	ErrAlreadyEnrolled       = errors.New("already_enrolled")
	ErrSubscriptionExclusive = errors.New("subscription_exclusive")
)

type ItemKind string

const (
	KindCourse       ItemKind = "course"
	KindCohort       ItemKind = "cohort"
	KindSubscription ItemKind = "subscription"
)

// Item is one selected purchasable. Subscription items carry no parent or
// variant; their price is fixed server-side.
type Item struct {
	Kind        ItemKind     `json:"kind"`
	ParentID    snowflake.ID `json:"parent_id,omitempty"`
	VariantID   snowflake.ID `json:"variant_id,omitempty"`
	DisplayName string       `json:"display_name"`
	VariantName string       `json:"variant_name,omitempty"`
	UnitPrice   int64        `json:"unit_price"`
}

// Snapshot captures the gating state at the moment of a cart mutation.
// VariantPhase holds the governing phase per variant where one differs from
// the global schedule; variants absent from the map follow GlobalPhase.
type Snapshot struct {
	GlobalPhase  phasedomain.Name
	VariantPhase map[snowflake.ID]phasedomain.Name
	EnrolledIn   map[snowflake.ID]bool
}

func (s Snapshot) governing(variantID snowflake.ID) phasedomain.Name {
	if p, ok := s.VariantPhase[variantID]; ok {
		return p
	}
	return s.GlobalPhase
}

type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

// Select toggles an item: selecting an item already present removes it.
// Adding is rejected when enrollment is closed globally or for the variant,
// when the user already owns the variant, or when a subscription item is
// present (subscription checkout is mutually exclusive with one-time items).
func (c *Cart) Select(item Item, snap Snapshot) error {
	if idx := c.indexOf(item); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		return nil
	}

	if !snap.GlobalPhase.EnrollmentOpen() {
		return ErrEnrollmentClosed
	}

	if item.Kind == KindSubscription {
		// A subscription replaces everything already selected.
		c.items = []Item{item}
		return nil
	}

	if !snap.governing(item.VariantID).EnrollmentOpen() {
		return ErrEnrollmentClosed
	}
	if snap.EnrolledIn[item.VariantID] {
		return ErrAlreadyEnrolled
	}
	if c.hasSubscription() {
		return ErrSubscriptionExclusive
	}

	c.items = append(c.items, item)
	return nil
}

// Remove drops a matching item. It is a no-op while enrollment is closed,
// mirroring the selection gate.
func (c *Cart) Remove(item Item, snap Snapshot) {
	if !snap.GlobalPhase.EnrollmentOpen() {
		return
	}
	if idx := c.indexOf(item); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
}

// Clear empties the cart. No-op while enrollment is closed.
func (c *Cart) Clear(snap Snapshot) {
	if !snap.GlobalPhase.EnrollmentOpen() {
		return
	}
	c.items = nil
}

func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) hasSubscription() bool {
	for _, it := range c.items {
		if it.Kind == KindSubscription {
			return true
		}
	}
	return false
}

func (c *Cart) indexOf(item Item) int {
	for i, it := range c.items {
		if it.Kind != item.Kind {
			continue
		}
		if it.Kind == KindSubscription {
			return i
		}
		if it.ParentID == item.ParentID && it.VariantID == item.VariantID {
			return i
		}
	}
	return -1
}
