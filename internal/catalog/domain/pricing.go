package domain

import (
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
)

// Price returns the amount (minor units) a variant sells for during the given
// launch phase. ok is false when the variant is not purchasable: outside the
// enrollment window, inactive, or the phase is unknown.
func Price(phase phasedomain.Name, v Variant) (amount int64, ok bool) {
	if v.Status != StatusActive {
		return 0, false
	}
	switch phase {
	case phasedomain.PhaseOne:
		return v.PricePhaseOne, true
	case phasedomain.PhaseTwo:
		return v.PricePhaseTwo, true
	default:
		// before_launch, closed, or anything unrecognized sells nothing.
		return 0, false
	}
}
