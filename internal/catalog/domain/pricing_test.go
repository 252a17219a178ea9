package domain

import (
	"testing"

	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	variant := Variant{
		Name:          "Standard",
		PricePhaseOne: 80000,
		PricePhaseTwo: 100000,
		Status:        StatusActive,
	}

	tests := []struct {
		name       string
		phase      phasedomain.Name
		variant    Variant
		wantAmount int64
		wantOK     bool
	}{
		{
			name:       "phase one uses early price",
			phase:      phasedomain.PhaseOne,
			variant:    variant,
			wantAmount: 80000,
			wantOK:     true,
		},
		{
			name:       "phase two uses regular price",
			phase:      phasedomain.PhaseTwo,
			variant:    variant,
			wantAmount: 100000,
			wantOK:     true,
		},
		{
			name:    "before launch sells nothing",
			phase:   phasedomain.BeforeLaunch,
			variant: variant,
			wantOK:  false,
		},
		{
			name:    "closed sells nothing",
			phase:   phasedomain.Closed,
			variant: variant,
			wantOK:  false,
		},
		{
			name:    "unknown phase sells nothing",
			phase:   phasedomain.Name("flash_sale"),
			variant: variant,
			wantOK:  false,
		},
		{
			name:  "inactive variant sells nothing",
			phase: phasedomain.PhaseOne,
			variant: Variant{
				Name:          "Retired",
				PricePhaseOne: 80000,
				PricePhaseTwo: 100000,
				Status:        StatusInactive,
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := Price(tt.phase, tt.variant)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAmount, amount)
		})
	}
}
