package payment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
)

func TestCommission(t *testing.T) {
	tests := []struct {
		name   string
		amount model.Cents
		rate   float64
		want   model.Cents
	}{
		{"twenty percent of one hundred", 10000, 20, 2000},
		{"zero rate", 10000, 0, 0},
		{"full rate", 4550, 100, 4550},
		{"half cent rounds up", 5, 50, 3},
		{"fractional rate", 1999, 12.5, 250},
		{"below half rounds down", 1001, 33.333, 334},
		{"tiny amount", 1, 10, 0},
		{"largest storable amount", model.MaxCents, 20, 200_000_000_000},
		{"largest amount at full rate", model.MaxCents, 100, model.MaxCents},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Commission(tt.amount, tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommission_RejectsRateOutsideRange(t *testing.T) {
	for _, rate := range []float64{-1, 100.01, math.NaN()} {
		_, err := Commission(10000, rate)
		assert.Error(t, err, "rate %v", rate)
	}
}

func TestDivRound_Negative(t *testing.T) {
	assert.Equal(t, int64(-3), divRound(-5, 2))
	assert.Equal(t, int64(-2), divRound(-7, 4))
}

func TestCommission_RejectsAmountOutsideStorableRange(t *testing.T) {
	for _, amount := range []model.Cents{-1, model.MaxCents + 1, 50_000_000_000_000} {
		_, err := Commission(amount, 20)
		assert.Error(t, err, "amount %s", amount)
	}
}
