package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"empires-server/internal/combat"
)

func TestLossRate(t *testing.T) {
	rules := combat.DefaultRuleset().Casualty

	tests := []struct {
		name    string
		attack  float64
		defense float64
		want    float64
	}{
		{"even fight", 100, 100, 0.25},
		{"bad attack", 100, 250, 0.35},
		{"exactly double is not bad", 100, 200, 0.25},
		{"overwhelming", 100, 40, 0.15},
		{"zero attack", 0, 50, 0.35},
		{"both zero", 0, 0, 0.25},
		{"nothing to hit", 50, 0, 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, combat.LossRate(tt.attack, tt.defense, rules), 1e-9)
		})
	}
}

func TestLossRate_AlwaysWithinBounds(t *testing.T) {
	rules := combat.DefaultRuleset().Casualty

	for _, attack := range []float64{0, 0.5, 1, 10, 1000} {
		for _, defense := range []float64{0, 0.5, 1, 10, 1000} {
			rate := combat.LossRate(attack, defense, rules)
			assert.GreaterOrEqual(t, rate, rules.MinRate)
			assert.LessOrEqual(t, rate, rules.MaxRate)
		}
	}
}

func TestVariance(t *testing.T) {
	rules := combat.DefaultRuleset().Casualty

	assert.InDelta(t, 0.8, combat.Variance(0, rules), 1e-9)
	assert.InDelta(t, 1.0, combat.Variance(0.5, rules), 1e-9)
	assert.InDelta(t, 1.2, combat.Variance(1.5, rules), 1e-9)
	assert.InDelta(t, 0.8, combat.Variance(-3, rules), 1e-9)
}

func TestUnitCasualties(t *testing.T) {
	assert.Equal(t, 25, combat.UnitCasualties(100, 0.25, 1.0))
	assert.Equal(t, 20, combat.UnitCasualties(100, 0.25, 0.8))
	assert.Equal(t, 0, combat.UnitCasualties(3, 0.15, 0.8))
	assert.Equal(t, 10, combat.UnitCasualties(10, 2, 1.2), "never more than the stack")
	assert.Equal(t, 0, combat.UnitCasualties(0, 0.35, 1.2))
}

func TestForceCasualties(t *testing.T) {
	lost := combat.ForceCasualties(combat.Force{Ground: 100, Carrier: 7}, 0.3, 1.0)
	assert.Equal(t, combat.Force{Ground: 30, Carrier: 2}, lost)
}
