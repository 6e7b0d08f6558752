package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"empires-server/internal/combat"
)

func TestAnalyzeTheaters_SpaceDominance(t *testing.T) {
	rules := combat.DefaultRuleset().Theater

	tests := []struct {
		name     string
		attacker combat.Force
		defender combat.Force
		want     bool
	}{
		{"double the space fleet", combat.Force{LightCruiser: 10, LightAir: 10}, combat.Force{HeavyCruiser: 10}, true},
		{"just short of double", combat.Force{LightCruiser: 19}, combat.Force{Carrier: 10}, false},
		{"empty enemy space", combat.Force{LightAir: 1}, combat.Force{Ground: 50}, true},
		{"no space on either side", combat.Force{Ground: 5}, combat.Force{Ground: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := combat.AnalyzeTheaters(tt.attacker, tt.defender, rules)
			if tt.want {
				assert.Contains(t, analysis.AttackerBonuses, combat.BonusSpaceDominance)
				assert.Equal(t, 2, analysis.AttackerAttackModifier)
			} else {
				assert.NotContains(t, analysis.AttackerBonuses, combat.BonusSpaceDominance)
				assert.Zero(t, analysis.AttackerAttackModifier)
			}
		})
	}
}

func TestAnalyzeTheaters_OrbitalShield(t *testing.T) {
	rules := combat.DefaultRuleset().Theater

	analysis := combat.AnalyzeTheaters(combat.Force{Ground: 1}, combat.Force{DefensePlatform: 1}, rules)
	assert.Equal(t, []combat.TheaterBonus{combat.BonusOrbitalShield}, analysis.DefenderBonuses)
	assert.Equal(t, 2, analysis.DefenderDefenseModifier)

	analysis = combat.AnalyzeTheaters(combat.Force{Ground: 1}, combat.Force{Ground: 1}, rules)
	assert.Empty(t, analysis.DefenderBonuses)
	assert.Zero(t, analysis.DefenderDefenseModifier)
}

func TestAnalyzeTheaters_GroundSuperiority(t *testing.T) {
	rules := combat.DefaultRuleset().Theater

	assert.True(t, combat.AnalyzeTheaters(combat.Force{Ground: 30}, combat.Force{Ground: 10}, rules).GroundSuperiority)
	assert.False(t, combat.AnalyzeTheaters(combat.Force{Ground: 29}, combat.Force{Ground: 10}, rules).GroundSuperiority)
	assert.True(t, combat.AnalyzeTheaters(combat.Force{Ground: 1}, combat.Force{LightCruiser: 10}, rules).GroundSuperiority)
	assert.False(t, combat.AnalyzeTheaters(combat.Force{}, combat.Force{}, rules).GroundSuperiority)
}

func TestAnalyzeTheaters_BonusesStack(t *testing.T) {
	analysis := combat.AnalyzeTheaters(
		combat.Force{Ground: 30, LightCruiser: 20},
		combat.Force{Ground: 10, LightCruiser: 5, DefensePlatform: 2},
		combat.DefaultRuleset().Theater,
	)

	assert.ElementsMatch(t, []combat.TheaterBonus{combat.BonusSpaceDominance, combat.BonusGroundSuperiority}, analysis.AttackerBonuses)
	assert.Equal(t, []combat.TheaterBonus{combat.BonusOrbitalShield}, analysis.DefenderBonuses)
}
