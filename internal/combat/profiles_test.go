package combat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-server/internal/combat"
)

func TestDefaultProfiles_CoverEveryUnit(t *testing.T) {
	profiles := combat.DefaultProfiles()

	assert.Equal(t, combat.UnitTypes, profiles.Units())
	for _, unit := range combat.UnitTypes {
		profile, err := profiles.Lookup(unit)
		require.NoError(t, err, unit)
		assert.Positive(t, profile.HullPoints)
		assert.InDelta(t, 1/float64(profile.HullPoints), profile.UnitsPerHullPoint, 1e-12)
	}
}

func TestLoadProfiles(t *testing.T) {
	profiles, err := combat.LoadProfiles(strings.NewReader(`
ground:
  attack_modifier: 1
  defense_threshold: 11
  hull_points: 5
  units_per_hull_point: 0.5
carrier:
  attack_modifier: 0
  defense_threshold: 16
  hull_points: 40
`))
	require.NoError(t, err)

	ground, err := profiles.Lookup(combat.UnitGround)
	require.NoError(t, err)
	assert.Equal(t, 11, ground.DefenseThreshold)
	assert.InDelta(t, 0.5, ground.UnitsPerHullPoint, 1e-12)

	carrier, err := profiles.Lookup(combat.UnitCarrier)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/40, carrier.UnitsPerHullPoint, 1e-12)

	_, err = profiles.Lookup(combat.UnitLightAir)
	require.ErrorIs(t, err, combat.ErrMissingUnitProfile)
}

func TestLoadProfiles_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown unit":   "dreadnought:\n  hull_points: 5\n",
		"zero hull":      "ground:\n  hull_points: 0\n",
		"unknown field":  "ground:\n  hull_points: 4\n  armor: 3\n",
		"negative power": "ground:\n  hull_points: 4\n  attack_power: -1\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := combat.LoadProfiles(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadRuleset_OverridesDefaults(t *testing.T) {
	rules, err := combat.LoadRuleset(strings.NewReader(`
version: "2024.2-brutal"
retreat:
  penalty: 0.3
territory:
  standard_capture: 0.2
`))
	require.NoError(t, err)

	assert.Equal(t, "2024.2-brutal", rules.Version)
	assert.InDelta(t, 0.3, rules.Retreat.Penalty, 1e-12)
	assert.InDelta(t, 0.2, rules.Territory.StandardCapture, 1e-12)
	assert.InDelta(t, 0.15, rules.Territory.DecisiveCapture, 1e-12, "untouched fields keep defaults")
	assert.Equal(t, combat.DefaultStanceTable(), rules.Stances)
}

func TestLoadRuleset_EmptyDocumentIsDefault(t *testing.T) {
	rules, err := combat.LoadRuleset(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, combat.DefaultRuleset(), rules)
}

func TestLoadRuleset_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field":      "mystery: 1\n",
		"undecidable rounds": "volley:\n  max_rounds: 2\n",
		"inverted rates":     "casualty:\n  min_rate: 0.5\n",
		"empty version":      "version: \"\"\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := combat.LoadRuleset(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestDefaultRuleset_Valid(t *testing.T) {
	require.NoError(t, combat.DefaultRuleset().Validate())
}

func TestRulesetValidate_UndecidableRounds(t *testing.T) {
	rules := combat.DefaultRuleset()
	rules.Volley.MaxRounds = 2

	require.ErrorIs(t, rules.Validate(), combat.ErrInvalidRuleset)
}
