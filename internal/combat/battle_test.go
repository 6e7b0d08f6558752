package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-server/internal/combat"
)

func resolve(t *testing.T, attacker, defender combat.Force, opts combat.Options) combat.BattleResult {
	t.Helper()
	result, err := combat.ResolveBattle(attacker, defender, combat.DefaultProfiles(), combat.DefaultRuleset(), opts)
	require.NoError(t, err)
	return result
}

func TestResolveBattle_AttackerDecisive(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, combat.Options{
		DefenderSectors: 20,
		Rolls:           []int{15, 5, 15, 5},
	})

	assert.Equal(t, combat.OutcomeAttackerDecisive, result.Outcome)
	assert.Equal(t, combat.Score{Attacker: 2, Defender: 0}, result.Score)
	assert.Len(t, result.Volleys, 2)
	assert.Equal(t, 4, result.SectorsCaptured, "floor(20 × 15%) + 1")
	assert.Equal(t, combat.StrategyVolley, result.Strategy)
	assert.Equal(t, combat.DefaultRulesetVersion, result.RulesetVersion)
}

func TestResolveBattle_AttackerVictory(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, combat.Options{
		DefenderSectors: 20,
		Rolls:           []int{15, 5, 5, 15, 15, 5},
	})

	assert.Equal(t, combat.OutcomeAttackerVictory, result.Outcome)
	assert.Equal(t, combat.Score{Attacker: 2, Defender: 1}, result.Score)
	assert.Len(t, result.Volleys, 3)
	assert.Equal(t, 2, result.SectorsCaptured, "floor(20 × 10%)")
}

func TestResolveBattle_StandardCaptureMinimumOfOne(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, combat.Options{
		DefenderSectors: 5,
		Rolls:           []int{15, 5, 5, 15, 15, 5},
	})

	assert.Equal(t, 1, result.SectorsCaptured)
}

func TestResolveBattle_DefenderVictoryCapturesNothing(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, combat.Options{
		DefenderSectors: 20,
		Rolls:           []int{15, 5, 5, 15, 5, 15},
	})

	assert.Equal(t, combat.OutcomeDefenderVictory, result.Outcome)
	assert.Zero(t, result.SectorsCaptured)
	assert.False(t, result.GroundOverride)
}

func TestResolveBattle_GroundSuperiorityOverride(t *testing.T) {
	attacker := combat.Force{Ground: 30}
	defender := combat.Force{Ground: 10, HeavyCruiser: 4}

	result := resolve(t, attacker, defender, combat.Options{
		DefenderSectors: 10,
		Rolls: []int{
			2, 15, 15, // round 1: both defender stacks hit for 70
			15, 2, 2, // round 2: 13 ground hit for 26
			2, 15, 2, // round 3: defender ground hits for 18
		},
	})

	require.True(t, result.Theater.GroundSuperiority)
	assert.Equal(t, combat.Score{Attacker: 1, Defender: 2}, result.Score)
	assert.Equal(t, combat.OutcomeAttackerVictory, result.Outcome)
	assert.True(t, result.GroundOverride)
	assert.Equal(t, 1, result.SectorsCaptured)
	assert.Equal(t, combat.Force{Ground: 21}, result.AttackerCasualties)
	assert.Equal(t, combat.Force{Ground: 1}, result.DefenderCasualties)
	assert.Equal(t, combat.Force{Ground: 9}, result.AttackerSurvivors)
	assert.Equal(t, combat.Force{Ground: 9, HeavyCruiser: 4}, result.DefenderSurvivors)
}

func TestResolveBattle_DecisiveDefeatPenalty(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 10}, combat.Force{Ground: 10}, combat.Options{
		DefenderSectors: 10,
		// Round 1 is a true tie with 20 damage each way; round 2 only the
		// defender's five survivors hit.
		Rolls: []int{15, 15, 2, 15},
	})

	assert.Equal(t, combat.OutcomeDefenderDecisive, result.Outcome)
	assert.Equal(t, 5, result.Volleys[0].AttackerCasualties.Ground)
	assert.Equal(t, 2, result.Volleys[1].AttackerCasualties.Ground)
	assert.Equal(t, combat.Force{Ground: 8}, result.AttackerCasualties, "floor(7 × 1.25)")
	assert.Zero(t, result.SectorsCaptured)
}

func TestResolveBattle_DecisiveDefeatPenaltyBoundedByInitialForce(t *testing.T) {
	// Every attacker falls in round one; the penalty cannot add more.
	result := resolve(t, combat.Force{Ground: 4}, combat.Force{HeavyCruiser: 10}, combat.Options{
		DefenderSectors: 10,
		Random:          ptr(0.72),
	})

	assert.Equal(t, combat.OutcomeDefenderDecisive, result.Outcome)
	assert.Equal(t, combat.Force{Ground: 4}, result.AttackerCasualties)
	assert.True(t, result.AttackerSurvivors.IsEmpty())
}

func TestResolveBattle_AttackerRetreat(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 100}, combat.Force{Ground: 10}, combat.Options{
		DefenderSectors: 20,
		Rolls:           []int{2, 15},
		Retreat:         &combat.Retreat{Side: combat.SideAttacker, AfterRound: 1},
	})

	assert.Equal(t, combat.OutcomeAttackerRetreated, result.Outcome)
	require.NotNil(t, result.Retreat)
	assert.Equal(t, combat.Force{Ground: 14}, result.Retreat.Penalty, "floor(95 × 15%)")
	assert.Equal(t, combat.Force{Ground: 19}, result.AttackerCasualties)
	assert.Equal(t, combat.Force{Ground: 81}, result.AttackerSurvivors)
	assert.Zero(t, result.SectorsCaptured)
	assert.False(t, result.GroundOverride, "a retreat forfeits the override")
	assert.Len(t, result.Volleys, 1)
}

func TestResolveBattle_DefenderRetreat(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 20, DefensePlatform: 4}, combat.Options{
		DefenderSectors: 20,
		Rolls:           []int{2, 2, 2},
		Retreat:         &combat.Retreat{Side: combat.SideDefender, AfterRound: 1},
	})

	assert.Equal(t, combat.OutcomeDefenderRetreated, result.Outcome)
	require.NotNil(t, result.Retreat)
	assert.Equal(t, combat.Force{Ground: 3}, result.Retreat.Penalty, "platforms are exempt")
	assert.Equal(t, 2, result.SectorsCaptured)
	assert.Equal(t, combat.SideAttacker, result.Outcome.Winner())
}

func TestResolveBattle_RetreatIgnoredOnceBattleIsDecided(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, combat.Options{
		DefenderSectors: 20,
		Rolls:           []int{15, 5, 15, 5},
		Retreat:         &combat.Retreat{Side: combat.SideDefender, AfterRound: 2},
	})

	assert.Equal(t, combat.OutcomeAttackerDecisive, result.Outcome)
	assert.Nil(t, result.Retreat)
}

func TestResolveBattle_RetreatAfterFinalRoundRejected(t *testing.T) {
	_, err := combat.ResolveBattle(combat.Force{Ground: 1}, combat.Force{Ground: 1},
		combat.DefaultProfiles(), combat.DefaultRuleset(), combat.Options{
			Retreat: &combat.Retreat{Side: combat.SideAttacker, AfterRound: 3},
		})

	require.ErrorIs(t, err, combat.ErrInvalidRetreat)
}

func TestResolveBattle_CaptureNeverTakesLastSector(t *testing.T) {
	for sectors, want := range map[int]int{0: 0, 1: 0, 2: 1, 3: 1, 6: 1, 7: 2, 20: 4} {
		result := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, combat.Options{
			DefenderSectors: sectors,
			Rolls:           []int{15, 5, 15, 5},
		})
		assert.Equal(t, want, result.SectorsCaptured, "sectors=%d", sectors)
	}
}

func TestResolveBattle_MissingProfile(t *testing.T) {
	profiles, err := combat.NewProfileTable(map[combat.UnitType]combat.UnitCombatProfile{
		combat.UnitGround: {AttackModifier: 2, DefenseThreshold: 12, HullPoints: 4},
	})
	require.NoError(t, err)

	_, err = combat.ResolveBattle(combat.Force{Ground: 5}, combat.Force{Carrier: 1}, profiles, combat.DefaultRuleset(), combat.Options{Seed: 1})

	require.ErrorIs(t, err, combat.ErrMissingUnitProfile)
	assert.Contains(t, err.Error(), "carrier")
}

func TestResolveBattle_InvalidStance(t *testing.T) {
	_, err := combat.ResolveBattle(combat.Force{Ground: 5}, combat.Force{Ground: 5},
		combat.DefaultProfiles(), combat.DefaultRuleset(), combat.Options{AttackerStance: "berserk"})

	require.ErrorIs(t, err, combat.ErrInvalidStance)
}

func TestResolveBattle_NegativeCountRejected(t *testing.T) {
	_, err := combat.ResolveBattle(combat.Force{Ground: -1}, combat.Force{Ground: 5},
		combat.DefaultProfiles(), combat.DefaultRuleset(), combat.Options{Seed: 1})

	require.ErrorIs(t, err, combat.ErrNegativeUnitCount)
}

func TestResolveBattle_Deterministic(t *testing.T) {
	attacker := combat.Force{Ground: 40, LightAir: 10, LightCruiser: 12, HeavyCruiser: 3, Carrier: 2}
	defender := combat.Force{Ground: 35, DefensePlatform: 6, LightCruiser: 10, HeavyCruiser: 2}
	opts := combat.Options{
		AttackerStance:  combat.StanceAggressive,
		DefenderStance:  combat.StanceDefensive,
		DefenderSectors: 30,
		Seed:            42,
	}

	first := resolve(t, attacker, defender, opts)
	second := resolve(t, attacker, defender, opts)

	require.Equal(t, first, second)

	fixed := opts
	fixed.Seed = 0
	fixed.Random = ptr(0.5)
	require.Equal(t, resolve(t, attacker, defender, fixed), resolve(t, attacker, defender, fixed))
}

func TestResolveBattle_Invariants(t *testing.T) {
	attacker := combat.Force{Ground: 25, LightAir: 5, LightCruiser: 8, HeavyCruiser: 2}
	defender := combat.Force{Ground: 20, DefensePlatform: 3, LightCruiser: 6, Carrier: 1}

	for seed := int64(1); seed <= 60; seed++ {
		result := resolve(t, attacker, defender, combat.Options{DefenderSectors: 5, Seed: seed})

		sum := result.Score.Attacker + result.Score.Defender
		assert.Contains(t, []int{2, 3}, sum, "seed %d", seed)
		assert.Less(t, result.SectorsCaptured, 5, "seed %d", seed)

		for _, unit := range combat.UnitTypes {
			assert.GreaterOrEqual(t, result.AttackerSurvivors.Count(unit), 0)
			assert.GreaterOrEqual(t, result.DefenderSurvivors.Count(unit), 0)
			assert.LessOrEqual(t, result.AttackerCasualties.Count(unit), attacker.Count(unit))
			assert.LessOrEqual(t, result.DefenderCasualties.Count(unit), defender.Count(unit))
		}
		assert.Equal(t, attacker, result.AttackerSurvivors.Add(result.AttackerCasualties))
	}

	assert.Equal(t, combat.Force{Ground: 25, LightAir: 5, LightCruiser: 8, HeavyCruiser: 2}, attacker)
}

func TestResolveBattle_CoalitionBonusWinsTiedVolleys(t *testing.T) {
	opts := combat.Options{DefenderSectors: 20, Rolls: []int{15, 15, 15, 15}}

	alone := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, opts)
	assert.Equal(t, combat.OutcomeDefenderDecisive, alone.Outcome)

	opts.CoalitionBonus = 0.25
	raid := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, opts)
	assert.Equal(t, combat.OutcomeAttackerDecisive, raid.Outcome)
	require.NotNil(t, raid.PowerScale)
	assert.InDelta(t, 1.25, raid.PowerScale.Attacker, 1e-9)
	assert.Equal(t, 3, raid.Volleys[0].AttackerDamage)
}

func TestResolveBattle_ZeroEffectivenessDealsNoDamage(t *testing.T) {
	opts := combat.Options{DefenderSectors: 20, Rolls: []int{15, 5, 15, 5}}

	fresh := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, opts)
	assert.Equal(t, combat.OutcomeAttackerDecisive, fresh.Outcome)

	opts.AttackerEffectiveness = ptr(combat.Effectiveness(0))
	broken := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, opts)
	assert.Equal(t, combat.OutcomeDefenderDecisive, broken.Outcome)
	assert.Zero(t, broken.AttackerPower)
	assert.Zero(t, broken.SectorsCaptured)
}

func TestResolveBattle_UnderdogBonusScalesDamage(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 5}, combat.Force{Ground: 12}, combat.Options{
		DefenderSectors: 20,
		Rolls:           []int{15, 2, 15, 2},
	})

	assert.True(t, result.Underdog.PowerRatio, "5 against 18 is below half")
	require.NotNil(t, result.PowerScale)
	assert.InDelta(t, 1.2, result.PowerScale.Attacker, 1e-9)
	assert.InDelta(t, 1.0, result.PowerScale.Defender, 1e-9)
	assert.Equal(t, 12, result.Volleys[0].AttackerDamage, "ceil(5 × 4 / 2) × 1.2")
	assert.Equal(t, combat.Force{Ground: 6}, result.DefenderCasualties)
	assert.Equal(t, combat.OutcomeAttackerDecisive, result.Outcome)
}

func TestBattleResult_Summary(t *testing.T) {
	result := resolve(t, combat.Force{Ground: 1}, combat.Force{Ground: 1}, combat.Options{
		DefenderSectors: 20,
		Rolls:           []int{15, 5, 15, 5},
	})

	assert.Equal(t, "attacker_decisive (2-0): 4 sectors captured, attacker lost 0, defender lost 0", result.Summary())
}

func TestOutcome_Winner(t *testing.T) {
	assert.Equal(t, combat.SideAttacker, combat.OutcomeAttackerDecisive.Winner())
	assert.Equal(t, combat.SideAttacker, combat.OutcomeAttackerVictory.Winner())
	assert.Equal(t, combat.SideAttacker, combat.OutcomeDefenderRetreated.Winner())
	assert.Equal(t, combat.SideDefender, combat.OutcomeDefenderVictory.Winner())
	assert.Equal(t, combat.SideDefender, combat.OutcomeDefenderDecisive.Winner())
	assert.Equal(t, combat.SideDefender, combat.OutcomeAttackerRetreated.Winner())
}

func TestCapturedSectors(t *testing.T) {
	rules := combat.DefaultRuleset().Territory

	assert.Equal(t, 4, combat.CapturedSectors(combat.OutcomeAttackerDecisive, 20, rules))
	assert.Equal(t, 2, combat.CapturedSectors(combat.OutcomeAttackerVictory, 20, rules))
	assert.Equal(t, 2, combat.CapturedSectors(combat.OutcomeDefenderRetreated, 20, rules))
	assert.Zero(t, combat.CapturedSectors(combat.OutcomeAttackerRetreated, 20, rules))
	assert.Zero(t, combat.CapturedSectors(combat.OutcomeDefenderVictory, 20, rules))
	assert.Equal(t, 1, combat.MinimumCapture(20, rules))
	assert.Zero(t, combat.MinimumCapture(1, rules))
}

func ptr[T any](v T) *T {
	return &v
}
