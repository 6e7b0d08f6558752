package combat

import "math"

// Side identifies one party of an engagement.
type Side string

const (
	SideAttacker Side = "attacker"
	SideDefender Side = "defender"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideAttacker {
		return SideDefender
	}
	return SideAttacker
}

// AttackRoll is the outcome of one unit type's d20.
type AttackRoll struct {
	Unit      UnitType `json:"unit"`
	Units     int      `json:"units"`
	Roll      int      `json:"roll"`
	Modifier  int      `json:"modifier"`
	Total     int      `json:"total"`
	Threshold int      `json:"threshold"`
	Hit       bool     `json:"hit"`
	Critical  bool     `json:"critical"`
	Fumble    bool     `json:"fumble"`
	Damage    int      `json:"damage"`
}

// VolleyResult aggregates one round of combat.
type VolleyResult struct {
	Round              int          `json:"round"`
	AttackerStart      Force        `json:"attacker_start"`
	DefenderStart      Force        `json:"defender_start"`
	AttackerRolls      []AttackRoll `json:"attacker_rolls"`
	DefenderRolls      []AttackRoll `json:"defender_rolls"`
	AttackerHits       int          `json:"attacker_hits"`
	DefenderHits       int          `json:"defender_hits"`
	AttackerDamage     int          `json:"attacker_damage"`
	DefenderDamage     int          `json:"defender_damage"`
	Winner             Side         `json:"winner"`
	TrueTie            bool         `json:"true_tie"`
	AttackerCasualties Force        `json:"attacker_casualties"`
	DefenderCasualties Force        `json:"defender_casualties"`
	RetreatPossible    bool         `json:"retreat_possible"`
}

// Engagement is the battle-wide context every volley shares.
type Engagement struct {
	Profiles       *ProfileTable
	Rules          Ruleset
	AttackerStance Stance
	DefenderStance Stance
	Theater        TheaterAnalysis
	// Power scales each side's damage. Nil leaves damage unscaled.
	Power *PowerScale
}

// PowerScale is the ratio of each side's effective combat power to the base
// power of its force: effectiveness, underdog and coalition bonuses all end
// up here.
type PowerScale struct {
	Attacker float64 `json:"attacker"`
	Defender float64 `json:"defender"`
}

func (e Engagement) powerScale(side Side) float64 {
	if e.Power == nil {
		return 1
	}
	if side == SideDefender {
		return e.Power.Defender
	}
	return e.Power.Attacker
}

// ResolveVolley runs one round. The forces are the survivors at the start of
// the round; both must already satisfy Profiles.Require.
//
// Each unit type present rolls once per side. Rolls are drawn attacker first,
// then defender, each walking unit types in canonical order.
func ResolveVolley(e Engagement, round int, attacker, defender Force, roller Roller) VolleyResult {
	attackerMods := e.Rules.StanceModifiers(e.AttackerStance)
	defenderMods := e.Rules.StanceModifiers(e.DefenderStance)

	attackerThreshold := e.Profiles.meanDefense(defender) + defenderMods.Defense + e.Theater.DefenderDefenseModifier
	defenderThreshold := e.Profiles.meanDefense(attacker) + attackerMods.Defense

	result := VolleyResult{
		Round:           round,
		AttackerStart:   attacker,
		DefenderStart:   defender,
		RetreatPossible: round < e.Rules.Volley.MaxRounds,
	}

	result.AttackerRolls = e.fire(attacker, SideAttacker, attackerMods.Attack+e.Theater.AttackerAttackModifier, attackerThreshold, roller)
	result.DefenderRolls = e.fire(defender, SideDefender, defenderMods.Attack, defenderThreshold, roller)

	result.AttackerHits, result.AttackerDamage = tally(result.AttackerRolls)
	result.DefenderHits, result.DefenderDamage = tally(result.DefenderRolls)

	switch {
	case result.AttackerHits > result.DefenderHits:
		result.Winner = SideAttacker
	case result.AttackerHits < result.DefenderHits:
		result.Winner = SideDefender
	case result.AttackerDamage > result.DefenderDamage:
		result.Winner = SideAttacker
	case result.AttackerDamage < result.DefenderDamage:
		result.Winner = SideDefender
	default:
		// A true tie counts as a defender round win.
		result.Winner = SideDefender
		result.TrueTie = true
	}

	result.AttackerCasualties = e.casualties(attacker, result.DefenderDamage, attackerMods.CasualtyMultiplier)
	result.DefenderCasualties = e.casualties(defender, result.AttackerDamage, defenderMods.CasualtyMultiplier)

	return result
}

// fire rolls once for every eligible stack of force. Defense platforms only
// fire when defending. A hit that the side's power scales down to no damage
// does not land.
func (e Engagement) fire(force Force, side Side, modifier, threshold int, roller Roller) []AttackRoll {
	rolls := []AttackRoll{}
	volley := e.Rules.Volley
	scale := e.powerScale(side)

	for _, unit := range UnitTypes {
		count := force.Count(unit)
		if count == 0 || (side == SideAttacker && unit == UnitDefensePlatform) {
			continue
		}
		profile := e.Profiles.profiles[unit]
		unitModifier := profile.AttackModifier + modifier

		roll := roller.D20()
		attack := AttackRoll{
			Unit:      unit,
			Units:     count,
			Roll:      roll,
			Modifier:  unitModifier,
			Total:     roll + unitModifier,
			Threshold: threshold,
		}

		switch {
		case roll <= volley.FumbleRoll:
			attack.Fumble = true
		case roll >= volley.CriticalRoll:
			attack.Hit = true
			attack.Critical = true
		default:
			attack.Hit = attack.Total >= threshold
		}

		if attack.Hit {
			damage := (count*profile.HullPoints + 1) / 2
			if attack.Critical {
				damage *= volley.CriticalMultiplier
			}
			attack.Damage = scaleDamage(damage, scale)
			attack.Hit = attack.Damage > 0
		}
		rolls = append(rolls, attack)
	}

	return rolls
}

// scaleDamage applies a power scale, rounding half away from zero.
func scaleDamage(damage int, scale float64) int {
	if scale == 1 {
		return damage
	}
	return int(math.Round(float64(damage) * math.Max(scale, 0)))
}

// casualties spreads incoming damage across the stacks of force by hull share
// and converts it into lost units.
func (e Engagement) casualties(force Force, damage int, multiplier float64) Force {
	lost := Force{}
	totalHull := e.Profiles.hull(force)
	if damage <= 0 || totalHull == 0 {
		return lost
	}

	for _, unit := range UnitTypes {
		count := force.Count(unit)
		if count == 0 {
			continue
		}
		profile := e.Profiles.profiles[unit]
		share := float64(count*profile.HullPoints) / float64(totalHull)
		units := floorInt(float64(damage) * share * profile.UnitsPerHullPoint * multiplier)
		lost = lost.With(unit, min(units, count))
	}

	return lost
}

func tally(rolls []AttackRoll) (hits, damage int) {
	for _, roll := range rolls {
		if roll.Hit {
			hits++
			damage += roll.Damage
		}
	}
	return hits, damage
}
