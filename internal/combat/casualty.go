package combat

import "math"

// LossRate returns the fraction of its units an attacking force loses when
// attackPower strikes defensePower. A defense/attack ratio above the bad-attack
// ratio raises the rate; one below the overwhelming ratio lowers it. The
// result always lies in [MinRate, MaxRate].
//
// Zero attack power against any defense counts as a bad attack. When both
// powers are zero the base rate applies.
func LossRate(attackPower, defensePower float64, rules CasualtyRules) float64 {
	rate := rules.BaseRate

	switch {
	case attackPower <= 0 && defensePower <= 0:
	case attackPower <= 0:
		rate = math.Min(rate+rules.BadAttackPenalty, rules.MaxRate)
	default:
		ratio := defensePower / attackPower
		if ratio > rules.BadAttackRatio {
			rate = math.Min(rate+rules.BadAttackPenalty, rules.MaxRate)
		} else if ratio < rules.OverwhelmingRatio {
			rate = math.Max(rate-rules.OverwhelmingBonus, rules.MinRate)
		}
	}

	return rate
}

// Variance maps a uniform draw r in [0,1) onto [VarianceMin, VarianceMax].
// Draws outside [0,1) are clamped.
func Variance(r float64, rules CasualtyRules) float64 {
	r = math.Max(0, math.Min(r, 1))
	return rules.VarianceMin + r*(rules.VarianceMax-rules.VarianceMin)
}

// UnitCasualties returns floor(count × rate × variance), never more than count
// and never negative.
func UnitCasualties(count int, rate, variance float64) int {
	if count <= 0 {
		return 0
	}
	return max(0, min(count, floorInt(float64(count)*rate*variance)))
}

// ForceCasualties applies UnitCasualties to every stack of force.
func ForceCasualties(force Force, rate, variance float64) Force {
	lost := Force{}
	for _, unit := range UnitTypes {
		lost = lost.With(unit, UnitCasualties(force.Count(unit), rate, variance))
	}
	return lost
}

// floorInt floors x, absorbing float noise just below an integer.
func floorInt(x float64) int {
	return int(math.Floor(x + 1e-9))
}
