package combat

import "math"

// Effectiveness is the persistent 0–100 army readiness of an empire. It is
// owned by the empire record; these functions return new values and never
// touch storage.
type Effectiveness int

// CombatResult is an outcome from one side's point of view.
type CombatResult string

const (
	ResultVictory CombatResult = "victory"
	ResultDefeat  CombatResult = "defeat"
	ResultDraw    CombatResult = "draw"
)

// InitialEffectiveness is the value a new force starts with.
func InitialEffectiveness(rules EffectivenessRules) Effectiveness {
	return Effectiveness(rules.Initial).clamp(rules)
}

// AfterCombat applies a battle result. A victory adds a random integer bonus
// in [VictoryMin, VictoryMax] derived from r; a defeat subtracts DefeatPenalty;
// a draw changes nothing.
func (e Effectiveness) AfterCombat(result CombatResult, r float64, rules EffectivenessRules) Effectiveness {
	switch result {
	case ResultVictory:
		return (e + Effectiveness(VictoryBonus(r, rules))).clamp(rules)
	case ResultDefeat:
		return (e - Effectiveness(rules.DefeatPenalty)).clamp(rules)
	default:
		return e.clamp(rules)
	}
}

// VictoryBonus maps r onto [VictoryMin, VictoryMax]. Draws at or above 1 are
// capped so the top of the range is never exceeded.
func VictoryBonus(r float64, rules EffectivenessRules) int {
	r = math.Max(0, math.Min(r, math.Nextafter(1, 0)))
	span := rules.VictoryMax - rules.VictoryMin + 1
	return rules.VictoryMin + int(math.Floor(r*float64(span)))
}

// Recover applies the natural per-turn recovery.
func (e Effectiveness) Recover(rules EffectivenessRules) Effectiveness {
	return (e + Effectiveness(rules.Recovery)).clamp(rules)
}

// MaintenancePenalty applies the unpaid-maintenance penalty.
func (e Effectiveness) MaintenancePenalty(rules EffectivenessRules) Effectiveness {
	return (e - Effectiveness(rules.MaintenancePenalty)).clamp(rules)
}

// Scale returns power weighted by effectiveness.
func (e Effectiveness) Scale(power float64) float64 {
	return power * float64(e) / 100
}

func (e Effectiveness) clamp(rules EffectivenessRules) Effectiveness {
	return max(0, min(e, Effectiveness(rules.Max)))
}

// ResultFor translates a battle outcome into a side's combat result.
func ResultFor(outcome Outcome, side Side) CombatResult {
	winner := outcome.Winner()
	switch {
	case winner == "":
		return ResultDraw
	case winner == side:
		return ResultVictory
	default:
		return ResultDefeat
	}
}
