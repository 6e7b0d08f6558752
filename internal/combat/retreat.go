package combat

// Retreat schedules a withdrawal after the given round.
type Retreat struct {
	Side       Side `json:"side"`
	AfterRound int  `json:"after_round"`
}

// RetreatRecord describes a withdrawal that took place.
type RetreatRecord struct {
	Side       Side  `json:"side"`
	AfterRound int   `json:"after_round"`
	Penalty    Force `json:"penalty"`
}

// RetreatPenalty is the attack-of-opportunity loss suffered by a retreating
// force: floor(survivors × Penalty) per stack. Defense platforms never
// retreat and are exempt.
func RetreatPenalty(survivors Force, rules RetreatRules) Force {
	penalty := Force{}
	for _, unit := range UnitTypes {
		if unit == UnitDefensePlatform {
			continue
		}
		penalty = penalty.With(unit, floorInt(float64(survivors.Count(unit))*rules.Penalty))
	}
	return penalty
}

// ApplyRetreat adds the retreat penalty on surviving units to the casualties
// already recorded and returns the new casualty totals.
func ApplyRetreat(survivors, prior Force, rules RetreatRules) Force {
	return prior.Add(RetreatPenalty(survivors, rules))
}
