package combat

// TheaterBonus names a composition-based bonus.
type TheaterBonus string

const (
	BonusSpaceDominance    TheaterBonus = "space_dominance"
	BonusOrbitalShield     TheaterBonus = "orbital_shield"
	BonusGroundSuperiority TheaterBonus = "ground_superiority"
)

// TheaterAnalysis is derived once from the initial forces and held constant
// for the whole battle.
type TheaterAnalysis struct {
	AttackerBonuses         []TheaterBonus `json:"attacker_bonuses"`
	DefenderBonuses         []TheaterBonus `json:"defender_bonuses"`
	AttackerAttackModifier  int            `json:"attacker_attack_modifier"`
	DefenderDefenseModifier int            `json:"defender_defense_modifier"`
	GroundSuperiority       bool           `json:"ground_superiority"`
}

// AnalyzeTheaters grants the space, orbital and ground bonuses. The bonuses
// are independent and may stack.
func AnalyzeTheaters(attacker, defender Force, rules TheaterRules) TheaterAnalysis {
	analysis := TheaterAnalysis{
		AttackerBonuses: []TheaterBonus{},
		DefenderBonuses: []TheaterBonus{},
	}

	if dominates(attacker.SpaceUnits(), defender.SpaceUnits(), rules.SpaceDominanceRatio) {
		analysis.AttackerBonuses = append(analysis.AttackerBonuses, BonusSpaceDominance)
		analysis.AttackerAttackModifier += rules.SpaceDominanceAttack
	}

	if defender.DefensePlatform > 0 {
		analysis.DefenderBonuses = append(analysis.DefenderBonuses, BonusOrbitalShield)
		analysis.DefenderDefenseModifier += rules.OrbitalShieldDefense
	}

	if dominates(attacker.Ground, defender.Ground, rules.GroundSuperiorityRatio) {
		analysis.AttackerBonuses = append(analysis.AttackerBonuses, BonusGroundSuperiority)
		analysis.GroundSuperiority = true
	}

	return analysis
}

// dominates reports ours/theirs >= ratio. An empty opposing theater counts as
// dominated when we have anything there.
func dominates(ours, theirs int, ratio float64) bool {
	if ours == 0 {
		return false
	}
	if theirs == 0 {
		return true
	}
	return float64(ours)/float64(theirs) >= ratio
}
