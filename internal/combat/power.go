package combat

// ForcePower rates a force from its profiles: attack power when attacking
// (defense platforms excluded), defense power when defending.
func ForcePower(force Force, profiles *ProfileTable, side Side) (float64, error) {
	if err := profiles.Require(force); err != nil {
		return 0, err
	}

	power := 0.0
	for _, unit := range UnitTypes {
		count := force.Count(unit)
		if count == 0 {
			continue
		}
		profile := profiles.profiles[unit]
		if side == SideAttacker {
			if unit == UnitDefensePlatform {
				continue
			}
			power += float64(count) * profile.AttackPower
		} else {
			power += float64(count) * profile.DefensePower
		}
	}
	return power, nil
}

// UnderdogAdjustment reports which underdog bonuses were applied.
type UnderdogAdjustment struct {
	PowerRatio bool    `json:"power_ratio"`
	Networth   bool    `json:"networth"`
	Multiplier float64 `json:"multiplier"`
}

// ApplyUnderdog boosts an outmatched attacker. The power-ratio bonus is
// evaluated first, on the unboosted powers, and the networth punch-up bonus
// multiplies on top of it.
func ApplyUnderdog(attackPower, defensePower, attackerNetworth, defenderNetworth float64, rules UnderdogRules) (float64, UnderdogAdjustment) {
	adjustment := UnderdogAdjustment{Multiplier: 1}

	if rules.PowerRatioEnabled && attackPower > 0 && defensePower > 0 &&
		attackPower/defensePower < rules.PowerRatioThreshold {
		adjustment.PowerRatio = true
		adjustment.Multiplier *= 1 + rules.PowerRatioBonus
	}

	if rules.NetworthEnabled && attackerNetworth > 0 && defenderNetworth > 0 &&
		attackerNetworth/defenderNetworth < rules.NetworthThreshold {
		adjustment.Networth = true
		adjustment.Multiplier *= 1 + rules.NetworthBonus
	}

	return attackPower * adjustment.Multiplier, adjustment
}
