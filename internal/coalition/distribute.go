package coalition

import "empires-server/internal/combat"

// shareEpsilon absorbs float noise when comparing allocation deficits.
const shareEpsilon = 1e-9

// Distribute splits captured territory among the raid's participants.
//
// Every participant first receives one unit, in participant order, while
// units remain. The rest go one at a time to whoever is furthest below their
// damage-proportional share; ties favour the earlier participant. With no
// recorded damage the split is as even as possible, the remainder going to
// the first participants. Nothing is distributed when captured is zero.
func Distribute(raid Raid, captured int) []Distribution {
	n := len(raid.Participants)
	if captured <= 0 || n == 0 {
		return nil
	}

	out := make([]Distribution, n)
	credit := 1 / float64(n)
	total := raid.TotalDamage()

	for i, p := range raid.Participants {
		out[i] = Distribution{EmpireID: p.EmpireID, Name: p.Name, EliminationCredit: credit}
		if total > 0 {
			out[i].DamageShare = p.Damage / total
		}
	}

	if total <= 0 {
		base, remainder := captured/n, captured%n
		for i := range out {
			out[i].Territory = base
			if i < remainder {
				out[i].Territory++
			}
		}
		return out
	}

	remaining := captured
	for i := range out {
		if remaining == 0 {
			break
		}
		out[i].Territory = 1
		remaining--
	}

	for ; remaining > 0; remaining-- {
		best, bestDeficit := 0, 0.0
		for i := range out {
			deficit := float64(captured)*out[i].DamageShare - float64(out[i].Territory)
			if i == 0 || deficit > bestDeficit+shareEpsilon {
				best, bestDeficit = i, deficit
			}
		}
		out[best].Territory++
	}

	return out
}

// RewardsFor returns the reward terms every participant of raid receives.
func RewardsFor(raid Raid, rules combat.CoalitionRules) Rewards {
	rewards := Rewards{
		ReputationBonus: rules.ReputationBonus,
		Production: TimedBonus{
			Value:       rules.ProductionBonus,
			Turns:       rules.ProductionTurns,
			ExpiresTurn: raid.Turn + rules.ProductionTurns,
		},
		Morale: TimedBonus{
			Value:       rules.MoraleBonus,
			Turns:       rules.MoraleTurns,
			ExpiresTurn: raid.Turn + rules.MoraleTurns,
		},
	}
	if n := len(raid.Participants); n > 0 {
		rewards.EliminationCredit = 1 / float64(n)
	}
	return rewards
}
