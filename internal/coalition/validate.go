package coalition

import "fmt"

// ValidateAttacks checks a batch of attack records and returns one message
// per problem found. An empty result means the batch is usable.
func ValidateAttacks(attacks []AttackRecord) []string {
	if len(attacks) == 0 {
		return []string{"no attacks recorded"}
	}

	var problems []string
	for i, attack := range attacks {
		if attack.AttackerID <= 0 {
			problems = append(problems, fmt.Sprintf("attack %d: missing attacker id", i))
		}
		if attack.DefenderID <= 0 {
			problems = append(problems, fmt.Sprintf("attack %d: missing defender id", i))
		}
		if attack.Damage < 0 {
			problems = append(problems, fmt.Sprintf("attack %d: negative damage %.2f", i, attack.Damage))
		}
	}
	return problems
}
