package coalition

import (
	"cmp"
	"slices"

	"empires-server/internal/combat"
)

type raidKey struct {
	target int
	turn   int
}

// Detect groups attacks by target and turn and returns every valid raid,
// ordered by turn then target. Only boss targets can be raided.
func Detect(attacks []AttackRecord, bosses []BossStatus, rules combat.CoalitionRules) []Raid {
	var keys []raidKey
	seen := map[raidKey]bool{}
	for _, attack := range attacks {
		key := raidKey{target: attack.DefenderID, turn: attack.Turn}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	slices.SortFunc(keys, func(a, b raidKey) int {
		return cmp.Or(cmp.Compare(a.turn, b.turn), cmp.Compare(a.target, b.target))
	})

	raids := []Raid{}
	for _, key := range keys {
		if raid := DetectFor(attacks, bosses, key.target, key.turn, rules); raid != nil {
			raids = append(raids, *raid)
		}
	}
	return raids
}

// DetectFor returns the raid against target in turn, or nil when there is
// none.
func DetectFor(attacks []AttackRecord, bosses []BossStatus, target, turn int, rules combat.CoalitionRules) *Raid {
	raid := Analyze(attacks, bosses, target, turn, rules)
	if !raid.Valid {
		return nil
	}
	return &raid
}

// Analyze builds the raid descriptor for target in turn whether or not it
// qualifies. Participants appear in the order of their first attack.
func Analyze(attacks []AttackRecord, bosses []BossStatus, target, turn int, rules combat.CoalitionRules) Raid {
	raid := Raid{
		TargetID:     target,
		Turn:         turn,
		AttackerIDs:  []int{},
		Participants: []Participant{},
	}

	index := map[int]int{}
	for _, attack := range attacks {
		if attack.DefenderID != target || attack.Turn != turn {
			continue
		}
		if raid.TargetName == "" {
			raid.TargetName = attack.DefenderName
		}

		i, ok := index[attack.AttackerID]
		if !ok {
			i = len(raid.Participants)
			index[attack.AttackerID] = i
			raid.AttackerIDs = append(raid.AttackerIDs, attack.AttackerID)
			raid.Participants = append(raid.Participants, Participant{
				EmpireID:   attack.AttackerID,
				Name:       attack.AttackerName,
				PeakDamage: attack.Damage,
				Strength:   attack.Strength,
			})
		}

		p := &raid.Participants[i]
		p.Attacks++
		p.Damage += attack.Damage
		if attack.Damage > p.PeakDamage {
			p.PeakDamage = attack.Damage
			p.Strength = attack.Strength
		}
	}

	raid.Valid = isBoss(bosses, target) && len(raid.Participants) >= rules.MinAttackers
	if raid.Valid {
		raid.Bonus = Bonus(len(raid.Participants), rules)
	}
	return raid
}

// Bonus is the shared combat bonus for a coalition of n attackers:
// (n - 2) × 5% capped at 25% under the default rules, zero below the
// minimum coalition size.
func Bonus(n int, rules combat.CoalitionRules) float64 {
	if n < rules.MinAttackers {
		return 0
	}
	bonus := float64(n-rules.MinAttackers+1) * rules.BonusPerAttacker
	return min(bonus, rules.MaxBonus)
}

func isBoss(bosses []BossStatus, empireID int) bool {
	for _, status := range bosses {
		if status.EmpireID == empireID {
			return status.IsBoss
		}
	}
	return false
}
