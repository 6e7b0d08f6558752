package coalition

// AttackRecord is one engagement launched during a turn, as recorded by the
// turn processor.
type AttackRecord struct {
	AttackerID   int     `json:"attacker_id"`
	AttackerName string  `json:"attacker_name"`
	DefenderID   int     `json:"defender_id"`
	DefenderName string  `json:"defender_name"`
	Damage       float64 `json:"damage"`
	Strength     float64 `json:"strength"`
	Turn         int     `json:"turn"`
}

// BossStatus marks a defender as a high-value target.
type BossStatus struct {
	EmpireID int  `json:"empire_id"`
	IsBoss   bool `json:"is_boss"`
}

// Participant is one distinct attacker in a raid. Damage is the sum over all
// of the attacker's strikes; PeakDamage and Strength come from the single
// highest-damage strike.
type Participant struct {
	EmpireID   int     `json:"empire_id"`
	Name       string  `json:"name"`
	Attacks    int     `json:"attacks"`
	Damage     float64 `json:"damage"`
	PeakDamage float64 `json:"peak_damage"`
	Strength   float64 `json:"strength"`
}

// Raid describes the coalition formed against one target in one turn.
type Raid struct {
	TargetID     int           `json:"target_id"`
	TargetName   string        `json:"target_name"`
	Turn         int           `json:"turn"`
	AttackerIDs  []int         `json:"attacker_ids"`
	Participants []Participant `json:"participants"`
	Valid        bool          `json:"valid"`
	Bonus        float64       `json:"bonus"`
}

// TotalDamage sums the damage of every participant.
func (r Raid) TotalDamage() float64 {
	total := 0.0
	for _, p := range r.Participants {
		total += p.Damage
	}
	return total
}

// Distribution is one participant's cut of a raid.
type Distribution struct {
	EmpireID          int     `json:"empire_id"`
	Name              string  `json:"name"`
	Territory         int     `json:"territory"`
	DamageShare       float64 `json:"damage_share"`
	EliminationCredit float64 `json:"elimination_credit"`
}

// TimedBonus is a modifier that lasts for a number of turns.
type TimedBonus struct {
	Value       float64 `json:"value"`
	Turns       int     `json:"turns"`
	ExpiresTurn int     `json:"expires_turn"`
}

// Rewards are the aggregate terms granted to every raid participant.
type Rewards struct {
	EliminationCredit float64    `json:"elimination_credit"`
	ReputationBonus   int        `json:"reputation_bonus"`
	Production        TimedBonus `json:"production"`
	Morale            TimedBonus `json:"morale"`
}
