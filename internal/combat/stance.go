package combat

import "fmt"

// Stance is the combat posture a side picks for one battle.
type Stance string

const (
	StanceAggressive Stance = "aggressive"
	StanceBalanced   Stance = "balanced"
	StanceDefensive  Stance = "defensive"
	StanceEvasive    Stance = "evasive"
)

// Stances lists the four stances.
var Stances = []Stance{StanceAggressive, StanceBalanced, StanceDefensive, StanceEvasive}

// StanceModifiers is the attack/defense/casualty triple of a stance.
type StanceModifiers struct {
	Attack             int     `json:"attack" yaml:"attack"`
	Defense            int     `json:"defense" yaml:"defense"`
	CasualtyMultiplier float64 `json:"casualty_multiplier" yaml:"casualty_multiplier"`
}

// DefaultStanceTable is the canonical stance table.
func DefaultStanceTable() map[Stance]StanceModifiers {
	return map[Stance]StanceModifiers{
		StanceAggressive: {Attack: 3, Defense: -2, CasualtyMultiplier: 1.2},
		StanceBalanced:   {Attack: 0, Defense: 0, CasualtyMultiplier: 1.0},
		StanceDefensive:  {Attack: -2, Defense: 3, CasualtyMultiplier: 0.8},
		StanceEvasive:    {Attack: -3, Defense: 1, CasualtyMultiplier: 0.6},
	}
}

// ValidStance reports whether s names one of the four stances.
func ValidStance(s string) bool {
	switch Stance(s) {
	case StanceAggressive, StanceBalanced, StanceDefensive, StanceEvasive:
		return true
	}
	return false
}

// ParseStance converts s into a Stance. An empty string is balanced.
func ParseStance(s string) (Stance, error) {
	if s == "" {
		return StanceBalanced, nil
	}
	if !ValidStance(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStance, s)
	}
	return Stance(s), nil
}

// StanceModifiers resolves a stance against the ruleset's stance table.
// Ruleset.Validate guarantees the four stances are present.
func (r Ruleset) StanceModifiers(stance Stance) StanceModifiers {
	if stance == "" {
		stance = StanceBalanced
	}
	return r.Stances[stance]
}
