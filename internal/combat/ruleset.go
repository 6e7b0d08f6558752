package combat

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRulesetVersion names the built-in balance.
const DefaultRulesetVersion = "2024.1-standard"

// Ruleset carries every balance constant used by the combat core. It is passed
// by value into each strategy so per-game variants can be swapped freely.
type Ruleset struct {
	Version       string                     `json:"version" yaml:"version"`
	Stances       map[Stance]StanceModifiers `json:"stances" yaml:"stances"`
	Theater       TheaterRules               `json:"theater" yaml:"theater"`
	Volley        VolleyRules                `json:"volley" yaml:"volley"`
	Territory     TerritoryRules             `json:"territory" yaml:"territory"`
	Retreat       RetreatRules               `json:"retreat" yaml:"retreat"`
	Casualty      CasualtyRules              `json:"casualty" yaml:"casualty"`
	Effectiveness EffectivenessRules         `json:"effectiveness" yaml:"effectiveness"`
	Underdog      UnderdogRules              `json:"underdog" yaml:"underdog"`
	Unified       UnifiedRules               `json:"unified" yaml:"unified"`
	Coalition     CoalitionRules             `json:"coalition" yaml:"coalition"`
}

type TheaterRules struct {
	SpaceDominanceRatio    float64 `json:"space_dominance_ratio" yaml:"space_dominance_ratio"`
	SpaceDominanceAttack   int     `json:"space_dominance_attack" yaml:"space_dominance_attack"`
	OrbitalShieldDefense   int     `json:"orbital_shield_defense" yaml:"orbital_shield_defense"`
	GroundSuperiorityRatio float64 `json:"ground_superiority_ratio" yaml:"ground_superiority_ratio"`
}

type VolleyRules struct {
	MaxRounds          int `json:"max_rounds" yaml:"max_rounds"`
	WinsNeeded         int `json:"wins_needed" yaml:"wins_needed"`
	CriticalRoll       int `json:"critical_roll" yaml:"critical_roll"`
	FumbleRoll         int `json:"fumble_roll" yaml:"fumble_roll"`
	CriticalMultiplier int `json:"critical_multiplier" yaml:"critical_multiplier"`
}

type TerritoryRules struct {
	StandardCapture       float64 `json:"standard_capture" yaml:"standard_capture"`
	DecisiveCapture       float64 `json:"decisive_capture" yaml:"decisive_capture"`
	DecisiveBonus         int     `json:"decisive_bonus" yaml:"decisive_bonus"`
	MinimumCapture        int     `json:"minimum_capture" yaml:"minimum_capture"`
	DecisiveDefeatPenalty float64 `json:"decisive_defeat_penalty" yaml:"decisive_defeat_penalty"`
}

type RetreatRules struct {
	Penalty float64 `json:"penalty" yaml:"penalty"`
}

type CasualtyRules struct {
	BaseRate          float64 `json:"base_rate" yaml:"base_rate"`
	BadAttackRatio    float64 `json:"bad_attack_ratio" yaml:"bad_attack_ratio"`
	BadAttackPenalty  float64 `json:"bad_attack_penalty" yaml:"bad_attack_penalty"`
	MaxRate           float64 `json:"max_rate" yaml:"max_rate"`
	OverwhelmingRatio float64 `json:"overwhelming_ratio" yaml:"overwhelming_ratio"`
	OverwhelmingBonus float64 `json:"overwhelming_bonus" yaml:"overwhelming_bonus"`
	MinRate           float64 `json:"min_rate" yaml:"min_rate"`
	VarianceMin       float64 `json:"variance_min" yaml:"variance_min"`
	VarianceMax       float64 `json:"variance_max" yaml:"variance_max"`
}

type EffectivenessRules struct {
	Initial            int `json:"initial" yaml:"initial"`
	Max                int `json:"max" yaml:"max"`
	VictoryMin         int `json:"victory_min" yaml:"victory_min"`
	VictoryMax         int `json:"victory_max" yaml:"victory_max"`
	DefeatPenalty      int `json:"defeat_penalty" yaml:"defeat_penalty"`
	Recovery           int `json:"recovery" yaml:"recovery"`
	MaintenancePenalty int `json:"maintenance_penalty" yaml:"maintenance_penalty"`
}

// UnderdogRules gate the power-ratio and networth ("punch-up") bonuses. Both
// are multiplicative and applied in that order.
type UnderdogRules struct {
	PowerRatioEnabled   bool    `json:"power_ratio_enabled" yaml:"power_ratio_enabled"`
	PowerRatioThreshold float64 `json:"power_ratio_threshold" yaml:"power_ratio_threshold"`
	PowerRatioBonus     float64 `json:"power_ratio_bonus" yaml:"power_ratio_bonus"`
	NetworthEnabled     bool    `json:"networth_enabled" yaml:"networth_enabled"`
	NetworthThreshold   float64 `json:"networth_threshold" yaml:"networth_threshold"`
	NetworthBonus       float64 `json:"networth_bonus" yaml:"networth_bonus"`
}

type UnifiedRules struct {
	MinWinProbability float64 `json:"min_win_probability" yaml:"min_win_probability"`
	MaxWinProbability float64 `json:"max_win_probability" yaml:"max_win_probability"`
	DecisiveRatio     float64 `json:"decisive_ratio" yaml:"decisive_ratio"`
}

type CoalitionRules struct {
	MinAttackers     int     `json:"min_attackers" yaml:"min_attackers"`
	BonusPerAttacker float64 `json:"bonus_per_attacker" yaml:"bonus_per_attacker"`
	MaxBonus         float64 `json:"max_bonus" yaml:"max_bonus"`
	ReputationBonus  int     `json:"reputation_bonus" yaml:"reputation_bonus"`
	ProductionBonus  float64 `json:"production_bonus" yaml:"production_bonus"`
	ProductionTurns  int     `json:"production_turns" yaml:"production_turns"`
	MoraleBonus      float64 `json:"morale_bonus" yaml:"morale_bonus"`
	MoraleTurns      int     `json:"morale_turns" yaml:"morale_turns"`
}

// DefaultRuleset returns the standard balance.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Version: DefaultRulesetVersion,
		Stances: DefaultStanceTable(),
		Theater: TheaterRules{
			SpaceDominanceRatio:    2.0,
			SpaceDominanceAttack:   2,
			OrbitalShieldDefense:   2,
			GroundSuperiorityRatio: 3.0,
		},
		Volley: VolleyRules{
			MaxRounds:          3,
			WinsNeeded:         2,
			CriticalRoll:       20,
			FumbleRoll:         1,
			CriticalMultiplier: 2,
		},
		Territory: TerritoryRules{
			StandardCapture:       0.10,
			DecisiveCapture:       0.15,
			DecisiveBonus:         1,
			MinimumCapture:        1,
			DecisiveDefeatPenalty: 1.25,
		},
		Retreat: RetreatRules{Penalty: 0.15},
		Casualty: CasualtyRules{
			BaseRate:          0.25,
			BadAttackRatio:    2.0,
			BadAttackPenalty:  0.10,
			MaxRate:           0.35,
			OverwhelmingRatio: 0.5,
			OverwhelmingBonus: 0.10,
			MinRate:           0.15,
			VarianceMin:       0.8,
			VarianceMax:       1.2,
		},
		Effectiveness: EffectivenessRules{
			Initial:            85,
			Max:                100,
			VictoryMin:         5,
			VictoryMax:         10,
			DefeatPenalty:      5,
			Recovery:           2,
			MaintenancePenalty: 10,
		},
		Underdog: UnderdogRules{
			PowerRatioEnabled:   true,
			PowerRatioThreshold: 0.5,
			PowerRatioBonus:     0.20,
			NetworthEnabled:     true,
			NetworthThreshold:   0.5,
			NetworthBonus:       0.10,
		},
		Unified: UnifiedRules{
			MinWinProbability: 0.05,
			MaxWinProbability: 0.95,
			DecisiveRatio:     3.0,
		},
		Coalition: CoalitionRules{
			MinAttackers:     3,
			BonusPerAttacker: 0.05,
			MaxBonus:         0.25,
			ReputationBonus:  10,
			ProductionBonus:  0.10,
			ProductionTurns:  5,
			MoraleBonus:      0.05,
			MoraleTurns:      3,
		},
	}
}

// LoadRuleset decodes a YAML ruleset. Fields missing from the document keep
// their default values.
func LoadRuleset(r io.Reader) (Ruleset, error) {
	rules := DefaultRuleset()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return Ruleset{}, fmt.Errorf("failed to decode ruleset: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return Ruleset{}, err
	}
	return rules, nil
}

// LoadRulesetFile reads a ruleset from path.
func LoadRulesetFile(path string) (Ruleset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Ruleset{}, fmt.Errorf("failed to open ruleset: %w", err)
	}
	defer file.Close()

	return LoadRuleset(file)
}

// Validate checks the invariants the algorithms rely on.
func (r Ruleset) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidRuleset)
	}
	for _, stance := range Stances {
		if _, ok := r.Stances[stance]; !ok {
			return fmt.Errorf("%w: stance %q missing", ErrInvalidRuleset, stance)
		}
	}
	if r.Volley.WinsNeeded <= 0 || r.Volley.MaxRounds < 2*r.Volley.WinsNeeded-1 {
		return fmt.Errorf("%w: max_rounds %d cannot decide best of %d", ErrInvalidRuleset, r.Volley.MaxRounds, 2*r.Volley.WinsNeeded-1)
	}
	if r.Casualty.MinRate > r.Casualty.BaseRate || r.Casualty.BaseRate > r.Casualty.MaxRate {
		return fmt.Errorf("%w: casualty rates must satisfy min <= base <= max", ErrInvalidRuleset)
	}
	if r.Casualty.VarianceMin > r.Casualty.VarianceMax {
		return fmt.Errorf("%w: variance_min exceeds variance_max", ErrInvalidRuleset)
	}
	if r.Effectiveness.Max <= 0 || r.Effectiveness.VictoryMin > r.Effectiveness.VictoryMax {
		return fmt.Errorf("%w: effectiveness bounds are inconsistent", ErrInvalidRuleset)
	}
	if r.Unified.MinWinProbability < 0 || r.Unified.MaxWinProbability > 1 || r.Unified.MinWinProbability > r.Unified.MaxWinProbability {
		return fmt.Errorf("%w: win probability bounds must lie in [0,1]", ErrInvalidRuleset)
	}
	if r.Coalition.MinAttackers < 2 {
		return fmt.Errorf("%w: coalition needs at least 2 attackers", ErrInvalidRuleset)
	}
	return nil
}
