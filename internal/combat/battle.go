package combat

import (
	"fmt"
	"log/slog"
	"strings"
)

// Outcome is the terminal state of a battle.
type Outcome string

const (
	OutcomeAttackerDecisive  Outcome = "attacker_decisive"
	OutcomeAttackerVictory   Outcome = "attacker_victory"
	OutcomeDefenderVictory   Outcome = "defender_victory"
	OutcomeDefenderDecisive  Outcome = "defender_decisive"
	OutcomeAttackerRetreated Outcome = "attacker_retreated"
	OutcomeDefenderRetreated Outcome = "defender_retreated"
)

// Winner returns the side that won, or "" for an unknown outcome.
func (o Outcome) Winner() Side {
	switch o {
	case OutcomeAttackerDecisive, OutcomeAttackerVictory, OutcomeDefenderRetreated:
		return SideAttacker
	case OutcomeDefenderVictory, OutcomeDefenderDecisive, OutcomeAttackerRetreated:
		return SideDefender
	default:
		return ""
	}
}

// Score counts round wins.
type Score struct {
	Attacker int `json:"attacker"`
	Defender int `json:"defender"`
}

// BattleResult is everything the turn processor needs to apply a battle.
type BattleResult struct {
	Strategy           string             `json:"strategy"`
	RulesetVersion     string             `json:"ruleset_version"`
	AttackerStance     Stance             `json:"attacker_stance"`
	DefenderStance     Stance             `json:"defender_stance"`
	Volleys            []VolleyResult     `json:"volleys"`
	Score              Score              `json:"score"`
	Outcome            Outcome            `json:"outcome"`
	SectorsCaptured    int                `json:"sectors_captured"`
	AttackerCasualties Force              `json:"attacker_casualties"`
	DefenderCasualties Force              `json:"defender_casualties"`
	AttackerSurvivors  Force              `json:"attacker_survivors"`
	DefenderSurvivors  Force              `json:"defender_survivors"`
	Theater            TheaterAnalysis    `json:"theater"`
	GroundOverride     bool               `json:"ground_override"`
	Retreat            *RetreatRecord     `json:"retreat,omitempty"`
	AttackerPower      float64            `json:"attacker_power"`
	DefenderPower      float64            `json:"defender_power"`
	PowerScale         *PowerScale        `json:"power_scale,omitempty"`
	WinProbability     float64            `json:"win_probability,omitempty"`
	Underdog           UnderdogAdjustment `json:"underdog"`
}

// Summary renders a one-line narrative of the battle.
func (r BattleResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d-%d)", r.Outcome, r.Score.Attacker, r.Score.Defender)
	if r.GroundOverride {
		b.WriteString(", ground superiority override")
	}
	if r.Retreat != nil {
		fmt.Fprintf(&b, ", %s withdrew after round %d", r.Retreat.Side, r.Retreat.AfterRound)
	}
	fmt.Fprintf(&b, ": %d sectors captured, attacker lost %d, defender lost %d",
		r.SectorsCaptured, r.AttackerCasualties.Total(), r.DefenderCasualties.Total())
	return b.String()
}

// Options are the per-battle inputs besides the two forces.
//
// Randomness is resolved in this order: Roller, then Rolls (replayed first,
// falling back to the next source), then Random (a fixed draw), then Seed.
// With none set the battle draws from a crypto-seeded source.
type Options struct {
	AttackerStance        Stance         `json:"attacker_stance"`
	DefenderStance        Stance         `json:"defender_stance"`
	DefenderSectors       int            `json:"defender_sectors"`
	AttackerEffectiveness *Effectiveness `json:"attacker_effectiveness,omitempty"`
	DefenderEffectiveness *Effectiveness `json:"defender_effectiveness,omitempty"`
	AttackerNetworth      float64        `json:"attacker_networth,omitempty"`
	DefenderNetworth      float64        `json:"defender_networth,omitempty"`
	CoalitionBonus        float64        `json:"coalition_bonus,omitempty"`
	Retreat               *Retreat       `json:"retreat,omitempty"`
	Random                *float64       `json:"random,omitempty"`
	Rolls                 []int          `json:"rolls,omitempty"`
	Seed                  int64          `json:"seed,omitempty"`
	Roller                Roller         `json:"-"`
}

// Deterministic reports whether the options pin every random draw.
func (o Options) Deterministic() bool {
	return o.Roller == nil && (o.Random != nil || o.Seed != 0)
}

func (o Options) roller() Roller {
	if o.Roller != nil {
		return o.Roller
	}

	var base Roller
	switch {
	case o.Random != nil:
		base = NewFixedRoller(*o.Random)
	case o.Seed != 0:
		base = NewSeededRoller(o.Seed)
	default:
		base = NewRandomRoller()
	}

	if len(o.Rolls) > 0 {
		return NewSequenceRoller(o.Rolls, base)
	}
	return base
}

func (o Options) normalize(rules Ruleset) (Options, error) {
	attackerStance, err := ParseStance(string(o.AttackerStance))
	if err != nil {
		return o, fmt.Errorf("attacker: %w", err)
	}
	defenderStance, err := ParseStance(string(o.DefenderStance))
	if err != nil {
		return o, fmt.Errorf("defender: %w", err)
	}
	o.AttackerStance = attackerStance
	o.DefenderStance = defenderStance

	if o.DefenderSectors < 0 {
		o.DefenderSectors = 0
	}
	if o.CoalitionBonus < 0 {
		o.CoalitionBonus = 0
	}

	if o.Retreat != nil {
		if o.Retreat.Side != SideAttacker && o.Retreat.Side != SideDefender {
			return o, fmt.Errorf("%w: unknown side %q", ErrInvalidRetreat, o.Retreat.Side)
		}
		if o.Retreat.AfterRound < 1 || o.Retreat.AfterRound >= rules.Volley.MaxRounds {
			return o, fmt.Errorf("%w: retreat is only possible after rounds 1 to %d", ErrInvalidRetreat, rules.Volley.MaxRounds-1)
		}
	}

	return o, nil
}

func (o Options) effectiveness(side Side, rules EffectivenessRules) Effectiveness {
	value := o.AttackerEffectiveness
	if side == SideDefender {
		value = o.DefenderEffectiveness
	}
	if value == nil {
		return Effectiveness(rules.Max)
	}
	return value.clamp(rules)
}

// powerRating holds both sides' base and effective combat power.
type powerRating struct {
	attackBase  float64
	defenseBase float64
	attack      float64
	defense     float64
	underdog    UnderdogAdjustment
}

// scale is effective over base power per side. A side without base power
// keeps its damage unscaled.
func (p powerRating) scale() *PowerScale {
	ratio := func(effective, base float64) float64 {
		if base <= 0 {
			return 1
		}
		return effective / base
	}
	return &PowerScale{
		Attacker: ratio(p.attack, p.attackBase),
		Defender: ratio(p.defense, p.defenseBase),
	}
}

// ratePowers rates both forces. The attacker's power is scaled by
// effectiveness, then the underdog bonuses, then the coalition bonus.
func ratePowers(attacker, defender Force, profiles *ProfileTable, rules Ruleset, opts Options) (powerRating, error) {
	var p powerRating
	var err error

	if p.attackBase, err = ForcePower(attacker, profiles, SideAttacker); err != nil {
		return powerRating{}, err
	}
	if p.defenseBase, err = ForcePower(defender, profiles, SideDefender); err != nil {
		return powerRating{}, err
	}

	p.attack = opts.effectiveness(SideAttacker, rules.Effectiveness).Scale(p.attackBase)
	p.defense = opts.effectiveness(SideDefender, rules.Effectiveness).Scale(p.defenseBase)

	p.attack, p.underdog = ApplyUnderdog(p.attack, p.defense, opts.AttackerNetworth, opts.DefenderNetworth, rules.Underdog)
	p.attack = ApplyCoalitionBonus(p.attack, opts.CoalitionBonus)

	return p, nil
}

// ApplyCoalitionBonus scales a raid participant's combat power by the raid's
// shared bonus.
func ApplyCoalitionBonus(power, bonus float64) float64 {
	return power * (1 + bonus)
}

func validateForces(profiles *ProfileTable, attacker, defender Force) error {
	if err := attacker.Validate(); err != nil {
		return fmt.Errorf("attacker: %w", err)
	}
	if err := defender.Validate(); err != nil {
		return fmt.Errorf("defender: %w", err)
	}
	if err := profiles.Require(attacker); err != nil {
		return fmt.Errorf("attacker: %w", err)
	}
	if err := profiles.Require(defender); err != nil {
		return fmt.Errorf("defender: %w", err)
	}
	return nil
}

// CapturedSectors returns the territory won for an outcome. The defender
// always keeps at least one sector.
func CapturedSectors(outcome Outcome, defenderSectors int, rules TerritoryRules) int {
	var captured int
	switch outcome {
	case OutcomeAttackerDecisive:
		captured = floorInt(float64(defenderSectors)*rules.DecisiveCapture) + rules.DecisiveBonus
	case OutcomeAttackerVictory, OutcomeDefenderRetreated:
		captured = max(floorInt(float64(defenderSectors)*rules.StandardCapture), rules.MinimumCapture)
	default:
		return 0
	}
	return clampCapture(captured, defenderSectors)
}

// MinimumCapture is the territory granted by the ground superiority override.
func MinimumCapture(defenderSectors int, rules TerritoryRules) int {
	return clampCapture(rules.MinimumCapture, defenderSectors)
}

func clampCapture(captured, defenderSectors int) int {
	if captured >= defenderSectors {
		captured = defenderSectors - 1
	}
	return max(captured, 0)
}

// VolleyStrategy is the canonical best-of-three d20 resolver.
type VolleyStrategy struct {
	profiles *ProfileTable
	rules    Ruleset
	logger   *slog.Logger
}

// NewVolleyStrategy builds the canonical resolver. A nil logger discards.
func NewVolleyStrategy(profiles *ProfileTable, rules Ruleset, logger *slog.Logger) *VolleyStrategy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &VolleyStrategy{profiles: profiles, rules: rules, logger: logger}
}

func (s *VolleyStrategy) Name() string { return StrategyVolley }

// Resolve runs volleys until one side holds WinsNeeded round wins, applying
// any scheduled retreat, then settles outcome, territory and casualties.
// The input forces are never modified.
func (s *VolleyStrategy) Resolve(attacker, defender Force, opts Options) (BattleResult, error) {
	logger := s.logger.With("component", "volley_strategy", "operation", "resolve")

	opts, err := opts.normalize(s.rules)
	if err != nil {
		return BattleResult{}, err
	}
	if err := validateForces(s.profiles, attacker, defender); err != nil {
		logger.Error("Battle rejected", "error", err)
		return BattleResult{}, err
	}

	powers, err := ratePowers(attacker, defender, s.profiles, s.rules, opts)
	if err != nil {
		return BattleResult{}, err
	}

	roller := opts.roller()
	theater := AnalyzeTheaters(attacker, defender, s.rules.Theater)
	engagement := Engagement{
		Profiles:       s.profiles,
		Rules:          s.rules,
		AttackerStance: opts.AttackerStance,
		DefenderStance: opts.DefenderStance,
		Theater:        theater,
		Power:          powers.scale(),
	}

	result := BattleResult{
		Strategy:       StrategyVolley,
		RulesetVersion: s.rules.Version,
		AttackerStance: opts.AttackerStance,
		DefenderStance: opts.DefenderStance,
		Volleys:        []VolleyResult{},
		Theater:        theater,
		AttackerPower:  powers.attack,
		DefenderPower:  powers.defense,
		PowerScale:     engagement.Power,
		Underdog:       powers.underdog,
	}

	wins := s.rules.Volley.WinsNeeded
	attackerLeft, defenderLeft := attacker, defender

	for round := 1; round <= s.rules.Volley.MaxRounds; round++ {
		if result.Score.Attacker >= wins || result.Score.Defender >= wins {
			break
		}

		volley := ResolveVolley(engagement, round, attackerLeft, defenderLeft, roller)
		result.Volleys = append(result.Volleys, volley)

		result.AttackerCasualties = result.AttackerCasualties.Add(volley.AttackerCasualties)
		result.DefenderCasualties = result.DefenderCasualties.Add(volley.DefenderCasualties)
		attackerLeft = attackerLeft.Sub(volley.AttackerCasualties)
		defenderLeft = defenderLeft.Sub(volley.DefenderCasualties)

		if volley.Winner == SideAttacker {
			result.Score.Attacker++
		} else {
			result.Score.Defender++
		}

		logger.Debug("Volley resolved",
			"round", round,
			"winner", volley.Winner,
			"attacker_hits", volley.AttackerHits,
			"defender_hits", volley.DefenderHits,
			"true_tie", volley.TrueTie)

		terminal := result.Score.Attacker >= wins || result.Score.Defender >= wins
		if opts.Retreat != nil && opts.Retreat.AfterRound == round && volley.RetreatPossible && !terminal {
			s.retreat(&result, opts.Retreat.Side, round, attackerLeft, defenderLeft)
			break
		}
	}

	if result.Retreat == nil {
		result.Outcome = outcomeForScore(result.Score, wins)

		if result.Outcome == OutcomeDefenderVictory && theater.GroundSuperiority {
			result.Outcome = OutcomeAttackerVictory
			result.GroundOverride = true
		}
	}

	if result.GroundOverride {
		result.SectorsCaptured = MinimumCapture(opts.DefenderSectors, s.rules.Territory)
	} else {
		result.SectorsCaptured = CapturedSectors(result.Outcome, opts.DefenderSectors, s.rules.Territory)
	}

	if result.Outcome == OutcomeDefenderDecisive {
		result.AttackerCasualties = result.AttackerCasualties.Scale(s.rules.Territory.DecisiveDefeatPenalty).Min(attacker)
	}

	result.AttackerSurvivors = attacker.Sub(result.AttackerCasualties)
	result.DefenderSurvivors = defender.Sub(result.DefenderCasualties)

	logger.Debug("Battle resolved",
		"outcome", result.Outcome,
		"score_attacker", result.Score.Attacker,
		"score_defender", result.Score.Defender,
		"sectors_captured", result.SectorsCaptured,
		"ground_override", result.GroundOverride)

	return result, nil
}

func (s *VolleyStrategy) retreat(result *BattleResult, side Side, round int, attackerLeft, defenderLeft Force) {
	survivors := attackerLeft
	if side == SideDefender {
		survivors = defenderLeft
	}
	penalty := RetreatPenalty(survivors, s.rules.Retreat)

	if side == SideAttacker {
		result.AttackerCasualties = result.AttackerCasualties.Add(penalty)
		result.Outcome = OutcomeAttackerRetreated
	} else {
		result.DefenderCasualties = result.DefenderCasualties.Add(penalty)
		result.Outcome = OutcomeDefenderRetreated
	}

	result.Retreat = &RetreatRecord{Side: side, AfterRound: round, Penalty: penalty}
}

func outcomeForScore(score Score, wins int) Outcome {
	switch {
	case score.Attacker >= wins && score.Defender == 0:
		return OutcomeAttackerDecisive
	case score.Attacker >= wins:
		return OutcomeAttackerVictory
	case score.Defender >= wins && score.Attacker == 0:
		return OutcomeDefenderDecisive
	default:
		return OutcomeDefenderVictory
	}
}
