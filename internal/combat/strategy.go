package combat

import (
	"fmt"
	"log/slog"
	"math"
)

const (
	StrategyVolley  = "volley"
	StrategyUnified = "unified"
)

// Strategy resolves one engagement. Implementations hold only read-only
// configuration and are safe to share between goroutines.
type Strategy interface {
	Name() string
	Resolve(attacker, defender Force, opts Options) (BattleResult, error)
}

// StrategyByName builds the named strategy.
func StrategyByName(name string, profiles *ProfileTable, rules Ruleset, logger *slog.Logger) (Strategy, error) {
	switch name {
	case StrategyVolley, "":
		return NewVolleyStrategy(profiles, rules, logger), nil
	case StrategyUnified:
		return NewUnifiedStrategy(profiles, rules, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// ResolveBattle resolves an engagement with the canonical volley strategy.
func ResolveBattle(attacker, defender Force, profiles *ProfileTable, rules Ruleset, opts Options) (BattleResult, error) {
	return NewVolleyStrategy(profiles, rules, nil).Resolve(attacker, defender, opts)
}

// EffectivePower scales a base power by army effectiveness.
func EffectivePower(base float64, effectiveness Effectiveness) float64 {
	return effectiveness.Scale(base)
}

// UnifiedStrategy is the legacy single-draw resolver. One uniform draw
// against the attacker's win probability settles the battle; casualties come
// from the loss-rate formulas.
type UnifiedStrategy struct {
	profiles *ProfileTable
	rules    Ruleset
	logger   *slog.Logger
}

// NewUnifiedStrategy builds the legacy resolver. A nil logger discards.
func NewUnifiedStrategy(profiles *ProfileTable, rules Ruleset, logger *slog.Logger) *UnifiedStrategy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UnifiedStrategy{profiles: profiles, rules: rules, logger: logger}
}

func (s *UnifiedStrategy) Name() string { return StrategyUnified }

// WinProbability is atk/(atk+def) clamped to the ruleset's floor and ceiling.
// Two powerless sides are an even fight.
func WinProbability(attackPower, defensePower float64, rules UnifiedRules) float64 {
	p := 0.5
	if total := attackPower + defensePower; total > 0 {
		p = attackPower / total
	}
	return math.Max(rules.MinWinProbability, math.Min(p, rules.MaxWinProbability))
}

// Resolve draws, in order, the win roll, the attacker variance and the
// defender variance from the options' roller.
func (s *UnifiedStrategy) Resolve(attacker, defender Force, opts Options) (BattleResult, error) {
	logger := s.logger.With("component", "unified_strategy", "operation", "resolve")

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
	attackPower, defensePower := powers.attack, powers.defense

	roller := opts.roller()
	probability := WinProbability(attackPower, defensePower, s.rules.Unified)
	attackerWins := roller.Float64() < probability

	var decisive bool
	if attackerWins {
		decisive = defensePower == 0 || attackPower/defensePower >= s.rules.Unified.DecisiveRatio
	} else {
		decisive = attackPower == 0 || defensePower/attackPower >= s.rules.Unified.DecisiveRatio
	}

	result := BattleResult{
		Strategy:       StrategyUnified,
		RulesetVersion: s.rules.Version,
		AttackerStance: opts.AttackerStance,
		DefenderStance: opts.DefenderStance,
		Volleys:        []VolleyResult{},
		Theater:        TheaterAnalysis{AttackerBonuses: []TheaterBonus{}, DefenderBonuses: []TheaterBonus{}},
		AttackerPower:  attackPower,
		DefenderPower:  defensePower,
		WinProbability: probability,
		Underdog:       powers.underdog,
	}

	switch {
	case attackerWins && decisive:
		result.Outcome, result.Score = OutcomeAttackerDecisive, Score{Attacker: 2}
	case attackerWins:
		result.Outcome, result.Score = OutcomeAttackerVictory, Score{Attacker: 2, Defender: 1}
	case decisive:
		result.Outcome, result.Score = OutcomeDefenderDecisive, Score{Defender: 2}
	default:
		result.Outcome, result.Score = OutcomeDefenderVictory, Score{Attacker: 1, Defender: 2}
	}

	attackerMods := s.rules.StanceModifiers(opts.AttackerStance)
	defenderMods := s.rules.StanceModifiers(opts.DefenderStance)
	attackerVariance := Variance(roller.Float64(), s.rules.Casualty)
	defenderVariance := Variance(roller.Float64(), s.rules.Casualty)

	attackerRate := LossRate(attackPower, defensePower, s.rules.Casualty)
	defenderRate := LossRate(defensePower, attackPower, s.rules.Casualty)

	result.AttackerCasualties = ForceCasualties(attacker, attackerRate, attackerVariance*attackerMods.CasualtyMultiplier)
	result.DefenderCasualties = ForceCasualties(defender, defenderRate, defenderVariance*defenderMods.CasualtyMultiplier)

	if result.Outcome == OutcomeDefenderDecisive {
		result.AttackerCasualties = result.AttackerCasualties.Scale(s.rules.Territory.DecisiveDefeatPenalty).Min(attacker)
	}

	result.SectorsCaptured = CapturedSectors(result.Outcome, opts.DefenderSectors, s.rules.Territory)
	result.AttackerSurvivors = attacker.Sub(result.AttackerCasualties)
	result.DefenderSurvivors = defender.Sub(result.DefenderCasualties)

	logger.Debug("Battle resolved",
		"outcome", result.Outcome,
		"win_probability", probability,
		"attacker_power", attackPower,
		"defender_power", defensePower,
		"sectors_captured", result.SectorsCaptured)

	return result, nil
}
