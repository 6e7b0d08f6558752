package battle

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"

	"empires-server/internal/coalition"
	"empires-server/internal/combat"
	"empires-server/internal/empire"
	"empires-server/internal/shared/config"
	"empires-server/internal/shared/database"
	"empires-server/internal/shared/errors"

	"github.com/google/uuid"
)

// Store is the battle persistence. *Repository satisfies it.
type Store interface {
	SaveReport(ctx context.Context, report *Report, tx *database.Tx) error
	GetReport(ctx context.Context, id uuid.UUID) (*Report, error)
	SaveAttack(ctx context.Context, reportID uuid.UUID, attack coalition.AttackRecord, tx *database.Tx) error
	AttacksForTurn(ctx context.Context, turn int) ([]coalition.AttackRecord, error)
	AttacksAgainst(ctx context.Context, defenderID, turn int, tx *database.Tx) ([]coalition.AttackRecord, error)
	CapturedInTurn(ctx context.Context, turn int) (map[int]int, error)
}

// Empires is the slice of empire persistence a battle touches.
type Empires interface {
	GetByID(ctx context.Context, id int, tx *database.Tx) (*empire.Empire, error)
	ApplyBattle(ctx context.Context, id int, update empire.BattleUpdate, tx *database.Tx) error
	BossStatuses(ctx context.Context, ids []int) ([]coalition.BossStatus, error)
	CurrentTurn(ctx context.Context, tx *database.Tx) (int, error)
}

type Service struct {
	store    Store
	empires  Empires
	tx       empire.Transactor
	cache    Cache
	profiles *combat.ProfileTable
	rules    combat.Ruleset
	strategy combat.Strategy
	cfg      config.CombatConfig
	logger   *slog.Logger
	newID    func() uuid.UUID
}

func NewService(store Store, empires Empires, tx empire.Transactor, cache Cache, profiles *combat.ProfileTable, rules combat.Ruleset, cfg config.CombatConfig, logger *slog.Logger) (*Service, error) {
	logger.Debug("Initializing battle service", "strategy", cfg.Strategy, "ruleset", rules.Version)

	strategy, err := combat.StrategyByName(cfg.Strategy, profiles, rules, logger)
	if err != nil {
		return nil, errors.WrapConfiguration("invalid default combat strategy", err)
	}

	return &Service{
		store:    store,
		empires:  empires,
		tx:       tx,
		cache:    cache,
		profiles: profiles,
		rules:    rules,
		strategy: strategy,
		cfg:      cfg,
		logger:   logger,
		newID:    uuid.New,
	}, nil
}

func (s *Service) strategyFor(name string) (combat.Strategy, error) {
	if name == "" || name == s.strategy.Name() {
		return s.strategy, nil
	}
	strategy, err := combat.StrategyByName(name, s.profiles, s.rules, s.logger)
	if err != nil {
		return nil, errors.WrapValidation("invalid battle request", err)
	}
	return strategy, nil
}

// combatError maps a core failure onto an application error.
func combatError(err error) error {
	switch {
	case stderrors.Is(err, combat.ErrMissingUnitProfile):
		return errors.WrapConfiguration("combat data is incomplete", err)
	case stderrors.Is(err, combat.ErrInvalidStance),
		stderrors.Is(err, combat.ErrNegativeUnitCount),
		stderrors.Is(err, combat.ErrInvalidRetreat),
		stderrors.Is(err, combat.ErrUnknownStrategy):
		return errors.WrapValidation("invalid battle request", err)
	default:
		return errors.WrapInternal("battle resolution failed", err)
	}
}

func asAppError(err error, message string) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.WrapInternal(message, err)
}

// Simulate resolves a posted engagement without touching any empire.
// Deterministic requests are answered from the cache when possible.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (*SimulateResponse, error) {
	logger := s.logger.With("component", "battle_service", "operation", "simulate", "trials", req.Trials)

	strategy, err := s.strategyFor(req.Strategy)
	if err != nil {
		return nil, err
	}
	if req.Trials < 0 {
		return nil, errors.Validationf("trials must not be negative, got %d", req.Trials)
	}
	if req.Trials > s.cfg.MaxSimulationTrials {
		return nil, errors.Validationf("trials must not exceed %d", s.cfg.MaxSimulationTrials)
	}
	if req.Options.DefenderSectors == 0 {
		req.Options.DefenderSectors = s.cfg.DefaultDefenderSectors
	}

	var key string
	if req.Options.Deterministic() {
		key, err = CacheKey(strategy.Name(), s.rules.Version, req)
		if err != nil {
			logger.Warn("Failed to derive cache key", "error", err)
		} else if cached := s.cached(ctx, key, logger); cached != nil {
			return cached, nil
		}
	}

	resp := &SimulateResponse{Strategy: strategy.Name()}
	if req.Trials > 0 {
		report, err := combat.SimulateWinRate(strategy, req.Attacker, req.Defender, req.Options, req.Trials)
		if err != nil {
			return nil, combatError(err)
		}
		resp.WinRate = &report
	} else {
		result, err := strategy.Resolve(req.Attacker, req.Defender, req.Options)
		if err != nil {
			return nil, combatError(err)
		}
		resp.Result = &result
		resp.Summary = result.Summary()
	}

	if key != "" {
		s.remember(ctx, key, resp, logger)
	}

	logger.Debug("Simulation complete", "strategy", resp.Strategy, "deterministic", key != "")
	return resp, nil
}

func (s *Service) cached(ctx context.Context, key string, logger *slog.Logger) *SimulateResponse {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Battle cache lookup failed", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var resp SimulateResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		logger.Warn("Discarding unreadable cache entry", "error", err)
		return nil
	}
	resp.Cached = true
	return &resp
}

func (s *Service) remember(ctx context.Context, key string, resp *SimulateResponse, logger *slog.Logger) {
	payload, err := json.Marshal(resp)
	if err != nil {
		logger.Warn("Failed to encode simulation for cache", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL); err != nil {
		logger.Warn("Battle cache write failed", "error", err)
	}
}

// Engage resolves an attack by attackerID on the requested defender and
// applies the outcome to both empires in one transaction. Earlier attacks on
// the same boss in the same turn can turn this attack into a coalition raid.
func (s *Service) Engage(ctx context.Context, attackerID int, req EngageRequest) (*Report, error) {
	logger := s.logger.With(
		"component", "battle_service",
		"operation", "engage",
		"attacker_id", attackerID,
		"defender_id", req.DefenderID,
	)

	switch {
	case req.DefenderID <= 0:
		return nil, errors.Validation("defender_id is required")
	case req.DefenderID == attackerID:
		return nil, errors.Validation("an empire cannot attack itself")
	case req.Retreat != nil && req.Retreat.Side == combat.SideDefender:
		return nil, errors.Validation("an attacker cannot order the defender to retreat")
	}

	report := &Report{
		ID:         s.newID(),
		AttackerID: attackerID,
		DefenderID: req.DefenderID,
		Strategy:   s.strategy.Name(),
	}

	err := s.tx.WithTx(ctx, func(tx *database.Tx) error {
		turn, err := s.empires.CurrentTurn(ctx, tx)
		if err != nil {
			return err
		}
		report.Turn = turn

		attacker, defender, err := s.lockPair(ctx, attackerID, req.DefenderID, tx)
		if err != nil {
			return err
		}
		if attacker.Forces.IsEmpty() {
			return errors.Validation("attacking empire has no forces")
		}
		if defender.Sectors == 0 {
			return errors.Conflictf("empire %d holds no sectors and has been eliminated", defender.ID)
		}

		attack := coalition.AttackRecord{
			AttackerID:   attacker.ID,
			AttackerName: attacker.Name,
			DefenderID:   defender.ID,
			DefenderName: defender.Name,
			Turn:         turn,
		}

		prior, err := s.store.AttacksAgainst(ctx, defender.ID, turn, tx)
		if err != nil {
			return err
		}
		raid := coalition.Analyze(append(prior, attack), []coalition.BossStatus{defender.BossStatus()}, defender.ID, turn, s.rules.Coalition)
		if raid.Valid {
			report.CoalitionBonus = raid.Bonus
			logger.Info("Attack joins coalition raid", "participants", len(raid.Participants), "bonus", raid.Bonus)
		}

		attackerStance := req.AttackerStance
		if attackerStance == "" {
			attackerStance = attacker.Stance
		}

		attackerEff, defenderEff := attacker.Effectiveness, defender.Effectiveness
		opts := combat.Options{
			AttackerStance:        attackerStance,
			DefenderStance:        defender.Stance,
			DefenderSectors:       defender.Sectors,
			AttackerEffectiveness: &attackerEff,
			DefenderEffectiveness: &defenderEff,
			AttackerNetworth:      attacker.Networth,
			DefenderNetworth:      defender.Networth,
			CoalitionBonus:        report.CoalitionBonus,
			Retreat:               req.Retreat,
			Seed:                  req.Seed,
		}

		result, err := s.strategy.Resolve(attacker.Forces, defender.Forces, opts)
		if err != nil {
			return combatError(err)
		}

		draws := combat.NewRandomRoller()
		if req.Seed != 0 {
			draws = combat.NewSeededRoller(req.Seed)
		}
		effRules := s.rules.Effectiveness
		report.AttackerEffectiveness = attacker.Effectiveness.AfterCombat(combat.ResultFor(result.Outcome, combat.SideAttacker), draws.Float64(), effRules)
		report.DefenderEffectiveness = defender.Effectiveness.AfterCombat(combat.ResultFor(result.Outcome, combat.SideDefender), draws.Float64(), effRules)

		err = s.empires.ApplyBattle(ctx, attacker.ID, empire.BattleUpdate{
			Forces:        result.AttackerSurvivors,
			Sectors:       attacker.Sectors + result.SectorsCaptured,
			Effectiveness: report.AttackerEffectiveness,
		}, tx)
		if err != nil {
			return err
		}
		err = s.empires.ApplyBattle(ctx, defender.ID, empire.BattleUpdate{
			Forces:        result.DefenderSurvivors,
			Sectors:       defender.Sectors - result.SectorsCaptured,
			Effectiveness: report.DefenderEffectiveness,
		}, tx)
		if err != nil {
			return err
		}

		report.Outcome = result.Outcome
		report.SectorsCaptured = result.SectorsCaptured
		report.Summary = result.Summary()
		report.Result = result
		if err := s.store.SaveReport(ctx, report, tx); err != nil {
			return err
		}

		attack.Damage = DamageDealt(result)
		attack.Strength = result.AttackerPower
		return s.store.SaveAttack(ctx, report.ID, attack, tx)
	})
	if err != nil {
		logger.Error("Engagement failed", "error", err)
		return nil, asAppError(err, "failed to resolve engagement")
	}

	logger.Info("Engagement resolved",
		"report_id", report.ID,
		"turn", report.Turn,
		"outcome", report.Outcome,
		"sectors_captured", report.SectorsCaptured,
		"coalition_bonus", report.CoalitionBonus)
	return report, nil
}

// lockPair loads both empires for update in id order.
func (s *Service) lockPair(ctx context.Context, attackerID, defenderID int, tx *database.Tx) (*empire.Empire, *empire.Empire, error) {
	first, second := min(attackerID, defenderID), max(attackerID, defenderID)

	locked := map[int]*empire.Empire{}
	for _, id := range []int{first, second} {
		e, err := s.empires.GetByID(ctx, id, tx)
		if err != nil {
			return nil, nil, err
		}
		if e == nil {
			return nil, nil, errors.NotFoundf("empire not found with id: %d", id)
		}
		locked[id] = e
	}
	return locked[attackerID], locked[defenderID], nil
}

// DamageDealt is the damage an attacker inflicted, used to weigh coalition
// shares: the volley damage total, or the defender's unit losses when the
// strategy fights no volleys.
func DamageDealt(result combat.BattleResult) float64 {
	if len(result.Volleys) == 0 {
		return float64(result.DefenderCasualties.Total())
	}
	total := 0
	for _, volley := range result.Volleys {
		total += volley.AttackerDamage
	}
	return float64(total)
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, errors.WrapInternal("failed to load battle report", err)
	}
	if report == nil {
		return nil, errors.NotFoundf("battle report not found with id: %s", id)
	}
	return report, nil
}

// DetectRaids finds the coalition raids among the attacks stored for turn.
func (s *Service) DetectRaids(ctx context.Context, turn int) ([]RaidReport, error) {
	logger := s.logger.With("component", "battle_service", "operation", "detect_raids", "turn", turn)

	attacks, err := s.store.AttacksForTurn(ctx, turn)
	if err != nil {
		return nil, errors.WrapInternal("failed to load attacks", err)
	}

	var targets []int
	seen := map[int]bool{}
	for _, attack := range attacks {
		if !seen[attack.DefenderID] {
			seen[attack.DefenderID] = true
			targets = append(targets, attack.DefenderID)
		}
	}

	bosses := []coalition.BossStatus{}
	if len(targets) > 0 {
		bosses, err = s.empires.BossStatuses(ctx, targets)
		if err != nil {
			return nil, errors.WrapInternal("failed to load boss statuses", err)
		}
	}

	captured, err := s.store.CapturedInTurn(ctx, turn)
	if err != nil {
		return nil, errors.WrapInternal("failed to load captured sectors", err)
	}

	reports := s.raidReports(coalition.Detect(attacks, bosses, s.rules.Coalition), captured)
	logger.Debug("Raids detected", "attacks", len(attacks), "raids", len(reports))
	return reports, nil
}

// AnalyzeCoalition runs detection and distribution over a posted batch.
func (s *Service) AnalyzeCoalition(ctx context.Context, req DetectRequest) ([]RaidReport, error) {
	if problems := coalition.ValidateAttacks(req.Attacks); len(problems) > 0 {
		return nil, errors.ValidationList("invalid attack batch", problems)
	}
	return s.raidReports(coalition.Detect(req.Attacks, req.Bosses, s.rules.Coalition), req.Captured), nil
}

func (s *Service) raidReports(raids []coalition.Raid, captured map[int]int) []RaidReport {
	reports := make([]RaidReport, 0, len(raids))
	for _, raid := range raids {
		taken := captured[raid.TargetID]
		distribution := coalition.Distribute(raid, taken)
		if distribution == nil {
			distribution = []coalition.Distribution{}
		}
		reports = append(reports, RaidReport{
			Raid:         raid,
			Captured:     taken,
			Distribution: distribution,
			Rewards:      coalition.RewardsFor(raid, s.rules.Coalition),
		})
	}
	return reports
}
