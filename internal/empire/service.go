package empire

import (
	"context"
	stderrors "errors"
	"log/slog"

	"empires-server/internal/coalition"
	"empires-server/internal/combat"
	"empires-server/internal/shared/database"
	"empires-server/internal/shared/errors"
)

// Store is the persistence the empire service needs. *Repository satisfies it.
type Store interface {
	Exists(ctx context.Context, id int) (bool, error)
	GetByID(ctx context.Context, id int, tx *database.Tx) (*Empire, error)
	List(ctx context.Context, tx *database.Tx) ([]Empire, error)
	ApplyBattle(ctx context.Context, id int, update BattleUpdate, tx *database.Tx) error
	SetEffectiveness(ctx context.Context, id int, value combat.Effectiveness, tx *database.Tx) error
	SetStance(ctx context.Context, id int, stance combat.Stance, tx *database.Tx) error
	BossStatuses(ctx context.Context, ids []int) ([]coalition.BossStatus, error)
	CurrentTurn(ctx context.Context, tx *database.Tx) (int, error)
	LockTurn(ctx context.Context, tx *database.Tx) (int, error)
	SetTurn(ctx context.Context, turn int, tx *database.Tx) error
}

// Transactor runs a unit of work in a database transaction. *database.DB
// satisfies it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *database.Tx) error) error
}

type Service struct {
	repo   Store
	tx     Transactor
	rules  combat.EffectivenessRules
	logger *slog.Logger
}

func NewService(repo Store, tx Transactor, rules combat.EffectivenessRules, logger *slog.Logger) *Service {
	logger.Debug("Initializing empire service")

	return &Service{
		repo:   repo,
		tx:     tx,
		rules:  rules,
		logger: logger,
	}
}

func (s *Service) Exists(ctx context.Context, id int) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int) (*Empire, error) {
	e, err := s.repo.GetByID(ctx, id, nil)
	if err != nil {
		return nil, errors.WrapInternal("failed to load empire", err)
	}
	if e == nil {
		return nil, errors.NotFoundf("empire not found with id: %d", id)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]Empire, error) {
	empires, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, errors.WrapInternal("failed to list empires", err)
	}
	if empires == nil {
		empires = []Empire{}
	}
	return empires, nil
}

func (s *Service) CurrentTurn(ctx context.Context) (int, error) {
	turn, err := s.repo.CurrentTurn(ctx, nil)
	if err != nil {
		return 0, errors.WrapInternal("failed to read current turn", err)
	}
	return turn, nil
}

// SetStance records the posture an empire fights in when it is attacked.
func (s *Service) SetStance(ctx context.Context, id int, value string) (*Empire, error) {
	logger := s.logger.With("component", "empire_service", "operation", "set_stance", "empire_id", id)

	stance, err := combat.ParseStance(value)
	if err != nil {
		return nil, errors.WrapValidation("invalid stance", err)
	}

	var updated *Empire
	err = s.tx.WithTx(ctx, func(tx *database.Tx) error {
		e, err := s.repo.GetByID(ctx, id, tx)
		if err != nil {
			return err
		}
		if e == nil {
			return errors.NotFoundf("empire not found with id: %d", id)
		}
		if err := s.repo.SetStance(ctx, id, stance, tx); err != nil {
			return err
		}
		e.Stance = stance
		updated = e
		return nil
	})
	if err != nil {
		logger.Error("Failed to set stance", "error", err)
		return nil, appError(err, "failed to set stance")
	}

	logger.Info("Stance updated", "stance", stance)
	return updated, nil
}

// AdvanceTurn moves the game from the current turn to turn, which must be
// the next one, and applies the per-turn effectiveness upkeep to every
// empire: natural recovery, then the penalty for unpaid maintenance.
func (s *Service) AdvanceTurn(ctx context.Context, turn int) (*TurnReport, error) {
	logger := s.logger.With("component", "empire_service", "operation", "advance_turn", "turn", turn)

	if turn < 1 {
		return nil, errors.Validationf("turn must be positive, got %d", turn)
	}

	report := &TurnReport{Turn: turn}
	err := s.tx.WithTx(ctx, func(tx *database.Tx) error {
		current, err := s.repo.LockTurn(ctx, tx)
		if err != nil {
			return err
		}
		if turn != current+1 {
			return errors.Conflictf("turn %d cannot follow turn %d", turn, current)
		}
		report.Previous = current

		empires, err := s.repo.List(ctx, tx)
		if err != nil {
			return err
		}

		for _, e := range empires {
			next := e.Effectiveness.Recover(s.rules)
			if next > e.Effectiveness {
				report.Recovered++
			}
			if !e.MaintenancePaid {
				next = next.MaintenancePenalty(s.rules)
				report.Penalized++
			}
			report.Empires++

			if next == e.Effectiveness {
				continue
			}
			if err := s.repo.SetEffectiveness(ctx, e.ID, next, tx); err != nil {
				return err
			}
		}
		return s.repo.SetTurn(ctx, turn, tx)
	})
	if err != nil {
		logger.Error("Failed to advance turn", "error", err)
		return nil, appError(err, "failed to advance turn")
	}

	logger.Info("Turn advanced",
		"previous", report.Previous,
		"empires", report.Empires,
		"recovered", report.Recovered,
		"penalized", report.Penalized)
	return report, nil
}

func appError(err error, message string) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.WrapInternal(message, err)
}
