package empire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"empires-server/internal/coalition"
	"empires-server/internal/combat"
	"empires-server/internal/shared/database"

	"github.com/lib/pq"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing empire repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) getExecutor(tx *database.Tx) database.Executor {
	if tx != nil {
		return tx
	}
	return r.db
}

const empireColumns = `id, name, sectors, networth, effectiveness, stance, maintenance_paid, is_boss,
	ground, light_air, defense_platform, light_cruiser, heavy_cruiser, carrier,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmpire(row rowScanner) (*Empire, error) {
	var e Empire
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Sectors,
		&e.Networth,
		&e.Effectiveness,
		&e.Stance,
		&e.MaintenancePaid,
		&e.IsBoss,
		&e.Forces.Ground,
		&e.Forces.LightAir,
		&e.Forces.DefensePlatform,
		&e.Forces.LightCruiser,
		&e.Forces.HeavyCruiser,
		&e.Forces.Carrier,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM empires WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check empire existence: %w", err)
	}
	return exists, nil
}

// GetByID returns nil when the empire does not exist. Inside a transaction
// the row is locked until the transaction ends.
func (r *Repository) GetByID(ctx context.Context, id int, tx *database.Tx) (*Empire, error) {
	logger := r.logger.With("component", "empire_repository", "operation", "get_empire", "empire_id", id)
	logger.Debug("Getting empire by ID")

	query := `SELECT ` + empireColumns + ` FROM empires WHERE id = $1`
	if tx != nil {
		query += ` FOR UPDATE`
	}

	e, err := scanEmpire(r.getExecutor(tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Debug("Empire not found")
			return nil, nil
		}
		logger.Error("Database error getting empire", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return e, nil
}

func (r *Repository) List(ctx context.Context, tx *database.Tx) ([]Empire, error) {
	logger := r.logger.With("component", "empire_repository", "operation", "list_empires")
	logger.Debug("Listing empires")

	query := `SELECT ` + empireColumns + ` FROM empires ORDER BY id`
	if tx != nil {
		query += ` FOR UPDATE`
	}

	rows, err := r.getExecutor(tx).QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query empires", "error", err)
		return nil, fmt.Errorf("failed to query empires: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var empires []Empire
	for rows.Next() {
		e, err := scanEmpire(rows)
		if err != nil {
			logger.Error("Failed to scan empire row", "error", err)
			return nil, fmt.Errorf("failed to scan empire: %w", err)
		}
		empires = append(empires, *e)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating empires: %w", err)
	}

	logger.Debug("Empires listed", "count", len(empires))
	return empires, nil
}

func (r *Repository) ApplyBattle(ctx context.Context, id int, update BattleUpdate, tx *database.Tx) error {
	logger := r.logger.With("component", "empire_repository", "operation", "apply_battle", "empire_id", id)

	query := `
		UPDATE empires
		SET ground = $2, light_air = $3, defense_platform = $4, light_cruiser = $5, heavy_cruiser = $6, carrier = $7,
			sectors = $8, effectiveness = $9, updated_at = NOW()
		WHERE id = $1
	`

	f := update.Forces
	_, err := r.getExecutor(tx).ExecContext(ctx, query, id,
		f.Ground, f.LightAir, f.DefensePlatform, f.LightCruiser, f.HeavyCruiser, f.Carrier,
		update.Sectors, int(update.Effectiveness))
	if err != nil {
		logger.Error("Failed to apply battle to empire", "error", err)
		return fmt.Errorf("failed to update empire %d: %w", id, err)
	}

	logger.Debug("Battle applied",
		"sectors", update.Sectors,
		"effectiveness", update.Effectiveness,
		"units", f.Total())
	return nil
}

func (r *Repository) SetEffectiveness(ctx context.Context, id int, value combat.Effectiveness, tx *database.Tx) error {
	_, err := r.getExecutor(tx).ExecContext(ctx,
		`UPDATE empires SET effectiveness = $2, updated_at = NOW() WHERE id = $1`, id, int(value))
	if err != nil {
		return fmt.Errorf("failed to update effectiveness for empire %d: %w", id, err)
	}
	return nil
}

func (r *Repository) SetStance(ctx context.Context, id int, stance combat.Stance, tx *database.Tx) error {
	_, err := r.getExecutor(tx).ExecContext(ctx,
		`UPDATE empires SET stance = $2, updated_at = NOW() WHERE id = $1`, id, string(stance))
	if err != nil {
		return fmt.Errorf("failed to update stance for empire %d: %w", id, err)
	}
	return nil
}

// CurrentTurn returns the turn battles are being fought in. Inside a
// transaction the turn cannot advance until the transaction ends.
func (r *Repository) CurrentTurn(ctx context.Context, tx *database.Tx) (int, error) {
	if tx == nil {
		return r.readTurn(ctx, nil, "")
	}
	return r.readTurn(ctx, tx, " FOR SHARE")
}

// LockTurn reads the current turn and holds it exclusively until tx ends.
func (r *Repository) LockTurn(ctx context.Context, tx *database.Tx) (int, error) {
	return r.readTurn(ctx, tx, " FOR UPDATE")
}

func (r *Repository) readTurn(ctx context.Context, tx *database.Tx, lock string) (int, error) {
	var turn int
	err := r.getExecutor(tx).QueryRowContext(ctx, `SELECT turn FROM turn_state WHERE id`+lock).Scan(&turn)
	if err != nil {
		return 0, fmt.Errorf("failed to read current turn: %w", err)
	}
	return turn, nil
}

func (r *Repository) SetTurn(ctx context.Context, turn int, tx *database.Tx) error {
	_, err := r.getExecutor(tx).ExecContext(ctx,
		`UPDATE turn_state SET turn = $1, advanced_at = NOW() WHERE id`, turn)
	if err != nil {
		return fmt.Errorf("failed to set turn %d: %w", turn, err)
	}
	return nil
}

// BossStatuses returns the boss flag for each of the given empires that
// exists.
func (r *Repository) BossStatuses(ctx context.Context, ids []int) ([]coalition.BossStatus, error) {
	logger := r.logger.With("component", "empire_repository", "operation", "boss_statuses", "count", len(ids))

	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, is_boss FROM empires WHERE id = ANY($1) ORDER BY id`, pq.Array(keys))
	if err != nil {
		logger.Error("Failed to query boss statuses", "error", err)
		return nil, fmt.Errorf("failed to query boss statuses: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	statuses := []coalition.BossStatus{}
	for rows.Next() {
		var status coalition.BossStatus
		if err := rows.Scan(&status.EmpireID, &status.IsBoss); err != nil {
			return nil, fmt.Errorf("failed to scan boss status: %w", err)
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating boss statuses: %w", err)
	}
	return statuses, nil
}
