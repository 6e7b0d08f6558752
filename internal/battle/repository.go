package battle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"empires-server/internal/coalition"
	"empires-server/internal/shared/database"

	"github.com/google/uuid"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing battle repository")

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

func (r *Repository) SaveReport(ctx context.Context, report *Report, tx *database.Tx) error {
	logger := r.logger.With(
		"component", "battle_repository",
		"operation", "save_report",
		"report_id", report.ID,
		"attacker_id", report.AttackerID,
		"defender_id", report.DefenderID,
	)

	result, err := json.Marshal(report.Result)
	if err != nil {
		return fmt.Errorf("failed to encode battle result: %w", err)
	}

	query := `
		INSERT INTO battle_reports (id, turn, attacker_id, defender_id, strategy, outcome, sectors_captured,
			coalition_bonus, attacker_effectiveness, defender_effectiveness, summary, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	err = r.getExecutor(tx).QueryRowContext(ctx, query,
		report.ID,
		report.Turn,
		report.AttackerID,
		report.DefenderID,
		report.Strategy,
		report.Outcome,
		report.SectorsCaptured,
		report.CoalitionBonus,
		int(report.AttackerEffectiveness),
		int(report.DefenderEffectiveness),
		report.Summary,
		result,
	).Scan(&report.CreatedAt)
	if err != nil {
		logger.Error("Failed to save battle report", "error", err)
		return fmt.Errorf("failed to save battle report: %w", err)
	}

	logger.Debug("Battle report saved", "outcome", report.Outcome)
	return nil
}

func (r *Repository) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	logger := r.logger.With("component", "battle_repository", "operation", "get_report", "report_id", id)
	logger.Debug("Getting battle report")

	query := `
		SELECT id, turn, attacker_id, defender_id, strategy, outcome, sectors_captured, coalition_bonus,
			attacker_effectiveness, defender_effectiveness, summary, result, created_at
		FROM battle_reports
		WHERE id = $1
	`

	var report Report
	var result []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.Turn,
		&report.AttackerID,
		&report.DefenderID,
		&report.Strategy,
		&report.Outcome,
		&report.SectorsCaptured,
		&report.CoalitionBonus,
		&report.AttackerEffectiveness,
		&report.DefenderEffectiveness,
		&report.Summary,
		&result,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Debug("Battle report not found")
			return nil, nil
		}
		logger.Error("Database error getting battle report", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := json.Unmarshal(result, &report.Result); err != nil {
		logger.Error("Failed to decode stored battle result", "error", err)
		return nil, fmt.Errorf("failed to decode battle result: %w", err)
	}

	return &report, nil
}

func (r *Repository) SaveAttack(ctx context.Context, reportID uuid.UUID, attack coalition.AttackRecord, tx *database.Tx) error {
	query := `
		INSERT INTO attack_records (report_id, turn, attacker_id, defender_id, damage, strength)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.getExecutor(tx).ExecContext(ctx, query,
		reportID, attack.Turn, attack.AttackerID, attack.DefenderID, attack.Damage, attack.Strength)
	if err != nil {
		r.logger.Error("Failed to record attack",
			"component", "battle_repository",
			"operation", "save_attack",
			"error", err)
		return fmt.Errorf("failed to record attack: %w", err)
	}
	return nil
}

const attackQuery = `
	SELECT a.attacker_id, ae.name, a.defender_id, de.name, a.damage, a.strength, a.turn
	FROM attack_records a
	JOIN empires ae ON ae.id = a.attacker_id
	JOIN empires de ON de.id = a.defender_id
`

// AttacksForTurn returns every attack recorded in turn in insertion order.
func (r *Repository) AttacksForTurn(ctx context.Context, turn int) ([]coalition.AttackRecord, error) {
	return r.queryAttacks(ctx, nil, "attacks_for_turn",
		attackQuery+` WHERE a.turn = $1 ORDER BY a.id`, turn)
}

// AttacksAgainst returns the attacks on defender recorded so far in turn.
func (r *Repository) AttacksAgainst(ctx context.Context, defenderID, turn int, tx *database.Tx) ([]coalition.AttackRecord, error) {
	return r.queryAttacks(ctx, tx, "attacks_against",
		attackQuery+` WHERE a.defender_id = $1 AND a.turn = $2 ORDER BY a.id`, defenderID, turn)
}

func (r *Repository) queryAttacks(ctx context.Context, tx *database.Tx, operation, query string, args ...any) ([]coalition.AttackRecord, error) {
	logger := r.logger.With("component", "battle_repository", "operation", operation)

	rows, err := r.getExecutor(tx).QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to query attacks", "error", err)
		return nil, fmt.Errorf("failed to query attacks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	attacks := []coalition.AttackRecord{}
	for rows.Next() {
		var a coalition.AttackRecord
		if err := rows.Scan(&a.AttackerID, &a.AttackerName, &a.DefenderID, &a.DefenderName, &a.Damage, &a.Strength, &a.Turn); err != nil {
			logger.Error("Failed to scan attack row", "error", err)
			return nil, fmt.Errorf("failed to scan attack: %w", err)
		}
		attacks = append(attacks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attacks: %w", err)
	}

	logger.Debug("Attacks loaded", "count", len(attacks))
	return attacks, nil
}

// CapturedInTurn sums the sectors taken from each defender in turn.
func (r *Repository) CapturedInTurn(ctx context.Context, turn int) (map[int]int, error) {
	logger := r.logger.With("component", "battle_repository", "operation", "captured_in_turn", "turn", turn)

	rows, err := r.db.QueryContext(ctx, `
		SELECT defender_id, COALESCE(SUM(sectors_captured), 0)
		FROM battle_reports
		WHERE turn = $1
		GROUP BY defender_id
	`, turn)
	if err != nil {
		logger.Error("Failed to query captured sectors", "error", err)
		return nil, fmt.Errorf("failed to query captured sectors: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	captured := map[int]int{}
	for rows.Next() {
		var defenderID, sectors int
		if err := rows.Scan(&defenderID, &sectors); err != nil {
			return nil, fmt.Errorf("failed to scan captured sectors: %w", err)
		}
		captured[defenderID] = sectors
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating captured sectors: %w", err)
	}
	return captured, nil
}
