package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"
)

// migrationLockKey serializes migrations across server instances sharing a
// database.
const migrationLockKey = 7340512

var migrationName = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)

// Migration is one numbered schema change.
type Migration struct {
	Version  string
	File     string
	Checksum string
	SQL      string
}

// LoadMigrations reads the NNN_name.sql files at the root of fsys, ordered by
// version. Files that do not follow the naming scheme are an error, as are
// two files sharing a version.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	var migrations []Migration
	seen := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		match := migrationName.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("migration %s does not match NNN_name.sql", entry.Name())
		}
		version := match[1]
		if other, ok := seen[version]; ok {
			return nil, fmt.Errorf("migrations %s and %s share version %s", other, entry.Name(), version)
		}
		seen[version] = entry.Name()

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		sum := sha256.Sum256(content)
		migrations = append(migrations, Migration{
			Version:  version,
			File:     entry.Name(),
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(content),
		})
	}

	slices.SortFunc(migrations, func(a, b Migration) int {
		if len(a.Version) != len(b.Version) {
			return len(a.Version) - len(b.Version)
		}
		return strings.Compare(a.Version, b.Version)
	})
	return migrations, nil
}

// Pending returns the migrations not yet in applied, which maps an applied
// file to its recorded checksum. An applied file whose content has changed
// since is an error: schema history is append-only.
func Pending(migrations []Migration, applied map[string]string) ([]Migration, error) {
	var pending []Migration
	for _, m := range migrations {
		checksum, ok := applied[m.File]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if checksum != "" && checksum != m.Checksum {
			return nil, fmt.Errorf("migration %s was modified after it was applied", m.File)
		}
	}
	return pending, nil
}

// RunMigrations applies the pending migrations under dir, each in its own
// transaction, while holding an advisory lock.
func (db *DB) RunMigrations(dir string) error {
	logger := slog.With("component", "migrations", "dir", dir)
	logger.Info("Starting database migrations")

	migrations, err := LoadMigrations(os.DirFS(dir))
	if err != nil {
		logger.Error("Failed to load migrations", "error", err)
		return err
	}

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve migration connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Error("Failed to release migration connection", "error", err)
		}
	}()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, migrationLockKey); err != nil {
			logger.Error("Failed to release migration lock", "error", err)
		}
	}()

	if err := createMigrationsTable(ctx, conn); err != nil {
		logger.Error("Failed to create migrations table", "error", err)
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		logger.Error("Failed to read applied migrations", "error", err)
		return err
	}

	pending, err := Pending(migrations, applied)
	if err != nil {
		logger.Error("Migration history does not match files", "error", err)
		return err
	}

	logger.Info("Migrations resolved", "found", len(migrations), "pending", len(pending))

	for _, m := range pending {
		if err := applyMigration(ctx, conn, m); err != nil {
			logger.Error("Failed to run migration", "migration", m.File, "error", err)
			return fmt.Errorf("failed to run migration %s: %w", m.File, err)
		}
	}

	logger.Info("All migrations completed successfully")
	return nil
}

func createMigrationsTable(ctx context.Context, conn *sql.Conn) error {
	_, err := conn.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT NOW()
	);
	ALTER TABLE schema_migrations ADD COLUMN IF NOT EXISTS checksum VARCHAR(64) NOT NULL DEFAULT ''`)
	return err
}

func appliedMigrations(ctx context.Context, conn *sql.Conn) (map[string]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := map[string]string{}
	for rows.Next() {
		var file, checksum string
		if err := rows.Scan(&file, &checksum); err != nil {
			return nil, fmt.Errorf("failed to scan schema_migrations: %w", err)
		}
		applied[file] = checksum
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, conn *sql.Conn, m Migration) error {
	logger := slog.With(
		"component", "migrations",
		"operation", "apply",
		"migration", m.File,
	)
	logger.Info("Running migration", "size_bytes", len(m.SQL))

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error("Failed to rollback migration", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)`, m.File, m.Checksum); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Info("Migration completed successfully")
	return nil
}
