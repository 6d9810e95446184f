package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Migration is a versioned schema change applied exactly once.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies pending migrations and records them in schema_migrations.
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a migrator.
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// Run applies every pending migration in version order.
func (m *Migrator) Run(ctx context.Context, migrations []Migration) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	ordered := append([]Migration{}, migrations...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	for _, migration := range ordered {
		if applied[migration.Version] {
			continue
		}

		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))

		if err := m.apply(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	m.logger.Info("Database migrations completed")
	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	return m.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
}
