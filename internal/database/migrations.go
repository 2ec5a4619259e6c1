package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// migration is one embedded schema file, e.g. "002_analytical_views.sql".
type migration struct {
	version int
	name    string
	sql     string
}

// MigrationManager applies the embedded schema files in version order
type MigrationManager struct {
	db     *sql.DB
	source fs.FS
	dir    string
	log    *slog.Logger
}

// NewMigrationManager creates a migration manager over the embedded schema
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{
		db:     db,
		source: embeddedMigrations,
		dir:    "migrations",
		log:    slog.Default(),
	}
}

// RunMigrations applies every migration not recorded in the migrations table.
func (m *MigrationManager) RunMigrations() error {
	if _, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.applied()
	if err != nil {
		return err
	}

	pending, err := m.load()
	if err != nil {
		return err
	}

	for _, mig := range pending {
		if applied[mig.version] {
			continue
		}
		if err := m.apply(mig); err != nil {
			return err
		}
	}
	return nil
}

func (m *MigrationManager) applied() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	versions := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		versions[v] = true
	}
	return versions, rows.Err()
}

// load reads the schema files sorted by their numeric prefix. Files without
// one are skipped with a warning.
func (m *MigrationManager) load() ([]migration, error) {
	entries, err := fs.ReadDir(m.source, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var out []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		var version int
		var rest string
		if _, err := fmt.Sscanf(name, "%d_%s", &version, &rest); err != nil {
			m.log.Warn("skipping migration file with invalid name", "file", name)
			continue
		}

		content, err := fs.ReadFile(m.source, path.Join(m.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		out = append(out, migration{version: version, name: strings.TrimSuffix(name, ".sql"), sql: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// apply runs one schema file and records it in the same transaction.
func (m *MigrationManager) apply(mig migration) error {
	err := Transaction(context.Background(), m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(mig.sql); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", mig.version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", mig.version, mig.name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", mig.version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Info("applied migration", "version", mig.version, "name", mig.name)
	return nil
}
