package store

import (
	"database/sql"
	"fmt"
)

// migration is one forward-only schema step. from is the version it
// applies against; it leaves the database at from+1.
type migration struct {
	from int
	name string
	run  func(*sql.Tx) error
}

var migrations = []migration{
	{
		from: 1,
		name: "add edge resolution metadata",
		run: func(tx *sql.Tx) error {
			stmts := []string{
				`ALTER TABLE edge ADD COLUMN certainty TEXT`,
				`ALTER TABLE edge ADD COLUMN callsite_identity TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE edge ADD COLUMN candidate_target_node_ids TEXT NOT NULL DEFAULT ''`,
				`CREATE INDEX IF NOT EXISTS idx_edge_callsite_identity ON edge(callsite_identity)`,
			}
			for _, s := range stmts {
				if _, err := tx.Exec(s); err != nil {
					return fmt.Errorf("migration v2: %w", err)
				}
			}
			return nil
		},
	},
}

// migrate brings db up to schemaVersion, using PRAGMA user_version as the
// version marker. A database stamped with a version higher than this
// binary understands is refused outright rather than silently read.
func migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if current == 0 {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin schema init: %w", err)
		}
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("init schema: %w", err)
			}
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", 1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("stamp schema version 1: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit schema init: %w", err)
		}
		current = 1
	}

	if current > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than this binary understands (max %d)", current, schemaVersion)
	}

	for _, m := range migrations {
		if current != m.from {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %q: %w", m.name, err)
		}
		if err := m.run(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("run migration %q: %w", m.name, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.from+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("stamp schema version %d: %w", m.from+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %q: %w", m.name, err)
		}
		current = m.from + 1
	}

	return nil
}
