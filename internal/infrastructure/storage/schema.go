package storage

import (
	"context"
	"fmt"
	"strings"
)

const itemsTableTemplate = `CREATE TABLE IF NOT EXISTS items (
	id {{id}},
	region TEXT NOT NULL,
	category_l1 TEXT NOT NULL,
	category_l2 TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	date TEXT NOT NULL,
	status TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	source_name TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	lang TEXT NOT NULL DEFAULT 'en',
	tier TEXT NOT NULL DEFAULT 'news',
	impact_score INTEGER NOT NULL DEFAULT 1,
	summary_translated TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	UNIQUE (title, source_url)
)`

const fetchLogTableTemplate = `CREATE TABLE IF NOT EXISTS fetch_log (
	id {{id}},
	run_id TEXT NOT NULL,
	source_name TEXT NOT NULL,
	item_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'ok',
	error_msg TEXT NOT NULL DEFAULT '',
	fetched_at TEXT NOT NULL
)`

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_items_region ON items (region)`,
	`CREATE INDEX IF NOT EXISTS idx_items_category ON items (category_l1)`,
	`CREATE INDEX IF NOT EXISTS idx_items_date ON items (date)`,
	`CREATE INDEX IF NOT EXISTS idx_items_impact ON items (impact_score)`,
	`CREATE INDEX IF NOT EXISTS idx_fetch_log_run ON fetch_log (run_id)`,
}

func schemaStatements(driver string) []string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		strings.ReplaceAll(itemsTableTemplate, "{{id}}", id),
		strings.ReplaceAll(fetchLogTableTemplate, "{{id}}", id),
	}
	return append(stmts, indexStatements...)
}

// Migrate creates tables and indexes that do not exist yet.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements(r.driver) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
