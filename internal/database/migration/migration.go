package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is checked first; when it exists the schema is considered current.
const sentinelTable = "public.extraction_events"

var steps = []migrationStep{
	{
		Name: "create_table_extraction_events",
		SQL: `CREATE TABLE IF NOT EXISTS extraction_events (
  id          UUID        PRIMARY KEY,
  folder      TEXT        NOT NULL DEFAULT '',
  document    TEXT        NOT NULL,
  backend     TEXT        NOT NULL,
  source      TEXT        NOT NULL CHECK (source IN ('cached', 'extracted', 'edited', 'failed')),
  outcome     TEXT        NOT NULL,
  text_length INTEGER     NOT NULL DEFAULT 0 CHECK (text_length >= 0),
  duration_ms BIGINT      NOT NULL DEFAULT 0 CHECK (duration_ms >= 0),
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_extraction_events_document",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_extraction_events_document ON extraction_events (folder, document, created_at DESC);`,
	},
	{
		Name: "create_index_extraction_events_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_extraction_events_created_at ON extraction_events (created_at);`,
	},
}

// EnsureMigrated checks if the extraction_events table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.InfoContext(ctx, "checking schema", "event", "db_migration_check", "status", "starting")

	var exists bool
	query := fmt.Sprintf("SELECT to_regclass('%s') IS NOT NULL", sentinelTable)
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.ErrorContext(ctx, "failed to check sentinel table",
			"event", "db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.InfoContext(ctx, "schema already exists, skipping migration",
			"event", "db_migration_skip",
			"status", "success",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.InfoContext(ctx, "applying migration", "event", "db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "migration step failed",
				"event", "db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.InfoContext(ctx, "migration step applied",
			"event", "db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.InfoContext(ctx, "migration complete",
		"event", "db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
