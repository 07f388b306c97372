package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_analysis_sessions",
		SQL: `CREATE TABLE IF NOT EXISTS analysis_sessions (
  id              UUID        PRIMARY KEY,
  status          TEXT        NOT NULL,
  total_files     INTEGER     NOT NULL DEFAULT 0 CHECK (total_files >= 0),
  processed_files INTEGER     NOT NULL DEFAULT 0 CHECK (processed_files >= 0),
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  completed_at    TIMESTAMPTZ NULL
);`,
	},
	{
		Name: "create_table_file_analyses",
		SQL: `CREATE TABLE IF NOT EXISTS file_analyses (
  seq             BIGSERIAL   UNIQUE,
  id              UUID        PRIMARY KEY,
  session_id      UUID        NOT NULL REFERENCES analysis_sessions (id) ON DELETE CASCADE,
  file_name       TEXT        NOT NULL,
  file_size       BIGINT      NOT NULL CHECK (file_size >= 0),
  file_type       TEXT        NOT NULL,
  object_key      TEXT        NOT NULL UNIQUE,
  status          TEXT        NOT NULL,
  analysis_result JSONB       NULL,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  completed_at    TIMESTAMPTZ NULL
);`,
	},
	{
		Name: "create_index_file_analyses_session_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_analyses_session_id ON file_analyses (session_id, seq);`,
	},
}

// EnsureMigrated checks if the 'file_analyses' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	log = log.WithFields(logrus.Fields{"component": "database", "db_host": dbHost})

	log.WithField("event", "db_migration_check").Info("checking schema")

	var exists bool
	query := "SELECT to_regclass('public.file_analyses') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	log.WithField("event", "db_migration_start").Info("applying schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"migration_step":   step.Name,
				"error":            err.Error(),
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Info("migration step applied")
	}

	log.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("schema migrated")

	return nil
}
