package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS component_analyses (
  id                  TEXT        PRIMARY KEY,
  tenant_id           TEXT        NOT NULL,
  image_url           TEXT        NOT NULL,
  analysis_text       TEXT        NOT NULL,
  classification_json JSONB       NOT NULL,
  detections_json     JSONB       NOT NULL,
  structured_json     JSONB       NOT NULL,
  model_used          TEXT        NOT NULL,
  created_at          TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_component_analyses_tenant_created
  ON component_analyses (tenant_id, created_at DESC)`,
	`
CREATE TABLE IF NOT EXISTS component_analysis_failures (
  id          BIGSERIAL   PRIMARY KEY,
  tenant_id   TEXT        NOT NULL,
  analysis_id TEXT        NOT NULL,
  phase       TEXT        NOT NULL,
  message     TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_component_analysis_failures_analysis
  ON component_analysis_failures (tenant_id, analysis_id)`,
}

// EnsureSchema creates the tables and indexes when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema statement %d: %w", i, err)
		}
	}
	return nil
}
