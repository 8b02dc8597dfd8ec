package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS component_analyses (
  id                  VARCHAR(64)  NOT NULL PRIMARY KEY,
  tenant_id           VARCHAR(64)  NOT NULL,
  image_url           TEXT         NOT NULL,
  analysis_text       MEDIUMTEXT   NOT NULL,
  classification_json JSON         NOT NULL,
  detections_json     JSON         NOT NULL,
  structured_json     JSON         NOT NULL,
  model_used          VARCHAR(128) NOT NULL,
  created_at          DATETIME(6)  NOT NULL,
  INDEX idx_component_analyses_tenant_created (tenant_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
CREATE TABLE IF NOT EXISTS component_analysis_failures (
  id          BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
  tenant_id   VARCHAR(64)  NOT NULL,
  analysis_id VARCHAR(64)  NOT NULL,
  phase       VARCHAR(32)  NOT NULL,
  message     TEXT         NOT NULL,
  created_at  DATETIME(6)  NOT NULL,
  INDEX idx_component_analysis_failures_analysis (tenant_id, analysis_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables when missing. The driver runs one
// statement per Exec, so they are applied in order.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql schema statement %d: %w", i, err)
		}
	}
	return nil
}
