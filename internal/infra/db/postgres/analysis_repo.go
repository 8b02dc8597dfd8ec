package postgres

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/componentlens/internal/domain/analysis"
	"github.com/bryanwahyu/componentlens/internal/infra/db"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, tenant_id, image_url, analysis_text, classification_json::text,
       detections_json::text, structured_json::text, model_used, created_at`

// Save inserts or updates an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO component_analyses
  (id, tenant_id, image_url, analysis_text, classification_json, detections_json, structured_json, model_used, created_at)
VALUES ($1,$2,$3,$4,$5::jsonb,$6::jsonb,$7::jsonb,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  image_url=EXCLUDED.image_url,
  analysis_text=EXCLUDED.analysis_text,
  classification_json=EXCLUDED.classification_json,
  detections_json=EXCLUDED.detections_json,
  structured_json=EXCLUDED.structured_json,
  model_used=EXCLUDED.model_used;
`
	row, err := db.EncodeAnalysis(a)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		row.ID, row.TenantID, row.ImageURL, row.Text,
		row.ClassificationJSON, row.DetectionsJSON, row.StructuredJSON,
		row.ModelUsed, row.CreatedAt,
	)
	return err
}

// Get returns one analysis, domain.ErrNotFound when missing
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.ID) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + `
FROM component_analyses
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	page, size, offset := db.NormalizePage(page, pageSize)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM component_analyses WHERE tenant_id=$1`, tenant,
	).Scan(&total); err != nil {
		return domain.PaginatedResult{}, err
	}

	q := `SELECT ` + analysisColumns + `
FROM component_analyses
WHERE tenant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, size, offset)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	defer rows.Close()

	out := []*domain.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return domain.PaginatedResult{}, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, err
	}
	return domain.NewPaginatedResult(out, page, size, total), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s rowScanner) (*domain.Analysis, error) {
	var row db.AnalysisRow
	if err := s.Scan(
		&row.ID, &row.TenantID, &row.ImageURL, &row.Text, &row.ClassificationJSON,
		&row.DetectionsJSON, &row.StructuredJSON, &row.ModelUsed, &row.CreatedAt,
	); err != nil {
		return nil, err
	}
	return row.Decode()
}
