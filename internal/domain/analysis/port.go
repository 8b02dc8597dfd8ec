package analysis

import "context"

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, tenant string, id ID) (*Analysis, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) (PaginatedResult, error)
}

// FailureRepository persists failed analysis steps
type FailureRepository interface {
	Save(ctx context.Context, f *Failure) error
	ListByAnalysis(ctx context.Context, tenant string, id ID, limit int) ([]*Failure, error)
}

// ImageStore port for keeping the uploaded images
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
