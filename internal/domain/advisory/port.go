package advisory

import "context"

// Client port for the model backend
type Client interface {
	Advise(ctx context.Context, reportJSON string) (string, error)
}

// Repository port for persisting and querying advisories
type Repository interface {
	Save(ctx context.Context, a *Advisory) error
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Advisory, error)
	LatestByReport(ctx context.Context, tenant string, reportID string) (*Advisory, error)
}
