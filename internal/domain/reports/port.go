package reports

import (
	"context"
	"time"
)

// Repository port for report summary persistence
type Repository interface {
	Save(ctx context.Context, s *Summary) error
	Get(ctx context.Context, tenant string, id ReportID) (*Summary, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Summary, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, int, error)
	UpdateStatus(ctx context.Context, tenant string, id ReportID, status Status) error

	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Summary, error)
	Cursor(ctx context.Context, tenant string, cursorTime time.Time, cursorID string, pageSize int) ([]*Summary, error)
	Count(ctx context.Context, tenant string) (int64, error)
}

// WarningRepository port for persisted scan warnings
type WarningRepository interface {
	Save(ctx context.Context, w *ScanWarning) error
	ListByReport(ctx context.Context, tenant string, reportID string, limit int) ([]*ScanWarning, error)
}

// ArtifactStore port for report body storage
type ArtifactStore interface {
	UploadBytes(ctx context.Context, data []byte, key, contentType string) (string, error)
}
