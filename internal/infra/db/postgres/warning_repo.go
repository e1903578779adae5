package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/llamasearchai/opennode-scan/internal/domain/reports"
)

type WarningRepository struct {
	db *sql.DB
}

func NewWarningRepository(db *sql.DB) *WarningRepository { return &WarningRepository{db: db} }

func (r *WarningRepository) Save(ctx context.Context, w *domain.ScanWarning) error {
	const q = `
INSERT INTO scan_warnings
  (tenant_id, report_id, message, created_at)
VALUES ($1,$2,$3,$4);`
	tenant := stringOrDash(w.TenantID)
	report := stringOrDash(w.ReportID)
	msg := w.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := w.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, tenant, report, msg, created)
	return err
}

func (r *WarningRepository) ListByReport(ctx context.Context, tenant string, reportID string, limit int) ([]*domain.ScanWarning, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, tenant_id, report_id, message, created_at
FROM scan_warnings
WHERE tenant_id=$1 AND report_id=$2
ORDER BY created_at DESC, id DESC
LIMIT $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, reportID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ScanWarning
	for rows.Next() {
		var w domain.ScanWarning
		if err := rows.Scan(&w.ID, &w.TenantID, &w.ReportID, &w.Message, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}
