package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/llamasearchai/opennode-scan/internal/domain/advisory"
)

type AdvisoryRepository struct {
	db *sql.DB
}

func NewAdvisoryRepository(db *sql.DB) *AdvisoryRepository {
	return &AdvisoryRepository{db: db}
}

// Save inserts an advisory record
func (r *AdvisoryRepository) Save(ctx context.Context, a *domain.Advisory) error {
	const q = `
INSERT INTO scan_advisories
  (id, tenant_id, report_id, result_json, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  tenant_id=EXCLUDED.tenant_id,
  report_id=EXCLUDED.report_id,
  result_json=EXCLUDED.result_json;`
	tenant := stringOrDash(a.TenantID)
	result := a.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, a.ID, tenant, a.ReportID, result, createdAt)
	return err
}

// Paginate returns a page of advisories ordered by created_at desc
func (r *AdvisoryRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Advisory, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, report_id, result_json, created_at
FROM scan_advisories
WHERE tenant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Advisory
	for rows.Next() {
		var a domain.Advisory
		var created time.Time
		if err := rows.Scan(&a.ID, &a.TenantID, &a.ReportID, &a.Result, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = created
		out = append(out, &a)
	}
	return out, rows.Err()
}

// LatestByReport returns the newest advisory for one report
func (r *AdvisoryRepository) LatestByReport(ctx context.Context, tenant string, reportID string) (*domain.Advisory, error) {
	const q = `
SELECT id, tenant_id, report_id, result_json, created_at
FROM scan_advisories
WHERE tenant_id=$1 AND report_id=$2
ORDER BY created_at DESC, id DESC
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, reportID)
	var a domain.Advisory
	var created time.Time
	if err := row.Scan(&a.ID, &a.TenantID, &a.ReportID, &a.Result, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.CreatedAt = created
	return &a, nil
}
