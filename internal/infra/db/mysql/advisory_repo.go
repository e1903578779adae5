package mysql

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
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  tenant_id=VALUES(tenant_id), report_id=VALUES(report_id), result_json=VALUES(result_json);
`
	tenant := stringOrDash(a.TenantID)
	result := a.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
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
WHERE tenant_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Advisory
	for rows.Next() {
		a, err := scanAdvisory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LatestByReport returns the newest advisory for one report
func (r *AdvisoryRepository) LatestByReport(ctx context.Context, tenant string, reportID string) (*domain.Advisory, error) {
	const q = `
SELECT id, tenant_id, report_id, result_json, created_at
FROM scan_advisories
WHERE tenant_id=? AND report_id=?
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, reportID)
	a, err := scanAdvisory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func scanAdvisory(row rowScanner) (*domain.Advisory, error) {
	var a domain.Advisory
	var created time.Time
	if err := row.Scan(&a.ID, &a.TenantID, &a.ReportID, &a.Result, &created); err != nil {
		return nil, err
	}
	a.CreatedAt = created
	return &a, nil
}
