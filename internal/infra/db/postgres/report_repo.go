package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/llamasearchai/opennode-scan/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, tenant_id, triggered_at, root, status,
       critical, high, medium, low, findings_total,
       score, risk_level, scanned_files,
       artifact_url, markdown_url, duration_ms, source, commit_sha, branch`

// Save insert/update one report summary row
func (r *ReportRepository) Save(ctx context.Context, s *domain.Summary) error {
	const q = `
INSERT INTO scan_reports
(id, tenant_id, triggered_at, root, status,
 critical, high, medium, low, findings_total,
 score, risk_level, scanned_files,
 artifact_url, markdown_url, duration_ms, source, commit_sha, branch)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 critical = EXCLUDED.critical,
 high = EXCLUDED.high,
 medium = EXCLUDED.medium,
 low = EXCLUDED.low,
 findings_total = EXCLUDED.findings_total,
 score = EXCLUDED.score,
 risk_level = EXCLUDED.risk_level,
 scanned_files = EXCLUDED.scanned_files,
 artifact_url = EXCLUDED.artifact_url,
 markdown_url = EXCLUDED.markdown_url,
 duration_ms = EXCLUDED.duration_ms;`

	tenant := stringOrDash(s.TenantID)
	status := stringOrDash(string(s.Status))
	risk := stringOrDash(s.RiskLevel)
	triggered := s.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		s.ID, tenant, triggered, s.Root, status,
		s.Counts.Critical, s.Counts.High, s.Counts.Medium, s.Counts.Low, s.Counts.Total,
		s.Score, risk, s.ScannedFiles,
		s.ArtifactURL, s.MarkdownURL, s.DurationMS,
		s.Source, s.CommitSHA, s.Branch,
	)
	return err
}

// Get by ID + Tenant
func (r *ReportRepository) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.Summary, error) {
	const q = `
SELECT ` + reportColumns + `
FROM scan_reports
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanSummaryRow(row)
}

// Latest report summaries per tenant
func (r *ReportRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + reportColumns + `
FROM scan_reports
WHERE tenant_id=$1 ORDER BY triggered_at DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// Paginate returns an offset page ordered by trigger time
func (r *ReportRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Summary, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	const q = `
SELECT ` + reportColumns + `
FROM scan_reports
WHERE tenant_id=$1 ORDER BY triggered_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// Cursor pagination keyed on (triggered_at, id)
func (r *ReportRepository) Cursor(ctx context.Context, tenant string, cursorTime time.Time, cursorID string, pageSize int) ([]*domain.Summary, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	const q = `
SELECT ` + reportColumns + `
FROM scan_reports
WHERE tenant_id=$1
  AND (triggered_at < $2 OR (triggered_at = $3 AND id < $4))
ORDER BY triggered_at DESC, id DESC
LIMIT $5;`
	rows, err := r.db.QueryContext(ctx, q, tenant, cursorTime, cursorTime, cursorID, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// UpdateStatus marks one report row
func (r *ReportRepository) UpdateStatus(ctx context.Context, tenant string, id domain.ReportID, status domain.Status) error {
	const q = `UPDATE scan_reports SET status=$1 WHERE tenant_id=$2 AND id=$3;`
	_, err := r.db.ExecContext(ctx, q, string(status), tenant, id)
	return err
}

// Summary counts scan results since N days
func (r *ReportRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)
	const q = `
SELECT COUNT(*), COALESCE(SUM(critical),0), COALESCE(SUM(high),0), COALESCE(SUM(medium),0)
FROM scan_reports
WHERE tenant_id=$1 AND triggered_at >= $2;`
	var total, critical, high, medium int
	err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&total, &critical, &high, &medium)
	return total, critical, high, medium, err
}

// Count returns the number of report rows for one tenant
func (r *ReportRepository) Count(ctx context.Context, tenant string) (int64, error) {
	const q = `SELECT COUNT(*) FROM scan_reports WHERE tenant_id=$1;`
	var n int64
	err := r.db.QueryRowContext(ctx, q, tenant).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummaryRow(row rowScanner) (*domain.Summary, error) {
	var s domain.Summary
	var crit, hi, med, lo, tot int
	if err := row.Scan(
		&s.ID, &s.TenantID, &s.TriggeredAt, &s.Root, &s.Status,
		&crit, &hi, &med, &lo, &tot,
		&s.Score, &s.RiskLevel, &s.ScannedFiles,
		&s.ArtifactURL, &s.MarkdownURL, &s.DurationMS,
		&s.Source, &s.CommitSHA, &s.Branch,
	); err != nil {
		return nil, err
	}
	s.Counts = domain.Counts{Critical: crit, High: hi, Medium: med, Low: lo, Total: tot}
	return &s, nil
}

func collectSummaries(rows *sql.Rows) ([]*domain.Summary, error) {
	var out []*domain.Summary
	for rows.Next() {
		s, err := scanSummaryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
