package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/llamasearchai/opennode-scan/internal/application"
	domain "github.com/llamasearchai/opennode-scan/internal/domain/reports"
	"github.com/llamasearchai/opennode-scan/internal/engine"
)

// Service implements the scan use-cases. It is safe for concurrent use: the
// engine scanner is the only shared object and it carries no per-scan state.
type Service struct {
	Repo      domain.Repository
	Warnings  domain.WarningRepository
	Artifacts domain.ArtifactStore
	Scanner   *engine.Scanner
	Clock     application.Clock
}

// TriggerScanCommand starts one scan of a local root.
type TriggerScanCommand struct {
	TenantID  string
	Root      string
	Source    string
	CommitSHA string
	Branch    string
}

// TriggerScanResult is the caller-facing outcome.
type TriggerScanResult struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Counts       domain.Counts `json:"counts"`
	Score        int           `json:"score"`
	RiskLevel    string        `json:"risk_level"`
	ArtifactURL  string        `json:"artifact_url,omitempty"`
	MarkdownURL  string        `json:"markdown_url,omitempty"`
	DurationMS   int64         `json:"duration_ms"`
	WarningCount int           `json:"warning_count"`
}

// TriggerScanUntilDone runs the scan under context.Background(), intended
// for the router's background goroutine so it is not cut short by the
// request context.
func (s *Service) TriggerScanUntilDone(cmd TriggerScanCommand) (TriggerScanResult, error) {
	return s.TriggerScan(context.Background(), cmd)
}

// TriggerScan runs the engine, uploads the report body and its markdown
// rendering, persists the summary row and warnings.
func (s *Service) TriggerScan(ctx context.Context, cmd TriggerScanCommand) (TriggerScanResult, error) {
	now := s.Clock.Now()
	id := fmt.Sprintf("%s-scan", uuid.New().String())

	// initial row so there is always an ID to reference
	initial := &domain.Summary{
		ID:          domain.ReportID(id),
		TenantID:    cmd.TenantID,
		TriggeredAt: now,
		Root:        cmd.Root,
		Status:      domain.StatusRunning,
		Source:      cmd.Source,
		CommitSHA:   cmd.CommitSHA,
		Branch:      cmd.Branch,
	}
	if err := s.Repo.Save(ctx, initial); err != nil {
		return TriggerScanResult{ID: id, Status: string(domain.StatusFailed)}, err
	}

	// the engine never fails on per-file or per-source errors; a non-nil
	// error here means the scan itself could not run
	report, err := s.Scanner.Scan(ctx, cmd.Root)
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), cmd.TenantID, domain.ReportID(id), domain.StatusFailed)
		return TriggerScanResult{ID: id, Status: string(domain.StatusFailed)}, err
	}

	body, err := json.Marshal(report)
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), cmd.TenantID, domain.ReportID(id), domain.StatusFailed)
		return TriggerScanResult{ID: id, Status: string(domain.StatusFailed)}, err
	}

	key := fmt.Sprintf("%s/scans/%s.json", cmd.TenantID, id)
	artifactURL, err := s.Artifacts.UploadBytes(ctx, body, key, "application/json")
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), cmd.TenantID, domain.ReportID(id), domain.StatusFailed)
		return TriggerScanResult{ID: id, Status: string(domain.StatusFailed)}, err
	}

	mdKey := fmt.Sprintf("%s/scans/%s.md", cmd.TenantID, id)
	markdownURL, err := s.Artifacts.UploadBytes(ctx, []byte(engine.ToMarkdown(report)), mdKey, "text/markdown")
	if err != nil {
		// the JSON body made it; record the summary without the markdown link
		markdownURL = ""
	}

	summary := &domain.Summary{
		ID:           domain.ReportID(id),
		TenantID:     cmd.TenantID,
		TriggeredAt:  now,
		Root:         cmd.Root,
		Status:       domain.StatusSuccess,
		Counts:       countsFromReport(report),
		Score:        report.Metrics.Score,
		RiskLevel:    string(report.Metrics.RiskLevel),
		ScannedFiles: report.ScannedFileCount,
		ArtifactURL:  artifactURL,
		MarkdownURL:  markdownURL,
		DurationMS:   report.DurationMS,
		Source:       cmd.Source,
		CommitSHA:    cmd.CommitSHA,
		Branch:       cmd.Branch,
	}
	if err := s.Repo.Save(ctx, summary); err != nil {
		return TriggerScanResult{ID: id, Status: string(summary.Status)}, err
	}

	if s.Warnings != nil {
		for _, msg := range report.Warnings {
			_ = s.Warnings.Save(ctx, &domain.ScanWarning{
				TenantID:  cmd.TenantID,
				ReportID:  id,
				Message:   msg,
				CreatedAt: now,
			})
		}
	}

	return TriggerScanResult{
		ID:           id,
		Status:       string(summary.Status),
		Counts:       summary.Counts,
		Score:        summary.Score,
		RiskLevel:    summary.RiskLevel,
		ArtifactURL:  summary.ArtifactURL,
		MarkdownURL:  summary.MarkdownURL,
		DurationMS:   summary.DurationMS,
		WarningCount: len(report.Warnings),
	}, nil
}

// Latest returns the N most recent report summaries.
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Summary, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get returns one report summary by id.
func (s *Service) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.Summary, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// List returns one offset page of report summaries with pagination metadata.
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	data, err := s.Repo.Paginate(ctx, tenant, page, pageSize)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	total, err := s.Repo.Count(ctx, tenant)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	return domain.PaginatedResult{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// ListWarnings returns the persisted warnings for one report.
func (s *Service) ListWarnings(ctx context.Context, tenant, reportID string, limit int) ([]*domain.ScanWarning, error) {
	if s.Warnings == nil {
		return nil, nil
	}
	return s.Warnings.ListByReport(ctx, tenant, reportID, limit)
}

// Summary aggregates results over the last N days.
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	total, critical, high, medium, err := s.Repo.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_scans": total,
		"critical":    critical,
		"high":        high,
		"medium":      medium,
	}, nil
}

func countsFromReport(r *engine.ScanReport) domain.Counts {
	return domain.Counts{
		Critical: r.Metrics.Counts.Critical,
		High:     r.Metrics.Counts.High,
		Medium:   r.Metrics.Counts.Medium,
		Low:      r.Metrics.Counts.Low,
		Total:    r.Metrics.Counts.Total,
	}
}
