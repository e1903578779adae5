package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	domain "github.com/llamasearchai/opennode-scan/internal/domain/reports"
	"github.com/llamasearchai/opennode-scan/internal/engine"
)

type memoryRepo struct {
	rows map[domain.ReportID]*domain.Summary
	seq  []domain.ReportID
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[domain.ReportID]*domain.Summary{}}
}

func (m *memoryRepo) Save(ctx context.Context, s *domain.Summary) error {
	if _, ok := m.rows[s.ID]; !ok {
		m.seq = append(m.seq, s.ID)
	}
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, tenant string, id domain.ReportID) (*domain.Summary, error) {
	s, ok := m.rows[id]
	if !ok || s.TenantID != tenant {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *memoryRepo) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Summary, error) {
	var out []*domain.Summary
	for i := len(m.seq) - 1; i >= 0 && len(out) < limit; i-- {
		if s := m.rows[m.seq[i]]; s.TenantID == tenant {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryRepo) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, int, error) {
	total, critical, high, medium := 0, 0, 0, 0
	for _, s := range m.rows {
		if s.TenantID != tenant {
			continue
		}
		total++
		critical += s.Counts.Critical
		high += s.Counts.High
		medium += s.Counts.Medium
	}
	return total, critical, high, medium, nil
}

func (m *memoryRepo) UpdateStatus(ctx context.Context, tenant string, id domain.ReportID, status domain.Status) error {
	if s, ok := m.rows[id]; ok {
		s.Status = status
	}
	return nil
}

func (m *memoryRepo) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Summary, error) {
	all, _ := m.Latest(ctx, tenant, len(m.seq))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *memoryRepo) Cursor(ctx context.Context, tenant string, cursorTime time.Time, cursorID string, pageSize int) ([]*domain.Summary, error) {
	return nil, nil
}

func (m *memoryRepo) Count(ctx context.Context, tenant string) (int64, error) {
	var n int64
	for _, s := range m.rows {
		if s.TenantID == tenant {
			n++
		}
	}
	return n, nil
}

type memoryWarnings struct {
	rows []*domain.ScanWarning
}

func (m *memoryWarnings) Save(ctx context.Context, w *domain.ScanWarning) error {
	cp := *w
	cp.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memoryWarnings) ListByReport(ctx context.Context, tenant, reportID string, limit int) ([]*domain.ScanWarning, error) {
	var out []*domain.ScanWarning
	for _, w := range m.rows {
		if w.TenantID == tenant && w.ReportID == reportID && len(out) < limit {
			out = append(out, w)
		}
	}
	return out, nil
}

type memoryArtifacts struct {
	objects map[string][]byte
	types   map[string]string
	failKey string
}

func newMemoryArtifacts() *memoryArtifacts {
	return &memoryArtifacts{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryArtifacts) UploadBytes(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if m.failKey != "" && strings.HasSuffix(key, m.failKey) {
		return "", fmt.Errorf("upload refused")
	}
	m.objects[key] = data
	m.types[key] = contentType
	return "http://artifacts.local/" + key, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, artifacts *memoryArtifacts) (*Service, *memoryRepo, *memoryWarnings) {
	t.Helper()
	scanner, err := engine.New(engine.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	repo := newMemoryRepo()
	warnings := &memoryWarnings{}
	svc := &Service{
		Repo:      repo,
		Warnings:  warnings,
		Artifacts: artifacts,
		Scanner:   scanner,
		Clock:     fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, repo, warnings
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTriggerScanPersistsSummaryAndArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "index.js", "eval(userInput);\n")

	artifacts := newMemoryArtifacts()
	svc, repo, _ := newTestService(t, artifacts)

	res, err := svc.TriggerScan(context.Background(), TriggerScanCommand{
		TenantID: "acme",
		Root:     dir,
		Source:   "api",
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Status != string(domain.StatusSuccess) {
		t.Errorf("status = %s, want success", res.Status)
	}
	if !strings.HasSuffix(res.ID, "-scan") {
		t.Errorf("id %q should carry the -scan suffix", res.ID)
	}
	if res.Counts.Critical != 1 || res.Counts.Total != 1 {
		t.Errorf("counts = %+v, want one critical", res.Counts)
	}
	if res.RiskLevel != "critical" {
		t.Errorf("risk = %s, want critical", res.RiskLevel)
	}

	jsonKey := fmt.Sprintf("acme/scans/%s.json", res.ID)
	mdKey := fmt.Sprintf("acme/scans/%s.md", res.ID)
	if _, ok := artifacts.objects[jsonKey]; !ok {
		t.Errorf("missing JSON artifact at %s", jsonKey)
	}
	if artifacts.types[jsonKey] != "application/json" {
		t.Errorf("json content type = %s", artifacts.types[jsonKey])
	}
	if artifacts.types[mdKey] != "text/markdown" {
		t.Errorf("markdown content type = %s", artifacts.types[mdKey])
	}

	var stored engine.ScanReport
	if err := json.Unmarshal(artifacts.objects[jsonKey], &stored); err != nil {
		t.Fatalf("stored body is not a report: %v", err)
	}
	if len(stored.Findings) != 1 {
		t.Errorf("stored report has %d findings, want 1", len(stored.Findings))
	}

	saved, err := repo.Get(context.Background(), "acme", domain.ReportID(res.ID))
	if err != nil {
		t.Fatal(err)
	}
	if saved.Status != domain.StatusSuccess || saved.ArtifactURL == "" || saved.MarkdownURL == "" {
		t.Errorf("saved summary incomplete: %+v", saved)
	}
	if saved.ScannedFiles != 1 {
		t.Errorf("scanned files = %d, want 1", saved.ScannedFiles)
	}
}

func TestTriggerScanPersistsWarnings(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")

	svc, _, warnings := newTestService(t, newMemoryArtifacts())
	res, err := svc.TriggerScan(context.Background(), TriggerScanCommand{TenantID: "acme", Root: missing})
	if err != nil {
		t.Fatal(err)
	}
	if res.WarningCount == 0 {
		t.Fatal("expected at least one warning for a missing root")
	}

	rows, err := warnings.ListByReport(context.Background(), "acme", res.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != res.WarningCount {
		t.Errorf("persisted %d warnings, result says %d", len(rows), res.WarningCount)
	}
	if !strings.Contains(rows[0].Message, "scan root unavailable") {
		t.Errorf("warning = %q", rows[0].Message)
	}
}

func TestTriggerScanArtifactFailureMarksFailed(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "index.js", "const ok = 1;\n")

	artifacts := newMemoryArtifacts()
	artifacts.failKey = ".json"
	svc, repo, _ := newTestService(t, artifacts)

	res, err := svc.TriggerScan(context.Background(), TriggerScanCommand{TenantID: "acme", Root: dir})
	if err == nil {
		t.Fatal("expected an error when the JSON upload fails")
	}
	if res.Status != string(domain.StatusFailed) {
		t.Errorf("status = %s, want failed", res.Status)
	}

	saved, err := repo.Get(context.Background(), "acme", domain.ReportID(res.ID))
	if err != nil {
		t.Fatal(err)
	}
	if saved.Status != domain.StatusFailed {
		t.Errorf("persisted status = %s, want failed", saved.Status)
	}
}

func TestTriggerScanMarkdownFailureIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "index.js", "const ok = 1;\n")

	artifacts := newMemoryArtifacts()
	artifacts.failKey = ".md"
	svc, repo, _ := newTestService(t, artifacts)

	res, err := svc.TriggerScan(context.Background(), TriggerScanCommand{TenantID: "acme", Root: dir})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != string(domain.StatusSuccess) {
		t.Errorf("status = %s, want success", res.Status)
	}
	if res.MarkdownURL != "" {
		t.Errorf("markdown url should be empty, got %s", res.MarkdownURL)
	}
	saved, _ := repo.Get(context.Background(), "acme", domain.ReportID(res.ID))
	if saved.ArtifactURL == "" {
		t.Error("json artifact url should survive a markdown upload failure")
	}
}

func TestListPaginates(t *testing.T) {
	svc, repo, _ := newTestService(t, newMemoryArtifacts())
	for i := 0; i < 5; i++ {
		id := domain.ReportID(fmt.Sprintf("r%d-scan", i))
		if err := repo.Save(context.Background(), &domain.Summary{
			ID: id, TenantID: "acme", Status: domain.StatusSuccess,
		}); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.List(context.Background(), "acme", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Errorf("total = %d, pages = %d, want 5 and 3", page.Total, page.TotalPages)
	}
	if len(page.Data) != 2 {
		t.Errorf("page has %d rows, want 2", len(page.Data))
	}
	if page.Page != 2 || page.PageSize != 2 {
		t.Errorf("page meta = %d/%d", page.Page, page.PageSize)
	}
}

func TestSummaryAggregates(t *testing.T) {
	svc, repo, _ := newTestService(t, newMemoryArtifacts())
	_ = repo.Save(context.Background(), &domain.Summary{
		ID: "a-scan", TenantID: "acme",
		Counts: domain.Counts{Critical: 1, High: 2, Medium: 3, Total: 6},
	})
	_ = repo.Save(context.Background(), &domain.Summary{
		ID: "b-scan", TenantID: "acme",
		Counts: domain.Counts{High: 1, Total: 1},
	})

	out, err := svc.Summary(context.Background(), "acme", 7)
	if err != nil {
		t.Fatal(err)
	}
	if out["total_scans"] != 2 || out["critical"] != 1 || out["high"] != 3 || out["medium"] != 3 {
		t.Errorf("summary = %v", out)
	}
}
