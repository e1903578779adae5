package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appadvisory "github.com/llamasearchai/opennode-scan/internal/application/advisory"
	appreports "github.com/llamasearchai/opennode-scan/internal/application/reports"
	domadvisory "github.com/llamasearchai/opennode-scan/internal/domain/advisory"
	domain "github.com/llamasearchai/opennode-scan/internal/domain/reports"
	"github.com/llamasearchai/opennode-scan/internal/middleware"
)

type Router struct {
	reportsSvc  *appreports.Service
	advisorySvc *appadvisory.Service
	log         *zap.Logger
}

func NewRouter(reportsSvc *appreports.Service, advisorySvc *appadvisory.Service, log *zap.Logger) http.Handler {
	r := &Router{reportsSvc: reportsSvc, advisorySvc: advisorySvc, log: log}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/scans", r.wrap(r.handleTriggerScan))
		rt.Get("/scans", r.wrap(r.handleList))
		rt.Get("/scans/latest", r.wrap(r.handleLatest))
		rt.Get("/scans/{id}", r.wrap(r.handleGet))
		rt.Get("/scans/{id}/markdown", r.wrap(r.handleMarkdown))
		rt.Get("/scans/{id}/warnings", r.wrap(r.handleWarnings))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Post("/advisories", r.wrap(r.handleAdvise))
		rt.Get("/advisories", r.wrap(r.handleAdvisoryList))
		rt.Get("/scans/{id}/advisory", r.wrap(r.handleAdvisoryForReport))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domadvisory.ErrQuotaExceeded) {
				http.Error(w, "advisory quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/scans
// Body: {"root": "<path>", "source": "", "commit_sha": "", "branch": ""}
func (r *Router) handleTriggerScan(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	var body struct {
		Root      string `json:"root"`
		Source    string `json:"source"`
		CommitSHA string `json:"commit_sha"`
		Branch    string `json:"branch"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateTenantID(tenant); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	if err := middleware.ValidateScanRoot(body.Root); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	cmd := appreports.TriggerScanCommand{
		TenantID:  tenant,
		Root:      body.Root,
		Source:    middleware.SanitizeString(body.Source),
		CommitSHA: middleware.SanitizeString(body.CommitSHA),
		Branch:    middleware.SanitizeString(body.Branch),
	}

	// run in background until done; the request returns immediately
	go func() {
		middleware.IncrementScans()
		middleware.IncrementScansRunning()
		defer middleware.DecrementScansRunning()

		result, err := r.reportsSvc.TriggerScanUntilDone(cmd)
		if err != nil {
			middleware.IncrementScansFailed()
			r.log.Error("background scan failed",
				zap.String("tenant", tenant),
				zap.String("root", body.Root),
				zap.Error(err))
			return
		}
		middleware.AddFindings(result.Counts.Total)
		r.log.Info("scan finished",
			zap.String("tenant", tenant),
			zap.String("id", result.ID),
			zap.Int("score", result.Score),
			zap.String("risk_level", result.RiskLevel),
			zap.String("artifact", result.ArtifactURL))
	}()

	resp := map[string]any{
		"status":   "queued",
		"tenant":   tenant,
		"root":     body.Root,
		"branch":   body.Branch,
		"commit":   body.CommitSHA,
		"message":  "scan started in background",
		"queuedAt": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{tenant}/scans?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size := middleware.ValidateLimit(atoiDefault(req.URL.Query().Get("page_size")))

	result, err := r.reportsSvc.List(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/{tenant}/scans/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit := middleware.ValidateLimit(atoiDefault(req.URL.Query().Get("limit")))

	list, err := r.reportsSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/scans/{id}?format=json|markdown
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateReportID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	format := req.URL.Query().Get("format")
	if err := middleware.ValidateFormat(format); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	report, err := r.reportsSvc.Get(req.Context(), tenant, domain.ReportID(id))
	if err != nil {
		return err
	}

	if strings.EqualFold(format, "markdown") {
		if report.MarkdownURL == "" {
			http.Error(w, "markdown not available", http.StatusNotFound)
			return nil
		}
		http.Redirect(w, req, report.MarkdownURL, http.StatusFound)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(report)
}

// GET /v1/{tenant}/scans/{id}/markdown redirects to the stored rendering
func (r *Router) handleMarkdown(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateReportID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	report, err := r.reportsSvc.Get(req.Context(), tenant, domain.ReportID(id))
	if err != nil {
		return err
	}
	if report.MarkdownURL == "" {
		http.Error(w, "markdown not available", http.StatusNotFound)
		return nil
	}
	http.Redirect(w, req, report.MarkdownURL, http.StatusFound)
	return nil
}

// GET /v1/{tenant}/scans/{id}/warnings?limit=50
func (r *Router) handleWarnings(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateReportID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	limit := middleware.ValidateLimit(atoiDefault(req.URL.Query().Get("limit")))

	list, err := r.reportsSvc.ListWarnings(req.Context(), tenant, id, limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.ScanWarning{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days := middleware.ValidateDays(atoiDefault(req.URL.Query().Get("days")))

	summary, err := r.reportsSvc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// POST /v1/{tenant}/advisories
// Body: {"scan_id": "<id>"}
// Fetches the report summary and runs the advisory model over its stored JSON.
func (r *Router) handleAdvise(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if r.advisorySvc == nil {
		http.Error(w, "advisory backend not configured", http.StatusServiceUnavailable)
		return nil
	}

	var body struct {
		ScanID string `json:"scan_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateReportID(body.ScanID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	report, err := r.reportsSvc.Get(req.Context(), tenant, domain.ReportID(body.ScanID))
	if err != nil {
		return err
	}
	if report == nil || report.ArtifactURL == "" {
		return fmt.Errorf("artifact_url not found for scan_id: %s", body.ScanID)
	}

	summaryJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}

	a, err := r.advisorySvc.AdviseAndStore(req.Context(), tenant, body.ScanID, string(summaryJSON))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/advisories?page=&page_size=
func (r *Router) handleAdvisoryList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if r.advisorySvc == nil {
		http.Error(w, "advisory backend not configured", http.StatusServiceUnavailable)
		return nil
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.advisorySvc.List(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/scans/{id}/advisory
func (r *Router) handleAdvisoryForReport(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if r.advisorySvc == nil {
		http.Error(w, "advisory backend not configured", http.StatusServiceUnavailable)
		return nil
	}

	if err := middleware.ValidateReportID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	a, err := r.advisorySvc.LatestFor(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	if a == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

func atoiDefault(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
