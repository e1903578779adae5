package advisory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/llamasearchai/opennode-scan/internal/domain/advisory"
)

// Service generates and stores AI remediation advisories for scan reports.
type Service struct {
	client domain.Client
	repo   domain.Repository
}

func NewService(client domain.Client, repo domain.Repository) *Service {
	return &Service{client: client, repo: repo}
}

// AdviseAndStore runs the model over the report JSON and persists the result.
func (s *Service) AdviseAndStore(ctx context.Context, tenant, reportID, reportJSON string) (*domain.Advisory, error) {
	result, err := s.client.Advise(ctx, reportJSON)
	if err != nil {
		return nil, fmt.Errorf("advisory failed: %w", err)
	}

	a := &domain.Advisory{
		ID:        domain.AdvisoryID(uuid.New().String()),
		TenantID:  tenant,
		ReportID:  reportID,
		Result:    result,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns a page of stored advisories.
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Advisory, error) {
	return s.repo.Paginate(ctx, tenant, page, pageSize)
}

// LatestFor returns the newest advisory for one report.
func (s *Service) LatestFor(ctx context.Context, tenant, reportID string) (*domain.Advisory, error) {
	return s.repo.LatestByReport(ctx, tenant, reportID)
}
