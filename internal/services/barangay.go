package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dilg-vantage/vantage-backend/internal/platform/apierr"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

// BarangayService is read-mostly: barangay records are provisioned out of
// band, the API only lists and resolves them.
type BarangayService interface {
	Get(ctx context.Context, id uuid.UUID) (*types.Barangay, error)
	List(ctx context.Context) ([]*types.Barangay, error)
	Create(ctx context.Context, row *types.Barangay) (*types.Barangay, error)
}

type barangayService struct {
	repo repos.BarangayRepo
	log  *logger.Logger
}

func NewBarangayService(repo repos.BarangayRepo, log *logger.Logger) BarangayService {
	return &barangayService{repo: repo, log: log.With("service", "BarangayService")}
}

func (s *barangayService) Get(ctx context.Context, id uuid.UUID) (*types.Barangay, error) {
	if _, err := callerFrom(ctx); err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.NotFound("barangay_not_found", err)
	}
	return row, nil
}

func (s *barangayService) List(ctx context.Context) ([]*types.Barangay, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, requestdata.RoleAssessor, requestdata.RoleMLGOO); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx, nil)
}

func (s *barangayService) Create(ctx context.Context, row *types.Barangay) (*types.Barangay, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, requestdata.RoleMLGOO); err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return s.repo.Create(ctx, nil, row)
}
