package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

type BarangayRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Barangay) (*types.Barangay, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Barangay, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Barangay, error)
}

type barangayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBarangayRepo(db *gorm.DB, baseLog *logger.Logger) BarangayRepo {
	return &barangayRepo{db: db, log: baseLog.With("repo", "BarangayRepo")}
}

func (r *barangayRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Barangay) (*types.Barangay, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *barangayRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Barangay, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Barangay
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *barangayRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Barangay, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Barangay
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
