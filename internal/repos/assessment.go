package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

type AssessmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Assessment) (*types.Assessment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assessment, error)
	GetByBarangayYear(ctx context.Context, tx *gorm.DB, barangayID uuid.UUID, year int) (*types.Assessment, error)
	ListByBarangay(ctx context.Context, tx *gorm.DB, barangayID uuid.UUID) ([]*types.Assessment, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, statuses []string) ([]*types.Assessment, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Assessment, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Assessment) error
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (r *assessmentRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Assessment) (*types.Assessment, error) {
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

func (r *assessmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Assessment
	if err := transaction.WithContext(ctx).
		Preload("Barangay").
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *assessmentRepo) GetByBarangayYear(ctx context.Context, tx *gorm.DB, barangayID uuid.UUID, year int) (*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Assessment
	if err := transaction.WithContext(ctx).
		Where("barangay_id = ? AND performance_year = ?", barangayID, year).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *assessmentRepo) ListByBarangay(ctx context.Context, tx *gorm.DB, barangayID uuid.UUID) ([]*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Assessment
	if barangayID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("barangay_id = ?", barangayID).
		Order("performance_year DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRepo) ListByStatus(ctx context.Context, tx *gorm.DB, statuses []string) ([]*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Assessment
	if len(statuses) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Barangay").
		Where("status IN ?", statuses).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Assessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Assessment
	if err := transaction.WithContext(ctx).
		Preload("Barangay").
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Assessment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}
