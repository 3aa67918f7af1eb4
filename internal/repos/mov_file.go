package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

type MOVFileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.MOVFile) (*types.MOVFile, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MOVFile, error)
	GetByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) ([]*types.MOVFile, error)
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type movFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMOVFileRepo(db *gorm.DB, baseLog *logger.Logger) MOVFileRepo {
	return &movFileRepo{db: db, log: baseLog.With("repo", "MOVFileRepo")}
}

func (r *movFileRepo) Create(ctx context.Context, tx *gorm.DB, row *types.MOVFile) (*types.MOVFile, error) {
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

func (r *movFileRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MOVFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.MOVFile
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *movFileRepo) GetByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) ([]*types.MOVFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MOVFile
	if len(responseIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("response_id IN ?", responseIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *movFileRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.MOVFile{}).Error
}
