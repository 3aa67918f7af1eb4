package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

type IndicatorRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Indicator) ([]*types.Indicator, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Indicator, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Indicator, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Indicator, error)
	GetChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Indicator, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Indicator) error
	SaveBatch(ctx context.Context, tx *gorm.DB, rows []*types.Indicator) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type indicatorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIndicatorRepo(db *gorm.DB, baseLog *logger.Logger) IndicatorRepo {
	return &indicatorRepo{db: db, log: baseLog.With("repo", "IndicatorRepo")}
}

func (r *indicatorRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Indicator) ([]*types.Indicator, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Indicator{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *indicatorRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Indicator, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.Indicator
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *indicatorRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Indicator, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Indicator
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *indicatorRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Indicator, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Indicator
	if err := transaction.WithContext(ctx).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *indicatorRepo) GetChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Indicator, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Indicator
	if err := transaction.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *indicatorRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Indicator) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *indicatorRepo) SaveBatch(ctx context.Context, tx *gorm.DB, rows []*types.Indicator) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	for _, row := range rows {
		if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *indicatorRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Indicator{}).Error
}
