package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

type ValidationRecordRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ValidationRecord) error
	GetByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) ([]*types.ValidationRecord, error)
	DeleteByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error
}

type validationRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewValidationRecordRepo(db *gorm.DB, baseLog *logger.Logger) ValidationRecordRepo {
	return &validationRecordRepo{db: db, log: baseLog.With("repo", "ValidationRecordRepo")}
}

// Upsert keys on the unique response_id; re-validating an indicator
// replaces the assessor's previous verdict.
func (r *validationRecordRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ValidationRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("response_id = ?", row.ResponseID).
		Assign(map[string]any{
			"assessor_id":       row.AssessorID,
			"validation_status": row.ValidationStatus,
			"public_comment":    row.PublicComment,
			"internal_note":     row.InternalNote,
		}).
		FirstOrCreate(row).Error
}

func (r *validationRecordRepo) GetByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) ([]*types.ValidationRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ValidationRecord
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

func (r *validationRecordRepo) DeleteByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(responseIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("response_id IN ?", responseIDs).
		Delete(&types.ValidationRecord{}).Error
}
