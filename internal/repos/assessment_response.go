package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

type AssessmentResponseRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentResponse, error)
	GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.AssessmentResponse, error)
	GetByAssessmentAndIndicator(ctx context.Context, tx *gorm.DB, assessmentID, indicatorID uuid.UUID) (*types.AssessmentResponse, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.AssessmentResponse) error
}

type assessmentResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentResponseRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentResponseRepo {
	return &assessmentResponseRepo{db: db, log: baseLog.With("repo", "AssessmentResponseRepo")}
}

func (r *assessmentResponseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.AssessmentResponse
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *assessmentResponseRepo) GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.AssessmentResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AssessmentResponse
	if assessmentID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assessmentResponseRepo) GetByAssessmentAndIndicator(ctx context.Context, tx *gorm.DB, assessmentID, indicatorID uuid.UUID) (*types.AssessmentResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.AssessmentResponse
	if err := transaction.WithContext(ctx).
		Where("assessment_id = ? AND indicator_id = ?", assessmentID, indicatorID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert keys on the unique assessment_id + indicator_id pair; responses
// are created lazily on first answer.
func (r *assessmentResponseRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.AssessmentResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("assessment_id = ? AND indicator_id = ?", row.AssessmentID, row.IndicatorID).
		Assign(map[string]any{"response_data": row.ResponseData}).
		FirstOrCreate(row).Error
}
