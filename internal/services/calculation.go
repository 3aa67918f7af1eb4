package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dilg-vantage/vantage-backend/internal/calcschema"
	"github.com/dilg-vantage/vantage-backend/internal/platform/apierr"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
)

// CalculationService evaluates auto-scoring rules: dry runs against sample
// data while an admin builds a rule, and live runs against an assessment's
// stored answers.
type CalculationService interface {
	TestSchema(ctx context.Context, raw json.RawMessage, sample map[string]any) (*calcschema.Result, error)
	EvaluateIndicator(ctx context.Context, assessmentID, indicatorID uuid.UUID) (*calcschema.Result, error)
}

type calculationService struct {
	indicatorRepo repos.IndicatorRepo
	responseRepo  repos.AssessmentResponseRepo
	log           *logger.Logger
}

func NewCalculationService(
	indicatorRepo repos.IndicatorRepo,
	responseRepo repos.AssessmentResponseRepo,
	log *logger.Logger,
) CalculationService {
	return &calculationService{
		indicatorRepo: indicatorRepo,
		responseRepo:  responseRepo,
		log:           log.With("service", "CalculationService"),
	}
}

func (s *calculationService) TestSchema(ctx context.Context, raw json.RawMessage, sample map[string]any) (*calcschema.Result, error) {
	schema, err := calcschema.Parse(raw)
	if err != nil {
		return nil, apierr.BadRequest("invalid_calculation_schema", err)
	}
	result := calcschema.Evaluate(schema, sample)
	return &result, nil
}

func (s *calculationService) EvaluateIndicator(ctx context.Context, assessmentID, indicatorID uuid.UUID) (*calcschema.Result, error) {
	row, err := s.indicatorRepo.GetByID(ctx, nil, indicatorID)
	if err != nil {
		return nil, apierr.NotFound("indicator_not_found", err)
	}
	if !row.IsAutoCalculable || len(row.CalculationSchema) == 0 {
		return nil, apierr.Conflict("not_auto_calculable", fmt.Errorf("indicator %s has no calculation rule", indicatorID))
	}
	schema, err := calcschema.Parse(row.CalculationSchema)
	if err != nil {
		return nil, apierr.Conflict("invalid_calculation_schema", err)
	}

	response, err := s.responseRepo.GetByAssessmentAndIndicator(ctx, nil, assessmentID, indicatorID)
	if err != nil {
		return nil, apierr.NotFound("response_not_found", err)
	}
	var data map[string]any
	if len(response.ResponseData) > 0 {
		if err := json.Unmarshal(response.ResponseData, &data); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
	}

	result := calcschema.Evaluate(schema, data)
	return &result, nil
}
