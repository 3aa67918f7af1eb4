package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dilg-vantage/vantage-backend/internal/platform/apierr"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
	"github.com/dilg-vantage/vantage-backend/internal/types"
	"github.com/dilg-vantage/vantage-backend/internal/workflow"
)

type RecordValidationInput struct {
	ResponseID    uuid.UUID
	Status        string
	PublicComment string
	InternalNote  string
}

// ValidationService is the assessor side of the workflow: recording
// per-indicator verdicts and driving the rework/finalize transitions.
type ValidationService interface {
	Record(ctx context.Context, input RecordValidationInput) (*types.ValidationRecord, error)
	ListForAssessment(ctx context.Context, assessmentID uuid.UUID) ([]*types.ValidationRecord, error)
	Progress(ctx context.Context, assessmentID uuid.UUID) (workflow.ReviewProgress, error)
	SendRework(ctx context.Context, assessmentID uuid.UUID) (*types.Assessment, error)
	Finalize(ctx context.Context, assessmentID uuid.UUID) (*types.Assessment, error)
}

type validationService struct {
	assessmentRepo repos.AssessmentRepo
	indicatorRepo  repos.IndicatorRepo
	responseRepo   repos.AssessmentResponseRepo
	validationRepo repos.ValidationRecordRepo
	summaries      SummaryService
	log            *logger.Logger
}

func NewValidationService(
	assessmentRepo repos.AssessmentRepo,
	indicatorRepo repos.IndicatorRepo,
	responseRepo repos.AssessmentResponseRepo,
	validationRepo repos.ValidationRecordRepo,
	summaries SummaryService,
	log *logger.Logger,
) ValidationService {
	return &validationService{
		assessmentRepo: assessmentRepo,
		indicatorRepo:  indicatorRepo,
		responseRepo:   responseRepo,
		validationRepo: validationRepo,
		summaries:      summaries,
		log:            log.With("service", "ValidationService"),
	}
}

// Record stores the assessor's verdict on one response. Fail and
// Conditional verdicts must carry a public comment; the check happens
// before any write.
func (s *validationService) Record(ctx context.Context, input RecordValidationInput) (*types.ValidationRecord, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, requestdata.RoleAssessor); err != nil {
		return nil, err
	}

	status, err := workflow.ParseValidationStatus(input.Status)
	if err != nil {
		return nil, apierr.BadRequest("invalid_validation_status", err)
	}
	if err := workflow.CheckRecord(status, input.PublicComment); err != nil {
		return nil, apierr.BadRequest("comment_required", err)
	}

	response, err := s.responseRepo.GetByID(ctx, nil, input.ResponseID)
	if err != nil {
		return nil, apierr.NotFound("response_not_found", err)
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, response.AssessmentID)
	if err != nil {
		return nil, err
	}
	if !workflow.UnderValidation(workflow.AssessmentStatus(assessment.Status)) {
		return nil, apierr.Conflict("not_under_validation", fmt.Errorf("assessment is in status %s", assessment.Status))
	}

	row := &types.ValidationRecord{
		ResponseID:       input.ResponseID,
		AssessorID:       rd.UserID,
		ValidationStatus: string(status),
		PublicComment:    input.PublicComment,
		InternalNote:     input.InternalNote,
	}
	if err := s.validationRepo.Upsert(ctx, nil, row); err != nil {
		return nil, err
	}
	s.log.Info("validation recorded", "response_id", input.ResponseID, "status", status, "assessor_id", rd.UserID)
	return row, nil
}

// ListForAssessment returns the assessment's validation records. BLGU
// callers see public comments only; internal notes stay between assessors
// and the MLGOO.
func (s *validationService) ListForAssessment(ctx context.Context, assessmentID uuid.UUID) ([]*types.ValidationRecord, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, assessmentID)
	if err != nil {
		return nil, apierr.NotFound("assessment_not_found", err)
	}
	if err := requireBarangay(rd, assessment.BarangayID); err != nil {
		return nil, err
	}

	records, err := s.recordsFor(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if rd.Role == requestdata.RoleBLGU {
		for _, r := range records {
			r.InternalNote = ""
		}
	}
	return records, nil
}

// Progress counts reviewed and failed verdicts against the active leaf
// total. SendRework and Finalize both gate on it. Verdicts on responses
// whose indicator was deactivated or deleted mid-review do not count;
// otherwise stale records could satisfy the full-review gate while an
// active leaf sits unreviewed.
func (s *validationService) Progress(ctx context.Context, assessmentID uuid.UUID) (workflow.ReviewProgress, error) {
	var p workflow.ReviewProgress

	activeLeaves, err := s.activeLeaves(ctx)
	if err != nil {
		return p, err
	}
	responses, err := s.responseRepo.GetByAssessmentID(ctx, nil, assessmentID)
	if err != nil {
		return p, err
	}
	ids := make([]uuid.UUID, 0, len(responses))
	for _, r := range responses {
		if activeLeaves[r.IndicatorID] {
			ids = append(ids, r.ID)
		}
	}
	records, err := s.validationRepo.GetByResponseIDs(ctx, nil, ids)
	if err != nil {
		return p, err
	}

	p.Total = len(activeLeaves)
	p.Reviewed = len(records)
	for _, r := range records {
		if workflow.ValidationStatus(r.ValidationStatus) == workflow.ValidationFail {
			p.Failed++
		}
	}
	return p, nil
}

func (s *validationService) SendRework(ctx context.Context, assessmentID uuid.UUID) (*types.Assessment, error) {
	return s.transition(ctx, assessmentID, func(assessment *types.Assessment, p workflow.ReviewProgress) error {
		if err := workflow.CanSendRework(workflow.AssessmentStatus(assessment.Status), assessment.ReworkCount, p); err != nil {
			return apierr.Conflict("cannot_send_rework", err)
		}
		assessment.Status = string(workflow.StatusNeedsRework)
		assessment.ReworkCount++
		return nil
	})
}

func (s *validationService) Finalize(ctx context.Context, assessmentID uuid.UUID) (*types.Assessment, error) {
	return s.transition(ctx, assessmentID, func(assessment *types.Assessment, p workflow.ReviewProgress) error {
		if err := workflow.CanFinalize(workflow.AssessmentStatus(assessment.Status), p); err != nil {
			return apierr.Conflict("cannot_finalize", err)
		}
		now := time.Now()
		assessment.Status = string(workflow.StatusFinalized)
		assessment.FinalizedAt = &now
		return nil
	})
}

func (s *validationService) transition(ctx context.Context, assessmentID uuid.UUID, apply func(*types.Assessment, workflow.ReviewProgress) error) (*types.Assessment, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, requestdata.RoleAssessor, requestdata.RoleMLGOO); err != nil {
		return nil, err
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, assessmentID)
	if err != nil {
		return nil, apierr.NotFound("assessment_not_found", err)
	}
	progress, err := s.Progress(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	before := assessment.Status
	if err := apply(assessment, progress); err != nil {
		return nil, err
	}
	if err := s.assessmentRepo.Save(ctx, nil, assessment); err != nil {
		return nil, err
	}
	s.summaries.Invalidate(ctx, assessmentID)
	s.log.Info("assessment transitioned", "assessment_id", assessmentID, "from", before, "to", assessment.Status)
	return assessment, nil
}

func (s *validationService) recordsFor(ctx context.Context, assessmentID uuid.UUID) ([]*types.ValidationRecord, error) {
	responses, err := s.responseRepo.GetByAssessmentID(ctx, nil, assessmentID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(responses))
	for _, r := range responses {
		ids = append(ids, r.ID)
	}
	return s.validationRepo.GetByResponseIDs(ctx, nil, ids)
}

func (s *validationService) activeLeaves(ctx context.Context) (map[uuid.UUID]bool, error) {
	rows, err := s.indicatorRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	hasChild := map[uuid.UUID]bool{}
	for _, row := range rows {
		if row.ParentID != nil {
			hasChild[*row.ParentID] = true
		}
	}
	leaves := map[uuid.UUID]bool{}
	for _, row := range rows {
		if row.IsActive && !hasChild[row.ID] {
			leaves[row.ID] = true
		}
	}
	return leaves, nil
}
