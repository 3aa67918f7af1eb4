package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/completion"
	"github.com/dilg-vantage/vantage-backend/internal/platform/apierr"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
	"github.com/dilg-vantage/vantage-backend/internal/types"
	"github.com/dilg-vantage/vantage-backend/internal/workflow"
)

// AssessmentDetail is the read model for one assessment: the row plus the
// derived completion rollup and per-indicator statuses.
type AssessmentDetail struct {
	Assessment *types.Assessment            `json:"assessment"`
	Summary    *completion.Summary          `json:"summary"`
	Statuses   map[string]completion.Status `json:"statuses"`
}

// AssessmentListing pairs an assessment with its cached completion summary
// for dashboard listings.
type AssessmentListing struct {
	Assessment *types.Assessment   `json:"assessment"`
	Summary    *completion.Summary `json:"summary,omitempty"`
}

// pendingFlusher forces queued answer writes to disk before a transition
// that must observe them. Implemented by ResponseService.
type pendingFlusher interface {
	FlushPending(ctx context.Context)
}

// AssessmentService owns the assessment lifecycle on the BLGU side:
// opening the year's draft, reading progress, submitting, resubmitting.
type AssessmentService interface {
	GetOrCreate(ctx context.Context, barangayID uuid.UUID, year int) (*types.Assessment, error)
	Get(ctx context.Context, id uuid.UUID) (*AssessmentDetail, error)
	ListForBarangay(ctx context.Context, barangayID uuid.UUID) ([]*types.Assessment, error)
	ListForReview(ctx context.Context) ([]*AssessmentListing, error)
	Submit(ctx context.Context, id uuid.UUID) (*types.Assessment, error)
	Resubmit(ctx context.Context, id uuid.UUID) (*types.Assessment, error)
}

type assessmentService struct {
	assessmentRepo repos.AssessmentRepo
	summaries      SummaryService
	flusher        pendingFlusher
	log            *logger.Logger
}

func NewAssessmentService(
	assessmentRepo repos.AssessmentRepo,
	summaries SummaryService,
	flusher pendingFlusher,
	log *logger.Logger,
) AssessmentService {
	return &assessmentService{
		assessmentRepo: assessmentRepo,
		summaries:      summaries,
		flusher:        flusher,
		log:            log.With("service", "AssessmentService"),
	}
}

// GetOrCreate opens the barangay's assessment for a performance year,
// creating the Draft on first access. One assessment per barangay per year.
func (s *assessmentService) GetOrCreate(ctx context.Context, barangayID uuid.UUID, year int) (*types.Assessment, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireBarangay(rd, barangayID); err != nil {
		return nil, err
	}
	if year < 2000 || year > 2100 {
		return nil, apierr.BadRequest("invalid_year", fmt.Errorf("performance year %d out of range", year))
	}

	existing, err := s.assessmentRepo.GetByBarangayYear(ctx, nil, barangayID, year)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := &types.Assessment{
		ID:              uuid.New(),
		BarangayID:      barangayID,
		PerformanceYear: year,
		Status:          string(workflow.StatusDraft),
	}
	if _, err := s.assessmentRepo.Create(ctx, nil, row); err != nil {
		return nil, err
	}
	s.log.Info("assessment opened", "assessment_id", row.ID, "barangay_id", barangayID, "year", year)
	return row, nil
}

func (s *assessmentService) Get(ctx context.Context, id uuid.UUID) (*AssessmentDetail, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.NotFound("assessment_not_found", err)
	}
	if err := requireBarangay(rd, assessment.BarangayID); err != nil {
		return nil, err
	}

	s.flusher.FlushPending(ctx)
	summary, err := s.summaries.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	statuses, err := s.summaries.Statuses(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AssessmentDetail{Assessment: assessment, Summary: summary, Statuses: statuses}, nil
}

func (s *assessmentService) ListForBarangay(ctx context.Context, barangayID uuid.UUID) ([]*types.Assessment, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireBarangay(rd, barangayID); err != nil {
		return nil, err
	}
	return s.assessmentRepo.ListByBarangay(ctx, nil, barangayID)
}

// ListForReview returns the assessments waiting on or past assessor action,
// each with a freshly refreshed completion summary.
func (s *assessmentService) ListForReview(ctx context.Context) ([]*AssessmentListing, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, requestdata.RoleAssessor, requestdata.RoleMLGOO); err != nil {
		return nil, err
	}

	rows, err := s.assessmentRepo.ListByStatus(ctx, nil, []string{
		string(workflow.StatusSubmitted),
		string(workflow.StatusNeedsRework),
		string(workflow.StatusResubmitted),
		string(workflow.StatusFinalized),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	summaries, err := s.summaries.RefreshMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*AssessmentListing, 0, len(rows))
	for _, row := range rows {
		out = append(out, &AssessmentListing{Assessment: row, Summary: summaries[row.ID]})
	}
	return out, nil
}

// Submit moves a Draft to Submitted. Every active indicator must be
// completed; queued answers are flushed first so the check sees them.
func (s *assessmentService) Submit(ctx context.Context, id uuid.UUID) (*types.Assessment, error) {
	return s.transition(ctx, id, func(assessment *types.Assessment, summary *completion.Summary) error {
		if err := workflow.CanSubmit(workflow.AssessmentStatus(assessment.Status)); err != nil {
			return apierr.Conflict("cannot_submit", err)
		}
		if summary.Completed < summary.Total {
			return apierr.Conflict("incomplete", fmt.Errorf("%d of %d indicators completed", summary.Completed, summary.Total))
		}
		now := time.Now()
		assessment.Status = string(workflow.StatusSubmitted)
		assessment.SubmittedAt = &now
		return nil
	})
}

// Resubmit moves NeedsRework to Resubmitted, once.
func (s *assessmentService) Resubmit(ctx context.Context, id uuid.UUID) (*types.Assessment, error) {
	return s.transition(ctx, id, func(assessment *types.Assessment, summary *completion.Summary) error {
		if err := workflow.CanResubmit(workflow.AssessmentStatus(assessment.Status), assessment.ReworkCount); err != nil {
			return apierr.Conflict("cannot_resubmit", err)
		}
		if summary.Completed < summary.Total {
			return apierr.Conflict("incomplete", fmt.Errorf("%d of %d indicators completed", summary.Completed, summary.Total))
		}
		now := time.Now()
		assessment.Status = string(workflow.StatusResubmitted)
		assessment.ResubmittedAt = &now
		return nil
	})
}

func (s *assessmentService) transition(ctx context.Context, id uuid.UUID, apply func(*types.Assessment, *completion.Summary) error) (*types.Assessment, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireRole(rd, requestdata.RoleBLGU); err != nil {
		return nil, err
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.NotFound("assessment_not_found", err)
	}
	if err := requireBarangay(rd, assessment.BarangayID); err != nil {
		return nil, err
	}

	s.flusher.FlushPending(ctx)
	s.summaries.Invalidate(ctx, id)
	summary, err := s.summaries.Summary(ctx, id)
	if err != nil {
		return nil, err
	}

	before := assessment.Status
	if err := apply(assessment, summary); err != nil {
		return nil, err
	}
	if err := s.assessmentRepo.Save(ctx, nil, assessment); err != nil {
		return nil, err
	}
	s.log.Info("assessment transitioned", "assessment_id", id, "from", before, "to", assessment.Status)
	return assessment, nil
}
