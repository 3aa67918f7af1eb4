package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/formschema"
	"github.com/dilg-vantage/vantage-backend/internal/platform/apierr"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
	"github.com/dilg-vantage/vantage-backend/internal/types"
	"github.com/dilg-vantage/vantage-backend/internal/workflow"
	"github.com/dilg-vantage/vantage-backend/internal/writequeue"
)

type AddMOVInput struct {
	AssessmentID uuid.UUID
	IndicatorID  uuid.UUID
	Filename     string
	ContentType  string
	Section      string
	Size         int64
	File         io.Reader
}

// ResponseService owns BLGU answer writes and MOV attachments. Answer saves
// are coalesced through the write queue so autosaving forms produce one
// database write per burst; MOV operations hit storage and the database
// directly.
type ResponseService interface {
	Get(ctx context.Context, assessmentID, indicatorID uuid.UUID) (*types.AssessmentResponse, []*types.MOVFile, error)
	SaveAnswers(ctx context.Context, assessmentID, indicatorID uuid.UUID, data map[string]any) error
	FlushPending(ctx context.Context)
	AddMOV(ctx context.Context, input AddMOVInput) (*types.MOVFile, error)
	DeleteMOV(ctx context.Context, movID uuid.UUID) error
	MOVDownloadURL(ctx context.Context, movID uuid.UUID) (string, error)
	Start(ctx context.Context)
	Stop(ctx context.Context)
}

type pendingAnswer struct {
	assessmentID uuid.UUID
	indicatorID  uuid.UUID
	data         map[string]any
}

type responseService struct {
	assessmentRepo repos.AssessmentRepo
	indicatorRepo  repos.IndicatorRepo
	responseRepo   repos.AssessmentResponseRepo
	movRepo        repos.MOVFileRepo
	bucket         BucketService
	summaries      SummaryService
	queue          *writequeue.Queue[pendingAnswer]
	log            *logger.Logger
}

func NewResponseService(
	assessmentRepo repos.AssessmentRepo,
	indicatorRepo repos.IndicatorRepo,
	responseRepo repos.AssessmentResponseRepo,
	movRepo repos.MOVFileRepo,
	bucket BucketService,
	summaries SummaryService,
	log *logger.Logger,
) ResponseService {
	s := &responseService{
		assessmentRepo: assessmentRepo,
		indicatorRepo:  indicatorRepo,
		responseRepo:   responseRepo,
		movRepo:        movRepo,
		bucket:         bucket,
		summaries:      summaries,
		log:            log.With("service", "ResponseService"),
	}
	s.queue = writequeue.New(log, writequeue.Options{}, s.flushAnswer)
	return s
}

func (s *responseService) Start(ctx context.Context) { s.queue.Start(ctx) }
func (s *responseService) Stop(ctx context.Context)  { s.queue.Stop(ctx) }

// FlushPending forces every queued answer to disk. Called before any read
// or transition that must observe the latest answers.
func (s *responseService) FlushPending(ctx context.Context) {
	s.queue.FlushAll(ctx)
}

func (s *responseService) Get(ctx context.Context, assessmentID, indicatorID uuid.UUID) (*types.AssessmentResponse, []*types.MOVFile, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, nil, err
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, assessmentID)
	if err != nil {
		return nil, nil, apierr.NotFound("assessment_not_found", err)
	}
	if err := requireBarangay(rd, assessment.BarangayID); err != nil {
		return nil, nil, err
	}

	s.queue.Flush(ctx, answerKey(assessmentID, indicatorID))
	response, err := s.responseRepo.GetByAssessmentAndIndicator(ctx, nil, assessmentID, indicatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	movs, err := s.movRepo.GetByResponseIDs(ctx, nil, []uuid.UUID{response.ID})
	if err != nil {
		return nil, nil, err
	}
	return response, movs, nil
}

// SaveAnswers validates the answer map against the leaf's form schema and
// queues the write. The caller gets an error immediately for guard or
// validation failures; the durable write lands within the queue's max-wait.
func (s *responseService) SaveAnswers(ctx context.Context, assessmentID, indicatorID uuid.UUID, data map[string]any) error {
	_, indicatorRow, err := s.editableTarget(ctx, assessmentID, indicatorID)
	if err != nil {
		return err
	}

	if schema, err := formschema.Parse(indicatorRow.FormSchema); err == nil {
		for fieldID, value := range data {
			f := schema.Field(fieldID)
			if f == nil {
				continue
			}
			if err := formschema.ValidateAnswer(*f, value); err != nil {
				return apierr.BadRequest("invalid_answer", fmt.Errorf("field %s: %w", fieldID, err))
			}
		}
	}

	s.queue.Enqueue(answerKey(assessmentID, indicatorID), pendingAnswer{
		assessmentID: assessmentID,
		indicatorID:  indicatorID,
		data:         data,
	})
	return nil
}

func (s *responseService) flushAnswer(ctx context.Context, key string, p pendingAnswer) {
	raw, err := json.Marshal(p.data)
	if err != nil {
		s.log.Error("marshal queued answers failed", "key", key, "error", err)
		return
	}
	row := &types.AssessmentResponse{
		AssessmentID: p.assessmentID,
		IndicatorID:  p.indicatorID,
		ResponseData: raw,
	}
	if err := s.responseRepo.Upsert(ctx, nil, row); err != nil {
		s.log.Error("flush queued answers failed", "key", key, "error", err)
		return
	}
	s.summaries.Invalidate(ctx, p.assessmentID)
}

func (s *responseService) AddMOV(ctx context.Context, input AddMOVInput) (*types.MOVFile, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	_, indicatorRow, err := s.editableTarget(ctx, input.AssessmentID, input.IndicatorID)
	if err != nil {
		return nil, err
	}
	if input.Filename == "" || input.File == nil {
		return nil, apierr.BadRequest("missing_file", fmt.Errorf("a file and filename are required"))
	}

	// When the schema declares an upload field for this section, its
	// extension and size limits apply.
	if schema, err := formschema.Parse(indicatorRow.FormSchema); err == nil {
		for _, f := range schema.Fields {
			if f.Type == formschema.FieldFileUpload && f.MOVUploadSection == input.Section {
				if err := formschema.ValidateUpload(f, input.Filename, input.Size); err != nil {
					return nil, apierr.BadRequest("invalid_upload", err)
				}
				break
			}
		}
	}

	// Make sure the response row exists so the attachment has an anchor,
	// even before the first answer is saved.
	s.queue.Flush(ctx, answerKey(input.AssessmentID, input.IndicatorID))
	response, err := s.responseRepo.GetByAssessmentAndIndicator(ctx, nil, input.AssessmentID, input.IndicatorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		response = &types.AssessmentResponse{
			AssessmentID: input.AssessmentID,
			IndicatorID:  input.IndicatorID,
			ResponseData: []byte(`{}`),
		}
		if err := s.responseRepo.Upsert(ctx, nil, response); err != nil {
			return nil, err
		}
	}

	key := movStorageKey(input.AssessmentID, input.IndicatorID, input.Section, input.Filename)
	if err := s.bucket.Upload(ctx, key, input.ContentType, input.File); err != nil {
		return nil, err
	}

	row := &types.MOVFile{
		ResponseID:  response.ID,
		Filename:    input.Filename,
		StoragePath: key,
		FileSize:    input.Size,
		ContentType: input.ContentType,
		Section:     input.Section,
		UploadedBy:  rd.UserID,
	}
	if _, err := s.movRepo.Create(ctx, nil, row); err != nil {
		// The row is the source of truth; drop the orphaned object.
		if delErr := s.bucket.Delete(ctx, key); delErr != nil {
			s.log.Warn("orphaned MOV object left in bucket", "key", key, "error", delErr)
		}
		return nil, err
	}
	s.summaries.Invalidate(ctx, input.AssessmentID)
	s.log.Info("MOV uploaded", "mov_id", row.ID, "indicator_id", input.IndicatorID, "user_id", rd.UserID)
	return row, nil
}

// DeleteMOV removes the database row first and then the stored object.
// Storage deletion is best-effort; an orphaned object is preferable to a
// dangling row.
func (s *responseService) DeleteMOV(ctx context.Context, movID uuid.UUID) error {
	rd, err := callerFrom(ctx)
	if err != nil {
		return err
	}
	mov, err := s.movRepo.GetByID(ctx, nil, movID)
	if err != nil {
		return apierr.NotFound("mov_not_found", err)
	}
	response, err := s.responseRepo.GetByID(ctx, nil, mov.ResponseID)
	if err != nil {
		return err
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, response.AssessmentID)
	if err != nil {
		return err
	}
	if err := requireBarangay(rd, assessment.BarangayID); err != nil {
		return err
	}
	if !workflow.Editable(workflow.AssessmentStatus(assessment.Status)) {
		return apierr.Conflict("not_editable", fmt.Errorf("assessment is not editable in status %s", assessment.Status))
	}

	if err := s.movRepo.SoftDeleteByID(ctx, nil, movID); err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, mov.StoragePath); err != nil {
		s.log.Warn("MOV object deletion failed", "key", mov.StoragePath, "error", err)
	}
	s.summaries.Invalidate(ctx, assessment.ID)
	return nil
}

func (s *responseService) MOVDownloadURL(ctx context.Context, movID uuid.UUID) (string, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return "", err
	}
	mov, err := s.movRepo.GetByID(ctx, nil, movID)
	if err != nil {
		return "", apierr.NotFound("mov_not_found", err)
	}
	response, err := s.responseRepo.GetByID(ctx, nil, mov.ResponseID)
	if err != nil {
		return "", err
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, response.AssessmentID)
	if err != nil {
		return "", err
	}
	if err := requireBarangay(rd, assessment.BarangayID); err != nil {
		return "", err
	}
	return s.bucket.SignedURL(ctx, mov.StoragePath, 15*time.Minute)
}

// editableTarget loads and guards the assessment/indicator pair for a BLGU
// write: caller scoped to the barangay, assessment in an editable status,
// indicator an active leaf.
func (s *responseService) editableTarget(ctx context.Context, assessmentID, indicatorID uuid.UUID) (*types.Assessment, *types.Indicator, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, nil, err
	}
	assessment, err := s.assessmentRepo.GetByID(ctx, nil, assessmentID)
	if err != nil {
		return nil, nil, apierr.NotFound("assessment_not_found", err)
	}
	if err := requireBarangay(rd, assessment.BarangayID); err != nil {
		return nil, nil, err
	}
	if !workflow.Editable(workflow.AssessmentStatus(assessment.Status)) {
		return nil, nil, apierr.Conflict("not_editable", fmt.Errorf("assessment is not editable in status %s", assessment.Status))
	}

	indicatorRow, err := s.indicatorRepo.GetByID(ctx, nil, indicatorID)
	if err != nil {
		return nil, nil, apierr.NotFound("indicator_not_found", err)
	}
	if !indicatorRow.IsActive {
		return nil, nil, apierr.Conflict("indicator_inactive", fmt.Errorf("indicator %s is inactive", indicatorID))
	}
	children, err := s.indicatorRepo.GetChildren(ctx, nil, indicatorID)
	if err != nil {
		return nil, nil, err
	}
	if len(children) > 0 {
		return nil, nil, apierr.Conflict("not_a_leaf", fmt.Errorf("responses attach to leaf indicators only"))
	}
	return assessment, indicatorRow, nil
}

func answerKey(assessmentID, indicatorID uuid.UUID) string {
	return assessmentID.String() + ":" + indicatorID.String()
}

func movStorageKey(assessmentID, indicatorID uuid.UUID, section, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	parts := []string{"mov", assessmentID.String(), indicatorID.String()}
	if section != "" {
		parts = append(parts, section)
	}
	parts = append(parts, uuid.NewString()+"_"+base)
	return strings.Join(parts, "/")
}
