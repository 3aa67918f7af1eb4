package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dilg-vantage/vantage-backend/internal/completion"
	"github.com/dilg-vantage/vantage-backend/internal/indicator"
	"github.com/dilg-vantage/vantage-backend/internal/platform/envutil"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
)

const summaryKeyPrefix = "vantage:summary:"

// SummaryService derives completion rollups for an assessment. Results are
// cached in Redis because the MLGOO dashboard polls them for every barangay;
// any response or MOV write invalidates the assessment's entry.
type SummaryService interface {
	Summary(ctx context.Context, assessmentID uuid.UUID) (*completion.Summary, error)
	Statuses(ctx context.Context, assessmentID uuid.UUID) (map[string]completion.Status, error)
	Invalidate(ctx context.Context, assessmentID uuid.UUID)
	RefreshMany(ctx context.Context, assessmentIDs []uuid.UUID) (map[uuid.UUID]*completion.Summary, error)
}

type summaryService struct {
	indicatorRepo repos.IndicatorRepo
	responseRepo  repos.AssessmentResponseRepo
	movRepo       repos.MOVFileRepo
	cache         *redis.Client
	cacheTTL      time.Duration
	log           *logger.Logger
}

func NewSummaryService(
	indicatorRepo repos.IndicatorRepo,
	responseRepo repos.AssessmentResponseRepo,
	movRepo repos.MOVFileRepo,
	cache *redis.Client,
	log *logger.Logger,
) SummaryService {
	return &summaryService{
		indicatorRepo: indicatorRepo,
		responseRepo:  responseRepo,
		movRepo:       movRepo,
		cache:         cache,
		cacheTTL:      envutil.Duration("SUMMARY_CACHE_TTL", 5*time.Minute),
		log:           log.With("service", "SummaryService"),
	}
}

func (s *summaryService) Summary(ctx context.Context, assessmentID uuid.UUID) (*completion.Summary, error) {
	if cached := s.fromCache(ctx, assessmentID); cached != nil {
		return cached, nil
	}
	summary, err := s.compute(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, assessmentID, summary)
	return summary, nil
}

func (s *summaryService) Statuses(ctx context.Context, assessmentID uuid.UUID) (map[string]completion.Status, error) {
	roots, responses, err := s.load(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	return completion.StatusMap(roots, responses), nil
}

func (s *summaryService) Invalidate(ctx context.Context, assessmentID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryKeyPrefix+assessmentID.String()).Err(); err != nil {
		s.log.Warn("summary cache invalidation failed", "assessment_id", assessmentID, "error", err)
	}
}

// RefreshMany recomputes summaries for a batch of assessments in parallel
// and repopulates the cache. The MLGOO dashboard calls this for its listing.
func (s *summaryService) RefreshMany(ctx context.Context, assessmentIDs []uuid.UUID) (map[uuid.UUID]*completion.Summary, error) {
	out := make(map[uuid.UUID]*completion.Summary, len(assessmentIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range assessmentIDs {
		id := id
		g.Go(func() error {
			summary, err := s.compute(gctx, id)
			if err != nil {
				return err
			}
			s.toCache(gctx, id, summary)
			mu.Lock()
			out[id] = summary
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *summaryService) compute(ctx context.Context, assessmentID uuid.UUID) (*completion.Summary, error) {
	roots, responses, err := s.load(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	summary := completion.Summarize(roots, responses)
	return &summary, nil
}

// load assembles the in-memory inputs the completion engine works on: the
// full tree and each answered leaf's response state with its attachments.
func (s *summaryService) load(ctx context.Context, assessmentID uuid.UUID) ([]*indicator.Node, map[string]completion.ResponseState, error) {
	rows, err := s.indicatorRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	state := indicator.FlatState{Nodes: map[string]*indicator.Node{}}
	for _, row := range rows {
		n := nodeFromRow(row)
		state.Nodes[n.ID] = n
		if n.ParentID == "" {
			state.RootIDs = append(state.RootIDs, n.ID)
		}
	}
	roots := indicator.BuildTreeFromFlat(state)

	responseRows, err := s.responseRepo.GetByAssessmentID(ctx, nil, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	responseIDs := make([]uuid.UUID, 0, len(responseRows))
	for _, r := range responseRows {
		responseIDs = append(responseIDs, r.ID)
	}
	movRows, err := s.movRepo.GetByResponseIDs(ctx, nil, responseIDs)
	if err != nil {
		return nil, nil, err
	}
	movsByResponse := map[uuid.UUID][]completion.MOV{}
	for _, m := range movRows {
		movsByResponse[m.ResponseID] = append(movsByResponse[m.ResponseID], completion.MOV{
			ID:          m.ID.String(),
			Filename:    m.Filename,
			StoragePath: m.StoragePath,
			FileSize:    m.FileSize,
			ContentType: m.ContentType,
			Section:     m.Section,
		})
	}

	responses := make(map[string]completion.ResponseState, len(responseRows))
	for _, r := range responseRows {
		var data map[string]any
		if len(r.ResponseData) > 0 {
			_ = json.Unmarshal(r.ResponseData, &data)
		}
		responses[r.IndicatorID.String()] = completion.ResponseState{
			Data: data,
			MOVs: movsByResponse[r.ID],
		}
	}
	return roots, responses, nil
}

func (s *summaryService) fromCache(ctx context.Context, assessmentID uuid.UUID) *completion.Summary {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, summaryKeyPrefix+assessmentID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("summary cache read failed", "assessment_id", assessmentID, "error", err)
		}
		return nil
	}
	var summary completion.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *summaryService) toCache(ctx context.Context, assessmentID uuid.UUID, summary *completion.Summary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, summaryKeyPrefix+assessmentID.String(), raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn("summary cache write failed", "assessment_id", assessmentID, "error", err)
	}
}
