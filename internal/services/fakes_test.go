package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/completion"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

func testLogger() *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		panic(err)
	}
	return log
}

func ctxWithCaller(role string, barangayID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:     uuid.New(),
		Role:       role,
		BarangayID: barangayID,
	})
}

type fakeUserRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.User
}

func newFakeUserRepo(rows ...*types.User) *fakeUserRepo {
	r := &fakeUserRepo{rows: map[uuid.UUID]*types.User{}}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[row.ID] = row
	return nil
}

type fakeAssessmentRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.Assessment
}

func newFakeAssessmentRepo(rows ...*types.Assessment) *fakeAssessmentRepo {
	r := &fakeAssessmentRepo{rows: map[uuid.UUID]*types.Assessment{}}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeAssessmentRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Assessment) (*types.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[row.ID] = row
	return row, nil
}

func (r *fakeAssessmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *fakeAssessmentRepo) GetByBarangayYear(ctx context.Context, tx *gorm.DB, barangayID uuid.UUID, year int) (*types.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.BarangayID == barangayID && row.PerformanceYear == year {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssessmentRepo) ListByBarangay(ctx context.Context, tx *gorm.DB, barangayID uuid.UUID) ([]*types.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Assessment
	for _, row := range r.rows {
		if row.BarangayID == barangayID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeAssessmentRepo) ListByStatus(ctx context.Context, tx *gorm.DB, statuses []string) ([]*types.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Assessment
	for _, row := range r.rows {
		for _, s := range statuses {
			if row.Status == s {
				out = append(out, row)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeAssessmentRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Assessment
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeAssessmentRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[row.ID] = row
	return nil
}

type fakeIndicatorRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.Indicator
}

func newFakeIndicatorRepo(rows ...*types.Indicator) *fakeIndicatorRepo {
	r := &fakeIndicatorRepo{rows: map[uuid.UUID]*types.Indicator{}}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeIndicatorRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Indicator) ([]*types.Indicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return rows, nil
}

func (r *fakeIndicatorRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Indicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *fakeIndicatorRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Indicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Indicator
	for _, id := range ids {
		if row, ok := r.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeIndicatorRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Indicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Indicator
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeIndicatorRepo) GetChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Indicator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Indicator
	for _, row := range r.rows {
		if row.ParentID != nil && *row.ParentID == parentID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeIndicatorRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[row.ID] = row
	return nil
}

func (r *fakeIndicatorRepo) SaveBatch(ctx context.Context, tx *gorm.DB, rows []*types.Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return nil
}

func (r *fakeIndicatorRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.rows, id)
	}
	return nil
}

type fakeResponseRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.AssessmentResponse
}

func newFakeResponseRepo(rows ...*types.AssessmentResponse) *fakeResponseRepo {
	r := &fakeResponseRepo{rows: map[uuid.UUID]*types.AssessmentResponse{}}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeResponseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AssessmentResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *fakeResponseRepo) GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.AssessmentResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.AssessmentResponse
	for _, row := range r.rows {
		if row.AssessmentID == assessmentID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) GetByAssessmentAndIndicator(ctx context.Context, tx *gorm.DB, assessmentID, indicatorID uuid.UUID) (*types.AssessmentResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.AssessmentID == assessmentID && row.IndicatorID == indicatorID {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeResponseRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.AssessmentResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.AssessmentID == row.AssessmentID && existing.IndicatorID == row.IndicatorID {
			existing.ResponseData = row.ResponseData
			row.ID = existing.ID
			return nil
		}
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	r.rows[row.ID] = row
	return nil
}

type fakeMOVRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.MOVFile
}

func newFakeMOVRepo(rows ...*types.MOVFile) *fakeMOVRepo {
	r := &fakeMOVRepo{rows: map[uuid.UUID]*types.MOVFile{}}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeMOVRepo) Create(ctx context.Context, tx *gorm.DB, row *types.MOVFile) (*types.MOVFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	r.rows[row.ID] = row
	return row, nil
}

func (r *fakeMOVRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MOVFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *fakeMOVRepo) GetByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) ([]*types.MOVFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.MOVFile
	for _, row := range r.rows {
		for _, id := range responseIDs {
			if row.ResponseID == id {
				out = append(out, row)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeMOVRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

type fakeValidationRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.ValidationRecord // keyed by response id
}

func newFakeValidationRepo(rows ...*types.ValidationRecord) *fakeValidationRepo {
	r := &fakeValidationRepo{rows: map[uuid.UUID]*types.ValidationRecord{}}
	for _, row := range rows {
		r.rows[row.ResponseID] = row
	}
	return r
}

func (r *fakeValidationRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ValidationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	r.rows[row.ResponseID] = row
	return nil
}

func (r *fakeValidationRepo) GetByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) ([]*types.ValidationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.ValidationRecord
	for _, id := range responseIDs {
		if row, ok := r.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeValidationRepo) DeleteByResponseIDs(ctx context.Context, tx *gorm.DB, responseIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range responseIDs {
		delete(r.rows, id)
	}
	return nil
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes []string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (b *fakeBucket) Upload(ctx context.Context, key, contentType string, file io.Reader) error {
	raw, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = raw
	return nil
}

func (b *fakeBucket) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deletes = append(b.deletes, key)
	return nil
}

func (b *fakeBucket) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example.test/" + key, nil
}

func (b *fakeBucket) PublicURL(key string) string {
	return "https://public.example.test/" + key
}

// fakeSummaries records invalidations and serves a canned summary.
type fakeSummaries struct {
	mu           sync.Mutex
	summary      completion.Summary
	invalidated  []uuid.UUID
	refreshCalls int
}

func (s *fakeSummaries) Summary(ctx context.Context, assessmentID uuid.UUID) (*completion.Summary, error) {
	out := s.summary
	return &out, nil
}

func (s *fakeSummaries) Statuses(ctx context.Context, assessmentID uuid.UUID) (map[string]completion.Status, error) {
	return map[string]completion.Status{}, nil
}

func (s *fakeSummaries) Invalidate(ctx context.Context, assessmentID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, assessmentID)
}

func (s *fakeSummaries) RefreshMany(ctx context.Context, assessmentIDs []uuid.UUID) (map[uuid.UUID]*completion.Summary, error) {
	s.mu.Lock()
	s.refreshCalls++
	s.mu.Unlock()
	out := map[uuid.UUID]*completion.Summary{}
	for _, id := range assessmentIDs {
		copied := s.summary
		out[id] = &copied
	}
	return out, nil
}

type noopFlusher struct{}

func (noopFlusher) FlushPending(ctx context.Context) {}
