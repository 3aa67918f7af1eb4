package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilg-vantage/vantage-backend/internal/completion"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

func leafSchemaJSON() []byte {
	return []byte(`{"fields":[
		{"field_id":"x_compliance","type":"radio_button","label":"Compliant?","required":true,"options":["yes","no","na"]}
	]}`)
}

func TestSummaryCountsActiveLeavesPerArea(t *testing.T) {
	ctx := context.Background()
	assessmentID := uuid.New()

	area := &types.Indicator{ID: uuid.New(), Name: "Area", Code: "1", IsActive: true}
	leafA := &types.Indicator{ID: uuid.New(), ParentID: &area.ID, Name: "A", IsActive: true, FormSchema: leafSchemaJSON()}
	leafB := &types.Indicator{ID: uuid.New(), ParentID: &area.ID, Name: "B", IsActive: true, FormSchema: leafSchemaJSON()}
	leafOff := &types.Indicator{ID: uuid.New(), ParentID: &area.ID, Name: "Off", IsActive: false, FormSchema: leafSchemaJSON()}

	respRepo := newFakeResponseRepo(&types.AssessmentResponse{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		IndicatorID:  leafA.ID,
		ResponseData: []byte(`{"x_compliance":"no"}`),
	})

	svc := NewSummaryService(
		newFakeIndicatorRepo(area, leafA, leafB, leafOff),
		respRepo,
		newFakeMOVRepo(),
		nil,
		testLogger(),
	)

	summary, err := svc.Summary(ctx, assessmentID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Completed)
	assert.InDelta(t, 50.0, summary.Percentage, 0.01)
	require.Len(t, summary.Areas, 1)
	assert.Equal(t, area.ID.String(), summary.Areas[0].AreaID)
}

func TestStatusesRollUpToParents(t *testing.T) {
	ctx := context.Background()
	assessmentID := uuid.New()

	area := &types.Indicator{ID: uuid.New(), Name: "Area", IsActive: true}
	leafA := &types.Indicator{ID: uuid.New(), ParentID: &area.ID, Name: "A", IsActive: true, FormSchema: leafSchemaJSON()}
	leafB := &types.Indicator{ID: uuid.New(), ParentID: &area.ID, Name: "B", IsActive: true, FormSchema: leafSchemaJSON()}

	respRepo := newFakeResponseRepo(&types.AssessmentResponse{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		IndicatorID:  leafA.ID,
		ResponseData: []byte(`{"x_compliance":"na"}`),
	})

	svc := NewSummaryService(newFakeIndicatorRepo(area, leafA, leafB), respRepo, newFakeMOVRepo(), nil, testLogger())

	statuses, err := svc.Statuses(ctx, assessmentID)
	require.NoError(t, err)
	assert.Equal(t, completion.StatusCompleted, statuses[leafA.ID.String()])
	assert.Equal(t, completion.StatusNotStarted, statuses[leafB.ID.String()])
	assert.Equal(t, completion.StatusInProgress, statuses[area.ID.String()])
}

func TestSummaryIncludesMOVGating(t *testing.T) {
	ctx := context.Background()
	assessmentID := uuid.New()

	area := &types.Indicator{ID: uuid.New(), Name: "Area", IsActive: true}
	leaf := &types.Indicator{
		ID: uuid.New(), ParentID: &area.ID, Name: "A", IsActive: true,
		FormSchema: []byte(`{"fields":[
			{"field_id":"x_compliance","type":"radio_button","label":"Compliant?","required":true,
			 "options":["yes","no","na"],"mov_upload_section":"docs"}
		]}`),
	}
	response := &types.AssessmentResponse{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		IndicatorID:  leaf.ID,
		ResponseData: []byte(`{"x_compliance":"yes"}`),
	}

	indicatorRepo := newFakeIndicatorRepo(area, leaf)
	respRepo := newFakeResponseRepo(response)
	movRepo := newFakeMOVRepo()
	svc := NewSummaryService(indicatorRepo, respRepo, movRepo, nil, testLogger())

	// "yes" without the required section attachment stays in progress.
	summary, err := svc.Summary(ctx, assessmentID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Completed)

	_, err = movRepo.Create(ctx, nil, &types.MOVFile{
		ResponseID:  response.ID,
		Filename:    "evidence.pdf",
		StoragePath: "mov/x/docs/evidence.pdf",
		Section:     "docs",
	})
	require.NoError(t, err)

	summary, err = svc.Summary(ctx, assessmentID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)
}

func TestRefreshManyComputesEachAssessment(t *testing.T) {
	ctx := context.Background()
	idA, idB := uuid.New(), uuid.New()

	area := &types.Indicator{ID: uuid.New(), Name: "Area", IsActive: true}
	leaf := &types.Indicator{ID: uuid.New(), ParentID: &area.ID, Name: "A", IsActive: true, FormSchema: leafSchemaJSON()}

	respRepo := newFakeResponseRepo(&types.AssessmentResponse{
		ID:           uuid.New(),
		AssessmentID: idA,
		IndicatorID:  leaf.ID,
		ResponseData: []byte(`{"x_compliance":"no"}`),
	})

	svc := NewSummaryService(newFakeIndicatorRepo(area, leaf), respRepo, newFakeMOVRepo(), nil, testLogger())

	out, err := svc.RefreshMany(ctx, []uuid.UUID{idA, idB})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[idA].Completed)
	assert.Equal(t, 0, out[idB].Completed)
}
