package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/apierr"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

// testDB opens an in-memory database purely for transaction demarcation;
// all row access in these tests goes through the fake repo.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func newIndicatorFixture(t *testing.T) (IndicatorService, *fakeIndicatorRepo) {
	t.Helper()
	repo := newFakeIndicatorRepo()
	svc := NewIndicatorService(testDB(t), repo, testLogger())
	return svc, repo
}

func TestCreateAssignsDottedCodes(t *testing.T) {
	svc, _ := newIndicatorFixture(t)
	ctx := context.Background()

	area, err := svc.Create(ctx, CreateIndicatorInput{Name: "Financial Administration"})
	require.NoError(t, err)
	assert.Equal(t, "1", area.Code)

	child, err := svc.Create(ctx, CreateIndicatorInput{Name: "Budget Plan", ParentID: &area.ID})
	require.NoError(t, err)
	assert.Equal(t, "1.1", child.Code)

	second, err := svc.Create(ctx, CreateIndicatorInput{Name: "Financial Report", ParentID: &area.ID})
	require.NoError(t, err)
	assert.Equal(t, "1.2", second.Code)

	areaTwo, err := svc.Create(ctx, CreateIndicatorInput{Name: "Disaster Preparedness"})
	require.NoError(t, err)
	assert.Equal(t, "2", areaTwo.Code)
}

func TestCreateAppendsAfterExistingSiblings(t *testing.T) {
	svc, repo := newIndicatorFixture(t)
	ctx := context.Background()

	area, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area"})
	require.NoError(t, err)

	var created []*types.Indicator
	for _, name := range []string{"First", "Second", "Third"} {
		child, err := svc.Create(ctx, CreateIndicatorInput{Name: name, ParentID: &area.ID})
		require.NoError(t, err)
		created = append(created, child)
	}

	// Each new sibling lands last regardless of how its id sorts; earlier
	// codes never shift.
	for i, child := range created {
		reloaded, err := repo.GetByID(ctx, nil, child.ID)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("1.%d", i+1), reloaded.Code)
	}
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc, _ := newIndicatorFixture(t)
	_, err := svc.Create(context.Background(), CreateIndicatorInput{Name: ""})
	require.Error(t, err)
	status, _ := apierr.StatusOf(err)
	assert.Equal(t, 400, status)
}

func TestCreateChildArchivesParentSchemas(t *testing.T) {
	svc, repo := newIndicatorFixture(t)
	ctx := context.Background()

	leaf, err := svc.Create(ctx, CreateIndicatorInput{Name: "Safety"})
	require.NoError(t, err)
	require.NoError(t, svc.AttachFormSchema(ctx, leaf.ID, []byte(`{"fields":[{"field_id":"s_compliance","type":"radio_button","label":"ok","options":["yes","no"]}]}`)))

	_, err = svc.Create(ctx, CreateIndicatorInput{Name: "Sub-item", ParentID: &leaf.ID})
	require.NoError(t, err)

	parent, err := repo.GetByID(ctx, nil, leaf.ID)
	require.NoError(t, err)
	assert.Empty(t, []byte(parent.FormSchema))
	assert.Contains(t, string(parent.Metadata), "archived_schemas")
}

func TestMoveRejectsDescendantParent(t *testing.T) {
	svc, _ := newIndicatorFixture(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateIndicatorInput{Name: "Child", ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.Create(ctx, CreateIndicatorInput{Name: "Grandchild", ParentID: &child.ID})
	require.NoError(t, err)

	err = svc.Move(ctx, root.ID, &grandchild.ID, 0)
	require.Error(t, err)
	status, _ := apierr.StatusOf(err)
	assert.Equal(t, 409, status)
}

func TestMoveRecalculatesCodes(t *testing.T) {
	svc, repo := newIndicatorFixture(t)
	ctx := context.Background()

	areaOne, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area One"})
	require.NoError(t, err)
	areaTwo, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area Two"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateIndicatorInput{Name: "Child", ParentID: &areaOne.ID})
	require.NoError(t, err)
	require.Equal(t, "1.1", child.Code)

	require.NoError(t, svc.Move(ctx, child.ID, &areaTwo.ID, 0))
	moved, err := repo.GetByID(ctx, nil, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.1", moved.Code)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, areaTwo.ID, *moved.ParentID)
}

func TestReorderRequiresExactSiblingSet(t *testing.T) {
	svc, repo := newIndicatorFixture(t)
	ctx := context.Background()

	area, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area"})
	require.NoError(t, err)
	a, err := svc.Create(ctx, CreateIndicatorInput{Name: "A", ParentID: &area.ID})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CreateIndicatorInput{Name: "B", ParentID: &area.ID})
	require.NoError(t, err)

	err = svc.Reorder(ctx, &area.ID, []uuid.UUID{a.ID})
	require.Error(t, err)

	require.NoError(t, svc.Reorder(ctx, &area.ID, []uuid.UUID{b.ID, a.ID}))
	reloaded, err := repo.GetByID(ctx, nil, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.1", reloaded.Code)
}

func TestDeleteCascadesToDescendants(t *testing.T) {
	svc, repo := newIndicatorFixture(t)
	ctx := context.Background()

	areaOne, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area One"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateIndicatorInput{Name: "Child", ParentID: &areaOne.ID})
	require.NoError(t, err)
	areaTwo, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area Two"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, areaOne.ID))
	_, err = repo.GetByID(ctx, nil, child.ID)
	require.Error(t, err)

	// The surviving root takes over position one.
	reloaded, err := repo.GetByID(ctx, nil, areaTwo.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", reloaded.Code)
}

func TestSetActiveCascades(t *testing.T) {
	svc, repo := newIndicatorFixture(t)
	ctx := context.Background()

	area, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateIndicatorInput{Name: "Child", ParentID: &area.ID})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, area.ID, false))
	reloaded, err := repo.GetByID(ctx, nil, child.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestAttachSchemaLeafOnly(t *testing.T) {
	svc, _ := newIndicatorFixture(t)
	ctx := context.Background()

	area, err := svc.Create(ctx, CreateIndicatorInput{Name: "Area"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateIndicatorInput{Name: "Child", ParentID: &area.ID})
	require.NoError(t, err)

	err = svc.AttachFormSchema(ctx, area.ID, []byte(`{"fields":[{"field_id":"x_compliance","type":"radio_button","label":"x","options":["yes","no"]}]}`))
	require.Error(t, err)
	status, _ := apierr.StatusOf(err)
	assert.Equal(t, 409, status)
}

func TestAttachFormSchemaRejectsInvalid(t *testing.T) {
	svc, _ := newIndicatorFixture(t)
	ctx := context.Background()

	leaf, err := svc.Create(ctx, CreateIndicatorInput{Name: "Leaf"})
	require.NoError(t, err)

	// Choice field without options is a schema error.
	err = svc.AttachFormSchema(ctx, leaf.ID, []byte(`{"fields":[{"field_id":"x_compliance","type":"radio_button","label":"x"}]}`))
	require.Error(t, err)
	status, _ := apierr.StatusOf(err)
	assert.Equal(t, 400, status)
}

func TestRestoreArchivedSchemasAfterChildRemoval(t *testing.T) {
	svc, repo := newIndicatorFixture(t)
	ctx := context.Background()

	leaf, err := svc.Create(ctx, CreateIndicatorInput{Name: "Leaf"})
	require.NoError(t, err)
	schema := `{"fields":[{"field_id":"y_compliance","type":"radio_button","label":"y","options":["yes","no"]}]}`
	require.NoError(t, svc.AttachFormSchema(ctx, leaf.ID, []byte(schema)))

	child, err := svc.Create(ctx, CreateIndicatorInput{Name: "Child", ParentID: &leaf.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, child.ID))

	require.NoError(t, svc.RestoreArchivedSchemas(ctx, leaf.ID))
	restored, err := repo.GetByID(ctx, nil, leaf.ID)
	require.NoError(t, err)
	assert.Contains(t, string(restored.FormSchema), "y_compliance")
}
