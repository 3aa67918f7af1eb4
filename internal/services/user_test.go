package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

func ctxWithProfile(userID uuid.UUID, role string, barangayID uuid.UUID, email, fullName string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:     userID,
		Role:       role,
		BarangayID: barangayID,
		Email:      email,
		FullName:   fullName,
	})
}

func TestMeRefreshesMirrorFromClaims(t *testing.T) {
	userID := uuid.New()
	barangayID := uuid.New()
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, testLogger())

	ctx := ctxWithProfile(userID, requestdata.RoleBLGU, barangayID, "sec@brgy.example.ph", "Juan Dela Cruz")
	row, err := svc.Me(ctx)
	require.NoError(t, err)

	assert.Equal(t, userID, row.ID)
	assert.Equal(t, "sec@brgy.example.ph", row.Email)
	assert.Equal(t, "Juan Dela Cruz", row.FullName)
	assert.Equal(t, requestdata.RoleBLGU, row.Role)
	require.NotNil(t, row.BarangayID)
	assert.Equal(t, barangayID, *row.BarangayID)

	stored, err := userRepo.GetByID(ctx, nil, userID)
	require.NoError(t, err)
	assert.Equal(t, "sec@brgy.example.ph", stored.Email)
}

func TestMeFallsBackToClaimsWithoutMirrorRow(t *testing.T) {
	userID := uuid.New()
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, testLogger())

	// Token carries no profile claims, so no upsert happens and no row
	// exists; the answer is built from the verified claims alone.
	ctx := ctxWithProfile(userID, requestdata.RoleMLGOO, uuid.Nil, "", "")
	row, err := svc.Me(ctx)
	require.NoError(t, err)

	assert.Equal(t, userID, row.ID)
	assert.Equal(t, requestdata.RoleMLGOO, row.Role)
	assert.Nil(t, row.BarangayID)

	_, err = userRepo.GetByID(ctx, nil, userID)
	assert.Error(t, err)
}

func TestMePrefersStoredRowOverClaims(t *testing.T) {
	userID := uuid.New()
	userRepo := newFakeUserRepo(&types.User{
		ID:       userID,
		Email:    "assessor@dilg.example.ph",
		FullName: "Maria Santos",
		Role:     requestdata.RoleAssessor,
	})
	svc := NewUserService(userRepo, testLogger())

	ctx := ctxWithProfile(userID, requestdata.RoleAssessor, uuid.Nil, "", "")
	row, err := svc.Me(ctx)
	require.NoError(t, err)

	assert.Equal(t, "assessor@dilg.example.ph", row.Email)
	assert.Equal(t, "Maria Santos", row.FullName)
}
