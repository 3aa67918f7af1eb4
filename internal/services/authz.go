package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dilg-vantage/vantage-backend/internal/platform/apierr"
	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
)

func callerFrom(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Forbidden("not_authenticated", fmt.Errorf("no verified caller on request"))
	}
	return rd, nil
}

func requireRole(rd *requestdata.RequestData, roles ...string) error {
	for _, role := range roles {
		if rd.Role == role {
			return nil
		}
	}
	return apierr.Forbidden("wrong_role", fmt.Errorf("role %q may not perform this action", rd.Role))
}

// requireBarangay scopes BLGU callers to their own barangay. Assessors and
// MLGOOs operate across barangays.
func requireBarangay(rd *requestdata.RequestData, barangayID uuid.UUID) error {
	if rd.Role != requestdata.RoleBLGU {
		return nil
	}
	if rd.BarangayID == uuid.Nil || rd.BarangayID != barangayID {
		return apierr.Forbidden("wrong_barangay", fmt.Errorf("caller is not assigned to this barangay"))
	}
	return nil
}
