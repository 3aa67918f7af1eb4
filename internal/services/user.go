package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

// UserService resolves the caller's profile. Accounts live in the DILG
// identity provider; this service keeps a local mirror current so audit
// fields and barangay joins resolve without a round trip.
type UserService interface {
	Me(ctx context.Context) (*types.User, error)
}

type userService struct {
	userRepo repos.UserRepo
	log      *logger.Logger
}

func NewUserService(userRepo repos.UserRepo, log *logger.Logger) UserService {
	return &userService{userRepo: userRepo, log: log.With("service", "UserService")}
}

func (s *userService) Me(ctx context.Context) (*types.User, error) {
	rd, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	// Tokens without profile claims still authenticate; only refresh the
	// mirror when the claims carry something to store.
	if rd.Email != "" {
		var barangayID *uuid.UUID
		if rd.BarangayID != uuid.Nil {
			bid := rd.BarangayID
			barangayID = &bid
		}
		mirror := &types.User{
			ID:         rd.UserID,
			Email:      rd.Email,
			FullName:   rd.FullName,
			Role:       rd.Role,
			BarangayID: barangayID,
		}
		if err := s.userRepo.Upsert(ctx, nil, mirror); err != nil {
			s.log.Warn("user mirror refresh failed", "user_id", rd.UserID, "error", err)
		}
	}

	row, err := s.userRepo.GetByID(ctx, nil, rd.UserID)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// No mirror row yet; answer from the verified claims.
	profile := &types.User{
		ID:       rd.UserID,
		Email:    rd.Email,
		FullName: rd.FullName,
		Role:     rd.Role,
	}
	if rd.BarangayID != uuid.Nil {
		bid := rd.BarangayID
		profile.BarangayID = &bid
	}
	return profile, nil
}
