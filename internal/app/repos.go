package app

import (
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/repos"
)

type Repos struct {
	Barangay         repos.BarangayRepo
	User             repos.UserRepo
	Indicator        repos.IndicatorRepo
	Assessment       repos.AssessmentRepo
	Response         repos.AssessmentResponseRepo
	MOVFile          repos.MOVFileRepo
	ValidationRecord repos.ValidationRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Barangay:         repos.NewBarangayRepo(db, log),
		User:             repos.NewUserRepo(db, log),
		Indicator:        repos.NewIndicatorRepo(db, log),
		Assessment:       repos.NewAssessmentRepo(db, log),
		Response:         repos.NewAssessmentResponseRepo(db, log),
		MOVFile:          repos.NewMOVFileRepo(db, log),
		ValidationRecord: repos.NewValidationRecordRepo(db, log),
	}
}
