package app

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/services"
)

type Services struct {
	Bucket      services.BucketService
	User        services.UserService
	Barangay    services.BarangayService
	Indicator   services.IndicatorService
	Summary     services.SummaryService
	Response    services.ResponseService
	Assessment  services.AssessmentService
	Validation  services.ValidationService
	Calculation services.CalculationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cache *redis.Client, reposet Repos) (Services, error) {
	bucket, err := services.NewBucketService(log)
	if err != nil {
		return Services{}, err
	}

	summary := services.NewSummaryService(reposet.Indicator, reposet.Response, reposet.MOVFile, cache, log)
	response := services.NewResponseService(reposet.Assessment, reposet.Indicator, reposet.Response, reposet.MOVFile, bucket, summary, log)

	return Services{
		Bucket:      bucket,
		User:        services.NewUserService(reposet.User, log),
		Barangay:    services.NewBarangayService(reposet.Barangay, log),
		Indicator:   services.NewIndicatorService(db, reposet.Indicator, log),
		Summary:     summary,
		Response:    response,
		Assessment:  services.NewAssessmentService(reposet.Assessment, summary, response, log),
		Validation:  services.NewValidationService(reposet.Assessment, reposet.Indicator, reposet.Response, reposet.ValidationRecord, summary, log),
		Calculation: services.NewCalculationService(reposet.Indicator, reposet.Response, log),
	}, nil
}
