package app

import (
	"github.com/dilg-vantage/vantage-backend/internal/handlers"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
)

type Handlers struct {
	User        *handlers.UserHandler
	Barangay    *handlers.BarangayHandler
	Indicator   *handlers.IndicatorHandler
	Assessment  *handlers.AssessmentHandler
	Response    *handlers.ResponseHandler
	Validation  *handlers.ValidationHandler
	Calculation *handlers.CalculationHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	return Handlers{
		User:        handlers.NewUserHandler(log, serviceset.User),
		Barangay:    handlers.NewBarangayHandler(log, serviceset.Barangay),
		Indicator:   handlers.NewIndicatorHandler(log, serviceset.Indicator),
		Assessment:  handlers.NewAssessmentHandler(log, serviceset.Assessment),
		Response:    handlers.NewResponseHandler(log, serviceset.Response),
		Validation:  handlers.NewValidationHandler(log, serviceset.Validation),
		Calculation: handlers.NewCalculationHandler(log, serviceset.Calculation),
	}
}
