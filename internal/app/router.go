package app

import (
	"github.com/gin-gonic/gin"

	"github.com/dilg-vantage/vantage-backend/internal/middleware"
	"github.com/dilg-vantage/vantage-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowedOrigins:     cfg.AllowedOrigins,
		ServiceName:        cfg.ServiceName,
		AuthMiddleware:     auth,
		UserHandler:        handlerset.User,
		BarangayHandler:    handlerset.Barangay,
		IndicatorHandler:   handlerset.Indicator,
		AssessmentHandler:  handlerset.Assessment,
		ResponseHandler:    handlerset.Response,
		ValidationHandler:  handlerset.Validation,
		CalculationHandler: handlerset.Calculation,
	})
}
