package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dilg-vantage/vantage-backend/internal/handlers"
	"github.com/dilg-vantage/vantage-backend/internal/middleware"
	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
)

// registerValidations installs custom binding rules on gin's validator
// engine. SGLGB assessments only exist for plausible performance years.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("performance_year", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= 2000 && year <= 2100
	})
}

type RouterConfig struct {
	AllowedOrigins []string
	ServiceName    string

	AuthMiddleware     *middleware.AuthMiddleware
	UserHandler        *handlers.UserHandler
	BarangayHandler    *handlers.BarangayHandler
	IndicatorHandler   *handlers.IndicatorHandler
	AssessmentHandler  *handlers.AssessmentHandler
	ResponseHandler    *handlers.ResponseHandler
	ValidationHandler  *handlers.ValidationHandler
	CalculationHandler *handlers.CalculationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	registerValidations()

	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.GET("/me", cfg.UserHandler.Me)

	// Barangays
	api.GET("/barangays", cfg.BarangayHandler.List)
	api.GET("/barangays/:id", cfg.BarangayHandler.Get)
	api.POST("/barangays", cfg.AuthMiddleware.RequireRole(requestdata.RoleMLGOO), cfg.BarangayHandler.Create)
	api.GET("/barangays/:id/assessments", cfg.AssessmentHandler.ListForBarangay)

	// Indicator tree. Reads are open to every authenticated role; edits
	// are MLGOO-only.
	api.GET("/indicators/tree", cfg.IndicatorHandler.GetTree)
	api.GET("/indicators/validate", cfg.IndicatorHandler.ValidateTree)
	api.GET("/indicators/:id", cfg.IndicatorHandler.GetNode)

	admin := api.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireRole(requestdata.RoleMLGOO))
	admin.POST("/indicators", cfg.IndicatorHandler.Create)
	admin.PATCH("/indicators/:id", cfg.IndicatorHandler.Update)
	admin.POST("/indicators/:id/move", cfg.IndicatorHandler.Move)
	admin.POST("/indicators/reorder", cfg.IndicatorHandler.Reorder)
	admin.POST("/indicators/:id/active", cfg.IndicatorHandler.SetActive)
	admin.DELETE("/indicators/:id", cfg.IndicatorHandler.Delete)
	admin.PUT("/indicators/:id/form-schema", cfg.IndicatorHandler.AttachFormSchema)
	admin.PUT("/indicators/:id/calculation-schema", cfg.IndicatorHandler.AttachCalculationSchema)
	admin.POST("/indicators/:id/restore-schemas", cfg.IndicatorHandler.RestoreArchivedSchemas)
	admin.POST("/calculations/test", cfg.CalculationHandler.TestSchema)

	// Assessments
	api.POST("/assessments", cfg.AssessmentHandler.Open)
	api.GET("/assessments/review", cfg.AssessmentHandler.ListForReview)
	api.GET("/assessments/:id", cfg.AssessmentHandler.Get)
	api.POST("/assessments/:id/submit", cfg.AssessmentHandler.Submit)
	api.POST("/assessments/:id/resubmit", cfg.AssessmentHandler.Resubmit)

	// Responses and MOVs
	api.GET("/assessments/:id/indicators/:indicatorId/response", cfg.ResponseHandler.Get)
	api.PUT("/assessments/:id/indicators/:indicatorId/response", cfg.ResponseHandler.SaveAnswers)
	api.POST("/assessments/:id/indicators/:indicatorId/movs", cfg.ResponseHandler.AddMOV)
	api.GET("/assessments/:id/indicators/:indicatorId/calculation", cfg.CalculationHandler.EvaluateIndicator)
	api.DELETE("/movs/:id", cfg.ResponseHandler.DeleteMOV)
	// Registered outside the group: download links may carry the token as
	// a query parameter, which no other route accepts.
	router.GET("/api/movs/:id/download", cfg.AuthMiddleware.RequireAuthWithQueryToken(), cfg.ResponseHandler.DownloadMOV)

	// Validation workflow
	api.GET("/assessments/:id/validations", cfg.ValidationHandler.ListForAssessment)
	review := api.Group("/")
	review.Use(cfg.AuthMiddleware.RequireRole(requestdata.RoleAssessor, requestdata.RoleMLGOO))
	review.POST("/validations", cfg.ValidationHandler.Record)
	review.GET("/assessments/:id/review-progress", cfg.ValidationHandler.Progress)
	review.POST("/assessments/:id/rework", cfg.ValidationHandler.SendRework)
	review.POST("/assessments/:id/finalize", cfg.ValidationHandler.Finalize)

	return router
}
