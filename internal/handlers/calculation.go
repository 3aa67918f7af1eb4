package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/services"
)

type CalculationHandler struct {
	log                *logger.Logger
	calculationService services.CalculationService
}

func NewCalculationHandler(log *logger.Logger, csvc services.CalculationService) *CalculationHandler {
	return &CalculationHandler{
		log:                log.With("handler", "CalculationHandler"),
		calculationService: csvc,
	}
}

type testCalculationRequest struct {
	Schema     json.RawMessage `json:"schema" binding:"required"`
	SampleData map[string]any  `json:"sample_data"`
}

// POST /api/calculations/test
func (h *CalculationHandler) TestSchema(c *gin.Context) {
	var req testCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.calculationService.TestSchema(c.Request.Context(), req.Schema, req.SampleData)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/assessments/:id/indicators/:indicatorId/calculation
func (h *CalculationHandler) EvaluateIndicator(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	indicatorID, ok := pathUUID(c, "indicatorId")
	if !ok {
		return
	}
	result, err := h.calculationService.EvaluateIndicator(c.Request.Context(), assessmentID, indicatorID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
