package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/services"
)

type ValidationHandler struct {
	log               *logger.Logger
	validationService services.ValidationService
}

func NewValidationHandler(log *logger.Logger, vsvc services.ValidationService) *ValidationHandler {
	return &ValidationHandler{
		log:               log.With("handler", "ValidationHandler"),
		validationService: vsvc,
	}
}

type recordValidationRequest struct {
	ResponseID    uuid.UUID `json:"response_id" binding:"required"`
	Status        string    `json:"status" binding:"required"`
	PublicComment string    `json:"public_comment"`
	InternalNote  string    `json:"internal_note"`
}

// POST /api/validations
func (h *ValidationHandler) Record(c *gin.Context) {
	var req recordValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.validationService.Record(c.Request.Context(), services.RecordValidationInput{
		ResponseID:    req.ResponseID,
		Status:        req.Status,
		PublicComment: req.PublicComment,
		InternalNote:  req.InternalNote,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"validation": row})
}

// GET /api/assessments/:id/validations
func (h *ValidationHandler) ListForAssessment(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	records, err := h.validationService.ListForAssessment(c.Request.Context(), assessmentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"validations": records})
}

// GET /api/assessments/:id/review-progress
func (h *ValidationHandler) Progress(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	progress, err := h.validationService.Progress(c.Request.Context(), assessmentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"reviewed": progress.Reviewed,
		"total":    progress.Total,
		"failed":   progress.Failed,
	})
}

// POST /api/assessments/:id/rework
func (h *ValidationHandler) SendRework(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	row, err := h.validationService.SendRework(c.Request.Context(), assessmentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": row})
}

// POST /api/assessments/:id/finalize
func (h *ValidationHandler) Finalize(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	row, err := h.validationService.Finalize(c.Request.Context(), assessmentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": row})
}
