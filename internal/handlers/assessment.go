package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/services"
)

type AssessmentHandler struct {
	log               *logger.Logger
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(log *logger.Logger, asvc services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		log:               log.With("handler", "AssessmentHandler"),
		assessmentService: asvc,
	}
}

type openAssessmentRequest struct {
	BarangayID      uuid.UUID `json:"barangay_id" binding:"required"`
	PerformanceYear int       `json:"performance_year" binding:"required,performance_year"`
}

// POST /api/assessments
func (h *AssessmentHandler) Open(c *gin.Context) {
	var req openAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.assessmentService.GetOrCreate(c.Request.Context(), req.BarangayID, req.PerformanceYear)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": row})
}

// GET /api/assessments/:id
func (h *AssessmentHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	detail, err := h.assessmentService.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, detail)
}

// GET /api/barangays/:id/assessments
func (h *AssessmentHandler) ListForBarangay(c *gin.Context) {
	barangayID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.assessmentService.ListForBarangay(c.Request.Context(), barangayID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessments": rows})
}

// GET /api/assessments/review
func (h *AssessmentHandler) ListForReview(c *gin.Context) {
	listings, err := h.assessmentService.ListForReview(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessments": listings})
}

// POST /api/assessments/:id/submit
func (h *AssessmentHandler) Submit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	row, err := h.assessmentService.Submit(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": row})
}

// POST /api/assessments/:id/resubmit
func (h *AssessmentHandler) Resubmit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	row, err := h.assessmentService.Resubmit(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": row})
}
