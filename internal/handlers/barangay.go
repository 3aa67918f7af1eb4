package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/services"
	"github.com/dilg-vantage/vantage-backend/internal/types"
)

type BarangayHandler struct {
	log             *logger.Logger
	barangayService services.BarangayService
}

func NewBarangayHandler(log *logger.Logger, bsvc services.BarangayService) *BarangayHandler {
	return &BarangayHandler{
		log:             log.With("handler", "BarangayHandler"),
		barangayService: bsvc,
	}
}

type createBarangayRequest struct {
	Name         string `json:"name" binding:"required"`
	Municipality string `json:"municipality" binding:"required"`
	Province     string `json:"province" binding:"required"`
}

// GET /api/barangays
func (h *BarangayHandler) List(c *gin.Context) {
	rows, err := h.barangayService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"barangays": rows})
}

// GET /api/barangays/:id
func (h *BarangayHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	row, err := h.barangayService.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"barangay": row})
}

// POST /api/barangays
func (h *BarangayHandler) Create(c *gin.Context) {
	var req createBarangayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.barangayService.Create(c.Request.Context(), &types.Barangay{
		Name:         req.Name,
		Municipality: req.Municipality,
		Province:     req.Province,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"barangay": row})
}
