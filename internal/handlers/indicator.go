package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/services"
)

type IndicatorHandler struct {
	log              *logger.Logger
	indicatorService services.IndicatorService
}

func NewIndicatorHandler(log *logger.Logger, isvc services.IndicatorService) *IndicatorHandler {
	return &IndicatorHandler{
		log:              log.With("handler", "IndicatorHandler"),
		indicatorService: isvc,
	}
}

type createIndicatorRequest struct {
	ParentID         *uuid.UUID `json:"parent_id"`
	Name             string     `json:"name" binding:"required"`
	Description      string     `json:"description"`
	IsAutoCalculable bool       `json:"is_auto_calculable"`
	IsProfilingOnly  bool       `json:"is_profiling_only"`
}

type updateIndicatorRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	IsAutoCalculable *bool   `json:"is_auto_calculable"`
	IsProfilingOnly  *bool   `json:"is_profiling_only"`
}

type moveIndicatorRequest struct {
	NewParentID *uuid.UUID `json:"new_parent_id"`
	Position    int        `json:"position"`
}

type reorderRequest struct {
	ParentID   *uuid.UUID  `json:"parent_id"`
	OrderedIDs []uuid.UUID `json:"ordered_ids" binding:"required"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type attachSchemaRequest struct {
	Schema json.RawMessage `json:"schema" binding:"required"`
}

// GET /api/indicators/tree
func (h *IndicatorHandler) GetTree(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	roots, err := h.indicatorService.GetTree(c.Request.Context(), includeInactive)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"tree": roots})
}

// GET /api/indicators/:id
func (h *IndicatorHandler) GetNode(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	node, breadcrumbs, err := h.indicatorService.GetNode(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"indicator": node, "breadcrumbs": breadcrumbs})
}

// POST /api/indicators
func (h *IndicatorHandler) Create(c *gin.Context) {
	var req createIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.indicatorService.Create(c.Request.Context(), services.CreateIndicatorInput{
		ParentID:         req.ParentID,
		Name:             req.Name,
		Description:      req.Description,
		IsAutoCalculable: req.IsAutoCalculable,
		IsProfilingOnly:  req.IsProfilingOnly,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"indicator": row})
}

// PATCH /api/indicators/:id
func (h *IndicatorHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.indicatorService.Update(c.Request.Context(), id, services.UpdateIndicatorInput{
		Name:             req.Name,
		Description:      req.Description,
		IsAutoCalculable: req.IsAutoCalculable,
		IsProfilingOnly:  req.IsProfilingOnly,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"indicator": row})
}

// POST /api/indicators/:id/move
func (h *IndicatorHandler) Move(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req moveIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.indicatorService.Move(c.Request.Context(), id, req.NewParentID, req.Position); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"moved": true})
}

// POST /api/indicators/reorder
func (h *IndicatorHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.indicatorService.Reorder(c.Request.Context(), req.ParentID, req.OrderedIDs); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reordered": true})
}

// POST /api/indicators/:id/active
func (h *IndicatorHandler) SetActive(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("is_active is required"))
		return
	}
	if err := h.indicatorService.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"is_active": *req.IsActive})
}

// DELETE /api/indicators/:id
func (h *IndicatorHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.indicatorService.Delete(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// PUT /api/indicators/:id/form-schema
func (h *IndicatorHandler) AttachFormSchema(c *gin.Context) {
	h.attachSchema(c, h.indicatorService.AttachFormSchema)
}

// PUT /api/indicators/:id/calculation-schema
func (h *IndicatorHandler) AttachCalculationSchema(c *gin.Context) {
	h.attachSchema(c, h.indicatorService.AttachCalculationSchema)
}

func (h *IndicatorHandler) attachSchema(c *gin.Context, attach func(ctx context.Context, id uuid.UUID, raw json.RawMessage) error) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req attachSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := attach(c.Request.Context(), id, req.Schema); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"attached": true})
}

// POST /api/indicators/:id/restore-schemas
func (h *IndicatorHandler) RestoreArchivedSchemas(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.indicatorService.RestoreArchivedSchemas(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"restored": true})
}

// GET /api/indicators/validate
func (h *IndicatorHandler) ValidateTree(c *gin.Context) {
	issues, err := h.indicatorService.ValidateTree(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"issues": issues, "valid": len(issues) == 0})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s: %w", name, err))
		return uuid.Nil, false
	}
	return id, true
}
