package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/services"
)

// maxMOVUploadBytes caps the multipart upload size before schema-level
// limits apply.
const maxMOVUploadBytes = 50 << 20

type ResponseHandler struct {
	log             *logger.Logger
	responseService services.ResponseService
}

func NewResponseHandler(log *logger.Logger, rsvc services.ResponseService) *ResponseHandler {
	return &ResponseHandler{
		log:             log.With("handler", "ResponseHandler"),
		responseService: rsvc,
	}
}

type saveAnswersRequest struct {
	Data map[string]any `json:"data" binding:"required"`
}

// GET /api/assessments/:id/indicators/:indicatorId/response
func (h *ResponseHandler) Get(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	indicatorID, ok := pathUUID(c, "indicatorId")
	if !ok {
		return
	}
	response, movs, err := h.responseService.Get(c.Request.Context(), assessmentID, indicatorID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"response": response, "movs": movs})
}

// PUT /api/assessments/:id/indicators/:indicatorId/response
func (h *ResponseHandler) SaveAnswers(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	indicatorID, ok := pathUUID(c, "indicatorId")
	if !ok {
		return
	}
	var req saveAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.responseService.SaveAnswers(c.Request.Context(), assessmentID, indicatorID, req.Data); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}

// POST /api/assessments/:id/indicators/:indicatorId/movs
func (h *ResponseHandler) AddMOV(c *gin.Context) {
	assessmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	indicatorID, ok := pathUUID(c, "indicatorId")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fileHeader.Size > maxMOVUploadBytes {
		RespondError(c, http.StatusBadRequest, "file_too_large", fmt.Errorf("file exceeds %d bytes", maxMOVUploadBytes))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer file.Close()

	row, err := h.responseService.AddMOV(c.Request.Context(), services.AddMOVInput{
		AssessmentID: assessmentID,
		IndicatorID:  indicatorID,
		Filename:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Section:      c.PostForm("section"),
		Size:         fileHeader.Size,
		File:         file,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"mov": row})
}

// DELETE /api/movs/:id
func (h *ResponseHandler) DeleteMOV(c *gin.Context) {
	movID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.responseService.DeleteMOV(c.Request.Context(), movID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// GET /api/movs/:id/download
func (h *ResponseHandler) DownloadMOV(c *gin.Context) {
	movID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	url, err := h.responseService.MOVDownloadURL(c.Request.Context(), movID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}
