package conversion

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"metaconvert/internal/domain/storage"
	"metaconvert/internal/middleware"
	"metaconvert/internal/pkg/response"
)

const maxOutputSize = 200 * 1024 * 1024 // 200 MB

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createConversionRequest struct {
	SourceName string  `json:"source_name" binding:"required"`
	SourceType string  `json:"source_type"`
	TargetType string  `json:"target_type" binding:"required"`
	SourceSize int64   `json:"source_size"`
	DropLinkID *string `json:"drop_link_id"`
}

// CreateConversion godoc
// @Summary Register a conversion job
// @Description Creates a pending conversion record. Works with or without a session.
// @Tags Conversions
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /conversions [post]
func (h *Handler) CreateConversion(c *gin.Context) {
	var req createConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	rec, err := h.service.CreateConversion(c.Request.Context(), middleware.ActorFrom(c), CreateConversionInput{
		SourceName: req.SourceName,
		SourceType: req.SourceType,
		TargetType: req.TargetType,
		SourceSize: req.SourceSize,
		DropLinkID: req.DropLinkID,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create conversion")
		return
	}

	response.Success(c, http.StatusCreated, rec)
}

// CompleteConversion godoc
// @Summary Attach converted output (worker callback)
// @Tags Conversions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Conversion ID"
// @Param file formData file true "Converted output"
// @Param placement query string false "inline or external"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404,409,502 {object} map[string]interface{}
// @Router /internal/conversions/{id}/complete [post]
func (h *Handler) CompleteConversion(c *gin.Context) {
	output, ok := readOutputFile(c)
	if !ok {
		return
	}

	rec, err := h.service.CompleteConversion(
		c.Request.Context(),
		c.Param("id"),
		output,
		storage.Placement(c.DefaultQuery("placement", string(storage.PlaceInline))),
	)
	if err != nil {
		completeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rec)
}

// FailConversion marks a pending conversion as failed (worker callback).
func (h *Handler) FailConversion(c *gin.Context) {
	if err := h.service.FailConversion(c.Request.Context(), c.Param("id")); err != nil {
		completeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "failed"})
}

type renameRequest struct {
	SourceName string `json:"source_name" binding:"required"`
}

// RenameConversion godoc
// @Summary Rename a conversion (owner only)
// @Tags Conversions
// @Security BearerAuth
// @Param id path string true "Conversion ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,404 {object} map[string]interface{}
// @Router /conversions/{id} [patch]
func (h *Handler) RenameConversion(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	err := h.service.RenameConversion(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.SourceName)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Conversion not found")
		case errors.Is(err, ErrInvalidArgument):
			response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		default:
			response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to rename conversion")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "renamed"})
}

// ListConversions godoc
// @Summary List my conversions
// @Tags Conversions
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /conversions [get]
func (h *Handler) ListConversions(c *gin.Context) {
	list, err := h.service.ListConversions(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list conversions")
		return
	}
	response.Success(c, http.StatusOK, list)
}

// DownloadConversion godoc
// @Summary Download converted output (owner only)
// @Tags Conversions
// @Security BearerAuth
// @Param id path string true "Conversion ID"
// @Success 200 {file} binary
// @Failure 404,502 {object} map[string]interface{}
// @Router /conversions/{id}/download [get]
func (h *Handler) DownloadConversion(c *gin.Context) {
	data, rec, err := h.service.DownloadConversion(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		downloadError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+rec.SourceName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

type createUpscaleRequest struct {
	SourceName  string  `json:"source_name" binding:"required"`
	SourceType  string  `json:"source_type"`
	ScaleFactor int     `json:"scale_factor" binding:"required"`
	SourceSize  int64   `json:"source_size"`
	DropLinkID  *string `json:"drop_link_id"`
}

// CreateUpscale registers a pending upscale job.
func (h *Handler) CreateUpscale(c *gin.Context) {
	var req createUpscaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	rec, err := h.service.CreateUpscale(c.Request.Context(), middleware.ActorFrom(c), CreateUpscaleInput{
		SourceName:  req.SourceName,
		SourceType:  req.SourceType,
		ScaleFactor: req.ScaleFactor,
		SourceSize:  req.SourceSize,
		DropLinkID:  req.DropLinkID,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create upscale")
		return
	}

	response.Success(c, http.StatusCreated, rec)
}

// CompleteUpscale attaches upscaled output bytes (worker callback).
func (h *Handler) CompleteUpscale(c *gin.Context) {
	output, ok := readOutputFile(c)
	if !ok {
		return
	}

	rec, err := h.service.CompleteUpscale(
		c.Request.Context(),
		c.Param("id"),
		output,
		storage.Placement(c.DefaultQuery("placement", string(storage.PlaceInline))),
	)
	if err != nil {
		completeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rec)
}

// FailUpscale marks a pending upscale as failed (worker callback).
func (h *Handler) FailUpscale(c *gin.Context) {
	if err := h.service.FailUpscale(c.Request.Context(), c.Param("id")); err != nil {
		completeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "failed"})
}

// RenameUpscale renames an upscale record (owner only).
func (h *Handler) RenameUpscale(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	err := h.service.RenameUpscale(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.SourceName)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Upscale not found")
		case errors.Is(err, ErrInvalidArgument):
			response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		default:
			response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to rename upscale")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "renamed"})
}

// ListUpscales lists the caller's upscales.
func (h *Handler) ListUpscales(c *gin.Context) {
	list, err := h.service.ListUpscales(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list upscales")
		return
	}
	response.Success(c, http.StatusOK, list)
}

// DownloadUpscale streams the upscaled output (owner only).
func (h *Handler) DownloadUpscale(c *gin.Context) {
	data, rec, err := h.service.DownloadUpscale(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		downloadError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+rec.SourceName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func readOutputFile(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "no file provided")
		return nil, false
	}
	if fileHeader.Size == 0 {
		response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", "file is empty")
		return nil, false
	}
	if fileHeader.Size > maxOutputSize {
		response.CustomError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return nil, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "READ_FAILED", "failed to read file")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "READ_FAILED", "failed to read file")
		return nil, false
	}
	return data, true
}

func completeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		response.CustomError(c, http.StatusConflict, "ALREADY_TERMINAL", "Record is not pending")
	case errors.Is(err, ErrNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
	case errors.Is(err, storage.ErrEmptyPayload):
		response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", "file is empty")
	case errors.Is(err, storage.ErrBackendUnavailable):
		response.CustomError(c, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "Storage backend unavailable")
	default:
		response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update record")
	}
}

func downloadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
	case errors.Is(err, storage.ErrBackendUnavailable):
		response.CustomError(c, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "Storage backend unavailable")
	default:
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch output")
	}
}
