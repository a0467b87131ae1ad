package reaper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"metaconvert/internal/middleware"
	"metaconvert/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Delete godoc
// @Summary Delete an artifact record and its stored bytes
// @Description Owner-scoped cascade delete. Admins may delete any record.
// @Tags Cloud
// @Security BearerAuth
// @Param kind path string true "conversion | upscale | shared_link | drop_link"
// @Param id path string true "Record ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,404 {object} map[string]interface{}
// @Router /cloud/{kind}/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	kind, err := ParseKind(c.Param("kind"))
	if err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_KIND", "Unknown record kind")
		return
	}

	err = h.service.Delete(c.Request.Context(), kind, c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete record")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

type bulkDeleteRequest struct {
	Targets []DeleteTarget `json:"targets" binding:"required"`
}

// BulkDelete godoc
// @Summary Bulk delete artifact records (admin console)
// @Description Each target is processed independently; the response carries
// the count of records actually deleted.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /admin/artifacts/bulk-delete [post]
func (h *Handler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if len(req.Targets) == 0 {
		response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", "No targets supplied")
		return
	}

	deleted := h.service.BulkDelete(c.Request.Context(), req.Targets, middleware.ActorFrom(c))

	response.Success(c, http.StatusOK, gin.H{
		"requested": len(req.Targets),
		"deleted":   deleted,
	})
}

// RegisterRoutes wires the owner-facing cloud management endpoint.
func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	protected.DELETE("/cloud/:kind/:id", h.Delete)
}

// RegisterAdminRoutes wires the administrative console endpoints. The group
// must carry AdminOnly.
func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	admin.POST("/artifacts/bulk-delete", h.BulkDelete)
}
