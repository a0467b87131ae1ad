package share

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"metaconvert/internal/domain/reaper"
	"metaconvert/internal/middleware"
	"metaconvert/internal/pkg/response"
)

// Handler exposes the share-link authority. Revocation routes through the
// reaper so the grant's stored bytes are reclaimed with the record.
type Handler struct {
	service *Service
	reaper  *reaper.Service
}

func NewHandler(service *Service, reaper *reaper.Service) *Handler {
	return &Handler{service: service, reaper: reaper}
}

type issueSharedRequest struct {
	Locator  string `json:"locator" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
	TTLHours int    `json:"ttl_hours" binding:"required"`
	Password string `json:"password"`
}

// IssueShared godoc
// @Summary Create a share link for a stored artifact
// @Tags Share
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400,401 {object} map[string]interface{}
// @Router /share [post]
func (h *Handler) IssueShared(c *gin.Context) {
	var req issueSharedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	link, err := h.service.IssueShared(c.Request.Context(), middleware.ActorFrom(c), IssueSharedInput{
		Locator:  req.Locator,
		FileName: req.FileName,
		TTLHours: req.TTLHours,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create share link")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"link_id":    link.ID,
		"expires_at": link.ExpiresAt,
	})
}

// ResolveShared godoc
// @Summary Public share page metadata
// @Description Returns file name, password flag and expiry. Expired and
// revoked links look exactly like links that never existed.
// @Tags Share
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /share/{id} [get]
func (h *Handler) ResolveShared(c *gin.Context) {
	display, err := h.service.ResolveShared(c.Request.Context(), c.Param("id"))
	if err != nil {
		resolveError(c, err)
		return
	}
	response.Success(c, http.StatusOK, display)
}

type unlockRequest struct {
	Password string `json:"password"`
}

// UnlockShared godoc
// @Summary Exchange the link password for the artifact locator
// @Tags Share
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401,404 {object} map[string]interface{}
// @Router /share/{id}/unlock [post]
func (h *Handler) UnlockShared(c *gin.Context) {
	var req unlockRequest
	_ = c.ShouldBindJSON(&req)

	locator, err := h.service.UnlockShared(c.Request.Context(), c.Param("id"), req.Password)
	if err != nil {
		resolveError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"locator": locator})
}

// ListShared lists the caller's active share links.
func (h *Handler) ListShared(c *gin.Context) {
	list, err := h.service.ListShared(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list share links")
		return
	}
	response.Success(c, http.StatusOK, list)
}

// RevokeShared godoc
// @Summary Revoke a share link (owner only)
// @Description Deletes the grant and reclaims its stored bytes.
// @Tags Share
// @Security BearerAuth
// @Param id path string true "Link ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401,404 {object} map[string]interface{}
// @Router /share/{id} [delete]
func (h *Handler) RevokeShared(c *gin.Context) {
	err := h.reaper.Delete(c.Request.Context(), reaper.KindSharedLink, c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		if errors.Is(err, reaper.ErrNotFound) {
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Link not found")
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to revoke link")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "revoked"})
}

type issueDropRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TTLDays     int    `json:"ttl_days" binding:"required"`
	Password    string `json:"password"`
}

// IssueDrop creates a drop link collection point.
func (h *Handler) IssueDrop(c *gin.Context) {
	var req issueDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	link, err := h.service.IssueDrop(c.Request.Context(), middleware.ActorFrom(c), IssueDropInput{
		Title:       req.Title,
		Description: req.Description,
		TTLDays:     req.TTLDays,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Drop links require an account")
		case errors.Is(err, ErrInvalidArgument):
			response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		default:
			response.CustomError(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create drop link")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"link_id":    link.ID,
		"expires_at": link.ExpiresAt,
	})
}

// ResolveDrop returns public drop link metadata while active.
func (h *Handler) ResolveDrop(c *gin.Context) {
	display, err := h.service.ResolveDrop(c.Request.Context(), c.Param("id"))
	if err != nil {
		resolveError(c, err)
		return
	}
	response.Success(c, http.StatusOK, display)
}

// UnlockDrop verifies the drop password gate.
func (h *Handler) UnlockDrop(c *gin.Context) {
	var req unlockRequest
	_ = c.ShouldBindJSON(&req)

	locator, err := h.service.UnlockDrop(c.Request.Context(), c.Param("id"), req.Password)
	if err != nil {
		resolveError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"locator": locator})
}

// ListDrops lists the caller's active drop links.
func (h *Handler) ListDrops(c *gin.Context) {
	list, err := h.service.ListDrops(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list drop links")
		return
	}
	response.Success(c, http.StatusOK, list)
}

// RevokeDrop deletes a drop link through the reaper.
func (h *Handler) RevokeDrop(c *gin.Context) {
	err := h.reaper.Delete(c.Request.Context(), reaper.KindDropLink, c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		if errors.Is(err, reaper.ErrNotFound) {
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Link not found")
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to revoke link")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "revoked"})
}

func resolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Link not found")
	case errors.Is(err, ErrUnauthorized):
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Wrong password")
	default:
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to resolve link")
	}
}
