package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"metaconvert/internal/pkg/response"
)

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

type broadcastRequest struct {
	Targets []int64 `json:"targets"`
	All     bool    `json:"all"`
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Kind    string  `json:"kind"`
	Link    *string `json:"link"`
}

// Broadcast godoc
// @Summary Send a notification campaign (admin composer)
// @Description Writes one notification row per target user, chunked in
// batches of 100, all sharing a campaign id.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /admin/broadcast [post]
func (h *Handler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.service.Broadcast(c.Request.Context(), BroadcastInput{
		Targets: req.Targets,
		All:     req.All,
		Title:   req.Title,
		Message: req.Message,
		Kind:    Kind(req.Kind),
		Link:    req.Link,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			response.CustomError(c, http.StatusBadRequest, "INVALID_ARGUMENT", "Title, message and a non-empty target set are required")
			return
		}
		// Earlier chunks may already be persisted; report what got through.
		if result != nil && result.Count > 0 {
			response.ErrorWithDetails(c, http.StatusInternalServerError, "PARTIAL_BROADCAST",
				"Campaign partially written", gin.H{"campaign_id": result.CampaignID, "count": result.Count})
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "BROADCAST_FAILED", "Failed to send campaign")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// List godoc
// @Summary List my notifications
// @Tags Notifications
// @Security BearerAuth
// @Param limit query int false "Max rows (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /notifications [get]
func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	limit := 20
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	list, unread, err := h.service.List(c.Request.Context(), userID, limit)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notifications")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"notifications": list,
		"unread_count":  unread,
	})
}

// MarkAsRead marks one notification as read.
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.CustomError(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark as read")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

// MarkAllAsRead marks all of the caller's notifications as read.
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	if err := h.service.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		response.CustomError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark all as read")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

// ServeWS upgrades the connection and attaches it to the push hub.
func (h *Handler) ServeWS(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.hub.ServeWS(conn, userID)
}
