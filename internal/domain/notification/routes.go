package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the per-user notification inbox and the push socket.
func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	n := protected.Group("/notifications")
	{
		n.GET("", h.List)
		n.PATCH("/:id/read", h.MarkAsRead)
		n.PATCH("/read-all", h.MarkAllAsRead)
		n.GET("/ws", h.ServeWS)
	}
}

// RegisterAdminRoutes wires the campaign composer. The group must carry
// AdminOnly.
func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	admin.POST("/broadcast", h.Broadcast)
}
