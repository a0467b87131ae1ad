package share

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the share surface. Resolve and unlock are public —
// they back the share-viewing page; everything else needs a session.
func RegisterRoutes(public, protected *gin.RouterGroup, h *Handler) {
	public.GET("/share/:id", h.ResolveShared)
	public.POST("/share/:id/unlock", h.UnlockShared)
	public.GET("/drops/:id", h.ResolveDrop)
	public.POST("/drops/:id/unlock", h.UnlockDrop)

	protected.POST("/share", h.IssueShared)
	protected.GET("/share", h.ListShared)
	protected.DELETE("/share/:id", h.RevokeShared)

	protected.POST("/drops", h.IssueDrop)
	protected.GET("/drops", h.ListDrops)
	protected.DELETE("/drops/:id", h.RevokeDrop)
}
