package conversion

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the user-facing conversion/upscale endpoints.
// Creation allows anonymous callers (OptionalAuth on the group); everything
// else is owner-scoped behind Auth.
func RegisterRoutes(public, protected *gin.RouterGroup, h *Handler) {
	public.POST("/conversions", h.CreateConversion)
	public.POST("/upscales", h.CreateUpscale)

	conversions := protected.Group("/conversions")
	{
		conversions.GET("", h.ListConversions)
		conversions.PATCH("/:id", h.RenameConversion)
		conversions.GET("/:id/download", h.DownloadConversion)
	}

	upscales := protected.Group("/upscales")
	{
		upscales.GET("", h.ListUpscales)
		upscales.PATCH("/:id", h.RenameUpscale)
		upscales.GET("/:id/download", h.DownloadUpscale)
	}
}

// RegisterWorkerRoutes wires the callbacks the media workers hit when a job
// finishes. The group must carry InternalTokenAuth.
func RegisterWorkerRoutes(internal *gin.RouterGroup, h *Handler) {
	internal.POST("/conversions/:id/complete", h.CompleteConversion)
	internal.POST("/conversions/:id/fail", h.FailConversion)
	internal.POST("/upscales/:id/complete", h.CompleteUpscale)
	internal.POST("/upscales/:id/fail", h.FailUpscale)
}
