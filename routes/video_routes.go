package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/models"
)

// RegisterVideoRoutes sets up discovery, engagement and moderation routes
// for videos.
func RegisterVideoRoutes(api *echo.Group, h *Handlers) {
	vc := h.Videos
	videos := api.Group("/videos")

	protectUser := h.Guard.ProtectUser()
	protectAny := h.Guard.ProtectAny()
	moderators := middleware.Authorize(models.AdminRoleAdmin, models.AdminRoleSuper)

	videos.GET("", vc.GetVideos)
	videos.GET("/search", vc.SearchVideos)
	videos.GET("/trending", vc.GetTrendingVideos)
	videos.GET("/subscribed", vc.GetSubscribedVideos, protectUser)
	videos.GET("/liked", vc.GetLikedVideos, protectUser)
	videos.GET("/history", vc.GetWatchHistory, protectUser)

	// Like and history actions
	videos.POST("/:id/like", vc.LikeVideo, protectUser)
	videos.POST("/:id/history", vc.AddToWatchHistory, protectUser)

	videos.POST("/upload", vc.UploadVideo, protectAny)
	videos.GET("/admin/all", vc.GetAllVideosAdmin, protectAny, moderators)
	videos.GET("/:id/related", vc.GetRelatedVideos)
	videos.PUT("/:id/trending", vc.ToggleTrending, h.staff()...)

	videos.GET("/:id", vc.GetVideo, h.Guard.Optional())
	videos.DELETE("/:id", vc.DeleteVideo, protectAny)
	videos.PUT("/:id/status", vc.UpdateVideoStatus, protectAny, moderators)
	videos.PUT("/:id/metrics", vc.UpdateVideoMetrics, protectAny, moderators)
}
