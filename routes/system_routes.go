package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSystemRoutes sets up health, metrics, websocket and crawler routes
// that live outside the versioned API.
func RegisterSystemRoutes(e *echo.Echo, h *Handlers) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/", h.Health.Root)
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/ws", h.Socket.Serve)
	e.GET(apiPrefix+"/ws", h.Socket.Serve)

	e.GET("/sitemap.xml", h.Sitemap.GetSitemap)
	e.GET("/video-sitemap.xml", h.Sitemap.GetSitemap)
	e.GET("/robots.txt", h.Sitemap.GetRobots)
}
