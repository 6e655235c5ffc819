package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/controllers"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/websocket"
)

const apiPrefix = "/api/v1"

// Handlers bundles everything the router hands requests to.
type Handlers struct {
	Guard      *middleware.Guard
	JWT        *middleware.JWTManager
	Admins     *controllers.AdminController
	Users      *controllers.UserController
	Videos     *controllers.VideoController
	Categories *controllers.CategoryController
	Products   *controllers.ProductController
	Orders     *controllers.OrderController
	Contacts   *controllers.ContactController
	Jobs       *controllers.JobApplicationController
	Sitemap    *controllers.SitemapController
	Socket     *websocket.Handler
	Health     *controllers.HealthController
	UploadsDir string
}

// staff guards admin-only endpoints: an admin session with role admin or
// superadmin.
func (h *Handlers) staff() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{h.Guard.ProtectAdmin(), middleware.Authorize(models.AdminRoleAdmin, models.AdminRoleSuper)}
}

// SetupRoutes registers every route group on e.
func SetupRoutes(e *echo.Echo, h *Handlers) {
	api := e.Group(apiPrefix)

	RegisterAdminRoutes(api, h)
	RegisterUserRoutes(api, h)
	RegisterVideoRoutes(api, h)
	RegisterCatalogRoutes(api, h)
	RegisterFormRoutes(api, h)

	RegisterSystemRoutes(e, h)
	if h.UploadsDir != "" {
		RegisterFileRoutes(e, h.UploadsDir)
	}
}
