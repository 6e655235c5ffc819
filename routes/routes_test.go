package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/controllers"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandlers(uploads string) *Handlers {
	jwt := middleware.NewJWTManager(config.JWTConfig{Secret: "secret", Expire: time.Hour}, middleware.NewTokenBlacklist(nil))
	return &Handlers{
		Guard:      middleware.NewGuard(jwt, nil, nil),
		JWT:        jwt,
		Admins:     &controllers.AdminController{},
		Users:      &controllers.UserController{},
		Videos:     &controllers.VideoController{},
		Categories: &controllers.CategoryController{},
		Products:   &controllers.ProductController{},
		Orders:     &controllers.OrderController{},
		Contacts:   &controllers.ContactController{},
		Jobs:       &controllers.JobApplicationController{},
		Sitemap:    &controllers.SitemapController{},
		Socket:     websocket.NewHandler(websocket.NewHub(), jwt),
		Health:     &controllers.HealthController{},
		UploadsDir: uploads,
	}
}

func TestSetupRoutes_RegistersAPI(t *testing.T) {
	e := echo.New()
	SetupRoutes(e, testHandlers(t.TempDir()))

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/auth/admin/login",
		"PUT /api/v1/auth/admin/resetpassword/:resettoken",
		"PUT /api/v1/auth/admin/admins/:id/toggle-status",
		"POST /api/v1/auth/user/send-otp",
		"POST /api/v1/auth/user/subscribe/:creatorId",
		"GET /api/v1/videos/search",
		"GET /api/v1/videos/:id/related",
		"POST /api/v1/videos/:id/like",
		"PUT /api/v1/videos/:id/metrics",
		"GET /api/v1/categories/admin/all",
		"GET /api/v1/products/category/:categoryId",
		"POST /api/v1/orders",
		"DELETE /api/v1/contact/:id",
		"POST /api/v1/playboy-job/submit-utr",
		"GET /metrics",
		"GET /ws",
		"GET /sitemap.xml",
		"GET /robots.txt",
		"GET /uploads/*",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	SetupRoutes(e, testHandlers(""))

	for _, path := range []string{"/api/v1/auth/user/me", "/api/v1/auth/admin/me", "/api/v1/orders", "/api/v1/videos/liked"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestServeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "thumbnails"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thumbnails", "a.jpg"), []byte("jpeg"), 0644))

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	RegisterFileRoutes(e, dir)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/thumbnails/a.jpg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/thumbnails", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
