package routes

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
)

// RegisterFileRoutes serves blobs written by the local storage backend.
func RegisterFileRoutes(e *echo.Echo, dir string) {
	e.GET("/uploads/*", ServeFile(dir))
}

// ServeFile returns a handler that serves files below dir with long cache
// headers. Traversal outside dir and directory listings are refused.
func ServeFile(dir string) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Param("*")
		if path == "" {
			return apperr.NotFound("File not found")
		}

		cleanPath := filepath.Clean("/" + path)
		if strings.Contains(cleanPath, "..") {
			return apperr.Forbidden("Access denied")
		}
		fullPath := filepath.Join(dir, cleanPath)

		info, err := os.Stat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return apperr.NotFound("File not found")
			}
			return err
		}
		if info.IsDir() {
			return apperr.Forbidden("Access denied")
		}

		c.Response().Header().Set("Cache-Control", "public, max-age=31536000")
		c.Response().Header().Set("Expires", time.Now().AddDate(1, 0, 0).UTC().Format(time.RFC1123))
		return c.File(fullPath)
	}
}
