package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/services"
)

type SitemapController struct {
	builder *services.SitemapBuilder
}

func NewSitemapController(builder *services.SitemapBuilder) *SitemapController {
	return &SitemapController{builder: builder}
}

// GetSitemap serves the combined page and video sitemap. The same document
// answers /sitemap.xml and /video-sitemap.xml.
func (sc *SitemapController) GetSitemap(c echo.Context) error {
	body, err := sc.builder.Sitemap(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, body)
}

func (sc *SitemapController) GetRobots(c echo.Context) error {
	return c.String(http.StatusOK, sc.builder.Robots())
}
