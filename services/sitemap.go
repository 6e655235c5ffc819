package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/utils"
)

type SitemapSource interface {
	// SitemapVideos returns every approved video, most recently updated first.
	SitemapVideos(ctx context.Context) ([]models.Video, error)
}

type staticPage struct {
	path       string
	priority   string
	changeFreq string
}

var staticPages = []staticPage{
	{"/", "1.0", "daily"},
	{"/trending", "0.8", "daily"},
	{"/explore", "0.8", "weekly"},
	{"/shop", "0.7", "weekly"},
	{"/about", "0.5", "monthly"},
	{"/contact", "0.5", "monthly"},
}

type urlSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	Xmlns      string       `xml:"xmlns,attr"`
	XmlnsVideo string       `xml:"xmlns:video,attr"`
	URLs       []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	ChangeFreq string        `xml:"changefreq"`
	Priority   string        `xml:"priority"`
	Video      *sitemapVideo `xml:"video:video,omitempty"`
}

type sitemapVideo struct {
	Title           string `xml:"video:title"`
	Description     string `xml:"video:description"`
	ThumbnailLoc    string `xml:"video:thumbnail_loc"`
	PublicationDate string `xml:"video:publication_date"`
	Duration        int64  `xml:"video:duration,omitempty"`
	ViewCount       int64  `xml:"video:view_count"`
	PlayerLoc       string `xml:"video:player_loc"`
	FamilyFriendly  string `xml:"video:family_friendly"`
	Live            string `xml:"video:live"`
}

// SitemapBuilder renders sitemap.xml and robots.txt for the public site.
type SitemapBuilder struct {
	source   SitemapSource
	baseURL  string
	siteName string
}

func NewSitemapBuilder(source SitemapSource, baseURL, siteName string) *SitemapBuilder {
	return &SitemapBuilder{source: source, baseURL: strings.TrimSuffix(baseURL, "/"), siteName: siteName}
}

// WatchURL is the canonical public URL of a video.
func (b *SitemapBuilder) WatchURL(v models.Video) string {
	return fmt.Sprintf("%s/watch/%s/%s", b.baseURL, v.ID.Hex(), utils.SEOSlug(v.Title))
}

func (b *SitemapBuilder) Sitemap(ctx context.Context) ([]byte, error) {
	videos, err := b.source.SitemapVideos(ctx)
	if err != nil {
		return nil, err
	}

	set := urlSet{
		Xmlns:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XmlnsVideo: "http://www.google.com/schemas/sitemap-video/1.1",
		URLs:       make([]sitemapURL, 0, len(staticPages)+len(videos)),
	}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{Loc: b.baseURL + p.path, ChangeFreq: p.changeFreq, Priority: p.priority})
	}
	for _, v := range videos {
		set.URLs = append(set.URLs, b.videoEntry(v))
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func (b *SitemapBuilder) videoEntry(v models.Video) sitemapURL {
	loc := b.WatchURL(v)
	title := v.Title
	if title == "" {
		title = "Untitled Video"
	}
	description := v.Description
	if description == "" {
		description = "Watch this video on " + b.siteName
	}
	thumbnail := v.ThumbnailURL
	if thumbnail == "" {
		thumbnail = b.baseURL + "/default-thumbnail.jpg"
	}
	lastMod := v.UpdatedAt
	if lastMod.IsZero() {
		lastMod = v.CreatedAt
	}

	return sitemapURL{
		Loc:        loc,
		LastMod:    lastMod.UTC().Format(time.RFC3339),
		ChangeFreq: "weekly",
		Priority:   "0.9",
		Video: &sitemapVideo{
			Title:           title,
			Description:     description,
			ThumbnailLoc:    thumbnail,
			PublicationDate: v.CreatedAt.UTC().Format(time.RFC3339),
			Duration:        int64(math.Round(v.Duration)),
			ViewCount:       v.Views,
			PlayerLoc:       loc,
			FamilyFriendly:  "no",
			Live:            "no",
		},
	}
}

func (b *SitemapBuilder) Robots() string {
	return fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", b.baseURL)
}
