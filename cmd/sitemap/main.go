// Command sitemap writes sitemap.xml and robots.txt for the public site into
// a directory, for frontends deployed as static files.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/services"
)

func main() {
	_ = godotenv.Load()

	var outDir, baseURL string
	flag.StringVar(&outDir, "out", "public", "directory to write sitemap.xml and robots.txt into")
	flag.StringVar(&baseURL, "base-url", "", "public site URL (default site.url from config)")
	flag.Parse()

	logger.Init(logger.Config{Level: "info", Format: "console"})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if baseURL == "" {
		baseURL = cfg.Site.URL
	}

	client, err := config.ConnectDB(cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	defer client.Disconnect(ctx)

	videos := repositories.NewVideoRepository(client.Database(cfg.Mongo.Database))
	builder := services.NewSitemapBuilder(videos, baseURL, cfg.Site.Name)

	sitemap, err := builder.Sitemap(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build sitemap")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		logger.Fatal().Err(err).Str("dir", outDir).Msg("failed to create output directory")
	}
	if err := os.WriteFile(filepath.Join(outDir, "sitemap.xml"), sitemap, 0644); err != nil {
		logger.Fatal().Err(err).Msg("failed to write sitemap.xml")
	}
	if err := os.WriteFile(filepath.Join(outDir, "robots.txt"), []byte(builder.Robots()), 0644); err != nil {
		logger.Fatal().Err(err).Msg("failed to write robots.txt")
	}
	logger.Info().Str("dir", outDir).Str("base_url", baseURL).Int("bytes", len(sitemap)).Msg("sitemap generated")
}
