package main

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/controllers"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/routes"
	"github.com/streamcart/streamcart_backend/services"
	"github.com/streamcart/streamcart_backend/utils"
	"github.com/streamcart/streamcart_backend/websocket"
)

const version = "1.0"

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg(".env file not found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.ConnectDB(cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	db := client.Database(cfg.Mongo.Database)
	rdb := config.ConnectRedis(cfg.Redis)

	blobs, err := services.NewBlobStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize blob storage")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	videoRepo := repositories.NewVideoRepository(db)
	graphRepo := repositories.NewGraphRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	creators := repositories.NewEntityLookup(db)

	// Notifications go to open sockets and, when configured, to FCM.
	hub := websocket.NewHub()
	go hub.Run(ctx)
	sinks := []services.Notifier{hub}
	if push := pushNotifier(ctx, cfg, userRepo); push != nil {
		sinks = append(sinks, push)
	}
	notifier := services.NewFanOut(sinks...)

	blacklist := middleware.NewTokenBlacklist(rdb)
	jwtManager := middleware.NewJWTManager(cfg.JWT, blacklist)
	mailer := services.NewMailer(cfg.SMTP)
	graph := services.NewGraphMutator(graphRepo)

	handlers := &routes.Handlers{
		Guard:  middleware.NewGuard(jwtManager, userRepo, adminRepo),
		JWT:    jwtManager,
		Admins: controllers.NewAdminController(adminRepo, userRepo, jwtManager, mailer, cfg),
		Users: controllers.NewUserController(controllers.UserDeps{
			Users:    userRepo,
			Videos:   videoRepo,
			Graph:    graph,
			Creators: creators,
			OTPs:     utils.NewOTPStore(rdb),
			Mailer:   mailer,
			JWT:      jwtManager,
			Blobs:    blobs,
			Notifier: notifier,
			Site:     cfg.Site,
		}),
		Videos: controllers.NewVideoController(controllers.VideoDeps{
			Videos:    videoRepo,
			Discovery: services.NewDiscoveryService(videoRepo),
			Graph:     graph,
			Counters:  services.NewMetricsUpdater(videoRepo),
			History:   services.NewHistoryService(userRepo, videoRepo),
			Creators:  creators,
			Blobs:     blobs,
			Media:     utils.NewMediaProcessor(),
			Notifier:  notifier,
		}),
		Categories: controllers.NewCategoryController(categoryRepo, blobs),
		Products:   controllers.NewProductController(productRepo, categoryRepo, blobs, cfg.Site.URL),
		Orders:     controllers.NewOrderController(repositories.NewOrderRepository(db), productRepo),
		Contacts:   controllers.NewContactController(repositories.NewContactRepository(db)),
		Jobs:       controllers.NewJobApplicationController(repositories.NewJobApplicationRepository(db)),
		Sitemap:    controllers.NewSitemapController(services.NewSitemapBuilder(videoRepo, cfg.Site.URL, cfg.Site.Name)),
		Socket:     websocket.NewHandler(hub, jwtManager),
		Health:     controllers.NewHealthController(client, rdb, version),
	}
	if blobs.Backend() == "local" {
		handlers.UploadsDir = cfg.Storage.LocalDir
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewValidator()

	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Run(ctx, time.Minute)
	go blacklist.CleanupBlacklist(ctx, 10*time.Minute)

	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit("550M"))
	e.Use(middleware.CORS(cfg.CORS))
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: cfg.CORS.AllowedOrigins,
		AllowInlineJS:  !cfg.IsProduction(),
		HSTS:           cfg.IsProduction(),
	}))
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.RequestTimeout(cfg.Server.RequestLimit, "/api/v1/videos/upload", "/ws", "/api/v1/ws"))
	if cfg.IsProduction() {
		e.Use(httpsRedirect())
	}

	routes.SetupRoutes(e, handlers)

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Server.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("mongo disconnect failed")
	}
}

// pushNotifier returns nil when Firebase is disabled or unusable; push
// delivery is optional.
func pushNotifier(ctx context.Context, cfg *config.AppConfig, tokens services.TokenSource) *services.PushNotifier {
	app, err := config.InitFirebase(ctx, cfg.Firebase)
	if err != nil {
		logger.Warn().Err(err).Msg("firebase unavailable, push notifications disabled")
		return nil
	}
	if app == nil {
		return nil
	}
	var client *messaging.Client
	if client, err = app.Messaging(ctx); err != nil {
		logger.Warn().Err(err).Msg("firebase messaging unavailable, push notifications disabled")
		return nil
	}
	return services.NewPushNotifier(client, tokens)
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
