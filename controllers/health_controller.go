package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type HealthController struct {
	mongo   *mongo.Client
	redis   *redis.Client
	version string
}

// NewHealthController reports on the given backends. rdb may be nil when
// Redis is not configured.
func NewHealthController(client *mongo.Client, rdb *redis.Client, version string) *HealthController {
	return &HealthController{mongo: client, redis: rdb, version: version}
}

func (hc *HealthController) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "API is live",
		"version": hc.version,
	})
}

// Health pings every backend. Mongo is required; Redis only degrades.
func (hc *HealthController) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "healthy", "database": "connected", "cache": "disabled"}

	if err := hc.mongo.Ping(ctx, readpref.Primary()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
	}
	if hc.redis != nil {
		body["cache"] = "connected"
		if err := hc.redis.Ping(ctx).Err(); err != nil {
			body["cache"] = "unreachable"
			if status == http.StatusOK {
				body["status"] = "degraded"
			}
		}
	}
	return c.JSON(status, body)
}
