package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"job-connect-backend/config"
	"job-connect-backend/internal/logging"
	"job-connect-backend/internal/mw"
	"job-connect-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(ctx context.Context, cfg config.ServerConfig, s store.Store, imp Importer, responses *mw.ResponseCache) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logging.GetFromContext(ctx)))

	handler := NewHandler(s, imp)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	caching := responses.Middleware()

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/entities", caching, handler.ListEntityTypes)
		api.GET("/entities/:type", caching, handler.ListEntities)
		api.GET("/entities/:type/:key", caching, handler.GetEntity)

		api.GET("/state-machines/device/:id", caching, handler.GetDeviceStateMachine)
		api.GET("/state-machines/sr/:id", caching, handler.GetSRStateMachine)

		api.GET("/imports/latest", handler.GetLatestImport)
		api.POST("/imports", handler.TriggerImport)
	}

	return r
}
