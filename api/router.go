package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/imdbapi/api/handler"
	"github.com/use-agent/imdbapi/api/middleware"
	"github.com/use-agent/imdbapi/cache"
	"github.com/use-agent/imdbapi/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger
//	/imdb:   Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring checks always work.
func NewRouter(sc handler.IMDb, stats handler.SessionStats, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())

	r.GET("/health", handler.Health(stats, startTime))

	imdb := r.Group("/imdb")
	if cfg.Auth.Enabled {
		imdb.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	imdb.Use(middleware.RateLimit(cfg.RateLimit))

	imdb.GET("/title/:imdbId", handler.Title(sc, cc))
	imdb.GET("/search", handler.Search(sc, cc))
	imdb.DELETE("/cache/title/:imdbId", handler.InvalidateTitle(cc))

	return r
}
