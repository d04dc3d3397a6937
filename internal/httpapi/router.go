package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/render"
)

type RouterConfig struct {
	Log            *logger.Logger
	AllowedOrigins []string

	ReadingHandler *ReadingHandler
	EmailHandler   *EmailHandler
	MediaHandler   *MediaHandler
	HealthHandler  *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	r.StaticFS("/static", http.FS(render.Assets()))
	if cfg.MediaHandler != nil {
		r.GET("/media/cards/:id", cfg.MediaHandler.CardImage)
		r.GET("/media/readings/:id/back", cfg.MediaHandler.BackImage)
	}

	if cfg.ReadingHandler != nil {
		readings := r.Group("/readings")
		readings.GET("/:id", cfg.ReadingHandler.Show)
		readings.POST("/:id", cfg.ReadingHandler.Submit)
		readings.GET("/:id/card-of-day", cfg.ReadingHandler.CardOfDay)
		readings.GET("/:id/random", cfg.ReadingHandler.Random)
	}

	api := r.Group("/api")
	api.Use(CORS(cfg.AllowedOrigins))
	{
		if cfg.EmailHandler != nil {
			api.POST("/reading-email", cfg.EmailHandler.Send)
			api.OPTIONS("/reading-email", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		}
	}

	return r
}
