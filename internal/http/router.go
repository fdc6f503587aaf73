package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"travel-match/internal/metrics"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	matchH *MatchHandler,
	traitH *TagTraitHandler,
	tokens AccessTokenParser,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, metricas, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), metricsMiddleware(), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	match := r.Group("/match")
	match.POST("/profile", matchH.ComputeProfile)
	match.POST("/score", matchH.Score)
	match.POST("/batch", matchH.ScoreBatch)

	me := r.Group("/travelers/me", JWTAuthMiddleware(tokens))
	me.GET("/matches", matchH.TravelerMatches)
	me.GET("/recommendations", matchH.Recommendations)
	me.PUT("/preferences", matchH.SavePreferences)

	r.GET("/items/:id/profile", matchH.ItemProfile)
	r.POST("/items/:id/profile/refresh", matchH.RefreshItemProfile)

	r.GET("/tag-traits", traitH.List)
	r.PUT("/tag-traits/:id", traitH.Save)
	r.POST("/tag-traits/invalidate", matchH.InvalidateTraits)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware registra la latencia por ruta (patron, no path crudo).
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
