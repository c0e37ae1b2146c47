package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"chat-pipeline/internal/cache"
)

// HealthHandler reports readiness of the store and the cache.
type HealthHandler struct {
	db    *sqlx.DB
	redis *cache.RedisCache
}

// NewHealthHandler builds a HealthHandler.
func NewHealthHandler(db *sqlx.DB, redis *cache.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"db": "ok", "redis": "ok"}

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		checks["db"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, checks)
}
