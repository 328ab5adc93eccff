package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger 可探活的依赖（数据库、Redis）
type Pinger interface {
	Ping(ctx context.Context) error
}

// OnlineCounter 在线连接统计
type OnlineCounter interface {
	OnlineCount(ctx context.Context) int
}

// HealthHandler 健康检查
type HealthHandler struct {
	db     Pinger
	cache  Pinger // 可为 nil
	online OnlineCounter
}

// NewHealthHandler 创建 HealthHandler；未启用 Redis 时 cache 传 nil
func NewHealthHandler(db, cache Pinger, online OnlineCounter) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, online: online}
}

// Health 数据库不可用时返回 503，Redis 仅报告状态
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "database": "up", "redis": "disabled"}

	if err := h.db.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "down"
	}
	if h.cache != nil {
		body["redis"] = "up"
		if err := h.cache.Ping(ctx); err != nil {
			body["redis"] = "down"
		}
	}
	if h.online != nil {
		body["websocket_clients"] = h.online.OnlineCount(ctx)
	}

	c.JSON(status, body)
}
