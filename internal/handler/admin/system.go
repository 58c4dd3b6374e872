package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ClearCache 清空当前站点缓存
func (h *Handler) ClearCache(c echo.Context) error {
	if h.manager != nil {
		h.manager.ClearCache()
		slog.Info("站点缓存已清空")
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "缓存已清空",
		Data: map[string]any{
			"cleared_at": time.Now(),
		},
	})
}

// Health 健康检查
func (h *Handler) Health(c echo.Context) error {
	data := map[string]any{
		"status":    "healthy",
		"installed": h.resolver.Installed(),
		"timestamp": time.Now(),
	}
	if h.manager != nil {
		n, err := h.manager.Count(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Message: "站点存储不可用",
				Data:    map[string]any{"status": "unhealthy", "error": err.Error()},
			})
		}
		data["sites_count"] = n
		if id, ok := h.manager.SiteID(); ok {
			data["site_id"] = id
		}
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}
