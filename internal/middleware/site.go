package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"sites/internal/site"
)

// ContextKey echo.Context 中当前站点的键
const ContextKey = "site"

// CurrentSite 解析当前站点并写入 context
func CurrentSite(resolver *site.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current, err := resolver.CurrentSite(c.Request())
			if err != nil {
				// 管理 API 不依赖当前站点，避免配置错误时无法修复
				if isAdminPath(c.Request().URL.Path) {
					slog.Warn("解析当前站点失败", "host", c.Request().Host, "error", err)
					return next(c)
				}
				return c.JSON(StatusFor(err), map[string]string{
					"error":   "无法解析当前站点",
					"message": err.Error(),
				})
			}

			c.Set(ContextKey, current)
			return next(c)
		}
	}
}

// FromContext 读取当前站点
func FromContext(c echo.Context) (site.Current, bool) {
	current, ok := c.Get(ContextKey).(site.Current)
	return current, ok
}

// StatusFor 将站点错误映射为 HTTP 状态码
func StatusFor(err error) int {
	switch {
	case errors.Is(err, site.ErrSiteNotFound):
		return http.StatusNotFound
	case errors.Is(err, site.ErrInvalidSite):
		return http.StatusBadRequest
	case errors.Is(err, site.ErrRequestSiteReadOnly):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func isAdminPath(p string) bool {
	return strings.HasPrefix(p, "/_api")
}
