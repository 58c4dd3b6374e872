package admin

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 注册管理路由
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)

	siteGroup := g.Group("/sites")
	siteGroup.GET("/current", h.GetCurrentSite)
	siteGroup.POST("/cache/clear", h.ClearCache)

	// 站点管理，仅在安装了站点存储时可用
	if h.manager == nil {
		return
	}
	siteGroup.GET("", h.ListSites)
	siteGroup.POST("", h.CreateSite)
	siteGroup.GET("/:id", h.GetSite)
	siteGroup.PUT("/:id", h.UpdateSite)
	siteGroup.DELETE("/:id", h.DeleteSite)
}
