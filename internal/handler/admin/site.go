package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"sites/internal/middleware"
	"sites/internal/site"
)

// ListSites 列出所有站点
func (h *Handler) ListSites(c echo.Context) error {
	sites, err := h.manager.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Message: fmt.Sprintf("获取站点列表失败: %v", err),
		})
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data: map[string]any{
			"sites": sites,
			"total": len(sites),
		},
	})
}

// SiteRequest 创建/更新站点请求
type SiteRequest struct {
	ID     int64  `json:"id"`
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// CreateSite 创建站点
func (h *Handler) CreateSite(c echo.Context) error {
	var req SiteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "请求参数错误",
		})
	}

	ctx := c.Request().Context()

	// 指定 ID 时不允许覆盖已有站点，更新走 PUT
	if req.ID != 0 {
		_, err := h.manager.Get(ctx, req.ID)
		if err == nil {
			return c.JSON(http.StatusConflict, Response{
				Success: false,
				Message: fmt.Sprintf("站点 ID %d 已存在", req.ID),
			})
		}
		if !errors.Is(err, site.ErrSiteNotFound) {
			return c.JSON(middleware.StatusFor(err), Response{
				Success: false,
				Message: fmt.Sprintf("创建站点失败: %v", err),
			})
		}
	}

	s := &site.Site{ID: req.ID, Domain: req.Domain, Name: req.Name}
	if err := h.manager.Save(ctx, s); err != nil {
		return c.JSON(middleware.StatusFor(err), Response{
			Success: false,
			Message: fmt.Sprintf("创建站点失败: %v", err),
		})
	}

	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: "站点创建成功",
		Data:    s,
	})
}

// GetSite 获取单个站点
func (h *Handler) GetSite(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}

	s, err := h.manager.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(middleware.StatusFor(err), Response{
			Success: false,
			Message: fmt.Sprintf("获取站点失败: %v", err),
		})
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    s,
	})
}

// UpdateSite 更新站点，空字段保持不变
func (h *Handler) UpdateSite(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	ctx := c.Request().Context()

	s, err := h.manager.Get(ctx, id)
	if err != nil {
		return c.JSON(middleware.StatusFor(err), Response{
			Success: false,
			Message: fmt.Sprintf("获取站点失败: %v", err),
		})
	}

	var req SiteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "请求参数错误",
		})
	}

	// 不允许修改 ID
	s.Update(req.Domain, req.Name)
	if err := h.manager.Save(ctx, s); err != nil {
		return c.JSON(middleware.StatusFor(err), Response{
			Success: false,
			Message: fmt.Sprintf("更新站点失败: %v", err),
		})
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "站点更新成功",
		Data:    s,
	})
}

// DeleteSite 删除站点
func (h *Handler) DeleteSite(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}

	if err := h.manager.Delete(c.Request().Context(), &site.Site{ID: id}); err != nil {
		return c.JSON(middleware.StatusFor(err), Response{
			Success: false,
			Message: fmt.Sprintf("删除站点失败: %v", err),
		})
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "站点删除成功",
	})
}

// GetCurrentSite 返回当前请求对应的站点
func (h *Handler) GetCurrentSite(c echo.Context) error {
	current, err := h.resolver.CurrentSite(c.Request())
	if err != nil {
		return c.JSON(middleware.StatusFor(err), Response{
			Success: false,
			Message: fmt.Sprintf("获取当前站点失败: %v", err),
		})
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    CurrentSiteView(current),
	})
}

// CurrentSiteView 当前站点的响应结构
func CurrentSiteView(current site.Current) map[string]any {
	data := map[string]any{
		"domain":     current.DomainName(),
		"name":       current.DisplayName(),
		"persistent": false,
	}
	if s, ok := current.(*site.Site); ok {
		data["id"] = s.ID
		data["persistent"] = true
	}
	return data
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: "无效的站点 ID",
	})
}
