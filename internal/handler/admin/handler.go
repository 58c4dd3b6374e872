package admin

import (
	"sites/internal/site"
)

// Handler 管理接口处理器
type Handler struct {
	manager  *site.Manager // 未安装站点存储时为 nil
	resolver *site.Resolver
}

// NewHandler 创建管理接口处理器
func NewHandler(m *site.Manager, resolver *site.Resolver) *Handler {
	return &Handler{
		manager:  m,
		resolver: resolver,
	}
}

// Response 通用响应结构
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
