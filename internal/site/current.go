package site

import (
	"net/http"
)

// Resolver 根据请求解析当前站点
type Resolver struct {
	manager   *Manager
	installed bool
}

// NewResolver 创建解析器，installed 表示站点存储是否已安装
func NewResolver(manager *Manager, installed bool) *Resolver {
	return &Resolver{
		manager:   manager,
		installed: installed && manager != nil,
	}
}

// Installed 站点存储是否可用
func (r *Resolver) Installed() bool {
	return r.installed
}

// CurrentSite 已安装站点存储时返回 SITE_ID 对应的站点，否则根据 Host 构造 RequestSite
func (r *Resolver) CurrentSite(req *http.Request) (Current, error) {
	if !r.installed {
		return NewRequestSite(req), nil
	}
	s, err := r.manager.GetCurrent(req.Context())
	if err != nil {
		return nil, err
	}
	return s, nil
}
