package site

import (
	"context"
	"fmt"
	"net/http"
)

// RequestSite 根据请求 Host 构造的临时站点，不落库
type RequestSite struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

var _ Current = (*RequestSite)(nil)

// NewRequestSite 从请求构造，域名和名称都取自 Host（保留端口）
func NewRequestSite(r *http.Request) *RequestSite {
	host := r.Host
	if host == "" && r.URL != nil {
		host = r.URL.Host
	}
	return &RequestSite{Domain: host, Name: host}
}

// DomainName 返回域名
func (s *RequestSite) DomainName() string { return s.Domain }

// DisplayName 返回显示名称
func (s *RequestSite) DisplayName() string { return s.Name }

func (s *RequestSite) String() string { return s.Domain }

// Save 不支持
func (s *RequestSite) Save(context.Context) error {
	return fmt.Errorf("保存 %s 失败: %w", s.Domain, ErrRequestSiteReadOnly)
}

// Delete 不支持
func (s *RequestSite) Delete(context.Context) error {
	return fmt.Errorf("删除 %s 失败: %w", s.Domain, ErrRequestSiteReadOnly)
}
