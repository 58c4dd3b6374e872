package site

import (
	"context"
	"fmt"

	"sites/internal/config"
)

// Manager 站点管理器，按配置的 SITE_ID 解析当前站点并缓存
type Manager struct {
	store  Store
	cache  *Cache
	siteID *int64
}

// NewManager 创建站点管理器，siteID 为 nil 表示未配置
func NewManager(store Store, cache *Cache, siteID *int64) *Manager {
	return &Manager{
		store:  store,
		cache:  cache,
		siteID: siteID,
	}
}

// GetCurrent 返回 SITE_ID 对应的站点，首次读取后缓存
func (m *Manager) GetCurrent(ctx context.Context) (*Site, error) {
	if m.siteID == nil {
		return nil, fmt.Errorf("%w: 使用站点功能需要设置 SITE_ID，请先在数据库中创建站点并配置 site_id", config.ErrImproperlyConfigured)
	}
	sid := *m.siteID

	if s, ok := m.cache.Get(sid); ok {
		return s, nil
	}

	s, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	m.cache.Set(s)
	return s, nil
}

// ClearCache 清空站点缓存
func (m *Manager) ClearCache() {
	m.cache.Clear()
}

// Get 根据 ID 获取站点，不经过缓存
func (m *Manager) Get(ctx context.Context, id int64) (*Site, error) {
	return m.store.Get(ctx, id)
}

// List 列出所有站点
func (m *Manager) List(ctx context.Context) ([]*Site, error) {
	return m.store.List(ctx)
}

// Count 返回站点数量
func (m *Manager) Count(ctx context.Context) (int, error) {
	sites, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(sites), nil
}

// Save 校验后保存站点
func (m *Manager) Save(ctx context.Context, s *Site) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return m.store.Save(ctx, s)
}

// Delete 删除站点
func (m *Manager) Delete(ctx context.Context, s *Site) error {
	return m.store.Delete(ctx, s)
}

// SiteID 返回配置的 SITE_ID
func (m *Manager) SiteID() (int64, bool) {
	if m.siteID == nil {
		return 0, false
	}
	return *m.siteID, true
}
