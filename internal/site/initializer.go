package site

import (
	"context"
	"fmt"
	"log/slog"
)

// Initializer 迁移后创建默认站点
type Initializer struct {
	store Store
	cache *Cache
}

// NewInitializer 创建站点初始化器
func NewInitializer(store Store, cache *Cache) *Initializer {
	return &Initializer{
		store: store,
		cache: cache,
	}
}

// Connect 注册到迁移后回调
func (i *Initializer) Connect(sg *Signals) {
	sg.ConnectPostMigrate(i.CreateDefaultSite)
}

// CreateDefaultSite 仅在站点表刚被创建时插入 example.com，随后清空缓存
func (i *Initializer) CreateDefaultSite(ctx context.Context, event MigrateEvent) error {
	defer i.cache.Clear()

	if !event.Created(TableName) || !event.AllowMigrate {
		return nil
	}

	// 默认配置 SITE_ID = 1，序列可能被复用，因此显式指定主键
	slog.Debug("创建默认站点", "domain", DefaultSiteDomain, "provider", event.Provider)
	s := &Site{ID: DefaultSiteID, Domain: DefaultSiteDomain, Name: DefaultSiteName}
	if err := i.store.Save(ctx, s); err != nil {
		return fmt.Errorf("创建默认站点失败: %w", err)
	}

	slog.Debug("重置站点序列", "provider", event.Provider)
	if err := i.store.ResetSequence(ctx); err != nil {
		return err
	}
	return nil
}
