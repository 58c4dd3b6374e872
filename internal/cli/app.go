package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"sites/internal/apps"
	"sites/internal/config"
	"sites/internal/database"
	"sites/internal/migrate"
	"sites/internal/site"
)

// App 组装后的运行时依赖
type App struct {
	Config   *config.Config
	Registry *apps.Registry
	Signals  *site.Signals
	Cache    *site.Cache
	Manager  *site.Manager // 未安装站点存储时为 nil
	Resolver *site.Resolver

	db        *bun.DB
	fileStore *site.FileStore
}

// NewApp 解析站点模型配置并初始化存储
func NewApp(cfg *config.Config) (*App, error) {
	registry := apps.NewRegistry(cfg.InstalledApps)
	registry.Register(site.AppLabel, site.ModelName)

	model, err := registry.SiteModel(cfg.SiteModel)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Registry: registry,
		Signals:  site.NewSignals(),
		Cache:    site.NewCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second),
	}
	a.Cache.Connect(a.Signals)

	if !registry.Installed(model.AppLabel) {
		slog.Info("站点存储未安装，使用请求 Host 作为当前站点", "site_model", model.String())
		a.Resolver = site.NewResolver(nil, false)
		return a, nil
	}
	if _, err := registry.SiteApp(cfg.SiteModel); err != nil {
		a.Cache.Close()
		return nil, err
	}

	var store site.Store
	switch cfg.Database.Provider {
	case database.ProviderFile:
		a.fileStore = site.NewFileStore(cfg.Database.URL, a.Signals)
		store = a.fileStore
	default:
		db, err := database.Open(cfg.Database, cfg.Server.LogLevel)
		if err != nil {
			a.Cache.Close()
			return nil, err
		}
		a.db = db
		store = site.NewBunStore(db, a.Signals)
	}

	site.NewInitializer(store, a.Cache).Connect(a.Signals)
	a.Manager = site.NewManager(store, a.Cache, cfg.SiteID)
	a.Resolver = site.NewResolver(a.Manager, true)
	return a, nil
}

// Migrate 执行迁移，新建站点表时创建默认站点
func (a *App) Migrate(ctx context.Context) (site.MigrateEvent, error) {
	switch {
	case a.Manager == nil:
		return site.MigrateEvent{}, nil
	case a.fileStore != nil:
		return migrate.MigrateFile(ctx, a.fileStore, a.Signals)
	default:
		return migrate.Migrate(ctx, a.db, a.Config.Database.Provider, a.Signals, a.Config.Server.LogLevel == "debug")
	}
}

// Rollback 回滚迁移并清空缓存
func (a *App) Rollback(ctx context.Context) error {
	var err error
	switch {
	case a.Manager == nil:
		return nil
	case a.fileStore != nil:
		err = migrate.RollbackFile(ctx, a.fileStore)
	default:
		err = migrate.Rollback(ctx, a.db, a.Config.Database.Provider, a.Config.Server.LogLevel == "debug")
	}
	a.Cache.Clear()
	return err
}

// Close 释放资源
func (a *App) Close() error {
	a.Cache.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("关闭数据库失败: %w", err)
		}
	}
	return nil
}
