package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"

	"sites/internal/database"
	"sites/internal/site"
)

//go:embed migrations
var migrationsFS embed.FS

// createdTables 每个迁移版本新建的表
var createdTables = map[int64][]string{
	1: {site.TableName},
}

// Operation 迁移方向
type Operation int

const (
	Up Operation = iota
	Down
)

// Runner 执行嵌入的 SQL 迁移
type Runner struct {
	provider string
	goose    *goose.Provider
}

// NewRunner 创建迁移执行器
func NewRunner(db *bun.DB, provider string, verbose bool) (*Runner, error) {
	dialect, err := gooseDialect(provider)
	if err != nil {
		return nil, err
	}

	subFS, err := fs.Sub(migrationsFS, "migrations/"+provider)
	if err != nil {
		return nil, fmt.Errorf("读取迁移文件失败: %w", err)
	}

	p, err := goose.NewProvider(dialect, db.DB, subFS, goose.WithVerbose(verbose))
	if err != nil {
		return nil, fmt.Errorf("创建迁移器失败: %w", err)
	}

	return &Runner{provider: provider, goose: p}, nil
}

// Run 执行迁移，返回本次迁移的事件
func (r *Runner) Run(ctx context.Context, op Operation) (site.MigrateEvent, error) {
	event := site.MigrateEvent{Provider: r.provider, AllowMigrate: true}

	switch op {
	case Up:
		results, err := r.goose.Up(ctx)
		if err != nil {
			return event, fmt.Errorf("迁移失败: %w", err)
		}
		for _, res := range results {
			slog.Info("已迁移", "path", res.Source.Path, "duration", res.Duration)
			event.CreatedTables = append(event.CreatedTables, createdTables[res.Source.Version]...)
		}
	case Down:
		results, err := r.goose.DownTo(ctx, 0)
		if err != nil {
			return event, fmt.Errorf("回滚失败: %w", err)
		}
		for _, res := range results {
			slog.Info("已回滚", "path", res.Source.Path, "duration", res.Duration)
		}
	}

	return event, nil
}

// Migrate 执行向上迁移并触发迁移后回调
func Migrate(ctx context.Context, db *bun.DB, provider string, signals *site.Signals, verbose bool) (site.MigrateEvent, error) {
	r, err := NewRunner(db, provider, verbose)
	if err != nil {
		return site.MigrateEvent{}, err
	}
	event, err := r.Run(ctx, Up)
	if err != nil {
		return event, err
	}
	if err := signals.SendPostMigrate(ctx, event); err != nil {
		return event, err
	}
	return event, nil
}

// MigrateFile file 存储没有表结构，站点文件新建即视为建表
func MigrateFile(ctx context.Context, store *site.FileStore, signals *site.Signals) (site.MigrateEvent, error) {
	event := site.MigrateEvent{Provider: database.ProviderFile, AllowMigrate: true}

	created, err := store.Init(ctx)
	if err != nil {
		return event, err
	}
	if created {
		slog.Info("已创建站点文件", "path", store.GetPath())
		event.CreatedTables = []string{site.TableName}
	}
	if err := signals.SendPostMigrate(ctx, event); err != nil {
		return event, err
	}
	return event, nil
}

// Rollback 回滚全部迁移
func Rollback(ctx context.Context, db *bun.DB, provider string, verbose bool) error {
	r, err := NewRunner(db, provider, verbose)
	if err != nil {
		return err
	}
	_, err = r.Run(ctx, Down)
	return err
}

// RollbackFile 删除站点文件，下次迁移重新创建默认站点
func RollbackFile(ctx context.Context, store *site.FileStore) error {
	if err := store.Drop(ctx); err != nil {
		return err
	}
	slog.Info("已删除站点文件", "path", store.GetPath())
	return nil
}

func gooseDialect(provider string) (goose.Dialect, error) {
	switch provider {
	case database.ProviderPostgres:
		return goose.DialectPostgres, nil
	case database.ProviderMySQL:
		return goose.DialectMySQL, nil
	case database.ProviderSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("不支持的迁移类型: %s", provider)
	}
}
