package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"

	"sites/internal/config"
)

// 支持的存储类型
const (
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
	ProviderMySQL    = "mysql"
	ProviderFile     = "file"
)

// Open 根据配置创建 bun 连接，file 类型不使用数据库
func Open(cfg config.DatabaseConfig, logLevel string) (*bun.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: 未配置数据库连接地址", config.ErrImproperlyConfigured)
	}

	var (
		db  *bun.DB
		dsn = cfg.URL
	)

	switch cfg.Provider {
	case ProviderSQLite:
		if dsn != ":memory:" {
			if !filepath.IsAbs(dsn) {
				cwd, _ := os.Getwd()
				dsn = filepath.Join(cwd, dsn)
			}
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("创建数据库目录失败: %w", err)
			}
		}
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())

	case ProviderPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		configurePool(sqlDB, cfg)
		db = bun.NewDB(sqlDB, pgdialect.New())

	case ProviderMySQL:
		sqlDB, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, err
		}
		configurePool(sqlDB, cfg)
		db = bun.NewDB(sqlDB, mysqldialect.New())

	default:
		return nil, fmt.Errorf("%w: 不支持的数据库类型 %q", config.ErrImproperlyConfigured, cfg.Provider)
	}

	if logLevel == "debug" {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

func configurePool(sqlDB *sql.DB, cfg config.DatabaseConfig) {
	numCPU := runtime.NumCPU()

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = numCPU * 4
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = numCPU * 2
	}
	sqlDB.SetMaxIdleConns(maxIdle)

	lifetime := time.Duration(cfg.ConnMaxLifetime) * time.Second
	if lifetime <= 0 {
		lifetime = 10 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(lifetime)
}
