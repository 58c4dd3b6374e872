package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config 服务配置
type Config struct {
	InstalledApps []string       `toml:"installed_apps"`
	SiteModel     string         `toml:"site_model"`        // 形如 app_label.model_name
	SiteID        *int64         `toml:"site_id,omitempty"` // 未设置时为 nil
	Server        ServerConfig   `toml:"server"`
	Database      DatabaseConfig `toml:"database"`
	Cache         CacheConfig    `toml:"cache"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port      string `toml:"port"`
	LogLevel  string `toml:"log_level"`
	AdminUser string `toml:"admin_user"`
	AdminPass string `toml:"admin_pass"` // 为空时管理 API 不做认证
}

// DatabaseConfig 站点存储配置
type DatabaseConfig struct {
	Provider        string `toml:"provider"` // sqlite / postgres / mysql / file
	URL             string `toml:"url"`      // file 模式下为数据目录
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime_seconds"`
}

// CacheConfig 当前站点缓存配置
type CacheConfig struct {
	TTLSeconds int `toml:"ttl_seconds"` // 0 表示常驻进程缓存
}

// Default 返回默认配置
func Default() *Config {
	siteID := int64(1)
	return &Config{
		InstalledApps: []string{"sites"},
		SiteModel:     "sites.Site",
		SiteID:        &siteID,
		Server: ServerConfig{
			Port:      "1323",
			LogLevel:  "info",
			AdminUser: "admin",
		},
		Database: DatabaseConfig{
			Provider: "sqlite",
			URL:      "./data/sites.db",
		},
	}
}

// LoadOrInit 从 TOML 加载配置，如果文件不存在则创建默认配置
func LoadOrInit(path string, envOverride bool) (*Config, bool, error) {
	created := false

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		// 首次启动：先用 ENV 覆盖默认，再写入文件
		applyEnvOverrides(cfg)
		if err := writeToml(path, cfg); err != nil {
			slog.Warn("写入配置文件失败，将仅使用内存配置", "path", path, "error", err)
			return cfg, true, nil
		}
		created = true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, created, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, created, err
	}

	// 存在则用环境变量覆盖配置（不写回文件）
	if envOverride {
		applyEnvOverrides(cfg)
	}

	return cfg, created, nil
}

// Parse 解析 TOML 配置内容
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeToml[T any](path string, cfg T) error {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	// 确保目录存在
	if dir := dirOf(path); dir != "" {
		_ = os.MkdirAll(dir, 0755)
	}
	return os.WriteFile(path, b, 0644)
}

func dirOf(path string) string {
	i := strings.LastIndexAny(path, "/\\")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// applyEnvOverrides 读取环境变量并覆盖配置 不回写文件
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SITES_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SITES_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("SITES_ADMIN_USER"); v != "" {
		cfg.Server.AdminUser = v
	}
	if v := os.Getenv("SITES_ADMIN_PASS"); v != "" {
		cfg.Server.AdminPass = v
	}
	if v := os.Getenv("SITES_SITE_MODEL"); v != "" {
		cfg.SiteModel = v
	}
	if v := os.Getenv("SITES_SITE_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			slog.Warn("忽略无效的 SITES_SITE_ID", "value", v, "error", err)
		} else {
			cfg.SiteID = &id
		}
	}
	if v := os.Getenv("SITES_DATABASE_PROVIDER"); v != "" {
		cfg.Database.Provider = v
	}
	if v := os.Getenv("SITES_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
}
