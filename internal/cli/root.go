package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sites/internal/config"
	"sites/internal/logging"
)

// Execute 命令行入口
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "sites",
		Short:        "多站点当前站点解析服务",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "配置文件路径")

	load := func() (*config.Config, error) {
		cfg, created, err := config.LoadOrInit(configPath, true)
		if err != nil {
			return nil, err
		}
		logging.SetLevelWithStr(cfg.Server.LogLevel)
		if created {
			slog.Info("已生成默认配置文件", "path", configPath)
		}
		return cfg, nil
	}

	serve := newServeCmd(load)
	cmd.AddCommand(serve, newMigrateCmd(load), newCurrentCmd(load))
	// 不带子命令时启动服务
	cmd.RunE = serve.RunE
	return cmd
}

type configLoader func() (*config.Config, error)
