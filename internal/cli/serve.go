package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sites/internal/server"
)

func newServeCmd(load configLoader) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}

			app, err := NewApp(cfg)
			if err != nil {
				return fmt.Errorf("站点初始化失败: %w", err)
			}
			defer func() { _ = app.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !skipMigrate {
				if _, err := app.Migrate(ctx); err != nil {
					return fmt.Errorf("迁移失败: %w", err)
				}
			}

			srv := server.New(cfg, app.Manager, app.Resolver)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("服务器启动失败: %w", err)
			case <-ctx.Done():
			}

			slog.Info("正在关闭服务器")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "启动时不执行迁移")
	return cmd
}
