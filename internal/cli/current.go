package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newCurrentCmd(load configLoader) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "current",
		Short: "输出当前站点",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}

			app, err := NewApp(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, "/", nil)
			if err != nil {
				return err
			}
			req.Host = host

			current, err := app.Resolver.CurrentSite(req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "domain=%s name=%s\n", current.DomainName(), current.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "未安装站点存储时使用的 Host")
	return cmd
}
