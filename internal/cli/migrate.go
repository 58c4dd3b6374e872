package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移，首次建表时创建默认站点",
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

			if app.Manager == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "站点存储未安装，无需迁移")
				return nil
			}

			if down {
				if err := app.Rollback(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "已回滚全部迁移")
				return nil
			}

			event, err := app.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(event.CreatedTables) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "没有待执行的迁移")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已创建: %v\n", event.CreatedTables)
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "回滚全部迁移")
	return cmd
}
