package cmd

import (
	"context"
	"fmt"

	"bmapp/server"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建目录表、集合与索引",
	Long:  `连接 CATALOG_DRIVER 指定的存储，创建音频目录与用户所需的表、集合和索引后退出。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		stores, err := server.OpenStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer stores.Close(ctx)

		if err := stores.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", cfg.CatalogDriver, err)
		}
		fmt.Printf("%s 存储迁移完成\n", cfg.CatalogDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
