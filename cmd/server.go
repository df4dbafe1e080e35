package cmd

import (
	"bmapp/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动音频目录服务器",
	Long:  `启动音频目录的HTTP服务器，提供检索、分页、上传与收藏API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
