package cmd

import (
	"fmt"
	"os"

	"bmapp/config"
	"bmapp/logger"
	"bmapp/server"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bmapp",
	Short: "bmapp serves the searchable audio catalog API.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		err := logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LoggerLevel()),
			OutputPath: cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "file logging disabled:", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	// Without a subcommand the API server is started.
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
