package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/labinv/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "labinv",
	Short: "Laboratory chemical inventory preparation",
	Long:  "Normalizes the laboratory workbook, loads it into a database, and backfills missing chemical identity and safety data from a curated knowledge base.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		// Built-in help and completion commands need no settings.
		if cmd.Parent() != cmd.Root() || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return cfg.Validate(cmd.Name())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
