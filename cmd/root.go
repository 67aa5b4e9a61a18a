package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/booking-sync/internal/config"
)

var (
	cfg     *config.Config
	noop    bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "booking-sync",
	Short: "Sync scheduling webhooks into HubSpot",
	Long:  "Receives booking notifications, reconciles the invitee's contact, ensures an open deal and records the meeting in HubSpot.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if noop {
			cfg.DryRun = true
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if cfg.DryRun {
			zap.L().Warn("dry run: CRM writes are logged, not sent")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noop, "noop", false, "log CRM writes instead of sending them")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
