package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	collectorrun "github.com/wayfarerhq/logpipe/internal/cmd/collector"
	logscmd "github.com/wayfarerhq/logpipe/internal/cmd/logs"
	cfgpkg "github.com/wayfarerhq/logpipe/internal/config"
	pebblestore "github.com/wayfarerhq/logpipe/internal/storage/pebble"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "logpipe",
		Short: "Logpipe CLI",
		Long:  "Logpipe is a client-side log pipeline. This CLI runs the local collector and manages the durable log buffer.",
	}

	// collector
	collectorCmd := &cobra.Command{
		Use:     "collector",
		Short:   "Run the local log collector",
		Aliases: []string{"serve"},
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			configPath, _ := cmd.Flags().GetString("config")
			modeFlag, _ := cmd.Flags().GetString("mode")

			mode := pebblestore.FsyncModeInterval
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			if modeFlag != "" {
				cfg.Mode = modeFlag
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := collectorrun.Run(ctx, collectorrun.Options{
				DataDir:       dataDir,
				Addr:          addr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("collector error: %w", err)
			}
			return nil
		},
	}
	collectorCmd.Flags().String("addr", ":8000", "HTTP listen address")
	collectorCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	collectorCmd.Flags().String("fsync", "interval", "Fsync mode: always|interval|never")
	collectorCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	collectorCmd.Flags().String("config", os.Getenv("LOGPIPE_CONFIG"), "Config file (JSON or YAML)")
	collectorCmd.Flags().String("mode", os.Getenv("LOGPIPE_MODE"), "Execution mode: development|production")
	rootCmd.AddCommand(collectorCmd)

	// logs tail|export|clear
	rootCmd.AddCommand(logscmd.NewLogsCommand())

	// version
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the logpipe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), cfgpkg.Version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
