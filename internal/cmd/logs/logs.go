package logscmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	cfgpkg "github.com/wayfarerhq/logpipe/internal/config"
	"github.com/wayfarerhq/logpipe/internal/host"
	"github.com/wayfarerhq/logpipe/internal/persist"
	pebblestore "github.com/wayfarerhq/logpipe/internal/storage/pebble"
	logpkg "github.com/wayfarerhq/logpipe/pkg/log"
)

// NewLogsCommand constructs the `logs` command group: inspect, export and
// clear the durable warn/error buffer on disk.
func NewLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect the durable log buffer",
	}
	cmd.PersistentFlags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	cmd.PersistentFlags().String("store", "client", "Which buffer to open: client|collector")
	cmd.AddCommand(newLogsTailCommand())
	cmd.AddCommand(newLogsExportCommand())
	cmd.AddCommand(newLogsClearCommand())
	return cmd
}

func newLogsTailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent buffered entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			store, db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			level, err := levelFlag(cmd)
			if err != nil {
				return err
			}
			entries := store.LoadAll(level)
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), logpkg.FormatEntry(e))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d entries\n", len(entries))
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum entries to print (0 = all)")
	cmd.Flags().String("level", "", "Only entries at this level: debug|info|warn|error")
	return cmd
}

func newLogsExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export buffered entries as a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			store, db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			level, err := levelFlag(cmd)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), store.ExportText(level))
				return nil
			}
			path, err := store.ExportToFile(out, level)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "exported:", path)
			return nil
		},
	}
	cmd.Flags().String("out", "", "Directory to write the export file into (default: print to stdout)")
	cmd.Flags().String("level", "", "Only entries at this level: debug|info|warn|error")
	return cmd
}

func newLogsClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every buffered entry (requires --confirm)",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				return fmt.Errorf("refusing to clear without --confirm")
			}
			store, db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			n := len(store.LoadAll(nil))
			store.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
			return nil
		},
	}
	cmd.Flags().Bool("confirm", false, "Confirm deletion")
	return cmd
}

// openStore opens the durable buffer selected by the persistent flags.
func openStore(cmd *cobra.Command) (*persist.Store, *pebblestore.DB, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	which, _ := cmd.Flags().GetString("store")
	if dataDir == "" {
		dataDir = cfgpkg.DefaultDataDir()
	}
	var sub string
	switch which {
	case "client", "":
		sub = "store"
	case "collector":
		sub = "collector"
	default:
		return nil, nil, fmt.Errorf("invalid --store %q; use client|collector", which)
	}
	db, err := pebblestore.Open(pebblestore.Options{DataDir: filepath.Join(dataDir, sub)})
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	store := persist.New(persist.Options{
		DB:   db,
		Caps: host.Detect("logpipe", cfgpkg.Version),
	})
	return store, db, nil
}

// levelFlag parses the optional --level flag.
func levelFlag(cmd *cobra.Command) (*logpkg.Level, error) {
	raw, _ := cmd.Flags().GetString("level")
	if raw == "" {
		return nil, nil
	}
	l, err := logpkg.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
