// Package cli holds the termsheet command line: the interactive UI and the
// headless eval, export and snapshots commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"termsheet/internal/config"
)

// Version is filled when building with make, but not when installing via
// "go install".
var Version string

// NewRootCmd builds the termsheet command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "termsheet [flags] [file]",
		Short: "A terminal spreadsheet.",
		Long: `A terminal spreadsheet with typed cells and formulas.
Without a subcommand the interactive editor opens, loading file if given.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if GetFlag(cmd, "version") {
				fmt.Fprintln(cmd.OutOrStdout(), "termsheet", version())
				return nil
			}
			return runUI(cmd, args)
		},
	}
	root.Flags().Bool("version", false, "Report version of this executable")
	root.PersistentFlags().String("config", "", "configuration file (default "+config.DefaultPath+" if present)")
	root.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")

	root.AddCommand(newEvalCmd(), newExportCmd(), newSnapshotsCmd())
	return root
}

// Execute runs the command tree against os.Args. This is called by main.main().
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}
	return "(unknown version)"
}

// loadConfig reads --config and sets the log level from it, --verbose
// taking precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(GetString(cmd, "config"))
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if GetFlag(cmd, "verbose") {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	return cfg, nil
}

// GetFlag gets an expected boolean flag, or panics if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		panic(err)
	}
	return r
}

// GetString gets an expected string flag, or panics if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		panic(err)
	}
	return r
}
