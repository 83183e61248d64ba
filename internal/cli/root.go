// Package cli implements the streamnet command-line interface.
//
// This package provides commands for detecting point-to-point connectivity
// over channel networks, computing stream orders, snapping points of
// interest and inspecting input layers. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// Typically called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the streamnet CLI and returns an error if any command fails.
//
// The root command wires all subcommands (network, order, snap, inspect),
// configures logging based on the --verbose flag and executes the command
// tree under ctx so an interrupt cancels running detection work.
func Execute(ctx context.Context) error {
	var verbose bool
	var configPath string

	root := &cobra.Command{
		Use:          "streamnet",
		Short:        "Streamnet detects connectivity networks over channel geometry",
		Long:         `Streamnet snaps points of interest onto channel polylines, traces flow-directed connectivity between them and exports the resulting network with distance, stream order and reachability attributes.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("streamnet %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML file with option defaults (default streamnet.toml if present)")

	root.AddCommand(newNetworkCmd(&configPath))
	root.AddCommand(newOrderCmd(&configPath))
	root.AddCommand(newSnapCmd(&configPath))
	root.AddCommand(newInspectCmd())

	return root.ExecuteContext(ctx)
}
