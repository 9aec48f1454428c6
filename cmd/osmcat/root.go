package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/osmcat/cmd/osmcat/commands"
	"github.com/walteh/osmcat/cmd/osmcat/opts"
	"github.com/walteh/osmcat/pkg/config"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debugMode  bool
)

// newRootCmd wires the command tree. Config loading and log setup happen
// in PersistentPreRunE so they observe the parsed flag values.
func newRootCmd() *cobra.Command {
	ropts := &opts.RootOpts{Config: config.Default()}

	cmd := &cobra.Command{
		Use:   "osmcat",
		Short: "A tool for concatenating and normalizing OpenStreetMap data files",
		Long: `osmcat concatenates one or more OSM data files into a single output file.
Objects can be filtered by entity type and selected metadata attributes
(version, changeset, timestamp, uid, user) can be cleaned while copying.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			// Load optional defaults file
			cfg, err := config.Load(cmd.Context(), configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			ropts.Config = cfg
			return nil
		},
	}

	addRootFlags(cmd)

	cmd.AddCommand(
		commands.NewCatCmd(ropts),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "defaults file path (.osmcat.hcl or .osmcat.yaml)")
	cmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
