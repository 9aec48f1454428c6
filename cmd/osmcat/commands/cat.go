package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/osmcat/cmd/osmcat/opts"
	"github.com/walteh/osmcat/pkg/log"
	"github.com/walteh/osmcat/pkg/operation"
	"github.com/walteh/osmcat/pkg/osm"
	"gitlab.com/tozd/go/errors"
)

// NewCatCmd creates the cat command
func NewCatCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		output      string
		objectTypes []string
		cleanAttrs  []string
		overwrite   bool
		fsync       bool
		verbose     bool
		noProgress  bool
	)

	cmd := &cobra.Command{
		Use:   "cat [flags] INPUT...",
		Short: "Concatenate OSM files, optionally cleaning metadata attributes",
		Long: `Cat copies all objects from the given input files into one output file.
It will:
1. Validate options and expand input patterns, before touching any file
2. Open each input in command-line order and stream its objects through
3. Reset any attributes given with --clean on every object
4. Close the output once, after the last input`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "cat").Logger().WithContext(ctx)
			cfg := rootOpts.Config

			// Configuration errors are rejected here, before any I/O
			types, err := osm.ParseEntityTypes(objectTypes)
			if err != nil {
				return err
			}
			clean, err := osm.ParseCleanAttrs(cleanAttrs)
			if err != nil {
				return err
			}

			// Flags win over the defaults file
			if !cmd.Flags().Changed("overwrite") {
				overwrite = cfg.Overwrite
			}
			if !cmd.Flags().Changed("fsync") {
				fsync = cfg.Fsync
			}
			if !cmd.Flags().Changed("verbose") {
				verbose = cfg.Verbose
			}
			progress := cfg.Progress
			if noProgress {
				progress = false
			}

			logger := log.New(os.Stderr, *zerolog.Ctx(ctx), verbose, progress)

			op, err := operation.New(operation.Options{
				Inputs:    args,
				Output:    output,
				Types:     types,
				Clean:     clean,
				Overwrite: overwrite,
				Fsync:     fsync,
				Generator: cfg.Generator,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			logger.Verbose("Started osmcat cat")
			op.ShowArguments()

			if err := op.Execute(log.NewContext(ctx, logger)); err != nil {
				return errors.Errorf("concatenating files: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (required)")
	cmd.Flags().StringSliceVarP(&objectTypes, "object-type", "t", nil, "read only objects of given type (node, way, relation, changeset)")
	cmd.Flags().StringSliceVarP(&cleanAttrs, "clean", "c", nil, "clean attribute (version, changeset, timestamp, uid, user)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "allow an existing output file to be overwritten")
	cmd.Flags().BoolVar(&fsync, "fsync", false, "call fsync after writing the output file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose run commentary")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
