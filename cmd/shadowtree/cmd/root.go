// Package cmd implements the shadowtree CLI commands.
//
// The root command resolves shadow.yaml and sets up logging before
// dispatching to a subcommand (build, stress, serve, version).
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/cmd/shadowtree/internal/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	dir       string
	verbose   bool
	logFormat string
	noColor   bool

	cfg    *config.Resolved
	logger zerolog.Logger
}

// NewRootCommand returns the shadowtree command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "shadowtree",
		Short: "Build, commit and inspect concurrent shadow trees",
		Long: `shadowtree drives the shadow tree commit protocol from the command line.

It builds trees from YAML descriptions, commits and mounts them, stress-tests
concurrent state updates and serves a live tree over HTTP for inspection.

Settings are read from shadow.yaml in the project directory when present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.dir, "dir", "", "project directory (default: nearest directory with shadow.yaml or go.mod)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output and stack traces")
	flags.StringVar(&a.logFormat, "log-format", "console", "log format: console or json")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newBuildCommand(a),
		newStressCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.logFormat, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger

	dir := a.dir
	if dir == "" {
		if dir, err = config.FindProjectRoot(); err != nil {
			return err
		}
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger.Debug().
		Str("dir", cfg.Root).
		Str("surface", cfg.SurfaceName).
		Int32("surface_id", cfg.SurfaceID).
		Str("protocol", cfg.ProtocolVersion).
		Msg("configuration resolved")
	return nil
}
