package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/copywatch/cmd/copywatch/commands"
	"github.com/walteh/copywatch/cmd/copywatch/opts"
	"github.com/walteh/copywatch/pkg/config"
	"github.com/walteh/copywatch/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// rootFlags holds the persistent flags shared by all commands
type rootFlags struct {
	configFile string
	debug      bool
}

// newRootCmd builds the command tree. Running the root command without a
// subcommand starts watching.
func newRootCmd(environ map[string]string) (*cobra.Command, *opts.RootOpts) {
	flags := &rootFlags{}
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "copywatch",
		Short: "Copy every new file from one directory tree into a flat target directory",
		Long: `copywatch watches SOURCE_DIR, including subdirectories created later, and
copies each new file once into TARGET_DIR under its base name. The names
already copied are kept in RECORD_FILE so restarts never copy a name twice.`,
		Version:       version(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return newRootOpts(cmd, flags, environ, o)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunWatch(cmd, o)
		},
	}

	addRootFlags(rootCmd, flags)

	rootCmd.AddCommand(
		commands.NewWatchCmd(o),
		commands.NewStatusCmd(o),
		commands.NewCleanCmd(o),
	)

	return rootCmd, o
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (.json, .yaml or .hcl)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
}

// newRootOpts loads the configuration and the loggers into o
func newRootOpts(cmd *cobra.Command, flags *rootFlags, environ map[string]string, o *opts.RootOpts) error {
	level := zerolog.InfoLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}
	setupLogging(cmd, level)

	cfg, err := config.Load(cmd.Context(), flags.configFile, environ)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	if !flags.debug {
		level = cfg.LogLevel
		setupLogging(cmd, level)
	}

	o.Config = cfg
	o.Logger = log.New(cfg.LogFile, level)
	cmd.SetContext(log.NewContext(cmd.Context(), o.Logger))
	return nil
}

// setupLogging puts a zerolog logger at level into the command context
func setupLogging(cmd *cobra.Command, level zerolog.Level) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))
}
