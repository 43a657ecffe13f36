package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/walteh/copywatch/cmd/copywatch/opts"
	"github.com/walteh/copywatch/pkg/watch"
)

// NewWatchCmd creates the watch command. The root command runs it when no
// subcommand is given.
func NewWatchCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Copy new files from the source directory until interrupted",
		Long: `Watch copies every file in SOURCE_DIR, and every file created there
afterwards, into TARGET_DIR. It will:
1. Load the transfer record
2. Subscribe to file creation anywhere under SOURCE_DIR
3. Copy the existing backlog
4. Copy each new file as it appears, until SIGINT or SIGTERM`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunWatch(cmd, opts)
		},
	}

	return cmd
}

// RunWatch runs the coordinator until the command context is cancelled or
// the process is signalled
func RunWatch(cmd *cobra.Command, opts *opts.RootOpts) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch.New(opts.Config, opts.Logger).Run(ctx)
}
