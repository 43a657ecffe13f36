package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/copywatch/cmd/copywatch/opts"
	"github.com/walteh/copywatch/pkg/log"
	"github.com/walteh/copywatch/pkg/state"
	"gitlab.com/tozd/go/errors"
)

// NewCleanCmd creates a new clean command
func NewCleanCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Forget every transferred file",
		Long: `Clean removes the transfer record so the next watch copies the whole
source tree again. Files already in TARGET_DIR are left alone and will be
overwritten by the next copy of the same name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ledger := state.Load(ctx, opts.Config.RecordFile)
			forgotten := ledger.Len()

			if err := ledger.Reset(ctx); err != nil {
				return errors.Errorf("cleaning transfer record: %w", err)
			}
			log.FromContext(ctx).Trace(fmt.Sprintf("removed %s", opts.Config.RecordFile))

			pterm.Success.WithWriter(cmd.OutOrStdout()).Println(
				fmt.Sprintf("Forgot %d transferred file(s) from %s", forgotten, opts.Config.RecordFile))
			return nil
		},
	}

	return cmd
}
