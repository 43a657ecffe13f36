package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/copywatch/cmd/copywatch/opts"
	"github.com/walteh/copywatch/pkg/scan"
	"github.com/walteh/copywatch/pkg/state"
	"github.com/walteh/copywatch/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(opts *opts.RootOpts) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which source files have been transferred",
		Long: `Status compares the source tree with the transfer record.
It will:
1. Load the transfer record
2. Walk every file under SOURCE_DIR
3. Mark each file transferred, pending or ignored
4. Flag transferred names no longer present in TARGET_DIR as missing
5. Report overall progress`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := opts.Config
			out := cmd.OutOrStdout()

			ledger := state.Load(ctx, cfg.RecordFile)
			target := status.NewManager(cfg.TargetDir)
			ignore, err := scan.NewMatcher(cfg.IgnorePatterns)
			if err != nil {
				return errors.Errorf("building ignore matcher: %w", err)
			}

			summary := pterm.TableData{
				{"Source", cfg.SourceDir},
				{"Target", target.Dir()},
				{"Record", ledger.Path()},
				{"Recorded names", strconv.Itoa(ledger.Len())},
			}
			if err := pterm.DefaultTable.WithData(summary).WithWriter(out).Render(); err != nil {
				return errors.Errorf("rendering summary: %w", err)
			}

			var total, transferred, missing int
			for path, err := range scan.Walk(ctx, cfg.SourceDir) {
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), status.FormatError(err))
					continue
				}

				rel, err := filepath.Rel(cfg.SourceDir, path)
				if err != nil {
					rel = path
				}
				rel = filepath.ToSlash(rel)

				st := status.StatusPending
				switch {
				case ignore.Match(rel):
					st = status.StatusIgnored
				case ledger.Has(filepath.Base(path)):
					st = status.StatusTransferred
					exists, err := target.FileExists(ctx, filepath.Base(path))
					if err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), status.FormatError(err))
					} else if !exists {
						st = status.StatusMissing
						missing++
					}
				}

				// a missing name was transferred once and is never copied again
				if st != status.StatusIgnored {
					total++
					if st == status.StatusTransferred || st == status.StatusMissing {
						transferred++
					}
				}
				if pendingOnly && st != status.StatusPending {
					continue
				}
				fmt.Fprintln(out, status.FormatFileOperation(rel, st))
			}

			fmt.Fprintln(out, status.FormatProgress(transferred, total))
			if missing > 0 {
				fmt.Fprintln(out, status.FormatMissing(missing, target.Dir()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "only list files not yet transferred")

	return cmd
}
