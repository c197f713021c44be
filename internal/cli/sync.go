package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
)

func (a *App) newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation cycle against the remote server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := a.wire(ctx, nil)
			if err != nil {
				return err
			}
			defer c.close(a.logger)

			result := c.reconciler.Sync(ctx)
			out := cmd.OutOrStdout()

			if a.format == FormatJSON {
				if err := writeJSON(out, dto.ToSyncResponse(result)); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintf(out, "fetched %d, added %d, updated %d, conflicts %d\n",
					result.Fetched, result.Added, result.Updated, len(result.Conflicts))
				printNotices(cmd.ErrOrStderr(), c.hub)
			}

			if result.Err != nil {
				return fmt.Errorf("sync failed: %w", result.Err)
			}

			return nil
		},
	}
}
