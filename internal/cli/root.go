// Package cli is the command surface of the client: every command wires the
// same core (session, remote services, local store) and talks to the remote
// library API on behalf of the stored session.
package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/app"
	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/pkg/logger"
)

func NewRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "libradesk",
		Short:         "library management client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(cfg),
		newRegisterCmd(cfg, false),
		newRegisterCmd(cfg, true),
		newLogoutCmd(cfg),
		newWhoamiCmd(cfg),
		newBooksCmd(cfg),
		newLoansCmd(cfg),
		newPeopleCmd(cfg),
		newSummaryCmd(cfg),
		newScanCmd(cfg),
		newLookupCmd(cfg),
		newServeCmd(cfg),
	)
	return root
}

func Execute(cfg config.Config) {
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withCore builds the full client core for one command invocation and
// tears it down afterwards.
func withCore(cfg config.Config, fn func(ctx context.Context, core *app.Core) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log := logger.NewLogger(cfg.Log, "cli")
		defer log.Sync() //nolint:errcheck

		ctx := cmd.Context()
		core, err := app.NewCore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer core.Close() //nolint:errcheck

		if err := fn(ctx, core); err != nil {
			log.Debug("command failed", zap.Error(err))
			return err
		}
		return nil
	}
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
