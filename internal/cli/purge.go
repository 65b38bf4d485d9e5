package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "purge <prefix> [params...]",
		Short:   "Remove every key under a prefix from the configured store",
		Example: `  hubcachectl purge 'Hub.device.byuser.{0}.' 12`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			params, err := parseArgs(args[1:])
			if err != nil {
				return err
			}
			s, err := openStore(a.cfg, cat.keys, a.log)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			n, err := s.RemoveByPrefix(cmd.Context(), args[0], params...)
			if err != nil {
				a.log.Error("purge failed", zap.String("prefix", args[0]), zap.Int("removed", n), zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", n)
			return nil
		},
	}
}
