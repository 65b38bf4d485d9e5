package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/hubcache"
	"github.com/unkn0wn-root/hubcache/hub"
	zaplog "github.com/unkn0wn-root/hubcache/log/zap"
)

func newPublishCmd(a *app) *cobra.Command {
	var user, language, device int64
	cmd := &cobra.Command{
		Use:     "publish <entity> <insert|update|delete> <json>",
		Short:   "Run the cache consumers for an entity change",
		Example: `  hubcachectl publish sensor update '{"id":5,"deviceId":9}'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			et, err := hubcache.ParseEventType(args[1])
			if err != nil {
				return err
			}
			e, err := hub.Decode(args[0], []byte(args[2]))
			if err != nil {
				return err
			}
			policy, err := a.cfg.MissingActorPolicy()
			if err != nil {
				return err
			}

			var actor *hubcache.Actor
			f := cmd.Flags()
			if f.Changed("user") || f.Changed("language") || f.Changed("device") {
				actor = &hubcache.Actor{UserID: user, LanguageID: language, DeviceID: device}
			}

			s, err := openStore(a.cfg, cat.keys, a.log)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			d := hubcache.NewDispatcher(s.Manager, hubcache.DispatcherOptions{
				MissingActor: policy,
				Logger:       zaplog.New(a.log),
			})
			cat.wire(d, cat.reg)

			ev := hubcache.NewEvent(et, e, actor)
			if !d.Registered(ev.EntityName) {
				return fmt.Errorf("no %s consumers for %q", a.appName, ev.EntityName)
			}
			res := d.Publish(cmd.Context(), ev)
			a.log.Info("published",
				zap.String("entity", ev.EntityName),
				zap.Stringer("event", ev.Type),
				zap.Int("failed", len(res.Failed)),
				zap.Bool("actor_missing", res.ActorMissing))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s #%d: %d failed", ev.Type, ev.EntityName, e.EntityID(), len(res.Failed))
			if res.ActorMissing {
				fmt.Fprint(out, " (no actor)")
			}
			fmt.Fprintln(out)
			return res.Err()
		},
	}
	cmd.Flags().Int64Var(&user, "user", 0, "acting user id")
	cmd.Flags().Int64Var(&language, "language", 0, "acting user's language id")
	cmd.Flags().Int64Var(&device, "device", 0, "acting device id")
	return cmd
}
