package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/hubcache"
)

func newKeyCmd(a *app) *cobra.Command {
	var short, def bool
	cmd := &cobra.Command{
		Use:   "key <entity> <byid|byids|all|bydynamicfilter> [args...]",
		Short: "Print the prepared key and its removal prefixes",
		Example: `  hubcachectl key sensor byid 5
  hubcachectl key sensor byids 3,1,2
  hubcachectl key sensor bydynamicfilter 0 '{"page_size":20}'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if short && def {
				return fmt.Errorf("--short and --default are mutually exclusive")
			}
			if err := a.load(); err != nil {
				return err
			}
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			ek, ok := cat.reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown entity %q (known: %s)", args[0], strings.Join(cat.reg.Names(), ", "))
			}
			tmpl, err := template(ek, args[1])
			if err != nil {
				return err
			}
			params, err := parseArgs(args[2:])
			if err != nil {
				return err
			}
			if strings.EqualFold(args[1], "byids") && len(args) > 2 {
				ids, err := parseIDs(args[2])
				if err != nil {
					return err
				}
				params[0] = ids
			}

			var k hubcache.CacheKey
			switch {
			case short:
				k, err = cat.keys.PrepareKeyForShortTermCache(tmpl, params...)
			case def:
				k, err = cat.keys.PrepareKeyForDefaultCache(tmpl, params...)
			default:
				k, err = cat.keys.PrepareKey(tmpl, params...)
			}
			if err != nil {
				return err
			}
			prefixes := make([]string, 0, len(k.Prefixes))
			for _, p := range k.Prefixes {
				pp, err := cat.keys.PreparePrefix(p, params...)
				if err != nil {
					return err
				}
				prefixes = append(prefixes, pp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key:       %s\n", k.Key)
			fmt.Fprintf(out, "prefixes:  %s\n", strings.Join(prefixes, " "))
			if k.CacheTime > 0 {
				fmt.Fprintf(out, "cache:     %s\n", k.CacheTime)
			} else {
				fmt.Fprintln(out, "cache:     store default")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "use the short-term cache time")
	cmd.Flags().BoolVar(&def, "default", false, "use the default cache time")
	return cmd
}

func template(ek hubcache.EntityKeys, kind string) (hubcache.CacheKey, error) {
	switch strings.ToLower(kind) {
	case "byid":
		return ek.ByID, nil
	case "byids":
		return ek.ByIDs, nil
	case "all":
		return ek.All, nil
	case "bydynamicfilter":
		return ek.ByDynamicFilter, nil
	}
	return hubcache.CacheKey{}, fmt.Errorf("unknown key kind %q", kind)
}
