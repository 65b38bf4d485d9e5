package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/hubcache"
	"github.com/unkn0wn-root/hubcache/codec"
	"github.com/unkn0wn-root/hubcache/dash"
	"github.com/unkn0wn-root/hubcache/hub"
)

// parseArg turns a command-line key argument into the value a caller would pass:
// "null" => nil, "7" => int64, "3,1,2" => []int64, "{...}" => DynamicFilter,
// anything else stays a string.
func parseArg(s string) (any, error) {
	switch {
	case s == "null":
		return nil, nil
	case strings.HasPrefix(s, "{"):
		f, err := codec.JSON[hubcache.DynamicFilter]{}.Decode([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("invalid filter %s: %w", s, err)
		}
		return f, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if strings.Contains(s, ",") {
		if ids, err := parseIDs(s); err == nil {
			return ids, nil
		}
	}
	return s, nil
}

// parseIDs reads a comma-separated id list; a single id is a list of one.
func parseIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id list %q: %w", s, err)
		}
		ids = append(ids, n)
	}
	return ids, nil
}

func parseArgs(ss []string) ([]any, error) {
	out := make([]any, len(ss))
	for i, s := range ss {
		v, err := parseArg(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// catalog is the key registry and key service of one application.
type catalog struct {
	reg  *hubcache.KeyRegistry
	keys *hubcache.KeyService
	wire func(*hubcache.Dispatcher, *hubcache.KeyRegistry)
}

func (a *app) catalog() (catalog, error) {
	switch a.appName {
	case "hub":
		return catalog{
			reg: hub.NewKeyRegistry(),
			keys: hubcache.NewKeyService(hubcache.KeyOptions{
				DefaultCacheTime:   a.cfg.DefaultCacheTime,
				ShortTermCacheTime: a.cfg.ShortTermCacheTime,
			}),
			wire: hub.Register,
		}, nil
	case "dash":
		return catalog{reg: dash.NewKeyRegistry(), keys: dash.NewKeyService(), wire: dash.Register}, nil
	}
	return catalog{}, fmt.Errorf("unknown app %q (want hub or dash)", a.appName)
}
