package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/hubcache"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hubcache.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const bigcacheConfig = `
provider: bigcache
bigcache:
  life_window: 1m
  max_entries_in_window: 100
  max_entry_size: 256
log:
  level: debug
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand(strings.NewReader(""), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestKeyCommand(t *testing.T) {
	cfg := writeConfig(t, bigcacheConfig)
	cases := []struct {
		args []string
		want []string
	}{
		{
			[]string{"key", "sensor", "byid", "5"},
			[]string{"key:       App.sensor.byid.5", "prefixes:  App.sensor.byid.5 App.sensor.", "store default"},
		},
		{
			[]string{"key", "Sensor", "byids", "3,1,2", "--short"},
			[]string{"key:       App.sensor.byids.", "cache:     3m0s"},
		},
		{
			[]string{"key", "monitor", "all", "--app", "dash", "--default"},
			[]string{"key:       Dash.monitor.all.", "cache:     1h0m0s"},
		},
		{
			// a lone id is still an id list
			[]string{"key", "sensor", "byids", "7"},
			[]string{"key:       App.sensor.byids." + hubcache.CreateIDsHash([]int64{7}) + "\n"},
		},
		{
			[]string{"key", "sensor", "byids", "3,1,2"},
			[]string{"key:       App.sensor.byids." + hubcache.CreateIDsHash([]int64{1, 2, 3}) + "\n"},
		},
	}
	for _, tc := range cases {
		out, _, err := run(t, append(tc.args, "--config", cfg)...)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		for _, w := range tc.want {
			if !strings.Contains(out, w) {
				t.Fatalf("%v: missing %q in\n%s", tc.args, w, out)
			}
		}
	}
}

func TestKeyCommandErrors(t *testing.T) {
	cfg := writeConfig(t, bigcacheConfig)
	for _, args := range [][]string{
		{"key", "widget", "byid", "1"},
		{"key", "sensor", "bysomething", "1"},
		{"key", "sensor", "byid"},
		{"key", "sensor", "byid", "1", "--app", "portal"},
		{"key", "sensor", "byid", "1", "--short", "--default"},
		{"key", "sensor", "byids", "roof"},
		{"key", "sensor", "byids", "1,x"},
	} {
		if _, _, err := run(t, append(args, "--config", cfg)...); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestStoreCommandsNeedSharedProvider(t *testing.T) {
	cases := []struct {
		name string
		cfg  string
		args []string
	}{
		{"purge bigcache", bigcacheConfig, []string{"purge", "Hub.device.byuser.{0}.", "12"}},
		{"purge ristretto", "provider: ristretto\n", []string{"purge", "Hub.sensor."}},
		{"publish bigcache", bigcacheConfig, []string{"publish", "monitor", "update", `{"id":3,"ownerId":12}`}},
		{"publish ristretto", "provider: ristretto\n", []string{"publish", "sensor", "delete", `{"id":5}`}},
	}
	for _, tc := range cases {
		cfg := writeConfig(t, tc.cfg)
		out, _, err := run(t, append(tc.args, "--config", cfg)...)
		if !errors.Is(err, errNotShared) || !strings.Contains(err.Error(), "provider: redis") {
			t.Fatalf("%s: expected shared store error, got %v", tc.name, err)
		}
		if out != "" {
			t.Fatalf("%s: unexpected output %q", tc.name, out)
		}
	}
}

func TestPublishCommandValidation(t *testing.T) {
	cfg := writeConfig(t, bigcacheConfig)
	for _, args := range [][]string{
		{"publish", "monitor", "upsert", `{}`},
		{"publish", "gadget", "update", `{"id":1}`},
		{"publish", "sensor", "update", `{"id":`},
	} {
		_, _, err := run(t, append(args, "--config", cfg)...)
		if err == nil || errors.Is(err, errNotShared) {
			t.Fatalf("%v: expected validation error, got %v", args, err)
		}
	}
}

// HUBCACHE_TEST_REDIS_ADDR points the store commands at a live server.
func redisConfig(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("HUBCACHE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HUBCACHE_TEST_REDIS_ADDR not set")
	}
	return writeConfig(t, fmt.Sprintf(`
namespace: hubcachectl-test-%d
provider: redis
redis:
  addr: %s
log:
  level: debug
`, time.Now().UnixNano(), addr))
}

func TestPurgeCommand(t *testing.T) {
	cfg := redisConfig(t)
	out, _, err := run(t, "purge", "Hub.device.byuser.{0}.", "12", "--config", cfg)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if strings.TrimSpace(out) != "removed 0" {
		t.Fatalf("out=%q", out)
	}
}

func TestPublishCommand(t *testing.T) {
	cfg := redisConfig(t)

	out, logs, err := run(t, "publish", "monitor", "update", `{"id":3,"ownerId":12}`, "--config", cfg)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(out, "update monitor #3: 0 failed (no actor)") {
		t.Fatalf("out=%q", out)
	}
	if !strings.Contains(logs, "no actor for actor-scoped invalidation") {
		t.Fatalf("missing actor warning not logged:\n%s", logs)
	}

	out, _, err = run(t, "publish", "monitor", "update", `{"id":3}`, "--user", "12", "--config", cfg)
	if err != nil || strings.Contains(out, "no actor") {
		t.Fatalf("with actor: %q %v", out, err)
	}

	if _, _, err := run(t, "publish", "user", "delete", `{"id":1}`, "--app", "dash", "--config", cfg); err == nil {
		t.Fatalf("expected no-consumer error for dash users")
	}
}

func TestParseArg(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"7", "7"},
		{"null", "<nil>"},
		{"temp", "temp"},
		{"3,1,2", "[3 1 2]"},
		{"a,b", "a,b"},
	}
	for _, tc := range cases {
		v, err := parseArg(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got := fmt.Sprint(v); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.in, got, tc.want)
		}
	}
	if _, err := parseArg("{bad"); err == nil {
		t.Fatalf("expected filter error")
	}
}

func TestParseIDs(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"7", "[7]", true},
		{"3, 1,2", "[3 1 2]", true},
		{"", "", false},
		{"1,,2", "", false},
		{"a", "", false},
	}
	for _, tc := range cases {
		ids, err := parseIDs(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("%q: err=%v", tc.in, err)
		}
		if tc.ok && fmt.Sprint(ids) != tc.want {
			t.Fatalf("%q: got %v want %s", tc.in, ids, tc.want)
		}
	}
}
