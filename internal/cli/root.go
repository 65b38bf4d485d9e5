// Package cli implements hubcachectl: key inspection, prefix purges and
// replaying entity events against a configured store.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/hubcache/config"
)

type app struct {
	configPath string
	appName    string

	cfg    *config.Config
	log    *zap.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdin, os.Stdout, os.Stderr)
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{stdin: in, stdout: out, stderr: errOut}

	cmd := &cobra.Command{
		Use:           "hubcachectl",
		Short:         "Inspect and invalidate hub cache keys",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to hubcache.yaml (default: search /etc/hubcache, $HOME/.hubcache, .)")
	cmd.PersistentFlags().StringVar(&a.appName, "app", "hub", "key catalog: hub or dash")

	cmd.AddCommand(
		newKeyCmd(a),
		newPurgeCmd(a),
		newPublishCmd(a),
	)
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if a.log != nil {
			_ = a.log.Sync()
		}
	}
	return cmd
}

// load reads configuration and builds the logger once per invocation.
func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	l, err := newLogger(cfg.Log, a.stderr)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, l
	return nil
}

func newLogger(c config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch c.Format {
	case "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json", "":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q", c.Format)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}
