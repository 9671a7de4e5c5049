package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cybersentry/sentry/internal/config"
	"github.com/cybersentry/sentry/internal/logging"
	"github.com/cybersentry/sentry/internal/output"
	"github.com/cybersentry/sentry/internal/stream"
	"github.com/cybersentry/sentry/pkg/model"
)

type watchOpts struct {
	json    bool
	summary bool
	min     int
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print alerts from the feed as they arrive",
		Long: `Connect to the alert feed and print each alert on its own line.

Connection notifications go to stderr. The client reconnects on its own
after a dropped connection and gives up after stream.max_reconnect_attempts
retries. Press Ctrl-C to disconnect.

Examples:
  sentry watch                          # Follow ws://localhost:8000/ws
  sentry watch --addr ws://10.0.0.2:8000/ws
  sentry watch --json | jq .srcIp       # One JSON object per line
  sentry watch --min-risk 7             # Only danger alerts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log, false)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			w := &watcher{
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
				color:  colorEnabled(cmd.OutOrStdout(), g),
				opts:   opts,
			}
			return w.run(cmd.Context(), cfg.Stream, stream.OptionsFromConfig(cfg.Stream), logger)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print alerts as JSON, one object per line")
	cmd.Flags().BoolVar(&opts.summary, "summary", true, "Print alerts grouped by source on exit")
	cmd.Flags().IntVar(&opts.min, "min-risk", 0, "Only print alerts with at least this risk level")
	return cmd
}

// watcher prints the alert stream for the watch command.
type watcher struct {
	out    io.Writer
	errOut io.Writer
	color  bool
	opts   watchOpts

	mu   sync.Mutex
	seen []model.NetworkAlert
}

func (w *watcher) run(ctx context.Context, cfg config.StreamConfig, opts stream.Options, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var client *stream.Client
	var exhausted bool
	opts.Logger = logger
	opts.Notifier = stream.NotifierFunc(func(n model.Notification) {
		w.mu.Lock()
		output.RenderNotification(w.errOut, n, w.color)
		w.mu.Unlock()
		if client.State().Exhausted {
			w.mu.Lock()
			exhausted = true
			w.mu.Unlock()
			cancel()
		}
	})
	client = stream.New(opts)
	sub := client.AddListener(w.print)
	defer client.RemoveListener(sub)

	// a failed first dial is already reported and retried by the client
	if err := client.Connect(ctx, cfg.Address); err != nil {
		logger.Debug("initial connect failed", zap.Error(err))
	}
	<-ctx.Done()
	client.Disconnect()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.opts.summary && !w.opts.json && len(w.seen) > 0 {
		fmt.Fprintln(w.out)
		output.PrintTree(w.out, w.seen, w.color)
	}
	if exhausted {
		return fmt.Errorf("feed %s: %w", client.Address(), stream.ErrRetryExhausted)
	}
	return nil
}

func (w *watcher) print(a model.NetworkAlert) {
	if a.RiskLevel < w.opts.min {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if !a.IsGreeting() {
		w.seen = append(w.seen, a)
	}
	if w.opts.json {
		s, err := output.ToJSON(a, false)
		if err != nil {
			fmt.Fprintf(w.errOut, "error: %v\n", err)
			return
		}
		fmt.Fprintln(w.out, s)
		return
	}
	output.RenderShort(w.out, a, w.color)
}
