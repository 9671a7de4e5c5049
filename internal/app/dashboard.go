package app

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cybersentry/sentry/internal/logging"
	"github.com/cybersentry/sentry/internal/monitor"
	"github.com/cybersentry/sentry/internal/stream"
	"github.com/cybersentry/sentry/internal/tui"
)

type dashboardOpts struct {
	autoConnect bool
	monitor     bool
}

func newDashboardCmd(g *globalFlags) *cobra.Command {
	var opts dashboardOpts

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Run the interactive security dashboard",
		Long: `Run the interactive security dashboard.

Logs are written to the rotating log file (log.file) while the dashboard
owns the terminal.

Keys:
  space   start/stop monitoring     r/o   connect/disconnect the feed
  1-4     switch tab                /     search network activity
  q       quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, g, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.autoConnect, "connect", true, "Connect to the alert feed on start")
	cmd.Flags().BoolVar(&opts.monitor, "monitor", false, "Start monitoring immediately")
	return cmd
}

func runDashboard(cmd *cobra.Command, g *globalFlags, opts dashboardOpts) error {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, true)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	bridge := &tui.Bridge{}

	streamOpts := stream.OptionsFromConfig(cfg.Stream)
	streamOpts.Notifier = bridge
	streamOpts.Logger = logger
	client := stream.New(streamOpts)
	sub := client.AddListener(bridge.Alert)
	defer func() {
		client.RemoveListener(sub)
		client.Disconnect()
	}()

	session := monitor.NewSession(monitor.Options{
		Tick:          cfg.Monitor.Tick.Duration,
		BannerTimeout: cfg.Monitor.BannerTimeout.Duration,
	})
	if opts.monitor {
		session.Start()
	}

	logger.Info("dashboard starting",
		zap.String("version", version),
		zap.String("feed", cfg.Stream.Address),
		zap.Bool("auto_connect", opts.autoConnect))

	return tui.Start(cmd.Context(), tui.Options{
		Version:     version,
		Session:     session,
		Stream:      client,
		Address:     cfg.Stream.Address,
		AutoConnect: opts.autoConnect,
		Bridge:      bridge,
	})
}
