package app

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cybersentry/sentry/internal/config"
	"github.com/cybersentry/sentry/internal/feed"
	"github.com/cybersentry/sentry/internal/logging"
)

type serveOpts struct {
	listen    string
	blocklist string
	interval  time.Duration
	iface     string
	watched   string
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo alert feed",
		Long: `Run a WebSocket alert feed for the dashboard and the watch command.

Traffic is simulated: random peers talk to hosts in the watched network
and any peer on the blocklist raises a risk 8 alert. Every client gets a
greeting on connect.

Endpoints:
  /ws       alert stream
  /status   server status as JSON

Examples:
  sentry serve
  sentry serve --listen 127.0.0.1:9000 --interval 500ms
  sentry serve --blocklist ./blocklist.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			applyServeFlags(cmd, &cfg.Feed, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log, false)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			srv, err := feed.NewServer(cfg.Feed, logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&opts.listen, "listen", "", "Listen address (default :8000)")
	cmd.Flags().StringVar(&opts.blocklist, "blocklist", "", "Blocklist file, one IP per line")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Time between simulated packets (default 2s)")
	cmd.Flags().StringVar(&opts.iface, "interface", "", "Interface name reported by /status")
	cmd.Flags().StringVar(&opts.watched, "watched-network", "", "CIDR of the monitored device network")
	return cmd
}

// applyServeFlags overrides the [feed] section with flags that were set.
func applyServeFlags(cmd *cobra.Command, f *config.FeedConfig, opts serveOpts) {
	if cmd.Flags().Changed("listen") {
		f.Listen = opts.listen
	}
	if cmd.Flags().Changed("blocklist") {
		f.Blocklist = config.ExpandPath(opts.blocklist)
	}
	if cmd.Flags().Changed("interval") {
		f.Interval = config.Duration{Duration: opts.interval}
	}
	if cmd.Flags().Changed("interface") {
		f.Interface = opts.iface
	}
	if cmd.Flags().Changed("watched-network") {
		f.WatchedNetwork = opts.watched
	}
}
