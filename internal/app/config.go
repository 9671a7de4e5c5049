package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cybersentry/sentry/internal/config"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the sentry configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example config file",
		Long: `Write the built-in defaults to a config file.

The format follows the extension: .yaml/.yml writes YAML, anything else
TOML. An existing file is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = config.ExpandPath(args[0])
			}
			if err := config.WriteExample(path, config.GetDefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "stream.address                   %s\n", cfg.Stream.Address)
			fmt.Fprintf(w, "stream.max_reconnect_attempts    %d\n", cfg.Stream.MaxReconnectAttempts)
			fmt.Fprintf(w, "stream.reconnect_backoff         %s\n", cfg.Stream.ReconnectBackoff.Duration)
			fmt.Fprintf(w, "stream.handshake_timeout         %s\n", cfg.Stream.HandshakeTimeout.Duration)
			fmt.Fprintf(w, "stream.reset_attempts_on_connect %t\n", cfg.Stream.ResetAttemptsOnConnect)
			fmt.Fprintf(w, "feed.listen                      %s\n", cfg.Feed.Listen)
			fmt.Fprintf(w, "feed.interface                   %s\n", cfg.Feed.Interface)
			fmt.Fprintf(w, "feed.watched_network             %s\n", cfg.Feed.WatchedNetwork)
			fmt.Fprintf(w, "feed.blocklist                   %s\n", cfg.Feed.Blocklist)
			fmt.Fprintf(w, "feed.interval                    %s\n", cfg.Feed.Interval.Duration)
			fmt.Fprintf(w, "monitor.tick                     %s\n", cfg.Monitor.Tick.Duration)
			fmt.Fprintf(w, "monitor.banner_timeout           %s\n", cfg.Monitor.BannerTimeout.Duration)
			fmt.Fprintf(w, "log.level                        %s\n", cfg.Log.Level)
			fmt.Fprintf(w, "log.file                         %s\n", cfg.Log.File)
			fmt.Fprintf(w, "log.no_color                     %t\n", cfg.Log.NoColor)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
