package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sleuth/pkg/channels"
	"sleuth/pkg/config"
	"sleuth/pkg/gateway"
	"sleuth/pkg/monitor"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway with the configured channels (web, telegram)",
	Long: `Starts the long-running gateway. Every channel configured in
config.json is loaded; incoming messages become investigations and replies
flow back through the originating channel. Channels are restarted when
config.json changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}

		buildGateway := func(cfg *config.Config) (*gateway.GatewayManager, error) {
			return gateway.NewGatewayBuilder().
				WithMonitor(monitor.NewCLIMonitor()).
				WithChannelLoader(func(g *gateway.GatewayManager) {
					channels.LoadFromConfig(g, cfg.Channels, app.Sessions, app.System)
				}).
				WithInvestigator(app.Orch).
				Build()
		}

		gw, err := buildGateway(app.Config)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		reloadCh := config.WatchConfig(ctx, "config.json")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case <-sigChan:
				slog.Info("Received shutdown signal, stopping services")
				gw.StopAll()
				return nil

			case _, ok := <-reloadCh:
				if !ok {
					continue
				}
				slog.Info("Restarting channels after config change")
				gw.StopAll()

				cfg, _, err := config.Load()
				if err != nil {
					slog.Error("Reload failed, keeping channels stopped", "error", err)
					continue
				}
				app.Config.Channels = cfg.Channels

				gw, err = buildGateway(cfg)
				if err != nil {
					slog.Error("Failed to rebuild gateway", "error", err)
					continue
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
