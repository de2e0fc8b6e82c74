package channels

import (
	"log/slog"

	"sleuth/pkg/config"
	"sleuth/pkg/gateway"
	"sleuth/pkg/llm"

	jsoniter "github.com/json-iterator/go"
)

// LoadFromConfig is the central point for dynamic channel initialization. It
// walks the configuration map, resolves factories, and registers the
// resulting channels with the GatewayManager.
func LoadFromConfig(gw *gateway.GatewayManager, configs map[string]jsoniter.RawMessage, sessions *llm.SessionManager, system *config.SystemConfig) {
	for name, rawConfig := range configs {
		factory, ok := GetChannelFactory(name)
		if !ok {
			slog.Warn("Unknown channel type", "name", name)
			continue
		}

		channel, err := factory.Create(rawConfig, sessions, system)
		if err != nil {
			slog.Error("Failed to create channel", "name", name, "error", err)
			continue
		}

		if channel == nil {
			continue
		}

		gw.Register(channel)
		slog.Info("Channel registered", "name", name)
	}
}
