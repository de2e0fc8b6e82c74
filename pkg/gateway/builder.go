package gateway

import (
	"context"
	"fmt"

	"sleuth/pkg/api"
	"sleuth/pkg/monitor"
)

// GatewayBuilder provides a fluent interface for constructing and starting a
// GatewayManager with all its dependencies. Channels and the investigator
// are pre-built and injected as instances; the builder assembles and starts
// them.
type GatewayBuilder struct {
	gw            *GatewayManager
	monitor       monitor.Monitor
	channels      []api.Channel
	channelLoader func(*GatewayManager)
	investigator  api.Investigator
}

// NewGatewayBuilder allocates a fresh builder with an internal manager.
func NewGatewayBuilder() *GatewayBuilder {
	return &GatewayBuilder{
		gw: NewGatewayManager(),
	}
}

// WithMonitor injects a monitoring implementation. It is started
// automatically during Build.
func (b *GatewayBuilder) WithMonitor(m monitor.Monitor) *GatewayBuilder {
	b.monitor = m
	return b
}

// WithChannel adds pre-built channel instances to the gateway.
func (b *GatewayBuilder) WithChannel(channels ...api.Channel) *GatewayBuilder {
	b.channels = append(b.channels, channels...)
	return b
}

// WithChannelLoader installs a callback that registers channels dynamically
// from configuration. It runs after explicitly added channels, before start.
func (b *GatewayBuilder) WithChannelLoader(loader func(*GatewayManager)) *GatewayBuilder {
	b.channelLoader = loader
	return b
}

// WithInvestigator installs the component that turns incoming messages into
// reports. The gateway is injected as its responder during Build.
func (b *GatewayBuilder) WithInvestigator(inv api.Investigator) *GatewayBuilder {
	b.investigator = inv
	return b
}

// Build finalizes the configuration, registers all channels, wires the
// investigator, and starts everything. Returns the operational manager or an
// error if any stage fails.
func (b *GatewayBuilder) Build() (*GatewayManager, error) {
	if b.monitor != nil {
		b.gw.SetMonitor(b.monitor)
		if err := b.monitor.Start(); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
	}

	for _, c := range b.channels {
		b.gw.Register(c)
	}
	if b.channelLoader != nil {
		b.channelLoader(b.gw)
	}

	if b.investigator != nil {
		b.investigator.SetResponder(b.gw)
		b.gw.SetMessageHandler(func(msg *UnifiedMessage) {
			b.investigator.HandleMessage(context.Background(), msg)
		})
	}

	if err := b.gw.StartAll(); err != nil {
		return nil, fmt.Errorf("failed to start channels: %w", err)
	}

	return b.gw, nil
}
