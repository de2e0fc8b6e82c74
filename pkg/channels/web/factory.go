package web

import (
	"fmt"

	"sleuth/pkg/channels"
	"sleuth/pkg/config"
	"sleuth/pkg/gateway"
	"sleuth/pkg/llm"

	jsoniter "github.com/json-iterator/go"
)

// WebFactory builds Web channels.
type WebFactory struct{}

// Create implements ChannelFactory.
func (f *WebFactory) Create(rawConfig jsoniter.RawMessage, sessions *llm.SessionManager, system *config.SystemConfig) (gateway.Channel, error) {
	pCfg := WebConfig{Port: 8080}

	if err := json.Unmarshal(rawConfig, &pCfg); err != nil {
		return nil, fmt.Errorf("failed to parse web config: %w", err)
	}

	return NewWebChannel(pCfg, sessions), nil
}

func init() {
	channels.RegisterChannel("web", &WebFactory{})
}
