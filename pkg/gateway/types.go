package gateway

import (
	"sleuth/pkg/api"
)

// Re-export api types via aliases so channel and front-end code can depend
// on a single package.
type Channel = api.Channel
type SignalingChannel = api.SignalingChannel
type MessageResponder = api.MessageResponder
type ChannelContext = api.ChannelContext
type UnifiedMessage = api.UnifiedMessage
type SessionContext = api.SessionContext
type MessageHandler = api.MessageHandler
