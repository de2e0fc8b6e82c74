package monitor

import "time"

// MonitorMessage is one record of traffic flowing through the system.
type MonitorMessage struct {
	Timestamp   time.Time
	MessageType string // "USER" or "ASSISTANT"
	ChannelID   string
	Username    string
	Content     string
}

// Monitor observes messages across all channels.
type Monitor interface {
	Start() error
	Stop() error
	OnMessage(msg MonitorMessage)
}
