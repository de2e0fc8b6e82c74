package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ExchangeDebugger dumps raw LLM requests and responses to debug files.
// It centralizes directory creation, file naming, and safe writing so
// provider clients stay clean.
type ExchangeDebugger struct {
	file    *os.File
	enabled bool
}

// NewExchangeDebugger creates a debugger for one provider. When a session
// directory is present in the context the dump nests under it.
func NewExchangeDebugger(ctx context.Context, provider string, enabled bool) *ExchangeDebugger {
	if !enabled {
		return &ExchangeDebugger{enabled: false}
	}

	debugDir := filepath.Join("debug", "exchanges", provider)

	if val := ctx.Value(DebugDirContextKey); val != nil {
		if dirStr, ok := val.(string); ok && dirStr != "" {
			debugDir = filepath.Join("debug", "exchanges", dirStr, provider)
		}
	}

	if err := os.MkdirAll(debugDir, 0755); err != nil {
		slog.Error("Failed to create debug directory", "dir", debugDir, "error", err)
		return &ExchangeDebugger{enabled: false}
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(debugDir, fmt.Sprintf("%s.log", timestamp))

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("Failed to open debug file", "file", filename, "error", err)
		return &ExchangeDebugger{enabled: false}
	}

	slog.Debug("Debug mode ON", "provider", provider, "file", filename)
	return &ExchangeDebugger{
		file:    f,
		enabled: true,
	}
}

// Write appends raw data plus a trailing newline.
func (d *ExchangeDebugger) Write(data []byte) {
	if !d.enabled || d.file == nil {
		return
	}
	if _, err := d.file.Write(data); err != nil {
		slog.Warn("Failed to write to debug file", "error", err)
	}
	d.file.WriteString("\n")
}

// WriteString appends a string plus a trailing newline.
func (d *ExchangeDebugger) WriteString(s string) {
	if !d.enabled || d.file == nil {
		return
	}
	if _, err := d.file.WriteString(s); err != nil {
		slog.Warn("Failed to write to debug file", "error", err)
	}
	d.file.WriteString("\n")
}

// Close closes the debug file handle.
func (d *ExchangeDebugger) Close() {
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
}
