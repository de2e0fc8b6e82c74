package main

import (
	_ "sleuth/pkg/channels/autoload" // Register channel factories
	"sleuth/pkg/cli"
	_ "sleuth/pkg/llm/autoload" // Register LLM providers
	"sleuth/pkg/monitor"
)

func main() {
	monitor.PrintBanner()
	cli.Execute()
}
