package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/semistrict/iterm2focus/pkg/config"
	"github.com/semistrict/iterm2focus/pkg/focus"
	"github.com/semistrict/iterm2focus/pkg/iterm2"
	"github.com/semistrict/iterm2focus/pkg/mcpcommon"
	"github.com/semistrict/iterm2focus/servers/iterm2/pkg/iterm2mcp"
)

func main() {
	var help bool
	flag.BoolVar(&help, "h", false, "Show available tools and their arguments")
	flag.Parse()

	if help {
		fmt.Println("iterm2-focus-mcp - MCP server for focusing iTerm2 sessions")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  iterm2-focus-mcp       Start the MCP server (communicates via stdio)")
		fmt.Println("  iterm2-focus-mcp -h    Show this help message")
		fmt.Println()
		fmt.Println("Available tools:")
		fmt.Println()
		mcpcommon.PrintTools(os.Stdout, iterm2mcp.Tools(nil))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	// stdout carries the MCP protocol
	cfg.SetupLogging(os.Stderr)

	connector := iterm2.NewScriptConnector(cfg.Osascript, cfg.AppName)
	svc := focus.NewService(connector, focus.WithProgress(mcpcommon.NotifyProgress))

	if err := iterm2mcp.Run(svc); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
