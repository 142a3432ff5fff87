package iterm2mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/semistrict/iterm2focus/pkg/focus"
	"github.com/semistrict/iterm2focus/pkg/mcpregistry"
	"github.com/semistrict/iterm2focus/pkg/version"
)

var registry mcpregistry.Registry[*focus.Service]

// Tools returns the iTerm2 tools bound to svc.
func Tools(svc *focus.Service) []server.ServerTool {
	return registry.Build(svc)
}

func NewServer(svc *focus.Service) *server.MCPServer {
	s := server.NewMCPServer("iterm2-focus", version.Version, server.WithToolCapabilities(true))
	s.AddTools(Tools(svc)...)
	return s
}

func Run(svc *focus.Service) error {
	s := NewServer(svc)
	slog.Info("starting")
	return server.ServeStdio(s)
}
