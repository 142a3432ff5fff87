package iterm2mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/semistrict/iterm2focus/pkg/focus"
	"github.com/semistrict/iterm2focus/pkg/mcpcommon"
)

func init() {
	registry.Register(func(svc *focus.Service) server.ServerTool {
		return mcpcommon.ReflectTool(func() *ListSessionsTool {
			return &ListSessionsTool{iterm2Tool: iterm2Tool{svc: svc}}
		})
	})
}

type ListSessionsTool struct {
	_ mcpcommon.ToolInfo `name:"list_sessions" title:"List iTerm2 Sessions" description:"List all available iTerm2 sessions with their window and tab IDs" destructive:"false" readonly:"true"`
	iterm2Tool
}

// Handle never fails: if iTerm2 can't be reached the list is empty.
func (t *ListSessionsTool) Handle(ctx context.Context) (interface{}, error) {
	return t.svc.ListSessions(ctx), nil
}
