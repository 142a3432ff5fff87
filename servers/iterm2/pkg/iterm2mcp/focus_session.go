package iterm2mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/semistrict/iterm2focus/pkg/focus"
	"github.com/semistrict/iterm2focus/pkg/mcpcommon"
)

func init() {
	registry.Register(func(svc *focus.Service) server.ServerTool {
		return mcpcommon.ReflectTool(func() *FocusSessionTool {
			return &FocusSessionTool{iterm2Tool: iterm2Tool{svc: svc}}
		})
	})
}

type FocusSessionTool struct {
	_ mcpcommon.ToolInfo `name:"focus_session" title:"Focus iTerm2 Session" description:"Focus a specific iTerm2 session by ID, bringing its window and tab to the front" destructive:"false"`
	iterm2Tool
	SessionID string `json:"session_id" mcp:"required" description:"Session ID exactly as returned by list_sessions"`
}

// Handle reports every failure inside the FocusResult, so it never returns
// an error.
func (t *FocusSessionTool) Handle(ctx context.Context) (interface{}, error) {
	return t.svc.FocusSession(ctx, t.SessionID), nil
}
