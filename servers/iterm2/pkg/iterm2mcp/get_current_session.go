package iterm2mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/semistrict/iterm2focus/pkg/focus"
	"github.com/semistrict/iterm2focus/pkg/mcpcommon"
)

func init() {
	registry.Register(func(svc *focus.Service) server.ServerTool {
		return mcpcommon.ReflectTool(func() *GetCurrentSessionTool {
			return &GetCurrentSessionTool{iterm2Tool: iterm2Tool{svc: svc}}
		})
	})
}

type GetCurrentSessionTool struct {
	_ mcpcommon.ToolInfo `name:"get_current_session" title:"Get Current iTerm2 Session" description:"Get information about the currently focused iTerm2 session" destructive:"false" readonly:"true"`
	iterm2Tool
}

type currentSessionResult struct {
	Result *focus.SessionInfo `json:"result"`
}

func (t *GetCurrentSessionTool) Handle(ctx context.Context) (interface{}, error) {
	return currentSessionResult{Result: t.svc.GetCurrentSession(ctx)}, nil
}
