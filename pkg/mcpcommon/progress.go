package mcpcommon

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NotifyProgress sends a progress notification for the tool call in ctx. It
// does nothing unless the client asked for progress with a progress token.
func NotifyProgress(ctx context.Context, step int, totalSteps int, message string) {
	s := server.ServerFromContext(ctx)
	req := callToolRequestFromContext(ctx)
	if s == nil || req == nil || req.Params.Meta == nil || req.Params.Meta.ProgressToken == nil {
		slog.DebugContext(ctx, "no progress token")
		return
	}
	err := s.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
		"progress":      step,
		"total":         totalSteps,
		"message":       message,
		"progressToken": req.Params.Meta.ProgressToken,
	})

	if err != nil {
		slog.ErrorContext(ctx, "error sending progress", "err", err)
		return
	}

	slog.DebugContext(ctx, "sent progress", "step", step)
}

type ctxKey string

var callToolRequestContextKey = ctxKey("callToolRequest")

func callToolRequestFromContext(ctx context.Context) *mcp.CallToolRequest {
	req, _ := ctx.Value(callToolRequestContextKey).(*mcp.CallToolRequest)
	return req
}

func withCallToolRequest(ctx context.Context, ctr *mcp.CallToolRequest) context.Context {
	return context.WithValue(ctx, callToolRequestContextKey, ctr)
}
