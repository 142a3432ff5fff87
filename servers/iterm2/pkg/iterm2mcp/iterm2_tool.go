package iterm2mcp

import "github.com/semistrict/iterm2focus/pkg/focus"

// iterm2Tool carries the service every tool delegates to. It is embedded
// unexported so it never shows up in a tool's input schema.
type iterm2Tool struct {
	svc *focus.Service
}
