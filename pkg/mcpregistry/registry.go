package mcpregistry

import "github.com/mark3labs/mcp-go/server"

// Factory builds a tool bound to a dependency of type D, e.g. the service
// the tool delegates to.
type Factory[D any] func(D) server.ServerTool

// Registry holds tool factories for one server. Tool files register
// themselves from init().
type Registry[D any] struct {
	factories []Factory[D]
}

// Register adds a tool factory to the registry
func (r *Registry[D]) Register(factory Factory[D]) {
	r.factories = append(r.factories, factory)
}

// Build returns every registered tool bound to dep, in registration order.
func (r *Registry[D]) Build(dep D) []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(r.factories))
	for _, factory := range r.factories {
		tools = append(tools, factory(dep))
	}
	return tools
}

// Len returns the number of registered factories.
func (r *Registry[D]) Len() int {
	return len(r.factories)
}
