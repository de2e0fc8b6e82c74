// Package tools contains the tool registry and every concrete capability
// the agent can call: the artifact file set, the plan, reflection, GitHub
// retrieval, web search, and stack-trace analysis.
package tools

import (
	"sync"

	"sleuth/pkg/api"
	"sleuth/pkg/llm"
)

// Registry is the default api.ToolRegistry implementation. Registration
// order is preserved so tool schemas reach the model deterministically.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]api.Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]api.Tool),
	}
}

// Register adds or replaces a tool under its name.
func (r *Registry) Register(tool api.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Unregister removes a tool by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (api.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// GetAll returns every tool in registration order.
func (r *Registry) GetAll() []api.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]api.Tool, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.tools[name])
	}
	return all
}

// Subset derives a registry restricted to the named tools. Unknown names are
// skipped silently so sub-agent specs stay forgiving.
func (r *Registry) Subset(names ...string) api.ToolRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub := NewRegistry()
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			sub.Register(t)
		}
	}
	return sub
}

// Schemas produces the provider-neutral declarations for every registered tool.
func (r *Registry) Schemas() []llm.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]llm.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		schemas = append(schemas, llm.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
			Required:    t.RequiredParameters(),
		})
	}
	return schemas
}
