package tool

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// Handler runs one tool. Domain failures are returned as a failed
// ToolResult; a non-nil error means the tool itself broke.
type Handler func(ctx context.Context, args map[string]any) (contractx.ToolResult, error)

type entry struct {
	schema  Schema
	handler Handler
}

// Registry maps tool names to their schema and handler. It is immutable in
// practice once startup registration is done.
type Registry struct {
	mu      sync.RWMutex
	entries map[Name]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Name]entry)}
}

func (r *Registry) Register(name Name, s Schema, h Handler) error {
	if !name.Valid() {
		return fmt.Errorf("%w: %q is not a known tool", contractx.ErrValidation, name)
	}
	if h == nil {
		return fmt.Errorf("%w: handler for %q is nil", contractx.ErrValidation, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: tool %q already registered", contractx.ErrValidation, name)
	}
	r.entries[name] = entry{schema: s, handler: h}
	return nil
}

func (r *Registry) Resolve(name string) (Schema, Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[Name(strings.TrimSpace(name))]
	if !ok {
		return Schema{}, nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, name)
	}
	return e.schema, e.handler, nil
}

// Declarations lists registered tools in catalog order.
func (r *Registry) Declarations() []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Declaration, 0, len(r.entries))
	for _, name := range allNames {
		if e, ok := r.entries[name]; ok {
			out = append(out, Declaration{Name: name, Schema: e.schema})
		}
	}
	return out
}

func (r *Registry) ToolInfos() []*schema.ToolInfo {
	decls := r.Declarations()
	out := make([]*schema.ToolInfo, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.ToolInfo())
	}
	return out
}

// Validate fails when the declared tool surface and the registry disagree
// on names or parameters.
func (r *Registry) Validate(declared []Declaration) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Name]bool, len(declared))
	for _, d := range declared {
		e, ok := r.entries[d.Name]
		if !ok {
			return fmt.Errorf("%w: declared tool %q has no handler", contractx.ErrValidation, d.Name)
		}
		if err := sameParams(d.Schema, e.schema); err != nil {
			return fmt.Errorf("%w: tool %q: %v", contractx.ErrValidation, d.Name, err)
		}
		seen[d.Name] = true
	}
	for name := range r.entries {
		if !seen[name] {
			return fmt.Errorf("%w: registered tool %q is not declared", contractx.ErrValidation, name)
		}
	}
	return nil
}

func sameParams(a, b Schema) error {
	if len(a.Params) != len(b.Params) {
		return fmt.Errorf("parameter count %d != %d", len(a.Params), len(b.Params))
	}
	for key, pa := range a.Params {
		pb, ok := b.Params[key]
		if !ok {
			return fmt.Errorf("parameter %q missing", key)
		}
		if pa.Type != pb.Type || pa.Required != pb.Required || !slices.Equal(pa.Enum, pb.Enum) {
			return fmt.Errorf("parameter %q differs", key)
		}
	}
	return nil
}
