// Package functions holds the registry of the path engine's built-in
// functions. spec.md §4.4 defines exactly two, both zero-arity:
// last() and position(). The registry exists, in the teacher's shape,
// so that the parser resolves function names through one lookup table
// instead of hard-coding the name-to-builtin mapping.
package functions

import "github.com/sandrolain/treepath/pkg/types"

// Registry maps a function name to the types.Builtin it invokes.
type Registry struct {
	builtins map[string]types.Builtin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]types.Builtin)}
}

// DefaultRegistry returns a registry pre-populated with the engine's
// two built-in functions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("last", types.BuiltinLast)
	r.Register("position", types.BuiltinPosition)
	return r
}

// Register adds or replaces a name-to-builtin mapping.
func (r *Registry) Register(name string, b types.Builtin) {
	r.builtins[name] = b
}

// Lookup retrieves the builtin registered under name.
func (r *Registry) Lookup(name string) (types.Builtin, bool) {
	b, ok := r.builtins[name]
	return b, ok
}

// List returns all registered function names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	return names
}
