// Package transform holds the named value transforms the server exposes for
// the board's map operation. Transforms are registered by name so the web
// layer can route /map/{player}/{name} without knowing the functions.
package transform

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/inercaso/memory-scramble/board"
)

// Func rewrites one card value. It runs without the board lock held and may
// block. It is an alias of the board's transform type so registered
// transforms pass straight into Board.Map.
type Func = board.TransformFunc

// Registry holds named transforms indexed by name.
type Registry struct {
	transforms map[string]Func
	order      []string // registration order for deterministic Names()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]Func)}
}

// Register adds a transform under name. The registered func is wrapped so a
// transform can never produce a value the board would reject: empty or
// whitespace-containing results become errors instead.
func (r *Registry) Register(name string, f Func) {
	if _, exists := r.transforms[name]; !exists {
		r.order = append(r.order, name)
	}
	r.transforms[name] = func(ctx context.Context, value string) (string, error) {
		out, err := f(ctx, value)
		if err != nil {
			return "", err
		}
		if out == "" || strings.ContainsFunc(out, unicode.IsSpace) {
			return "", fmt.Errorf("transform %s produced invalid value %q", name, out)
		}
		return out, nil
	}
}

// Get returns the transform registered under name.
func (r *Registry) Get(name string) (Func, bool) {
	f, ok := r.transforms[name]
	return f, ok
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Defaults returns a registry with the stock transforms.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register("lower", func(_ context.Context, v string) (string, error) {
		return strings.ToLower(v), nil
	})
	r.Register("upper", func(_ context.Context, v string) (string, error) {
		return strings.ToUpper(v), nil
	})
	r.Register("reverse", func(_ context.Context, v string) (string, error) {
		runes := []rune(v)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	})
	r.Register("double", func(_ context.Context, v string) (string, error) {
		return v + v, nil
	})
	return r
}
