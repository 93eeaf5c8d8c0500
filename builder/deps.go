package builder

import (
	"fmt"
	"reflect"

	"omap/rule"
	"omap/tuple"
)

// DepNode declares rules for the pair S, T whose sources may read the
// dependency tuple D.
type DepNode[S, T, D any] struct {
	ctx *Context
}

// Context returns the untyped context behind the node.
func (n *DepNode[S, T, D]) Context() *Context { return n.ctx }

// MapProperty declares a rule whose source does not read the dependencies.
func (n *DepNode[S, T, D]) MapProperty(a Assignment[S, T]) *DepNode[S, T, D] {
	n.ctx.AddAccessor(rule.Property, a.source, a.target)

	return n
}

func (n *DepNode[S, T, D]) MapPropertyWith(a DepAssignment[S, T, D]) *DepNode[S, T, D] {
	n.ctx.AddAccessor(rule.Property, a.source, a.target)

	return n
}

func (n *DepNode[S, T, D]) MapObject(a Nesting[S, T]) *DepNode[S, T, D] {
	n.ctx.AddAccessor(rule.Object, a.source, a.target)

	return n
}

func (n *DepNode[S, T, D]) MapCollection(a Sequence[S, T]) *DepNode[S, T, D] {
	n.ctx.AddAccessor(rule.Collection, a.source, a.target)

	return n
}

func (n *DepNode[S, T, D]) MapFunction(fn func(*S, *T)) *DepNode[S, T, D] {
	n.ctx.AddFunction(fn, nil)

	return n
}

func (n *DepNode[S, T, D]) MapFunctionWith(fn func(*S, *T, D)) *DepNode[S, T, D] {
	n.ctx.AddFunction(fn, reflect.TypeFor[D]())

	return n
}

// withDependencies replaces the pair's dependency names. names[i] names
// types[i]; missing names leave the type unnamed.
func withDependencies[S, T, D any](r *Root[S, T], names []string, types ...reflect.Type) *DepNode[S, T, D] {
	if len(names) > len(types) {
		r.ctx.fail(fmt.Errorf("%d dependency names for %d types", len(names), len(types)))
		names = names[:len(types)]
	}

	deps := make([]rule.Dependency, len(types))
	for i, t := range types {
		deps[i] = rule.Dependency{Type: t}
		if i < len(names) {
			deps[i].Name = names[i]
		}
	}

	r.ctx.SetDependencies(deps...)

	return &DepNode[S, T, D]{ctx: r.ctx}
}

// WithDependencies1 declares the dependency type of the pair and its
// optional name. It replaces whatever was declared before for the pair; rules
// added afterwards capture the new names. Sources of rules added through the
// returned node may read the dependencies as a tuple.Of1.
func WithDependencies1[D1, S, T any](r *Root[S, T], names ...string) *DepNode[S, T, tuple.Of1[D1]] {
	return withDependencies[S, T, tuple.Of1[D1]](r, names, reflect.TypeFor[D1]())
}

// WithDependencies2 is WithDependencies1 for two dependency types.
func WithDependencies2[D1, D2, S, T any](r *Root[S, T], names ...string) *DepNode[S, T, tuple.Of2[D1, D2]] {
	return withDependencies[S, T, tuple.Of2[D1, D2]](r, names, reflect.TypeFor[D1](), reflect.TypeFor[D2]())
}

// WithDependencies3 is WithDependencies1 for three dependency types.
func WithDependencies3[D1, D2, D3, S, T any](r *Root[S, T], names ...string) *DepNode[S, T, tuple.Of3[D1, D2, D3]] {
	return withDependencies[S, T, tuple.Of3[D1, D2, D3]](r, names, reflect.TypeFor[D1](), reflect.TypeFor[D2](), reflect.TypeFor[D3]())
}

// WithDependencies4 is WithDependencies1 for four dependency types.
func WithDependencies4[D1, D2, D3, D4, S, T any](r *Root[S, T], names ...string) *DepNode[S, T, tuple.Of4[D1, D2, D3, D4]] {
	return withDependencies[S, T, tuple.Of4[D1, D2, D3, D4]](r, names, reflect.TypeFor[D1](), reflect.TypeFor[D2](), reflect.TypeFor[D3](), reflect.TypeFor[D4]())
}

// WithDependencies5 is WithDependencies1 for five dependency types.
func WithDependencies5[D1, D2, D3, D4, D5, S, T any](r *Root[S, T], names ...string) *DepNode[S, T, tuple.Of5[D1, D2, D3, D4, D5]] {
	return withDependencies[S, T, tuple.Of5[D1, D2, D3, D4, D5]](r, names, reflect.TypeFor[D1](), reflect.TypeFor[D2](), reflect.TypeFor[D3](), reflect.TypeFor[D4](), reflect.TypeFor[D5]())
}

// WithDependencies6 is WithDependencies1 for six dependency types.
func WithDependencies6[D1, D2, D3, D4, D5, D6, S, T any](r *Root[S, T], names ...string) *DepNode[S, T, tuple.Of6[D1, D2, D3, D4, D5, D6]] {
	return withDependencies[S, T, tuple.Of6[D1, D2, D3, D4, D5, D6]](r, names, reflect.TypeFor[D1](), reflect.TypeFor[D2](), reflect.TypeFor[D3](), reflect.TypeFor[D4](), reflect.TypeFor[D5](), reflect.TypeFor[D6]())
}

// WithDependencies7 is WithDependencies1 for seven dependency types.
func WithDependencies7[D1, D2, D3, D4, D5, D6, D7, S, T any](r *Root[S, T], names ...string) *DepNode[S, T, tuple.Of7[D1, D2, D3, D4, D5, D6, D7]] {
	return withDependencies[S, T, tuple.Of7[D1, D2, D3, D4, D5, D6, D7]](r, names, reflect.TypeFor[D1](), reflect.TypeFor[D2](), reflect.TypeFor[D3](), reflect.TypeFor[D4](), reflect.TypeFor[D5](), reflect.TypeFor[D6](), reflect.TypeFor[D7]())
}

// WithDependencies8 is WithDependencies1 for eight dependency types.
func WithDependencies8[D1, D2, D3, D4, D5, D6, D7, D8, S, T any](r *Root[S, T], names ...string) *DepNode[S, T, tuple.Of8[D1, D2, D3, D4, D5, D6, D7, D8]] {
	return withDependencies[S, T, tuple.Of8[D1, D2, D3, D4, D5, D6, D7, D8]](r, names, reflect.TypeFor[D1](), reflect.TypeFor[D2](), reflect.TypeFor[D3](), reflect.TypeFor[D4](), reflect.TypeFor[D5](), reflect.TypeFor[D6](), reflect.TypeFor[D7](), reflect.TypeFor[D8]())
}
