package builder

import (
	"fmt"
	"reflect"
	"strings"

	"omap/expr"
	"omap/rule"
)

// Assignment pairs a source and a target accessor of the same value type.
type Assignment[S, T any] struct {
	source *expr.Lambda
	target *expr.Lambda
}

// Assign pairs from and to for MapProperty.
func Assign[S, T, V any](from expr.Accessor[S, V], to expr.Accessor[T, V]) Assignment[S, T] {
	return Assignment[S, T]{source: from.Lambda(), target: to.Lambda()}
}

// DepAssignment is an Assignment whose source reads the dependency tuple D.
type DepAssignment[S, T, D any] struct {
	source *expr.Lambda
	target *expr.Lambda
}

// AssignWith pairs from and to for MapPropertyWith.
func AssignWith[S, T, D, V any](from expr.DepAccessor[S, D, V], to expr.Accessor[T, V]) DepAssignment[S, T, D] {
	return DepAssignment[S, T, D]{source: from.Lambda(), target: to.Lambda()}
}

// Nesting pairs a source value with a target field mapped by another rule set.
type Nesting[S, T any] struct {
	source *expr.Lambda
	target *expr.Lambda
}

// Nest pairs from and to for MapObject. V and W may differ.
func Nest[S, T, V, W any](from expr.Accessor[S, V], to expr.Accessor[T, W]) Nesting[S, T] {
	return Nesting[S, T]{source: from.Lambda(), target: to.Lambda()}
}

// Sequence pairs a source slice with a target slice field.
type Sequence[S, T any] struct {
	source *expr.Lambda
	target *expr.Lambda
}

// Elements pairs from and to for MapCollection.
func Elements[S, T, E, F any](from expr.Accessor[S, []E], to expr.Accessor[T, []F]) Sequence[S, T] {
	return Sequence[S, T]{source: from.Lambda(), target: to.Lambda()}
}

// Node declares rules for the pair S, T.
type Node[S, T any] struct {
	ctx *Context
}

// Context returns the untyped context behind the node.
func (n *Node[S, T]) Context() *Context { return n.ctx }

func (n *Node[S, T]) MapProperty(a Assignment[S, T]) *Node[S, T] {
	n.ctx.AddAccessor(rule.Property, a.source, a.target)

	return n
}

func (n *Node[S, T]) MapObject(a Nesting[S, T]) *Node[S, T] {
	n.ctx.AddAccessor(rule.Object, a.source, a.target)

	return n
}

func (n *Node[S, T]) MapCollection(a Sequence[S, T]) *Node[S, T] {
	n.ctx.AddAccessor(rule.Collection, a.source, a.target)

	return n
}

func (n *Node[S, T]) MapFunction(fn func(*S, *T)) *Node[S, T] {
	n.ctx.AddFunction(fn, nil)

	return n
}

// Root is the node CreateMap returns. Only the root can MapAll and declare
// dependencies.
type Root[S, T any] struct {
	Node[S, T]
}

// CreateMap returns the root node of the pair S, T. Calls for the same pair
// share one context.
func CreateMap[S, T any](b *ConfigurationBuilder) *Root[S, T] {
	return &Root[S, T]{Node: Node[S, T]{ctx: b.Context(reflect.TypeFor[S](), reflect.TypeFor[T]())}}
}

// MapAll maps every same-named, same-typed field except the target fields
// the selectors point to, for example func(c *Contact) any { return &c.ID }.
func (r *Root[S, T]) MapAll(exceptions ...func(*T) any) *Root[S, T] {
	names := make([]string, 0, len(exceptions))

	for i, sel := range exceptions {
		name, ok := expr.Selected(sel)
		if !ok {
			r.ctx.fail(fmt.Errorf("MapAll exception %d does not select a field of %s", i, r.ctx.target))

			continue
		}

		top, _, _ := strings.Cut(name, ".")
		names = append(names, top)
	}

	r.ctx.MapAll(names...)

	return r
}
