package rule

import (
	"fmt"
	"reflect"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Dependency is a dependency type with an optional resolution name.
type Dependency struct {
	Type reflect.Type
	// Name is empty for an unnamed dependency.
	Name string
}

func (d Dependency) String() string {
	if d.Name == "" {
		return d.Type.String()
	}

	return d.Type.String() + "(" + d.Name + ")"
}

// NamedResolutions maps dependency types to optional names. It is a value
// type with no mutating methods; accessors hand out copies.
type NamedResolutions struct {
	names map[reflect.Type]string
	order []reflect.Type
}

// NewNamedResolutions builds a snapshot from deps, in order. A type may
// appear only once.
func NewNamedResolutions(deps ...Dependency) (NamedResolutions, error) {
	n := NamedResolutions{
		names: make(map[reflect.Type]string, len(deps)),
		order: make([]reflect.Type, 0, len(deps)),
	}

	for _, d := range deps {
		if _, dup := n.names[d.Type]; dup {
			return NamedResolutions{}, fmt.Errorf("%w: %s", ErrDuplicateDependency, d.Type)
		}

		n.names[d.Type] = d.Name
		n.order = append(n.order, d.Type)
	}

	return n, nil
}

// Len is the number of dependency types.
func (n NamedResolutions) Len() int { return len(n.order) }

// IsEmpty reports whether no dependency was declared.
func (n NamedResolutions) IsEmpty() bool { return len(n.order) == 0 }

// Lookup returns the name of t, and whether t is declared at all.
func (n NamedResolutions) Lookup(t reflect.Type) (string, bool) {
	name, ok := n.names[t]

	return name, ok
}

// Types returns the declared types in declaration order.
func (n NamedResolutions) Types() []reflect.Type {
	return slices.Clone(n.order)
}

// Map returns a copy of the type to name mapping.
func (n NamedResolutions) Map() map[reflect.Type]string {
	if n.names == nil {
		return map[reflect.Type]string{}
	}

	return maps.Clone(n.names)
}

// Dependencies returns the declared dependencies in order.
func (n NamedResolutions) Dependencies() []Dependency {
	out := make([]Dependency, len(n.order))
	for i, t := range n.order {
		out[i] = Dependency{Type: t, Name: n.names[t]}
	}

	return out
}

// Clone returns an independent copy.
func (n NamedResolutions) Clone() NamedResolutions {
	return NamedResolutions{names: maps.Clone(n.names), order: slices.Clone(n.order)}
}
