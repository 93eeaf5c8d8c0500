package match

import (
	"go/types"
	"reflect"
)

// Compatibility is the level at which a source type fits a target type.
type Compatibility int

const (
	Incompatible Compatibility = iota
	// NeedsTransform means a custom function or a nested mapping is required.
	NeedsTransform
	Convertible
	Assignable
	Identical
)

// String returns a human-readable name for the compatibility level.
func (c Compatibility) String() string {
	switch c {
	case Identical:
		return "identical"
	case Assignable:
		return "assignable"
	case Convertible:
		return "convertible"
	case NeedsTransform:
		return "needs_transform"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// weight maps the level to [0, 1] for ranking.
func (c Compatibility) weight() float64 {
	switch c {
	case Identical:
		return 1.0
	case Assignable:
		return 0.9
	case Convertible:
		return 0.7
	case NeedsTransform:
		return 0.4
	default:
		return 0
	}
}

// ReflectCompatibility grades runtime types.
func ReflectCompatibility(source, target reflect.Type) Compatibility {
	switch {
	case source == nil || target == nil:
		return Incompatible
	case source == target:
		return Identical
	case source.AssignableTo(target):
		return Assignable
	case source.ConvertibleTo(target):
		return Convertible
	}

	sk, tk := derefKind(source), derefKind(target)
	if sk == tk && (sk == reflect.Struct || sk == reflect.Slice || sk == reflect.Map) {
		return NeedsTransform
	}

	return Incompatible
}

func derefKind(t reflect.Type) reflect.Kind {
	if t.Kind() == reflect.Pointer {
		return t.Elem().Kind()
	}

	return t.Kind()
}

// TypesCompatibility grades static types loaded by go/packages.
func TypesCompatibility(source, target types.Type) Compatibility {
	switch {
	case source == nil || target == nil:
		return Incompatible
	case types.Identical(source, target):
		return Identical
	case types.AssignableTo(source, target):
		return Assignable
	case types.ConvertibleTo(source, target):
		return Convertible
	}

	su, tu := derefUnderlying(source), derefUnderlying(target)

	_, ss := su.(*types.Struct)
	_, ts := tu.(*types.Struct)
	if ss && ts {
		return NeedsTransform
	}

	sl, sok := su.(*types.Slice)
	tl, tok := tu.(*types.Slice)
	if sok && tok && TypesCompatibility(sl.Elem(), tl.Elem()) >= NeedsTransform {
		return NeedsTransform
	}

	return Incompatible
}

func derefUnderlying(t types.Type) types.Type {
	if p, ok := t.Underlying().(*types.Pointer); ok {
		return p.Elem().Underlying()
	}

	return t.Underlying()
}
