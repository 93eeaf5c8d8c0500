package mapping

import (
	"reflect"

	"omap/expr"
	"omap/rule"
	"omap/tuple"
)

// Rule is a compiled rule.
type Rule interface {
	Kind() rule.Kind
	SourceType() reflect.Type
	TargetType() reflect.Type
	// Description is "S.member -> T.member", with "?" where no member was
	// found, or "MappingFunction(S, T)".
	Description() string
	NamedResolutions() rule.NamedResolutions
	// Dependencies pairs every dependency type the rule consumes with its
	// resolution name, in tuple order.
	Dependencies() []rule.Dependency
}

// Meta is the data every rule carries.
type Meta struct {
	SourceType     reflect.Type
	TargetType     reflect.Type
	Description    string
	Named          rule.NamedResolutions
	DependencyType reflect.Type
}

type base struct {
	kind rule.Kind
	meta Meta
}

func (b *base) Kind() rule.Kind                         { return b.kind }
func (b *base) SourceType() reflect.Type                { return b.meta.SourceType }
func (b *base) TargetType() reflect.Type                { return b.meta.TargetType }
func (b *base) Description() string                     { return b.meta.Description }
func (b *base) NamedResolutions() rule.NamedResolutions { return b.meta.Named }

// DependencyType is the dependency tuple type, nil if there is none.
func (b *base) DependencyType() reflect.Type { return b.meta.DependencyType }

func (b *base) Dependencies() []rule.Dependency {
	t := b.meta.DependencyType
	if t == nil {
		return nil
	}

	elems := tuple.Elems(t)
	if elems == nil {
		elems = []reflect.Type{t}
	}

	deps := make([]rule.Dependency, len(elems))
	for i, e := range elems {
		name, _ := b.meta.Named.Lookup(e)
		deps[i] = rule.Dependency{Type: e, Name: name}
	}

	return deps
}

// PropertyRule assigns a source value to a target member.
type PropertyRule struct {
	base
	action *expr.Func
	typed  any
}

// NewPropertyRule wraps a compiled (source, target[, dependencies]) action.
func NewPropertyRule(meta Meta, action *expr.Func) *PropertyRule {
	meta.Named = meta.Named.Clone()

	return &PropertyRule{base: base{kind: rule.Property, meta: meta}, action: action, typed: action.Typed()}
}

// Action is func(*S, *T) or func(*S, *T, D).
func (r *PropertyRule) Action() any { return r.typed }

// Apply runs the action. deps is ignored by rules without dependencies.
func (r *PropertyRule) Apply(source, target, deps reflect.Value) {
	if r.meta.DependencyType == nil {
		r.action.Call(source, target)

		return
	}

	r.action.Call(source, target, deps)
}

// NestedRule is an Object or Collection rule. The runtime mapper reads the
// source value, maps it onto the current (or a new) target value and stores
// the result with the setter.
type NestedRule struct {
	base
	sourceGetter *expr.Func
	targetGetter *expr.Func
	targetSetter *expr.Func
	valueType    reflect.Type
}

// NewNestedRule wraps the compiled getters and setter of an Object or
// Collection rule.
func NewNestedRule(kind rule.Kind, meta Meta, sourceGetter, targetGetter, targetSetter *expr.Func, valueType reflect.Type) *NestedRule {
	meta.Named = meta.Named.Clone()

	return &NestedRule{
		base:         base{kind: kind, meta: meta},
		sourceGetter: sourceGetter,
		targetGetter: targetGetter,
		targetSetter: targetSetter,
		valueType:    valueType,
	}
}

// SourceGetter is func(*S) V.
func (r *NestedRule) SourceGetter() any { return r.sourceGetter.Typed() }

// TargetGetter is func(*T) W.
func (r *NestedRule) TargetGetter() any { return r.targetGetter.Typed() }

// TargetSetter is func(*T, W).
func (r *NestedRule) TargetSetter() any { return r.targetSetter.Typed() }

func (r *NestedRule) GetSource(source reflect.Value) reflect.Value {
	return r.sourceGetter.Call(source)
}

func (r *NestedRule) GetTarget(target reflect.Value) reflect.Value {
	return r.targetGetter.Call(target)
}

func (r *NestedRule) SetTarget(target, value reflect.Value) {
	r.targetSetter.Call(target, value)
}

// ValueType is the statically known type of the target value.
func (r *NestedRule) ValueType() reflect.Type { return r.valueType }

// SourceValueType is the result type of the source getter.
func (r *NestedRule) SourceValueType() reflect.Type {
	return r.sourceGetter.Type().Out(0)
}

// FunctionRule runs a declared callable unchanged.
type FunctionRule struct {
	base
	fn any
}

// NewFunctionRule wraps fn, which is func(*S, *T) or func(*S, *T, D).
func NewFunctionRule(meta Meta, fn any) *FunctionRule {
	meta.Named = meta.Named.Clone()

	return &FunctionRule{base: base{kind: rule.Function, meta: meta}, fn: fn}
}

// Func returns the declared callable.
func (r *FunctionRule) Func() any { return r.fn }

// Apply calls the function. deps is ignored when the function takes none.
func (r *FunctionRule) Apply(source, target, deps reflect.Value) {
	fn := reflect.ValueOf(r.fn)
	if fn.Type().NumIn() == 2 {
		fn.Call([]reflect.Value{source, target})

		return
	}

	fn.Call([]reflect.Value{source, target, deps})
}
