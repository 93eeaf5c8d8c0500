// Package rule holds the declared, not yet compiled, mapping rules.
package rule

import (
	"reflect"

	"omap/expr"
)

// Entry is one declared rule.
type Entry interface {
	Kind() Kind
	// SourceType and TargetType are the struct types S and T of the pair.
	SourceType() reflect.Type
	TargetType() reflect.Type
	// NamedResolutions is the snapshot taken when the entry was added.
	NamedResolutions() NamedResolutions
}

// AccessorEntry is a Property, Object or Collection rule given as a pair of
// accessor lambdas. The source lambda is (s *S) or (s *S, d D); the target
// lambda is (t *T).
type AccessorEntry struct {
	kind   Kind
	source *expr.Lambda
	target *expr.Lambda
	named  NamedResolutions
}

// NewAccessorEntry records an accessor rule. Nothing is validated here.
func NewAccessorEntry(kind Kind, source, target *expr.Lambda, named NamedResolutions) *AccessorEntry {
	return &AccessorEntry{kind: kind, source: source, target: target, named: named.Clone()}
}

func (e *AccessorEntry) Kind() Kind                         { return e.kind }
func (e *AccessorEntry) Source() *expr.Lambda               { return e.source }
func (e *AccessorEntry) Target() *expr.Lambda               { return e.target }
func (e *AccessorEntry) NamedResolutions() NamedResolutions { return e.named }
func (e *AccessorEntry) SourceType() reflect.Type           { return firstParamElem(e.source) }
func (e *AccessorEntry) TargetType() reflect.Type           { return firstParamElem(e.target) }

// HasDependencyParameter reports whether the source lambda takes the
// dependency tuple as a second parameter.
func (e *AccessorEntry) HasDependencyParameter() bool {
	return e.source != nil && len(e.source.Params) > 1
}

// DependencyType is the type of the source lambda's second parameter, or nil.
func (e *AccessorEntry) DependencyType() reflect.Type {
	if !e.HasDependencyParameter() {
		return nil
	}

	return e.source.Params[1].Type()
}

// FunctionEntry is a Function rule. Fn is func(*S, *T) or func(*S, *T, D).
type FunctionEntry struct {
	fn         any
	sourceType reflect.Type
	targetType reflect.Type
	depType    reflect.Type
	named      NamedResolutions
}

// NewFunctionEntry records a function rule. depTuple is nil when the
// callable takes no dependencies.
func NewFunctionEntry(fn any, source, target, depTuple reflect.Type, named NamedResolutions) *FunctionEntry {
	return &FunctionEntry{fn: fn, sourceType: source, targetType: target, depType: depTuple, named: named.Clone()}
}

func (e *FunctionEntry) Kind() Kind                         { return Function }
func (e *FunctionEntry) Func() any                          { return e.fn }
func (e *FunctionEntry) SourceType() reflect.Type           { return e.sourceType }
func (e *FunctionEntry) TargetType() reflect.Type           { return e.targetType }
func (e *FunctionEntry) DependencyTupleType() reflect.Type  { return e.depType }
func (e *FunctionEntry) NamedResolutions() NamedResolutions { return e.named }

func firstParamElem(l *expr.Lambda) reflect.Type {
	if l == nil || len(l.Params) == 0 {
		return nil
	}

	t := l.Params[0].Type()
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}
