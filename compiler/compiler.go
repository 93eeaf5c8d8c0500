// Package compiler turns declared rule entries into a mapping.Configuration.
package compiler

import (
	"errors"
	"reflect"

	"golang.org/x/exp/slices"

	"omap/expr"
	"omap/internal/common"
	"omap/mapping"
	"omap/rule"
)

// Diagnostic codes recorded by the compiler.
const (
	CodeSourceNotMember = "source_not_member"
)

// Compile compiles entries in declaration order, one rule per entry. The
// first entry that fails fails the whole build.
func Compile(entries []rule.Entry, opts ...Option) (*mapping.Configuration, error) {
	o := new(options).apply(opts...).correct()
	c := &compiler{opts: o}

	rules := make([]mapping.Rule, 0, len(entries))

	for i, e := range entries {
		r, err := c.compileEntry(i, e)
		if err != nil {
			o.Logger.Error(err, "rule failed to compile", "index", i)

			return nil, err
		}

		o.Logger.V(1).Info("compiled rule", "index", i, "kind", r.Kind().String(), "description", r.Description())
		rules = append(rules, r)
	}

	warnings := slices.Clone(o.Diagnostics.Warnings)
	warnings = append(warnings, o.Diagnostics.Infos...)

	return mapping.NewConfiguration(rules, warnings), nil
}

type compiler struct {
	opts *options
}

func (c *compiler) compileEntry(i int, e rule.Entry) (mapping.Rule, error) {
	if e == nil {
		return nil, newError(InvalidEntry, i, ruleInfo{description: "<nil>"}, "nil entry")
	}

	info := ruleInfo{source: e.SourceType(), target: e.TargetType()}

	switch entry := e.(type) {
	case *rule.AccessorEntry:
		if err := checkAccessorEntry(entry); err != "" {
			info.description = "?"
			return nil, newError(InvalidEntry, i, info, "%s", err)
		}

		info.description = Describe(entry)

		switch entry.Kind() {
		case rule.Property:
			return c.compileProperty(i, info, entry)
		case rule.Object, rule.Collection:
			return c.compileNested(i, info, entry)
		default:
			return nil, newError(InvalidEntry, i, info, "accessor rule of kind %s", entry.Kind())
		}

	case *rule.FunctionEntry:
		info.description = Describe(entry)
		if err := checkFunctionEntry(entry); err != "" {
			return nil, newError(InvalidEntry, i, info, "%s", err)
		}

		return mapping.NewFunctionRule(c.meta(info, entry, entry.DependencyTupleType()), entry.Func()), nil

	default:
		info.description = "?"
		return nil, newError(InvalidEntry, i, info, "unsupported entry %T", e)
	}
}

func (c *compiler) meta(info ruleInfo, e rule.Entry, dep reflect.Type) mapping.Meta {
	return mapping.Meta{
		SourceType:     info.source,
		TargetType:     info.target,
		Description:    info.description,
		Named:          e.NamedResolutions(),
		DependencyType: dep,
	}
}

// compileProperty builds (source, target[, dependencies]) => target.m = source.m.
func (c *compiler) compileProperty(i int, info ruleInfo, e *rule.AccessorEntry) (mapping.Rule, error) {
	src, tgt := e.Source(), e.Target()

	source := expr.Param("source", src.Params[0].Type())
	target := expr.Param("target", tgt.Params[0].Type())

	right := expr.SubstituteParameter(src.Body, src.Params[0], source)
	left := expr.SubstituteParameter(tgt.Body, tgt.Params[0], target)
	params := []*expr.Parameter{source, target}

	var depType reflect.Type
	if e.HasDependencyParameter() {
		depType = src.Params[1].Type()
		deps := expr.Param("dependencies", depType)
		right = expr.SubstituteParameter(right, src.Params[1], deps)
		params = append(params, deps)
	}

	if !isLocation(left, target) {
		return nil, newError(TargetNotAssignable, i, info, "target %s is not a field of %s", tgt, common.TypeName(info.target))
	}

	action, err := expr.Compile(expr.NewLambda(&expr.Assign{Left: left, Right: right}, params...))
	if err != nil {
		return nil, c.compileError(i, info, err)
	}

	return mapping.NewPropertyRule(c.meta(info, e, depType), action), nil
}

// compileNested compiles the source getter, the target getter and the target
// setter (target, value) => target.m = value of an Object or Collection rule.
func (c *compiler) compileNested(i int, info ruleInfo, e *rule.AccessorEntry) (mapping.Rule, error) {
	src, tgt := e.Source(), e.Target()
	kindName := "object"
	if e.Kind() == rule.Collection {
		kindName = "collection"
	}

	if expr.ExtractMember(tgt) == nil {
		return nil, newError(TargetMemberNotFound, i, info, "could not find %s field on target", kindName)
	}

	if e.HasDependencyParameter() {
		return nil, newError(InvalidEntry, i, info, "%s source takes no dependencies", kindName)
	}

	if e.Kind() == rule.Collection && (!isSequence(src.Body.Type()) || !isSequence(tgt.Body.Type())) {
		return nil, newError(InvalidEntry, i, info, "collection rule needs slices, got %s and %s", src.Body.Type(), tgt.Body.Type())
	}

	if expr.ExtractMember(src) == nil {
		c.opts.Diagnostics.AddInfo(CodeSourceNotMember,
			"source accessor is not a member access: "+src.String(),
			common.PairKey(info.source, info.target), info.description)
	}

	if !isLocation(tgt.Body, tgt.Params[0]) {
		return nil, newError(TargetNotAssignable, i, info, "target %s is not a field of %s", tgt, common.TypeName(info.target))
	}

	getSource, err := expr.Compile(src)
	if err != nil {
		return nil, c.compileError(i, info, err)
	}

	getTarget, err := expr.Compile(tgt)
	if err != nil {
		return nil, c.compileError(i, info, err)
	}

	valueType := tgt.Body.Type()
	value := expr.Param("value", valueType)

	setTarget, err := expr.Compile(expr.NewLambda(&expr.Assign{Left: tgt.Body, Right: value}, tgt.Params[0], value))
	if err != nil {
		return nil, c.compileError(i, info, err)
	}

	return mapping.NewNestedRule(e.Kind(), c.meta(info, e, nil), getSource, getTarget, setTarget, valueType), nil
}

func (c *compiler) compileError(i int, info ruleInfo, err error) error {
	if errors.Is(err, expr.ErrNotAssignable) {
		return newError(TargetNotAssignable, i, info, "%v", err)
	}

	return newError(InvalidEntry, i, info, "%v", err)
}

// isLocation reports whether e is a chain of member accesses rooted at root.
func isLocation(e expr.Expr, root *expr.Parameter) bool {
	for {
		switch n := e.(type) {
		case *expr.Member:
			e = n.Receiver
		case *expr.Parameter:
			return n == root
		default:
			return false
		}
	}
}

func isSequence(t reflect.Type) bool {
	return t != nil && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array)
}

func checkAccessorEntry(e *rule.AccessorEntry) string {
	src, tgt := e.Source(), e.Target()

	switch {
	case src == nil || tgt == nil || src.Body == nil || tgt.Body == nil:
		return "missing source or target accessor"
	case len(src.Params) == 0 || len(src.Params) > 2:
		return "source accessor must take the source and optionally the dependencies"
	case len(tgt.Params) != 1:
		return "target accessor must take exactly the target"
	case src.Params[0].Type().Kind() != reflect.Pointer || tgt.Params[0].Type().Kind() != reflect.Pointer:
		return "accessors must take pointers to the source and target"
	case src.Body.Type() == nil || tgt.Body.Type() == nil:
		return "accessors must yield a value"
	}

	return ""
}

func checkFunctionEntry(e *rule.FunctionEntry) string {
	fn := reflect.TypeOf(e.Func())
	if fn == nil || fn.Kind() != reflect.Func {
		return "mapping function is not a func"
	}

	if e.SourceType() == nil || e.TargetType() == nil {
		return "mapping function without source or target type"
	}

	want := 2
	if e.DependencyTupleType() != nil {
		want = 3
	}

	switch {
	case fn.NumIn() != want || fn.NumOut() != 0:
		return "mapping function has signature " + fn.String()
	case fn.In(0) != reflect.PointerTo(e.SourceType()) || fn.In(1) != reflect.PointerTo(e.TargetType()):
		return "mapping function has signature " + fn.String()
	case want == 3 && fn.In(2) != e.DependencyTupleType():
		return "mapping function has signature " + fn.String()
	}

	return ""
}
