package rulefile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"omap/builder"
	"omap/expr"
	"omap/rule"
	"omap/tuple"
)

// Apply validates f and declares its rules on b, resolving type and
// transform names through reg. Every mapping is applied; the errors of all
// failed mappings are joined. Rules declared before an error stay on b.
func Apply(b *builder.ConfigurationBuilder, reg *Registry, f *File) error {
	if diags := Validate(f); diags.HasErrors() {
		return fmt.Errorf("%w: %w", ErrInvalidFile, diags.Error())
	}

	transforms := make(map[string]Transform, len(f.Transforms))

	for _, name := range f.Transforms {
		t, ok := reg.Transform(name)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownTransform, name)
		}

		transforms[name] = t
	}

	var errs []error

	for i := range f.Mappings {
		m := &f.Mappings[i]
		if err := applyMapping(b, reg, m, transforms); err != nil {
			errs = append(errs, fmt.Errorf("mapping %d (%s): %w", i, m.Pair(), err))
		}
	}

	return errors.Join(errs...)
}

func applyMapping(b *builder.ConfigurationBuilder, reg *Registry, m *Mapping, transforms map[string]Transform) error {
	src, err := structType(reg, m.Source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	dst, err := structType(reg, m.Target)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	ctx := b.Context(src, dst)
	s := expr.Param("s", reflect.PointerTo(src))
	t := expr.Param("t", reflect.PointerTo(dst))

	bindings := fieldBindings(s, src)

	deps, depBindings, err := requires(ctx, reg, m.Requires)
	if err != nil {
		return err
	}

	for _, db := range depBindings {
		for _, fb := range bindings {
			if fb.name == db.name {
				return fmt.Errorf("require name %q shadows a field of %s", db.name, src)
			}
		}
	}

	bindings = append(bindings, depBindings...)

	if m.All {
		ctx.MapAll(allExceptions(m)...)
	}

	params := []*expr.Parameter{s}
	if deps != nil {
		params = append(params, deps)
	}

	var errs []error

	for _, p := range m.Properties {
		target, err := expr.NewPath(t, p.Target)
		if err != nil {
			errs = append(errs, fmt.Errorf("property %s: %w", p.Target, err))

			continue
		}

		var source expr.Expr

		if p.Expr != "" {
			source, err = compileExpression(p.Expr, bindings, transforms, target.Type())
		} else {
			source, err = expr.NewPath(s, p.Source)
			if err == nil {
				source, err = convertTo(source, target.Type())
			}
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("property %s: %w", p.Target, err))

			continue
		}

		ctx.AddAccessor(rule.Property, expr.NewLambda(source, params...), expr.NewLambda(target, t))
	}

	for _, set := range []struct {
		kind  rule.Kind
		links []Link
	}{{rule.Object, m.Objects}, {rule.Collection, m.Collections}} {
		for _, l := range set.links {
			source, err := expr.NewPath(s, l.Source)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %s: %w", set.kind, l.Target, err))

				continue
			}

			target, err := expr.NewPath(t, l.Target)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %s: %w", set.kind, l.Target, err))

				continue
			}

			ctx.AddAccessor(set.kind, expr.NewLambda(source, s), expr.NewLambda(target, t))
		}
	}

	return errors.Join(errs...)
}

// allExceptions adds the fields the mapping declares explicitly to Except,
// so All only fills in the rest.
func allExceptions(m *Mapping) []string {
	except := append([]string(nil), m.Except...)

	add := func(target string) {
		top, _, _ := strings.Cut(target, ".")
		except = append(except, top)
	}

	for _, p := range m.Properties {
		add(p.Target)
	}

	for _, l := range m.Objects {
		add(l.Target)
	}

	for _, l := range m.Collections {
		add(l.Target)
	}

	return except
}

func structType(reg *Registry, id string) (reflect.Type, error) {
	t, err := reg.Type(id)
	if err != nil {
		return nil, err
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct type", t)
	}

	return t, nil
}

// fieldBindings exposes the exported fields of st, promoted ones included.
func fieldBindings(s *expr.Parameter, st reflect.Type) []binding {
	var out []binding

	for _, f := range reflect.VisibleFields(st) {
		if !f.IsExported() || f.Anonymous {
			continue
		}

		m, err := expr.MemberOf(s, f.Name)
		if err != nil {
			continue // ambiguous promotion
		}

		out = append(out, binding{name: f.Name, value: m})
	}

	return out
}

// requires declares the dependencies of the pair and returns the tuple
// parameter with one binding per element: its name, or depN when unnamed.
func requires(ctx *builder.Context, reg *Registry, reqs Requires) (*expr.Parameter, []binding, error) {
	if len(reqs) == 0 {
		return nil, nil, nil
	}

	types := make([]reflect.Type, len(reqs))
	deps := make([]rule.Dependency, len(reqs))

	for i, req := range reqs {
		t, err := reg.Type(req.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("requires: %w", err)
		}

		types[i] = t
		deps[i] = rule.Dependency{Type: t, Name: req.Name}
	}

	tt, err := tuple.TypeOf(types...)
	if err != nil {
		return nil, nil, fmt.Errorf("requires: %w", err)
	}

	ctx.SetDependencies(deps...)

	d := expr.Param("d", tt)
	bindings := make([]binding, len(reqs))

	for i, req := range reqs {
		v, err := expr.NewPath(d, tuple.FieldName(i))
		if err != nil {
			return nil, nil, err
		}

		name := req.Name
		if name == "" {
			name = fmt.Sprintf("dep%d", i+1)
		}

		bindings[i] = binding{name: name, value: v}
	}

	return d, bindings, nil
}
