package rulefile

import (
	"fmt"
	"reflect"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"omap/expr"
)

// idents collects the identifiers of an expression. Callees of function
// calls are kept apart from variable references.
type idents struct {
	all     []*ast.IdentifierNode
	callee  map[*ast.IdentifierNode]bool
	vars    []string
	callees []string
}

// Visit is called bottom-up, so callees are only known once the walk ends.
func (v *idents) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.all = append(v.all, n)
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.callee[id] = true
		}
	}
}

func collectIdents(tree *parser.Tree) *idents {
	v := &idents{callee: make(map[*ast.IdentifierNode]bool)}
	ast.Walk(&tree.Node, v)

	seen := make(map[string]bool)

	for _, id := range v.all {
		if seen[id.Value] {
			continue
		}

		seen[id.Value] = true

		if v.callee[id] {
			v.callees = append(v.callees, id.Value)
		} else {
			v.vars = append(v.vars, id.Value)
		}
	}

	return v
}

// Identifiers parses an expression and returns the variables it reads and
// the functions it calls, each in order of first use. Builtin functions are
// not reported.
func Identifiers(src string) (vars, callees []string, err error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %q: %w", ErrExpression, src, err)
	}

	refs := collectIdents(tree)

	return refs.vars, refs.callees, nil
}

// binding is one name an expression can read, and where its value comes from.
type binding struct {
	name  string
	value expr.Expr
}

// compileExpression turns src into a Call over the bindings it references.
// The call converts the result to want.
func compileExpression(src string, candidates []binding, transforms map[string]Transform, want reflect.Type) (*expr.Call, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrExpression, src, err)
	}

	byName := make(map[string]binding, len(candidates))
	for _, b := range candidates {
		byName[b.name] = b
	}

	var used []binding

	for _, name := range collectIdents(tree).vars {
		if b, ok := byName[name]; ok {
			used = append(used, b)
		}
	}

	fns := make(map[string]any, len(transforms))
	for name, t := range transforms {
		fns[name] = t.Func()
	}

	env := make(map[string]any, len(used)+len(fns))
	for name, fn := range fns {
		env[name] = fn
	}

	for _, b := range used {
		env[b.name] = reflect.Zero(b.value.Type()).Interface()
	}

	program, err := exprlang.Compile(src, exprlang.Env(env))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrExpression, src, err)
	}

	if got := program.Node().Type(); got != nil && got.Kind() != reflect.Interface && !convertible(got, want) {
		return nil, fmt.Errorf("%w %q: result %s does not convert to %s", ErrExpression, src, got, want)
	}

	args := make([]expr.Expr, len(used))
	for i, b := range used {
		args[i] = b.value
	}

	fn := func(in []reflect.Value) reflect.Value {
		vars := make(map[string]any, len(in)+len(fns))
		for name, f := range fns {
			vars[name] = f
		}

		for i, b := range used {
			vars[b.name] = in[i].Interface()
		}

		out, err := exprlang.Run(program, vars)
		if err != nil {
			panic(fmt.Errorf("%w %q: %w", ErrExpression, src, err))
		}

		return convert(out, want)
	}

	return &expr.Call{Name: "eval", Fn: fn, Result: want, Args: args}, nil
}

// convertTo wraps e in a conversion to want when the types differ.
func convertTo(e expr.Expr, want reflect.Type) (expr.Expr, error) {
	got := e.Type()
	if got == want {
		return e, nil
	}

	if !convertible(got, want) {
		return nil, fmt.Errorf("%w: %s is %s, target needs %s", expr.ErrTypeMismatch, e, got, want)
	}

	return &expr.Call{
		Name:   "convert",
		Fn:     func(in []reflect.Value) reflect.Value { return in[0].Convert(want) },
		Result: want,
		Args:   []expr.Expr{e},
	}, nil
}

func convert(v any, want reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(want)
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == want {
		return rv
	}

	if !convertible(rv.Type(), want) {
		panic(fmt.Errorf("%w: result %s does not convert to %s", ErrExpression, rv.Type(), want))
	}

	return rv.Convert(want)
}

// convertible is reflect's ConvertibleTo without integer to string, which
// would yield a rune.
func convertible(from, to reflect.Type) bool {
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return false
		}
	}

	return from.ConvertibleTo(to)
}
