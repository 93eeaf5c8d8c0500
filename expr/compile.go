package expr

import (
	"fmt"
	"reflect"
)

type evalFn func(env []reflect.Value) reflect.Value

// Func is a compiled lambda.
type Func struct {
	lambda *Lambda
	typ    reflect.Type
	eval   evalFn
}

// Compile resolves every parameter and member of l and returns a closure.
func Compile(l *Lambda) (*Func, error) {
	c := &compiler{params: l.Params}

	eval, err := c.compile(l.Body)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", l, err)
	}

	return &Func{lambda: l, typ: l.Type(), eval: eval}, nil
}

// Lambda returns the lambda f was compiled from.
func (f *Func) Lambda() *Lambda { return f.lambda }

// Type is the Go func type of f.
func (f *Func) Type() reflect.Type { return f.typ }

// Call evaluates f. The result is the zero reflect.Value for assignments.
func (f *Func) Call(args ...reflect.Value) reflect.Value {
	if len(args) != len(f.lambda.Params) {
		panic(fmt.Sprintf("%s: %v: got %d, want %d", f.lambda, ErrArity, len(args), len(f.lambda.Params)))
	}

	return f.eval(args)
}

// Typed returns f as a function value of its Go signature, for example
// func(*Person, *Contact) for a property assignment.
func (f *Func) Typed() any {
	hasResult := f.typ.NumOut() == 1

	return reflect.MakeFunc(f.typ, func(in []reflect.Value) []reflect.Value {
		out := f.eval(in)
		if !hasResult {
			return nil
		}

		if !out.IsValid() {
			out = reflect.Zero(f.typ.Out(0))
		}

		return []reflect.Value{out}
	}).Interface()
}

type compiler struct {
	params []*Parameter
}

func (c *compiler) paramIndex(p *Parameter) (int, error) {
	for i, q := range c.params {
		if q == p {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrUnboundParameter, p.Name)
}

func (c *compiler) compile(e Expr) (evalFn, error) {
	switch n := e.(type) {
	case *Parameter:
		i, err := c.paramIndex(n)
		if err != nil {
			return nil, err
		}

		return func(env []reflect.Value) reflect.Value { return env[i] }, nil

	case *Member:
		recv, err := c.compile(n.Receiver)
		if err != nil {
			return nil, err
		}

		index, zero := n.Field.Index, reflect.Zero(n.Field.Type)

		return func(env []reflect.Value) reflect.Value {
			v, ok := fieldByIndex(recv(env), index)
			if !ok {
				return zero
			}

			return v
		}, nil

	case *Call:
		args := make([]evalFn, len(n.Args))
		for i, a := range n.Args {
			f, err := c.compile(a)
			if err != nil {
				return nil, err
			}

			args[i] = f
		}

		fn, zero := n.Fn, reflect.Zero(n.Result)

		return func(env []reflect.Value) reflect.Value {
			in := make([]reflect.Value, len(args))
			for i, a := range args {
				in[i] = a(env)
			}

			if out := fn(in); out.IsValid() {
				return out
			}

			return zero
		}, nil

	case *Constant:
		v := n.Value

		return func([]reflect.Value) reflect.Value { return v }, nil

	case *Assign:
		return c.compileAssign(n)

	case *Lambda:
		return nil, fmt.Errorf("%w: nested lambda %s", ErrTypeMismatch, n)

	default:
		return nil, fmt.Errorf("%w: unsupported node %T", ErrTypeMismatch, e)
	}
}

func (c *compiler) compileAssign(a *Assign) (evalFn, error) {
	loc, err := c.compileLocation(a.Left)
	if err != nil {
		return nil, err
	}

	right, err := c.compile(a.Right)
	if err != nil {
		return nil, err
	}

	lt, rt := a.Left.Type(), a.Right.Type()
	if rt == nil || !rt.AssignableTo(lt) {
		return nil, fmt.Errorf("%w: cannot assign %v to %s of type %s", ErrTypeMismatch, rt, a.Left, lt)
	}

	return func(env []reflect.Value) reflect.Value {
		loc(env).Set(right(env))

		return reflect.Value{}
	}, nil
}

// compileLocation returns a settable field for a member chain rooted at a
// pointer parameter, allocating nil pointers on the way.
func (c *compiler) compileLocation(e Expr) (evalFn, error) {
	switch n := e.(type) {
	case *Parameter:
		i, err := c.paramIndex(n)
		if err != nil {
			return nil, err
		}

		if n.Type().Kind() != reflect.Pointer {
			return nil, fmt.Errorf("%w: %s is not a pointer", ErrNotAssignable, n)
		}

		return func(env []reflect.Value) reflect.Value {
			p := env[i]
			if p.IsNil() {
				panic(fmt.Sprintf("expr: assignment through nil %s", n.Name))
			}

			return p
		}, nil

	case *Member:
		if !n.Field.IsExported() {
			return nil, fmt.Errorf("%w: unexported field %s", ErrNotAssignable, n)
		}

		recv, err := c.compileLocation(n.Receiver)
		if err != nil {
			return nil, err
		}

		index := n.Field.Index

		return func(env []reflect.Value) reflect.Value {
			return settableField(recv(env), index)
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrNotAssignable, e)
	}
}

// fieldByIndex follows index through v, dereferencing pointers. It reports
// false when a nil pointer is met.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for _, i := range index {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}

			v = v.Elem()
		}

		v = v.Field(i)
	}

	return v, true
}

func settableField(v reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(i)
	}

	return v
}
