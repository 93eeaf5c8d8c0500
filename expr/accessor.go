package expr

import (
	"reflect"
)

// Accessor is a lambda (s *S) => V. Its zero value is invalid.
type Accessor[S, V any] struct {
	lambda *Lambda
}

// Lambda returns the underlying lambda, nil for the zero Accessor.
func (a Accessor[S, V]) Lambda() *Lambda { return a.lambda }

// DepAccessor is a lambda (s *S, d D) => V.
type DepAccessor[S, D, V any] struct {
	lambda *Lambda
}

// Lambda returns the underlying lambda, nil for the zero DepAccessor.
func (a DepAccessor[S, D, V]) Lambda() *Lambda { return a.lambda }

// Field builds a member accessor from a selector such as
// func(p *Person) *string { return &p.Name }. The selector is run once
// against a zero S whose nested pointer-to-struct fields are allocated, so
// paths such as &c.Home.Street resolve to members. A selector that does not
// single out one field of S is kept as a computed accessor.
func Field[S, V any](sel func(*S) *V) Accessor[S, V] {
	p := Param("s", reflect.TypeFor[*S]())

	path, ok := probe(reflect.TypeFor[S](), func(ptr reflect.Value) reflect.Value {
		return reflect.ValueOf(sel(ptr.Interface().(*S)))
	})
	if !ok {
		return Computed(func(s *S) V {
			if v := sel(s); v != nil {
				return *v
			}

			var zero V

			return zero
		})
	}

	var body Expr = p
	for _, f := range path {
		body = &Member{Receiver: body, Field: f}
	}

	return Accessor[S, V]{lambda: NewLambda(body, p)}
}

// Computed wraps an arbitrary function of the source.
func Computed[S, V any](fn func(*S) V) Accessor[S, V] {
	p := Param("s", reflect.TypeFor[*S]())
	call := &Call{
		Name:   "func",
		Result: reflect.TypeFor[V](),
		Args:   []Expr{p},
		Fn: func(args []reflect.Value) reflect.Value {
			return valueOf(fn(as[*S](args[0])))
		},
	}

	return Accessor[S, V]{lambda: NewLambda(call, p)}
}

// Const always yields v.
func Const[S, V any](v V) Accessor[S, V] {
	return Accessor[S, V]{lambda: NewLambda(&Constant{Value: valueOf(v)}, Param("s", reflect.TypeFor[*S]()))}
}

// Convert applies fn to the value of a. Members read by a stay visible to
// ExtractMember.
func Convert[S, V, W any](a Accessor[S, V], fn func(V) W) Accessor[S, W] {
	if a.lambda == nil {
		return Accessor[S, W]{}
	}

	call := &Call{
		Name:   "convert",
		Result: reflect.TypeFor[W](),
		Args:   []Expr{a.lambda.Body},
		Fn: func(args []reflect.Value) reflect.Value {
			return valueOf(fn(as[V](args[0])))
		},
	}

	return Accessor[S, W]{lambda: NewLambda(call, a.lambda.Params...)}
}

// Lift adds an unused dependency parameter of type D.
func Lift[D, S, V any](a Accessor[S, V]) DepAccessor[S, D, V] {
	if a.lambda == nil {
		return DepAccessor[S, D, V]{}
	}

	d := Param("d", reflect.TypeFor[D]())

	return DepAccessor[S, D, V]{lambda: NewLambda(a.lambda.Body, a.lambda.Params[0], d)}
}

// With wraps a function of the source and the dependencies.
func With[S, D, V any](fn func(*S, D) V) DepAccessor[S, D, V] {
	s := Param("s", reflect.TypeFor[*S]())
	d := Param("d", reflect.TypeFor[D]())
	call := &Call{
		Name:   "func",
		Result: reflect.TypeFor[V](),
		Args:   []Expr{s, d},
		Fn: func(args []reflect.Value) reflect.Value {
			return valueOf(fn(as[*S](args[0]), as[D](args[1])))
		},
	}

	return DepAccessor[S, D, V]{lambda: NewLambda(call, s, d)}
}

// ConvertWith applies fn to the value of a and the dependencies.
func ConvertWith[S, D, V, W any](a Accessor[S, V], fn func(V, D) W) DepAccessor[S, D, W] {
	if a.lambda == nil {
		return DepAccessor[S, D, W]{}
	}

	d := Param("d", reflect.TypeFor[D]())
	call := &Call{
		Name:   "convert",
		Result: reflect.TypeFor[W](),
		Args:   []Expr{a.lambda.Body, d},
		Fn: func(args []reflect.Value) reflect.Value {
			return valueOf(fn(as[V](args[0]), as[D](args[1])))
		},
	}

	return DepAccessor[S, D, W]{lambda: NewLambda(call, a.lambda.Params[0], d)}
}

// valueOf keeps the static type of v, so interface typed results stay
// interface typed.
func valueOf[V any](v V) reflect.Value {
	return reflect.ValueOf(&v).Elem()
}

func as[V any](v reflect.Value) V {
	var zero V
	if !v.IsValid() {
		return zero
	}

	if x, ok := v.Interface().(V); ok {
		return x
	}

	return zero
}
