package expr

import (
	"fmt"
	"reflect"
	"strings"
)

// Expr is a node of an accessor expression tree.
type Expr interface {
	// Type is the static type the node evaluates to.
	Type() reflect.Type
	String() string
	node()
}

// Parameter is a lambda parameter. Two parameters are the same parameter only
// if they are the same pointer; names are informational.
type Parameter struct {
	Name string
	typ  reflect.Type
}

// Param creates a new parameter.
func Param(name string, t reflect.Type) *Parameter {
	return &Parameter{Name: name, typ: t}
}

func (p *Parameter) Type() reflect.Type { return p.typ }
func (p *Parameter) String() string     { return p.Name }
func (*Parameter) node()                {}

// Member reads Field of Receiver. A pointer receiver is dereferenced.
type Member struct {
	Receiver Expr
	Field    reflect.StructField
}

// MemberOf looks up an exported field by name on the (dereferenced) type of
// receiver.
func MemberOf(receiver Expr, name string) (*Member, error) {
	st := indirect(receiver.Type())
	if st.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s has no fields", ErrFieldNotFound, receiver.Type())
	}

	f, ok := st.FieldByName(name)
	if !ok || !f.IsExported() {
		return nil, fmt.Errorf("%w: %s.%s", ErrFieldNotFound, st, name)
	}

	return &Member{Receiver: receiver, Field: f}, nil
}

func (m *Member) Type() reflect.Type { return m.Field.Type }
func (m *Member) String() string     { return m.Receiver.String() + "." + m.Field.Name }
func (*Member) node()                {}

// Call applies Fn to the evaluated Args. Fn must return a value of Result.
type Call struct {
	Name   string
	Fn     func(args []reflect.Value) reflect.Value
	Result reflect.Type
	Args   []Expr
}

func (c *Call) Type() reflect.Type { return c.Result }

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}

	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

func (*Call) node() {}

// Constant is a fixed value.
type Constant struct {
	Value reflect.Value
}

// ConstOf wraps v as a constant of type t (t may be an interface type).
func ConstOf(v any, t reflect.Type) *Constant {
	if v == nil {
		return &Constant{Value: reflect.Zero(t)}
	}

	rv := reflect.New(t).Elem()
	rv.Set(reflect.ValueOf(v))

	return &Constant{Value: rv}
}

func (c *Constant) Type() reflect.Type { return c.Value.Type() }
func (c *Constant) String() string     { return fmt.Sprintf("%#v", c.Value.Interface()) }
func (*Constant) node()                {}

// Assign stores Right into the location named by Left. It has no value.
type Assign struct {
	Left  Expr
	Right Expr
}

func (*Assign) Type() reflect.Type { return nil }
func (a *Assign) String() string   { return a.Left.String() + " = " + a.Right.String() }
func (*Assign) node()              {}

// Lambda is a parameter list and a body.
type Lambda struct {
	Params []*Parameter
	Body   Expr
}

// NewLambda creates a lambda.
func NewLambda(body Expr, params ...*Parameter) *Lambda {
	return &Lambda{Params: params, Body: body}
}

// Type is the Go func type of the lambda. Assignment bodies have no result.
func (l *Lambda) Type() reflect.Type {
	in := make([]reflect.Type, len(l.Params))
	for i, p := range l.Params {
		in[i] = p.Type()
	}

	var out []reflect.Type
	if t := l.Body.Type(); t != nil {
		out = []reflect.Type{t}
	}

	return reflect.FuncOf(in, out, false)
}

func (l *Lambda) String() string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.Name
	}

	return "(" + strings.Join(names, ", ") + ") => " + l.Body.String()
}

func (*Lambda) node() {}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}
