package expr

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	Street string
	City   string
}

type person struct {
	Name    string
	Age     int
	Home    address
	Address *address
	Tags    []string
	secret  string
}

type clock struct {
	Year int
}

func TestField_ProbesMember(t *testing.T) {
	acc := Field(func(p *person) *string { return &p.Name })
	require.NotNil(t, acc.Lambda())

	m, ok := acc.Lambda().Body.(*Member)
	require.True(t, ok)
	assert.Equal(t, "Name", m.Field.Name)
	assert.Same(t, acc.Lambda().Params[0], m.Receiver)
	assert.Same(t, m, ExtractMember(acc.Lambda()))
}

func TestField_NestedValueStruct(t *testing.T) {
	acc := Field(func(p *person) *string { return &p.Home.City })

	assert.Equal(t, "s.Home.City", acc.Lambda().Body.String())
	assert.Equal(t, "Home", ExtractMember(acc.Lambda()).Field.Name)

	f, err := Compile(acc.Lambda())
	require.NoError(t, err)
	got := f.Call(reflect.ValueOf(&person{Home: address{City: "Oslo"}}))
	assert.Equal(t, "Oslo", got.String())
}

func TestField_FollowsPointerFields(t *testing.T) {
	acc := Field(func(p *person) *string { return &p.Address.Street })

	assert.Equal(t, "s.Address.Street", acc.Lambda().Body.String())
	assert.Equal(t, "Address", ExtractMember(acc.Lambda()).Field.Name)

	f, err := Compile(acc.Lambda())
	require.NoError(t, err)

	get := f.Typed().(func(*person) string)
	assert.Equal(t, "Main", get(&person{Address: &address{Street: "Main"}}))
	assert.Empty(t, get(&person{}))

	target := Param("t", reflect.TypeFor[*person]())
	value := Param("v", reflect.TypeFor[string]())
	set, err := Compile(NewLambda(&Assign{Left: SubstituteParameter(acc.Lambda().Body, acc.Lambda().Params[0], target), Right: value}, target, value))
	require.NoError(t, err)

	dst := &person{}
	set.Call(reflect.ValueOf(dst), reflect.ValueOf("Dock 4"))
	require.NotNil(t, dst.Address)
	assert.Equal(t, "Dock 4", dst.Address.Street)
}

type link struct {
	Next  *link
	Value int
	Peer  *peer
}

type peer struct {
	Back *link
	Name string
}

func TestField_PointerCycles(t *testing.T) {
	acc := Field(func(l *link) *string { return &l.Peer.Name })
	assert.Equal(t, "s.Peer.Name", acc.Lambda().Body.String())

	// link is already on the way down, so Next stays nil and the selector
	// cannot run on the zero value
	deep := Field(func(l *link) *int { return &l.Next.Value })
	_, isCall := deep.Lambda().Body.(*Call)
	assert.True(t, isCall)

	back := Field(func(l *link) *int { return &l.Peer.Back.Value })
	_, isCall = back.Lambda().Body.(*Call)
	assert.True(t, isCall)
}

func TestField_FallsBackToComputed(t *testing.T) {
	// indexing the nil slice panics on the zero value
	acc := Field(func(p *person) *string { return &p.Tags[0] })
	_, isCall := acc.Lambda().Body.(*Call)
	assert.True(t, isCall)
	assert.Nil(t, ExtractMember(acc.Lambda()))

	other := "elsewhere"
	outside := Field(func(*person) *string { return &other })
	assert.Nil(t, ExtractMember(outside.Lambda()))

	f, err := Compile(acc.Lambda())
	require.NoError(t, err)
	got := f.Typed().(func(*person) string)(&person{Tags: []string{"vip"}})
	assert.Equal(t, "vip", got)

	unexported := Field(func(p *person) *string { return &p.secret })
	assert.Nil(t, ExtractMember(unexported.Lambda()))
}

type marker struct{}

type flags struct {
	First  marker
	Second marker
	Count  int
}

func TestField_ZeroSizeFieldsAreAmbiguous(t *testing.T) {
	_, ok := Selected(func(f *flags) any { return &f.Second })
	assert.False(t, ok)

	acc := Field(func(f *flags) *marker { return &f.Second })
	assert.Nil(t, ExtractMember(acc.Lambda()))

	name, ok := Selected(func(f *flags) any { return &f.Count })
	require.True(t, ok)
	assert.Equal(t, "Count", name)
}

func TestPath(t *testing.T) {
	acc, err := Path[person, string]("Address.Street")
	require.NoError(t, err)

	f, err := Compile(acc.Lambda())
	require.NoError(t, err)

	get := f.Typed().(func(*person) string)
	assert.Equal(t, "", get(&person{}), "nil pointer yields the zero value")
	assert.Equal(t, "Main", get(&person{Address: &address{Street: "Main"}}))

	_, err = Path[person, int]("Address.Street")
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Path[person, string]("Address.Zip")
	require.ErrorIs(t, err, ErrFieldNotFound)

	_, err = Path[person, string]("secret")
	require.ErrorIs(t, err, ErrFieldNotFound)

	assert.Panics(t, func() { MustPath[person, string]("") })
}

func TestCompile_AssignAllocatesIntermediatePointers(t *testing.T) {
	target := Param("t", reflect.TypeFor[*person]())
	value := Param("v", reflect.TypeFor[string]())

	left, err := NewPath(target, "Address.Street")
	require.NoError(t, err)

	f, err := Compile(NewLambda(&Assign{Left: left, Right: value}, target, value))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[func(*person, string)](), f.Type())

	p := &person{}
	f.Typed().(func(*person, string))(p, "Main")
	require.NotNil(t, p.Address)
	assert.Equal(t, "Main", p.Address.Street)

	assert.Panics(t, func() { f.Call(reflect.ValueOf((*person)(nil)), reflect.ValueOf("x")) })
	assert.Panics(t, func() { f.Call(reflect.ValueOf(p)) })
}

func TestCompile_Errors(t *testing.T) {
	s := Param("s", reflect.TypeFor[*person]())
	stray := Param("x", reflect.TypeFor[*person]())

	name, err := MemberOf(stray, "Name")
	require.NoError(t, err)
	_, err = Compile(NewLambda(name, s))
	require.ErrorIs(t, err, ErrUnboundParameter)

	age, err := MemberOf(s, "Age")
	require.NoError(t, err)
	nameOfS, err := MemberOf(s, "Name")
	require.NoError(t, err)
	_, err = Compile(NewLambda(&Assign{Left: nameOfS, Right: age}, s))
	require.ErrorIs(t, err, ErrTypeMismatch)

	call := Computed(func(p *person) string { return p.Name }).Lambda()
	_, err = Compile(NewLambda(&Assign{Left: SubstituteParameter(call.Body, call.Params[0], s), Right: nameOfS}, s))
	require.ErrorIs(t, err, ErrNotAssignable)

	byValue := Param("v", reflect.TypeFor[person]())
	field, err := MemberOf(byValue, "Name")
	require.NoError(t, err)
	_, err = Compile(NewLambda(&Assign{Left: field, Right: ConstOf("x", reflect.TypeFor[string]())}, byValue))
	require.ErrorIs(t, err, ErrNotAssignable)

	_, err = MemberOf(ConstOf(1, reflect.TypeFor[int]()), "X")
	require.ErrorIs(t, err, ErrFieldNotFound)
}

func TestRewrite_SharesUntouchedSubtrees(t *testing.T) {
	s := Param("s", reflect.TypeFor[*person]())
	d := Param("d", reflect.TypeFor[clock]())

	name, _ := MemberOf(s, "Name")
	year, _ := MemberOf(d, "Year")
	body := &Call{Name: "f", Result: reflect.TypeFor[string](), Args: []Expr{name, year}}

	fresh := Param("source", reflect.TypeFor[*person]())
	out := SubstituteParameter(body, s, fresh).(*Call)

	assert.NotSame(t, body, out)
	assert.Same(t, year, out.Args[1], "untouched subtree is shared")
	assert.Same(t, fresh, out.Args[0].(*Member).Receiver)
	assert.Same(t, s, body.Args[0].(*Member).Receiver, "input is not mutated")

	assert.Same(t, body, SubstituteParameter(body, fresh, s), "no match returns the input")
}

func TestInspect_PreOrder(t *testing.T) {
	acc := Field(func(p *person) *string { return &p.Home.Street })

	var seen []string
	Inspect(acc.Lambda(), func(e Expr) bool {
		seen = append(seen, e.String())

		return true
	})

	assert.Equal(t, []string{"(s) => s.Home.Street", "s", "s.Home.Street", "s.Home", "s"}, seen)
	assert.Equal(t, []*Parameter{acc.Lambda().Params[0]}, Params(acc.Lambda().Body))
}

func TestConvert_KeepsMember(t *testing.T) {
	acc := Convert(Field(func(p *person) *string { return &p.Name }), strings.ToUpper)
	assert.Equal(t, "Name", ExtractMember(acc.Lambda()).Field.Name)

	f, err := Compile(acc.Lambda())
	require.NoError(t, err)
	assert.Equal(t, "ADA", f.Typed().(func(*person) string)(&person{Name: "ada"}))
}

func TestDepAccessors(t *testing.T) {
	lifted := Lift[clock](Field(func(p *person) *int { return &p.Age }))
	require.Len(t, lifted.Lambda().Params, 2)

	f, err := Compile(lifted.Lambda())
	require.NoError(t, err)
	assert.Equal(t, 7, f.Typed().(func(*person, clock) int)(&person{Age: 7}, clock{Year: 2000}))

	with := With(func(p *person, c clock) int { return c.Year - p.Age })
	f, err = Compile(with.Lambda())
	require.NoError(t, err)
	assert.Equal(t, 1990, f.Typed().(func(*person, clock) int)(&person{Age: 10}, clock{Year: 2000}))

	conv := ConvertWith(Field(func(p *person) *int { return &p.Age }), func(age int, c clock) int { return c.Year - age })
	assert.Equal(t, "Age", ExtractMember(conv.Lambda()).Field.Name)
	f, err = Compile(conv.Lambda())
	require.NoError(t, err)
	assert.Equal(t, 1995, f.Typed().(func(*person, clock) int)(&person{Age: 5}, clock{Year: 2000}))

	assert.Nil(t, Lift[clock](Accessor[person, int]{}).Lambda())
	assert.Nil(t, ConvertWith(Accessor[person, int]{}, func(int, clock) int { return 0 }).Lambda())
	assert.Nil(t, Convert(Accessor[person, int]{}, func(int) int { return 0 }).Lambda())
}

func TestConst(t *testing.T) {
	acc := Const[person]("fixed")
	assert.Nil(t, ExtractMember(acc.Lambda()))

	f, err := Compile(acc.Lambda())
	require.NoError(t, err)
	assert.Equal(t, "fixed", f.Typed().(func(*person) string)(nil))

	var none error
	nilConst := Const[person](none)
	f, err = Compile(nilConst.Lambda())
	require.NoError(t, err)
	assert.Nil(t, f.Typed().(func(*person) error)(&person{}))
}

func TestSelected(t *testing.T) {
	name, ok := Selected(func(p *person) any { return &p.Tags })
	require.True(t, ok)
	assert.Equal(t, "Tags", name)

	name, ok = Selected(func(p *person) any { return &p.Home.Street })
	require.True(t, ok)
	assert.Equal(t, "Home.Street", name)

	_, ok = Selected(func(p *person) any { return p.Name })
	assert.False(t, ok)

	name, ok = Selected(func(p *person) any { return &p.Address.City })
	require.True(t, ok)
	assert.Equal(t, "Address.City", name)
}
