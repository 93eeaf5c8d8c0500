package builder

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omap/compiler"
	"omap/expr"
	"omap/internal/match"
	"omap/mapping"
	"omap/rule"
	"omap/tuple"
)

type Person struct {
	ID    int
	Name  string
	Raw   string
	Age   int
	Email string
	Items []Item
	Home  Address
}

type Address struct{ Street string }

type Item struct{ SKU string }

type Contact struct {
	ID       int
	FullName string
	Parsed   string
	Age      string
	Email    string
	Items    []Line
	Home     *AddressDTO
	Nickname string
}

type AddressDTO struct{ Street string }

type Line struct{ SKU string }

type Logger struct{ calls *int }

func (l Logger) Log(string) { *l.calls++ }

type Clock struct{ Year int }

var (
	personName = expr.Field(func(p *Person) *string { return &p.Name })
	personRaw  = expr.Field(func(p *Person) *string { return &p.Raw })
	fullName   = expr.Field(func(c *Contact) *string { return &c.FullName })
	parsed     = expr.Field(func(c *Contact) *string { return &c.Parsed })
)

func TestScenario_PropertyCopy(t *testing.T) {
	b := New()
	CreateMap[Person, Contact](b).MapProperty(Assign(personName, fullName))

	cfg, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Len())

	r := cfg.Rule(0).(*mapping.PropertyRule)
	assert.Equal(t, "Person.Name -> Contact.FullName", r.Description())

	target := &Contact{Nickname: "keep"}
	r.Action().(func(*Person, *Contact))(&Person{Name: "Ada", Raw: "x"}, target)
	assert.Equal(t, Contact{FullName: "Ada", Nickname: "keep"}, *target)
}

func TestScenario_NamedDependency(t *testing.T) {
	b := New()
	WithDependencies1[Logger](CreateMap[Person, Contact](b), "auditLog").
		MapPropertyWith(AssignWith(expr.Lift[tuple.Of1[Logger]](personRaw), parsed))

	cfg, err := b.Build()
	require.NoError(t, err)

	r := cfg.Rule(0).(*mapping.PropertyRule)
	assert.Equal(t, "Person.Raw -> Contact.Parsed", r.Description())
	assert.Equal(t, []rule.Dependency{{Type: reflect.TypeFor[Logger](), Name: "auditLog"}}, r.Dependencies())

	calls := 0
	target := &Contact{}
	r.Action().(func(*Person, *Contact, tuple.Of1[Logger]))(&Person{Raw: "42"}, target, tuple.Of1[Logger]{V1: Logger{calls: &calls}})
	assert.Equal(t, "42", target.Parsed)
	assert.Zero(t, calls)
}

func TestTwoDependencyTransform(t *testing.T) {
	type deps = tuple.Of2[Logger, Clock]

	b := New()
	WithDependencies2[Logger, Clock](CreateMap[Person, Contact](b), "", "wall").
		MapPropertyWith(AssignWith(
			expr.ConvertWith(expr.Field(func(p *Person) *int { return &p.Age }),
				func(age int, d deps) string { return strconv.Itoa(d.V2.Year - age) }),
			expr.Field(func(c *Contact) *string { return &c.Age })))

	cfg, err := b.Build()
	require.NoError(t, err)

	r := cfg.Rule(0).(*mapping.PropertyRule)
	assert.Equal(t, []rule.Dependency{
		{Type: reflect.TypeFor[Logger]()},
		{Type: reflect.TypeFor[Clock](), Name: "wall"},
	}, r.Dependencies())

	target := &Contact{}
	r.Apply(reflect.ValueOf(&Person{Age: 36}), reflect.ValueOf(target), reflect.ValueOf(deps{V2: Clock{Year: 2000}}))
	assert.Equal(t, "1964", target.Age)
}

func TestScenario_Collection(t *testing.T) {
	b := New()
	CreateMap[Person, Contact](b).MapCollection(Elements(
		expr.Field(func(p *Person) *[]Item { return &p.Items }),
		expr.Field(func(c *Contact) *[]Line { return &c.Items })))

	cfg, err := b.Build()
	require.NoError(t, err)

	r := cfg.Rule(0).(*mapping.NestedRule)
	assert.Equal(t, rule.Collection, r.Kind())
	assert.Equal(t, reflect.TypeFor[[]Line](), r.ValueType())

	source := &Person{Items: []Item{{SKU: "a"}}}
	target := &Contact{Items: []Line{{SKU: "old"}}}

	assert.Equal(t, source.Items, r.SourceGetter().(func(*Person) []Item)(source))
	assert.Equal(t, target.Items, r.TargetGetter().(func(*Contact) []Line)(target))

	fresh := []Line{{SKU: "A"}}
	r.TargetSetter().(func(*Contact, []Line))(target, fresh)
	assert.Equal(t, fresh, target.Items)
	assert.Equal(t, []Item{{SKU: "a"}}, source.Items, "no element-level copying")
}

func TestWithDependencies_ReplacesNotMerges(t *testing.T) {
	b := New()
	root := CreateMap[Person, Contact](b)

	WithDependencies1[Logger](root, "first").MapProperty(Assign(personName, fullName))
	WithDependencies1[Clock](root, "second").MapProperty(Assign(personRaw, parsed))

	entries := b.Entries()
	require.Len(t, entries, 2)

	first := entries[0].NamedResolutions()
	name, ok := first.Lookup(reflect.TypeFor[Logger]())
	assert.True(t, ok)
	assert.Equal(t, "first", name)
	_, ok = first.Lookup(reflect.TypeFor[Clock]())
	assert.False(t, ok, "earlier snapshot is unaffected by later declarations")

	second := entries[1].NamedResolutions()
	assert.Equal(t, map[reflect.Type]string{reflect.TypeFor[Clock](): "second"}, second.Map())
}

func TestNamedResolutions_ArePerPair(t *testing.T) {
	b := New()
	WithDependencies1[Logger](CreateMap[Person, Contact](b), "audit")
	CreateMap[Contact, Person](b).MapProperty(Assign(fullName, personName))
	CreateMap[Person, Contact](b).MapProperty(Assign(personName, fullName))

	entries := b.Entries()
	assert.True(t, entries[0].NamedResolutions().IsEmpty())
	assert.Equal(t, 1, entries[1].NamedResolutions().Len(), "same pair shares one context")
}

func TestDependencyDeclarationErrors(t *testing.T) {
	b := New()
	WithDependencies2[Logger, Logger](CreateMap[Person, Contact](b))

	_, err := b.Build()
	require.ErrorIs(t, err, compiler.ErrDeclaration)
	require.ErrorIs(t, err, rule.ErrDuplicateDependency)

	b = New()
	WithDependencies1[Logger](CreateMap[Person, Contact](b), "a", "b")

	_, err = b.Build()
	require.ErrorIs(t, err, compiler.ErrDeclaration)
}

func TestConstantNestedTargetFailsBuild(t *testing.T) {
	b := New()
	CreateMap[Person, Contact](b).
		MapProperty(Assign(personName, fullName)).
		MapObject(Nest(
			expr.Field(func(p *Person) *Address { return &p.Home }),
			expr.Const[Contact, *AddressDTO](nil)))

	cfg, err := b.Build()
	require.Error(t, err)
	assert.Nil(t, cfg)

	var cerr *compiler.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 1, cerr.Index)
	assert.Equal(t, "Person.Home -> Contact.?", cerr.Description)
	assert.ErrorIs(t, err, compiler.ErrTargetMemberNotFound)
}

func TestAssign_TargetThroughPointerField(t *testing.T) {
	b := New()
	CreateMap[Person, Contact](b).
		MapProperty(Assign(
			expr.Field(func(p *Person) *string { return &p.Home.Street }),
			expr.Field(func(c *Contact) *string { return &c.Home.Street })))

	cfg, err := b.Build()
	require.NoError(t, err)

	r := cfg.Rule(0).(*mapping.PropertyRule)
	assert.Equal(t, "Person.Home -> Contact.Home", r.Description())

	dst := &Contact{}
	r.Action().(func(*Person, *Contact))(&Person{Home: Address{Street: "Main"}}, dst)
	require.NotNil(t, dst.Home)
	assert.Equal(t, "Main", dst.Home.Street)
}

func TestAssign_SourceThroughNilPointerField(t *testing.T) {
	b := New()
	CreateMap[Contact, Person](b).
		MapProperty(Assign(
			expr.Field(func(c *Contact) *string { return &c.Home.Street }),
			expr.Field(func(p *Person) *string { return &p.Name })))

	cfg, err := b.Build()
	require.NoError(t, err)

	r := cfg.Rule(0).(*mapping.PropertyRule)
	assert.Equal(t, "Contact.Home -> Person.Name", r.Description())

	dst := &Person{Name: "before"}
	r.Action().(func(*Contact, *Person))(&Contact{}, dst)
	assert.Empty(t, dst.Name)
}

func TestBuild_PreservesOrderAcrossPairs(t *testing.T) {
	b := New()
	people := CreateMap[Person, Contact](b)
	contacts := CreateMap[Contact, Person](b)

	people.MapProperty(Assign(personName, fullName))
	contacts.MapProperty(Assign(fullName, personName))
	people.MapFunction(func(p *Person, c *Contact) { c.Nickname = p.Name })
	people.MapObject(Nest(
		expr.Field(func(p *Person) *Address { return &p.Home }),
		expr.Field(func(c *Contact) **AddressDTO { return &c.Home })))

	cfg, err := b.Build()
	require.NoError(t, err)

	var got []string
	for _, r := range cfg.Rules() {
		got = append(got, r.Description())
	}

	assert.Equal(t, []string{
		"Person.Name -> Contact.FullName",
		"Contact.FullName -> Person.Name",
		"MappingFunction(Person, Contact)",
		"Person.Home -> Contact.Home",
	}, got)
	assert.Len(t, cfg.For(reflect.TypeFor[Person](), reflect.TypeFor[Contact]()), 3)
	assert.Equal(t, []mapping.Pair{{Source: reflect.TypeFor[Address](), Target: reflect.TypeFor[AddressDTO]()}}, cfg.NestedPairs())
}

func TestDepNode_Functions(t *testing.T) {
	type deps = tuple.Of1[Clock]

	b := New()
	WithDependencies1[Clock](CreateMap[Person, Contact](b)).
		MapFunction(func(p *Person, c *Contact) { c.Email = p.Email }).
		MapFunctionWith(func(p *Person, c *Contact, d deps) { c.Age = strconv.Itoa(d.V1.Year) })

	cfg, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Len())

	plain := cfg.Rule(0).(*mapping.FunctionRule)
	assert.Nil(t, plain.DependencyType())
	assert.Equal(t, 1, plain.NamedResolutions().Len(), "snapshot is taken even without a dependency parameter")

	with := cfg.Rule(1).(*mapping.FunctionRule)
	assert.Equal(t, reflect.TypeFor[deps](), with.DependencyType())

	target := &Contact{}
	with.Apply(reflect.ValueOf(&Person{}), reflect.ValueOf(target), reflect.ValueOf(deps{V1: Clock{Year: 1999}}))
	assert.Equal(t, "1999", target.Age)
}

func TestMapAll(t *testing.T) {
	b := New()
	CreateMap[Person, Contact](b).MapAll(func(c *Contact) any { return &c.ID })

	cfg, err := b.Build()
	require.NoError(t, err)

	var got []string
	for _, r := range cfg.Rules() {
		got = append(got, r.Description())
	}

	assert.Equal(t, []string{"Person.Email -> Contact.Email"}, got, spew.Sdump(cfg.Warnings()))

	warned := map[string][]string{}
	for _, w := range cfg.Warnings() {
		assert.Equal(t, CodeUnmappedField, w.Code)
		warned[w.Field] = w.Suggestions
	}

	assert.Contains(t, warned, "FullName")
	assert.Contains(t, warned, "Age")
	assert.Contains(t, warned, "Home")
	assert.Contains(t, warned, "Nickname")
	assert.NotContains(t, warned, "ID")
	assert.Contains(t, warned["Age"], "Age")
}

func TestMapAll_NormalizedNames(t *testing.T) {
	type source struct {
		FullName string
		UserID   int
	}

	type target struct {
		Full_Name string
		UserId    int
	}

	b := New(WithNameMatching(match.Normalized))
	CreateMap[source, target](b).MapAll()

	cfg, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Len())
	assert.Equal(t, "source.FullName -> target.Full_Name", cfg.Rule(0).Description())
	assert.Empty(t, cfg.Warnings())

	dst := &target{}
	for _, r := range cfg.Rules() {
		r.(*mapping.PropertyRule).Apply(reflect.ValueOf(&source{FullName: "x", UserID: 7}), reflect.ValueOf(dst), reflect.Value{})
	}

	assert.Equal(t, target{Full_Name: "x", UserId: 7}, *dst)
}

func TestMapAll_BadException(t *testing.T) {
	b := New()
	CreateMap[Person, Contact](b).MapAll(func(c *Contact) any { return c.ID })

	_, err := b.Build()
	require.ErrorIs(t, err, compiler.ErrDeclaration)
}

func TestContext_RejectsForeignAccessor(t *testing.T) {
	b := New()
	ctx := b.Context(reflect.TypeFor[Person](), reflect.TypeFor[Contact]())
	ctx.AddAccessor(rule.Property, fullName.Lambda(), fullName.Lambda())

	_, err := b.Build()
	require.ErrorIs(t, err, compiler.ErrDeclaration)
	assert.Contains(t, err.Error(), "accessor takes *builder.Contact, pair needs *Person")
}

func TestBuild_Logs(t *testing.T) {
	var lines []string
	log := funcr.New(func(_, args string) { lines = append(lines, args) }, funcr.Options{Verbosity: 1})

	b := New(WithLogger(log))
	WithDependencies1[Logger](CreateMap[Person, Contact](b)).MapProperty(Assign(personName, fullName))

	_, err := b.Build()
	require.NoError(t, err)
	require.Len(t, lines, 3, fmt.Sprint(lines))
	assert.Contains(t, lines[0], "dependencies declared")
	assert.Contains(t, lines[1], "compiled rule")
	assert.Contains(t, lines[2], "configuration built")
}
