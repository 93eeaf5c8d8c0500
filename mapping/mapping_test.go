package mapping

import (
	"reflect"
	"testing"

	"github.com/kinbiko/jsonassert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omap/expr"
	"omap/internal/diagnostic"
	"omap/rule"
	"omap/tuple"
)

type logger struct{ Prefix string }

type address struct{ Street string }

type line struct{ SKU string }

type person struct {
	Name    string
	Home    *address
	Items   []line
	Numbers []int
}

type addressDTO struct{ Street string }

type lineDTO struct{ SKU string }

type contact struct {
	FullName string
	Home     *addressDTO
	Lines    []lineDTO
	Numbers  []int
}

func compile(t *testing.T, l *expr.Lambda) *expr.Func {
	t.Helper()

	f, err := expr.Compile(l)
	require.NoError(t, err)

	return f
}

func propertyRule(t *testing.T) *PropertyRule {
	t.Helper()

	s := expr.Param("source", reflect.TypeFor[*person]())
	tg := expr.Param("target", reflect.TypeFor[*contact]())
	d := expr.Param("dependencies", reflect.TypeFor[tuple.Of1[logger]]())

	name, err := expr.MemberOf(s, "Name")
	require.NoError(t, err)
	full, err := expr.MemberOf(tg, "FullName")
	require.NoError(t, err)
	log, err := expr.NewPath(d, "V1.Prefix")
	require.NoError(t, err)

	concat := &expr.Call{
		Name:   "concat",
		Result: reflect.TypeFor[string](),
		Args:   []expr.Expr{log, name},
		Fn: func(args []reflect.Value) reflect.Value {
			return reflect.ValueOf(args[0].String() + args[1].String())
		},
	}

	named, err := rule.NewNamedResolutions(rule.Dependency{Type: reflect.TypeFor[logger](), Name: "auditLog"})
	require.NoError(t, err)

	return NewPropertyRule(Meta{
		SourceType:     reflect.TypeFor[person](),
		TargetType:     reflect.TypeFor[contact](),
		Description:    "person.Name -> contact.FullName",
		Named:          named,
		DependencyType: reflect.TypeFor[tuple.Of1[logger]](),
	}, compile(t, expr.NewLambda(&expr.Assign{Left: full, Right: concat}, s, tg, d)))
}

func nestedRule(t *testing.T, kind rule.Kind, srcField, dstField string) *NestedRule {
	t.Helper()

	s := expr.Param("source", reflect.TypeFor[*person]())
	tg := expr.Param("target", reflect.TypeFor[*contact]())

	src, err := expr.MemberOf(s, srcField)
	require.NoError(t, err)
	dst, err := expr.MemberOf(tg, dstField)
	require.NoError(t, err)

	v := expr.Param("value", dst.Type())

	return NewNestedRule(kind, Meta{
		SourceType:  reflect.TypeFor[person](),
		TargetType:  reflect.TypeFor[contact](),
		Description: "person." + srcField + " -> contact." + dstField,
	},
		compile(t, expr.NewLambda(src, s)),
		compile(t, expr.NewLambda(dst, tg)),
		compile(t, expr.NewLambda(&expr.Assign{Left: dst, Right: v}, tg, v)),
		dst.Type(),
	)
}

func TestPropertyRule(t *testing.T) {
	r := propertyRule(t)

	assert.Equal(t, rule.Property, r.Kind())
	assert.Equal(t, reflect.TypeFor[tuple.Of1[logger]](), r.DependencyType())
	assert.Equal(t, []rule.Dependency{{Type: reflect.TypeFor[logger](), Name: "auditLog"}}, r.Dependencies())

	c := &contact{}
	action := r.Action().(func(*person, *contact, tuple.Of1[logger]))
	action(&person{Name: "Ada"}, c, tuple.Of1[logger]{V1: logger{Prefix: "> "}})
	assert.Equal(t, "> Ada", c.FullName)

	r.Apply(reflect.ValueOf(&person{Name: "Bob"}), reflect.ValueOf(c), reflect.ValueOf(tuple.Of1[logger]{}))
	assert.Equal(t, "Bob", c.FullName)
}

func TestNestedRule(t *testing.T) {
	r := nestedRule(t, rule.Collection, "Items", "Lines")

	assert.Equal(t, reflect.TypeFor[[]lineDTO](), r.ValueType())
	assert.Equal(t, reflect.TypeFor[[]line](), r.SourceValueType())
	assert.Nil(t, r.Dependencies())

	p := &person{Items: []line{{SKU: "a"}}}
	c := &contact{}

	assert.Equal(t, []line{{SKU: "a"}}, r.SourceGetter().(func(*person) []line)(p))
	assert.Nil(t, r.TargetGetter().(func(*contact) []lineDTO)(c))

	r.TargetSetter().(func(*contact, []lineDTO))(c, []lineDTO{{SKU: "A"}})
	assert.Equal(t, []lineDTO{{SKU: "A"}}, c.Lines)

	r.SetTarget(reflect.ValueOf(c), reflect.ValueOf([]lineDTO{}))
	assert.Empty(t, c.Lines)
	assert.Equal(t, 1, r.GetSource(reflect.ValueOf(p)).Len())
	assert.Equal(t, 0, r.GetTarget(reflect.ValueOf(c)).Len())
}

func TestFunctionRule(t *testing.T) {
	called := 0
	r := NewFunctionRule(Meta{
		SourceType:  reflect.TypeFor[person](),
		TargetType:  reflect.TypeFor[contact](),
		Description: "MappingFunction(person, contact)",
	}, func(s *person, c *contact) { called++ })

	assert.Equal(t, rule.Function, r.Kind())
	assert.Nil(t, r.DependencyType())
	r.Apply(reflect.ValueOf(&person{}), reflect.ValueOf(&contact{}), reflect.Value{})
	assert.Equal(t, 1, called)

	withDeps := NewFunctionRule(Meta{DependencyType: reflect.TypeFor[tuple.Of1[logger]]()},
		func(s *person, c *contact, d tuple.Of1[logger]) { c.FullName = d.V1.Prefix + s.Name })

	c := &contact{}
	withDeps.Apply(reflect.ValueOf(&person{Name: "x"}), reflect.ValueOf(c), reflect.ValueOf(tuple.Of1[logger]{V1: logger{Prefix: "p"}}))
	assert.Equal(t, "px", c.FullName)
	assert.Equal(t, []rule.Dependency{{Type: reflect.TypeFor[logger]()}}, withDeps.Dependencies())
}

func TestConfiguration(t *testing.T) {
	prop := propertyRule(t)
	obj := nestedRule(t, rule.Object, "Home", "Home")
	col := nestedRule(t, rule.Collection, "Items", "Lines")
	nums := nestedRule(t, rule.Collection, "Numbers", "Numbers")

	rules := []Rule{prop, obj, col, nums}
	cfg := NewConfiguration(rules, []diagnostic.Diagnostic{{Severity: diagnostic.SeverityWarning, Code: "w", Message: "careful"}})
	rules[0] = nil

	assert.Equal(t, 4, cfg.Len())
	assert.Same(t, prop, cfg.Rule(0))
	assert.Len(t, cfg.For(reflect.TypeFor[person](), reflect.TypeFor[contact]()), 4)
	assert.Empty(t, cfg.For(reflect.TypeFor[contact](), reflect.TypeFor[person]()))
	assert.Equal(t, []Pair{{Source: reflect.TypeFor[person](), Target: reflect.TypeFor[contact]()}}, cfg.Pairs())

	assert.Equal(t, []Pair{
		{Source: reflect.TypeFor[address](), Target: reflect.TypeFor[addressDTO]()},
		{Source: reflect.TypeFor[line](), Target: reflect.TypeFor[lineDTO]()},
	}, cfg.NestedPairs())

	got := cfg.Rules()
	got[0] = nil
	assert.Same(t, prop, cfg.Rule(0))
	require.Len(t, cfg.Warnings(), 1)
}

func TestConfiguration_MarshalJSON(t *testing.T) {
	cfg := NewConfiguration([]Rule{propertyRule(t), nestedRule(t, rule.Object, "Home", "Home")}, nil)

	data, err := cfg.MarshalJSON()
	require.NoError(t, err)

	jsonassert.New(t).Assertf(string(data), `{
		"rules": [
			{
				"kind": "Property",
				"source": "person",
				"target": "contact",
				"description": "person.Name -> contact.FullName",
				"dependencies": [{"type": "mapping.logger", "name": "auditLog"}]
			},
			{
				"kind": "Object",
				"source": "person",
				"target": "contact",
				"description": "person.Home -> contact.Home",
				"valueType": "*mapping.addressDTO"
			}
		],
		"nestedPairs": ["address->addressDTO"]
	}`)
}

func TestDealer(t *testing.T) {
	var d dealer

	d.need(reflect.TypeFor[int](), reflect.TypeFor[string]())
	d.need(reflect.TypeFor[int](), reflect.TypeFor[string]())
	p, ok := d.next()
	assert.True(t, ok)
	assert.Equal(t, "int->string", p.String())

	_, ok = d.next()
	assert.False(t, ok, "duplicates are handed out once")

	d.need(reflect.TypeFor[int](), reflect.TypeFor[string]())
	_, ok = d.next()
	assert.False(t, ok, "done pairs are not handed out again")

	d.markDone(reflect.TypeFor[int](), reflect.TypeFor[int]())
	d.need(reflect.TypeFor[int](), reflect.TypeFor[int]())
	_, ok = d.next()
	assert.False(t, ok)
}
