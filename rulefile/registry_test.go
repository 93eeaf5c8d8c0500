package rulefile

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omap/rule"
)

type regPerson struct{ Name string }

func TestRegistry_Type(t *testing.T) {
	r := NewRegistry()
	Register[regPerson](r, "")
	Register[rule.Kind](r, "")
	Register[reflect.Kind](r, "")
	Register[regPerson](r, "Human")

	person := reflect.TypeFor[regPerson]()

	for _, id := range []string{"regPerson", "rulefile.regPerson", "omap/rulefile.regPerson", "Human"} {
		got, err := r.Type(id)
		require.NoError(t, err, id)
		assert.Equal(t, person, got, id)
	}

	got, err := r.Type("rule.Kind")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[rule.Kind](), got)

	got, err = r.Type("reflect.Kind")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[reflect.Kind](), got)

	_, err = r.Type("Kind")
	require.ErrorIs(t, err, ErrAmbiguousType)
	assert.ErrorContains(t, err, "omap/rule.Kind, reflect.Kind")

	_, err = r.Type("Nope")
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = r.Type("other.regPerson")
	assert.ErrorIs(t, err, ErrUnknownType)

	assert.Len(t, r.Types(), 3)
}

func TestRegistry_RegisterTransform(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.RegisterTransform("", strings.ToUpper))
	up, ok := r.Transform("ToUpper")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[string](), up.In)
	assert.Equal(t, reflect.TypeFor[string](), up.Out)
	assert.False(t, up.HasErr)

	require.NoError(t, r.RegisterTransform("atoi", strconv.Atoi))
	atoi, ok := r.Transform("atoi")
	require.True(t, ok)
	assert.True(t, atoi.HasErr)
	assert.Equal(t, reflect.TypeFor[int](), atoi.Out)

	fn, ok := atoi.Func().(func(string) (int, error))
	require.True(t, ok)
	n, err := fn("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, ok = r.Transform("missing")
	assert.False(t, ok)
}

func TestRegistry_RegisterTransform_Rejects(t *testing.T) {
	tests := []struct {
		name string
		fn   any
	}{
		{"not a func", 42},
		{"nil", nil},
		{"nil func", (func(int) int)(nil)},
		{"two args", strings.Repeat},
		{"variadic", func(...int) int { return 0 }},
		{"no result", func(int) {}},
		{"bool second", func(int) (int, bool) { return 0, false }},
		{"three results", func(int) (int, bool, error) { return 0, false, nil }},
	}

	r := NewRegistry()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, r.RegisterTransform("x", tt.fn), ErrNotATransform)
		})
	}

	assert.ErrorIs(t, r.RegisterTransform("not-ident", strings.ToLower), ErrNotATransform)
	assert.ErrorIs(t, r.RegisterTransform("", func(s string) string { return s }), ErrNotATransform)
}
