package expr

import (
	"reflect"
	"strings"

	"golang.org/x/exp/slices"
)

// probe calls sel with a pointer to a zero S and looks for the field whose
// address and type match the pointer sel returns. Nil pointer-to-struct
// fields are allocated first, so selectors may follow them; a type already
// allocated on the way down is left nil. The returned fields form the path
// from S to that field. Selectors that still panic, that return a pointer
// outside S, or whose pointer matches more than one field (zero-size fields
// share addresses) report false.
func probe(s reflect.Type, sel func(ptr reflect.Value) reflect.Value) (path []reflect.StructField, ok bool) {
	defer func() {
		if recover() != nil {
			path, ok = nil, false
		}
	}()

	root := reflect.New(s)
	allocate(root.Elem(), map[reflect.Type]bool{s: true})

	got := sel(root)
	if got.Kind() == reflect.Interface {
		got = got.Elem()
	}

	if !got.IsValid() || got.Kind() != reflect.Pointer || got.IsNil() {
		return nil, false
	}

	matches := findFields(root.Elem(), got.Pointer(), got.Type().Elem(), nil, nil)
	if len(matches) != 1 {
		return nil, false
	}

	return matches[0], true
}

// allocate fills the nil pointer-to-struct fields of v, recursively.
// Types in seen are on the current path and stay nil.
func allocate(v reflect.Value, seen map[reflect.Type]bool) {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		fv := v.Field(i)

		switch {
		case f.Type.Kind() == reflect.Struct:
			allocate(fv, seen)
		case f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct:
			elem := f.Type.Elem()
			if seen[elem] || !fv.IsNil() {
				continue
			}

			fv.Set(reflect.New(elem))

			seen[elem] = true
			allocate(fv.Elem(), seen)
			delete(seen, elem)
		}
	}
}

// findFields returns the path of every exported field of v, nested ones
// included, that lives at addr and has type want.
func findFields(v reflect.Value, addr uintptr, want reflect.Type, prefix []reflect.StructField, out [][]reflect.StructField) [][]reflect.StructField {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		fv := v.Field(i)
		path := append(slices.Clip(prefix), f)

		if fv.Addr().Pointer() == addr && f.Type == want {
			out = append(out, path)
		}

		switch {
		case f.Type.Kind() == reflect.Struct:
			out = findFields(fv, addr, want, path, out)
		case f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct && !fv.IsNil():
			out = findFields(fv.Elem(), addr, want, path, out)
		}
	}

	return out
}

// Selected returns the dotted path of the field sel returns a pointer to, for
// example Selected(func(c *Contact) any { return &c.FullName }) is "FullName".
func Selected[T any](sel func(*T) any) (string, bool) {
	path, ok := probe(reflect.TypeFor[T](), func(p reflect.Value) reflect.Value {
		return reflect.ValueOf(sel(p.Interface().(*T)))
	})
	if !ok {
		return "", false
	}

	names := make([]string, len(path))
	for i, f := range path {
		names[i] = f.Name
	}

	return strings.Join(names, "."), true
}
