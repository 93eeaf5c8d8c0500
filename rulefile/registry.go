package rulefile

import (
	"fmt"
	"go/token"
	"path"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"omap/internal/common"
)

// Registry resolves the type and transform names a rule file uses.
type Registry struct {
	types      []registered
	transforms map[string]Transform
}

type registered struct {
	name string
	t    reflect.Type
}

// Transform is a registered func(In) Out or func(In) (Out, error).
type Transform struct {
	Name   string
	In     reflect.Type
	Out    reflect.Type
	HasErr bool
	fn     reflect.Value
}

// Func returns the registered function.
func (t Transform) Func() any { return t.fn.Interface() }

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{transforms: make(map[string]Transform)}
}

// Register adds T under name. With an empty name T is found by its type
// name, package-qualified name or full path only.
func Register[T any](r *Registry, name string) {
	r.RegisterType(reflect.TypeFor[T](), name)
}

// RegisterType is Register for a reflect.Type.
func (r *Registry) RegisterType(t reflect.Type, name string) {
	r.types = append(r.types, registered{name: name, t: t})
}

// Types returns the registered types sorted by their full name.
func (r *Registry) Types() []reflect.Type {
	out := make([]reflect.Type, 0, len(r.types))
	seen := make(map[reflect.Type]bool, len(r.types))

	for _, rt := range r.types {
		if !seen[rt.t] {
			seen[rt.t] = true
			out = append(out, rt.t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return fullName(out[i]) < fullName(out[j]) })

	return out
}

// Type resolves a type name:
//   - a name given to Register
//   - "Order" (type name only)
//   - "store.Order" (package name or import path suffix)
//   - "example.com/store.Order" (full import path)
func (r *Registry) Type(id string) (reflect.Type, error) {
	for _, rt := range r.types {
		if rt.name != "" && rt.name == id {
			return rt.t, nil
		}
	}

	var found []reflect.Type

	add := func(t reflect.Type) {
		for _, f := range found {
			if f == t {
				return
			}
		}

		found = append(found, t)
	}

	lastDot := strings.LastIndex(id, ".")

	for _, rt := range r.types {
		t := rt.t

		if lastDot < 0 {
			if common.TypeName(t) == id {
				add(t)
			}

			continue
		}

		pkg, name := id[:lastDot], id[lastDot+1:]
		if t.Name() != name {
			continue
		}

		if t.PkgPath() == pkg || strings.HasSuffix(t.PkgPath(), "/"+pkg) || common.PkgAlias(t.PkgPath()) == pkg {
			add(t)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, id)
	case 1:
		t, _ := common.First(found)

		return t, nil
	default:
		names := make([]string, len(found))
		for i, t := range found {
			names[i] = fullName(t)
		}

		sort.Strings(names)

		return nil, fmt.Errorf("%w %q: %s", ErrAmbiguousType, id, strings.Join(names, ", "))
	}
}

// RegisterTransform adds fn under name. fn must take one argument and return
// one result, optionally followed by an error. With an empty name the
// function's own name is used.
func (r *Registry) RegisterTransform(name string, fn any) error {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("%w: got %T", ErrNotATransform, fn)
	}

	ft := v.Type()
	if ft.NumIn() != 1 || ft.IsVariadic() {
		return fmt.Errorf("%w: %s takes %d arguments", ErrNotATransform, ft, ft.NumIn())
	}

	tr := Transform{Name: name, In: ft.In(0), fn: v}

	switch ft.NumOut() {
	case 1:
		tr.Out = ft.Out(0)
	case 2:
		if ft.Out(1) != errorType {
			return fmt.Errorf("%w: second result of %s is not error", ErrNotATransform, ft)
		}

		tr.Out, tr.HasErr = ft.Out(0), true
	default:
		return fmt.Errorf("%w: %s returns %d results", ErrNotATransform, ft, ft.NumOut())
	}

	if tr.Name == "" {
		tr.Name = funcName(v)
	}

	if !token.IsIdentifier(tr.Name) {
		return fmt.Errorf("%w: name %q is not an identifier", ErrNotATransform, tr.Name)
	}

	r.transforms[tr.Name] = tr

	return nil
}

// Transform returns the transform registered under name.
func (r *Registry) Transform(name string) (Transform, bool) {
	t, ok := r.transforms[name]

	return t, ok
}

var errorType = reflect.TypeFor[error]()

// funcName is "ToUpper" for strings.ToUpper.
func funcName(v reflect.Value) string {
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return ""
	}

	_, file := path.Split(fn.Name())
	_, name := common.Unpack2(strings.SplitN(file, ".", 2))

	return name
}

func fullName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.String()
	}

	return t.PkgPath() + "." + t.Name()
}
