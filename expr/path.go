package expr

import (
	"fmt"
	"reflect"
	"strings"
)

// NewPath builds the member chain for a dotted field path such as
// "Address.Street" starting at root. Pointer fields are followed.
func NewPath(root Expr, path string) (Expr, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrFieldNotFound)
	}

	var cur Expr = root

	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrFieldNotFound, path)
		}

		m, err := MemberOf(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}

		cur = m
	}

	return cur, nil
}

// Path is the accessor for a dotted field path of S. The path must end in a
// field of type V.
func Path[S, V any](path string) (Accessor[S, V], error) {
	p := Param("s", reflect.TypeFor[*S]())

	body, err := NewPath(p, path)
	if err != nil {
		return Accessor[S, V]{}, err
	}

	if want := reflect.TypeFor[V](); body.Type() != want {
		return Accessor[S, V]{}, fmt.Errorf("%w: %s.%s is %s, not %s",
			ErrTypeMismatch, reflect.TypeFor[S](), path, body.Type(), want)
	}

	return Accessor[S, V]{lambda: NewLambda(body, p)}, nil
}

// MustPath is like Path but panics on error.
func MustPath[S, V any](path string) Accessor[S, V] {
	a, err := Path[S, V](path)
	if err != nil {
		panic(err)
	}

	return a
}
