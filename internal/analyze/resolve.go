package analyze

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrTypeNotFound  = errors.New("type not found")
	ErrAmbiguousType = errors.New("ambiguous type")
)

// Resolve finds a type by the name a rule file uses for it:
//   - "store.Order" (package name or import path suffix)
//   - "omap/examples/shop/store.Order" (full import path)
//   - "Order" (name only; must be unique in the graph)
func (g *TypeGraph) Resolve(id string) (*TypeInfo, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty type name", ErrTypeNotFound)
	}

	lastDot := strings.LastIndex(id, ".")
	if lastDot < 0 {
		return g.unique(id, func(TypeID) bool { return true })
	}

	pkg, name := id[:lastDot], id[lastDot+1:]
	if pkg == "" || name == "" {
		return nil, fmt.Errorf("%w: %q", ErrTypeNotFound, id)
	}

	// exact match for a fully qualified import path
	if t := g.GetType(TypeID{PkgPath: pkg, Name: name}); t != nil {
		return t, nil
	}

	return g.unique(name, func(tid TypeID) bool {
		return strings.HasSuffix(tid.PkgPath, "/"+pkg) || tid.Short() == id
	})
}

func (g *TypeGraph) unique(name string, keep func(TypeID) bool) (*TypeInfo, error) {
	var found []TypeID

	for tid := range g.Types {
		if tid.Name == name && keep(tid) {
			found = append(found, tid)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrTypeNotFound, name)
	case 1:
		return g.Types[found[0]], nil
	default:
		names := make([]string, len(found))
		for i, tid := range found {
			names[i] = tid.String()
		}

		sort.Strings(names)

		return nil, fmt.Errorf("%w %q: %s", ErrAmbiguousType, name, strings.Join(names, ", "))
	}
}

// Names returns the short IDs of every type in the graph, sorted.
func (g *TypeGraph) Names() []string {
	names := make([]string, 0, len(g.Types))
	for tid := range g.Types {
		names = append(names, tid.Short())
	}

	sort.Strings(names)

	return names
}
