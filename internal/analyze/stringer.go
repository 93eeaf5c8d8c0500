package analyze

import (
	"sort"
	"strings"
)

// TypeString returns a human-readable string representation of a TypeInfo,
// with package names shortened: "[]store.OrderItem", "*store.Address".
func TypeString(t *TypeInfo) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case TypeKindPointer:
		return "*" + TypeString(t.ElemType)
	case TypeKindSlice:
		return "[]" + TypeString(t.ElemType)
	}

	if t.IsNamed() {
		return t.ID.Short()
	}

	if t.GoType != nil {
		return t.GoType.String()
	}

	return "<unknown>"
}

// FieldPaths lists the dotted paths of all fields reachable from root
// through struct and pointer-to-struct fields, up to maxDepth segments.
// Slices are not descended into.
func FieldPaths(root *TypeInfo, maxDepth int) []string {
	var paths []string

	var walk func(t *TypeInfo, prefix []string, seen map[*TypeInfo]bool)

	walk = func(t *TypeInfo, prefix []string, seen map[*TypeInfo]bool) {
		t = t.Deref()
		if t == nil || t.Kind != TypeKindStruct || len(prefix) >= maxDepth || seen[t] {
			return
		}

		seen[t] = true
		defer delete(seen, t)

		for _, f := range t.Fields {
			path := append(append([]string(nil), prefix...), f.Name)
			paths = append(paths, strings.Join(path, "."))
			walk(f.Type, path, seen)
		}
	}

	walk(root, nil, make(map[*TypeInfo]bool))
	sort.Strings(paths)

	return paths
}
