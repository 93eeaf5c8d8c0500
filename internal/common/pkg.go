package common

import (
	"path"
	"reflect"
	"strings"
)

// UnknownStr is the String() fallback for out-of-range enum values.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// TypeName returns the short, package-less name of t, dereferencing pointers.
// Unnamed types fall back to their Go syntax ("[]string", "map[string]int").
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if name := t.Name(); name != "" {
		// generic instantiations carry their full argument list in Name()
		if i := strings.IndexByte(name, '['); i > 0 {
			return name[:i]
		}

		return name
	}

	return t.String()
}

// PairKey formats a source/target pair the way diagnostics and errors print it.
func PairKey(src, dst reflect.Type) string {
	return TypeName(src) + "->" + TypeName(dst)
}
