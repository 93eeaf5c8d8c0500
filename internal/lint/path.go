package lint

import (
	"fmt"

	"omap/internal/analyze"
	"omap/internal/match"
	"omap/rulefile"
)

// pathError is a field path that does not resolve. Suggestions name the
// fields of the struct the failing segment was looked up on.
type pathError struct {
	msg         string
	suggestions []string
}

func (e *pathError) Error() string { return e.msg }

// resolvePath walks a dotted field path, following pointers the way the
// compiled accessors do.
func resolvePath(root *analyze.TypeInfo, path string) (*analyze.FieldInfo, *pathError) {
	segments, err := rulefile.ParsePath(path)
	if err != nil {
		return nil, &pathError{msg: err.Error()}
	}

	current := root

	var fld *analyze.FieldInfo

	for _, seg := range segments {
		current = current.Deref()
		if current == nil {
			return nil, &pathError{msg: fmt.Sprintf("nil type while resolving %q", seg)}
		}

		if current.Kind != analyze.TypeKindStruct {
			return nil, &pathError{msg: fmt.Sprintf("cannot access field %q on %s (%s)", seg, analyze.TypeString(current), current.Kind)}
		}

		fld = current.Field(seg)
		if fld == nil {
			return nil, &pathError{
				msg:         fmt.Sprintf("field %q not found in %s", seg, analyze.TypeString(current)),
				suggestions: match.Suggest(seg, current.FieldNames(), nil),
			}
		}

		current = fld.Type
	}

	return fld, nil
}
