package rulefile

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// ParsePath splits a dotted field path such as "Address.Street" into its
// segments.
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}

		if !token.IsIdentifier(seg) {
			return nil, fmt.Errorf("invalid path %q: invalid identifier %q", path, seg)
		}
	}

	return segments, nil
}
