package rulefile

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"omap/internal/common"
)

// --- StringArray YAML methods ---

// UnmarshalYAML accepts either a single string or a list of strings.
func (s *StringArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringArray{str}
		} else {
			*s = StringArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or list of strings at line %d", node.Line)
	}
}

// MarshalYAML writes a single element as a plain string.
func (s StringArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or "" if empty.
func (s StringArray) First() string {
	v, _ := common.First(s)

	return v
}

func (s StringArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// --- Requires YAML methods ---

// UnmarshalYAML accepts "Type", {type: Type, name: n} and {Type: n} items.
func (r *Requires) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("requires: expected a list at line %d", node.Line)
	}

	result := make(Requires, 0, len(node.Content))

	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			result = append(result, Require{Type: item.Value})

		case yaml.MappingNode:
			req, err := decodeRequire(item)
			if err != nil {
				return err
			}

			result = append(result, req)

		default:
			return fmt.Errorf("requires: invalid item at line %d", item.Line)
		}
	}

	*r = result

	return nil
}

func decodeRequire(node *yaml.Node) (Require, error) {
	// explicit {type: ..., name: ...}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "type" {
			var req Require
			if err := node.Decode(&req); err != nil {
				return Require{}, err
			}

			return req, nil
		}
	}

	// {Type: name}
	if len(node.Content) != 2 {
		return Require{}, errors.New("requires: expected {type: T, name: n} or {T: n}")
	}

	key, val := common.Unpack2(node.Content)
	if val.Kind != yaml.ScalarNode {
		return Require{}, fmt.Errorf("requires: name of %q must be a string", key.Value)
	}

	return Require{Type: key.Value, Name: val.Value}, nil
}

// Types returns the required type names in order.
func (r Requires) Types() []string {
	out := make([]string, len(r))
	for i, req := range r {
		out[i] = req.Type
	}

	return out
}
