package mapping

import (
	"reflect"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/exp/slices"

	"omap/internal/common"
	"omap/internal/diagnostic"
	"omap/rule"
)

// Configuration is the ordered, immutable result of one build.
type Configuration struct {
	rules    []Rule
	warnings []diagnostic.Diagnostic
}

// NewConfiguration copies rules and warnings into a new configuration.
func NewConfiguration(rules []Rule, warnings []diagnostic.Diagnostic) *Configuration {
	return &Configuration{rules: slices.Clone(rules), warnings: slices.Clone(warnings)}
}

// Len is the number of rules.
func (c *Configuration) Len() int { return len(c.rules) }

// Rules returns the rules in declaration order.
func (c *Configuration) Rules() []Rule { return slices.Clone(c.rules) }

// Rule returns the i-th rule.
func (c *Configuration) Rule(i int) Rule { return c.rules[i] }

// Warnings are the non-fatal diagnostics of the build.
func (c *Configuration) Warnings() []diagnostic.Diagnostic { return slices.Clone(c.warnings) }

// For returns the rules declared for the pair, in declaration order.
func (c *Configuration) For(src, dst reflect.Type) []Rule {
	var out []Rule

	for _, r := range c.rules {
		if r.SourceType() == src && r.TargetType() == dst {
			out = append(out, r)
		}
	}

	return out
}

// Pairs returns the declared pairs in order of first appearance.
func (c *Configuration) Pairs() []Pair {
	var (
		out  []Pair
		seen = map[Pair]bool{}
	)

	for _, r := range c.rules {
		p := Pair{Source: r.SourceType(), Target: r.TargetType()}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	return out
}

// NestedPairs returns the struct pairs Object and Collection rules hand to
// the runtime mapper that no rule of this configuration declares. Pointer
// and slice types are reduced to their element struct types.
func (c *Configuration) NestedPairs() []Pair {
	var d dealer

	for _, p := range c.Pairs() {
		d.markDone(p.Source, p.Target)
	}

	for _, r := range c.rules {
		n, ok := r.(*NestedRule)
		if !ok {
			continue
		}

		src, dst := structOf(n.SourceValueType()), structOf(n.ValueType())
		if src != nil && dst != nil {
			d.need(src, dst)
		}
	}

	var out []Pair
	for p, ok := d.next(); ok; p, ok = d.next() {
		out = append(out, p)
	}

	return out
}

func structOf(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Struct:
			return t
		default:
			return nil
		}
	}

	return nil
}

type dependencyJSON struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type ruleJSON struct {
	Kind         rule.Kind        `json:"kind"`
	Source       string           `json:"source"`
	Target       string           `json:"target"`
	Description  string           `json:"description"`
	ValueType    string           `json:"valueType,omitempty"`
	Dependencies []dependencyJSON `json:"dependencies,omitempty"`
}

type configurationJSON struct {
	Rules       []ruleJSON `json:"rules"`
	NestedPairs []string   `json:"nestedPairs,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
}

// MarshalJSON describes the configuration; callables are not serialized.
func (c *Configuration) MarshalJSON() ([]byte, error) {
	out := configurationJSON{Rules: make([]ruleJSON, 0, len(c.rules))}

	for _, r := range c.rules {
		rj := ruleJSON{
			Kind:        r.Kind(),
			Source:      common.TypeName(r.SourceType()),
			Target:      common.TypeName(r.TargetType()),
			Description: r.Description(),
		}

		if n, ok := r.(*NestedRule); ok {
			rj.ValueType = n.ValueType().String()
		}

		for _, d := range r.Dependencies() {
			rj.Dependencies = append(rj.Dependencies, dependencyJSON{Type: d.Type.String(), Name: d.Name})
		}

		out.Rules = append(out.Rules, rj)
	}

	for _, p := range c.NestedPairs() {
		out.NestedPairs = append(out.NestedPairs, p.String())
	}

	for _, w := range c.warnings {
		out.Warnings = append(out.Warnings, w.String())
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(out)
}
