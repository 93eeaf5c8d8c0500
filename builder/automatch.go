package builder

import (
	"fmt"
	"reflect"

	"omap/expr"
	"omap/internal/match"
	"omap/rule"
)

// Diagnostic codes recorded by MapAll.
const (
	CodeUnmappedField = "unmapped_field"
)

// MapAll declares a Property rule for every exported, non-embedded target
// field that has a source field with a matching name (per WithNameMatching)
// and the identical type. Fields named in except are skipped. Target fields
// left without a rule are reported as warnings with suggestions.
func (c *Context) MapAll(except ...string) {
	skip := make(map[string]bool, len(except))
	for _, name := range except {
		skip[name] = true
	}

	sources := fieldsOf(c.source)
	names := make([]string, len(sources))

	for i, f := range sources {
		names[i] = f.Name
	}

	mode := c.b.opts.NameMatching
	matched := 0

	for _, tf := range fieldsOf(c.target) {
		if skip[tf.Name] {
			continue
		}

		sf, reason := findSource(sources, tf, mode)
		if sf == nil {
			suggestions := match.Suggest(tf.Name, names, func(name string) match.Compatibility {
				f, _ := c.source.FieldByName(name)

				return match.ReflectCompatibility(f.Type, tf.Type)
			})

			c.b.diags.AddWarning(CodeUnmappedField,
				fmt.Sprintf("target field %q: %s", tf.Name, reason),
				c.String(), tf.Name, suggestions...)

			continue
		}

		s := expr.Param("s", reflect.PointerTo(c.source))
		t := expr.Param("t", reflect.PointerTo(c.target))
		c.AddAccessor(rule.Property,
			expr.NewLambda(&expr.Member{Receiver: s, Field: *sf}, s),
			expr.NewLambda(&expr.Member{Receiver: t, Field: tf}, t))

		matched++
	}

	c.b.opts.Logger.V(1).Info("mapped all fields", "pair", c.String(), "matched", matched, "mode", mode.String())
}

// findSource prefers an exact name over a normalized one.
func findSource(sources []reflect.StructField, tf reflect.StructField, mode match.Mode) (*reflect.StructField, string) {
	reason := "no source field with a matching name"

	for _, m := range []match.Mode{match.Exact, mode} {
		for i := range sources {
			sf := &sources[i]
			if !m.Equal(sf.Name, tf.Name) {
				continue
			}

			if sf.Type == tf.Type {
				return sf, ""
			}

			reason = fmt.Sprintf("source field %q is %s, target is %s", sf.Name, sf.Type, tf.Type)
		}
	}

	return nil, reason
}

func fieldsOf(t reflect.Type) []reflect.StructField {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var out []reflect.StructField

	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() && !f.Anonymous {
			out = append(out, f)
		}
	}

	return out
}
