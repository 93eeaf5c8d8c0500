// Package lint checks rule files against the types of loaded Go packages:
// that the named types exist, that field paths resolve, and that the types
// on both sides of a rule fit together. Near misses come with suggestions.
package lint

import (
	"errors"
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/exp/slices"

	"omap/internal/analyze"
	"omap/internal/diagnostic"
	"omap/internal/match"
	"omap/rulefile"
)

// Diagnostic codes reported by Check.
const (
	CodeTypeNotFound          = "type_not_found"
	CodeAmbiguousType         = "ambiguous_type"
	CodeNotAStruct            = "not_a_struct"
	CodeRequireNotFound       = "require_type_not_found"
	CodeInvalidSourcePath     = "invalid_source_path"
	CodeInvalidTargetPath     = "invalid_target_path"
	CodeIncompatibleTypes     = "incompatible_types"
	CodeConversion            = "conversion"
	CodeNotASlice             = "not_a_slice"
	CodeUnknownIdentifier     = "unknown_identifier"
	CodeUnmappedField         = "unmapped_field"
	CodeUnknownExcept         = "unknown_except"
	CodeMissingNestedMapping  = "missing_nested_mapping"
	CodeUnsupportedExpression = "unsupported_expression"
)

// Linter checks rule files against a type graph.
type Linter struct {
	opts  *options
	graph *analyze.TypeGraph
}

// New creates a Linter for the types in graph.
func New(graph *analyze.TypeGraph, opts ...Option) *Linter {
	return &Linter{opts: new(options).apply(opts...).correct(), graph: graph}
}

// mapping is a rule file mapping with its types resolved.
type mapping struct {
	*rulefile.Mapping
	src, dst *analyze.TypeInfo
}

// Check reports every problem of f it can find. It does not repeat the
// structural checks of rulefile.Validate.
func (l *Linter) Check(f *rulefile.File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		return res
	}

	resolved := make([]mapping, 0, len(f.Mappings))
	declared := make(map[[2]*analyze.TypeInfo]bool)

	for i := range f.Mappings {
		m := &f.Mappings[i]

		src := l.resolveStruct(res, m.Pair(), m.Source)
		dst := l.resolveStruct(res, m.Pair(), m.Target)

		l.checkRequires(res, m)

		if src == nil || dst == nil {
			continue
		}

		declared[[2]*analyze.TypeInfo{src, dst}] = true
		resolved = append(resolved, mapping{Mapping: m, src: src, dst: dst})
	}

	for _, m := range resolved {
		before := len(res.Errors)

		l.checkMapping(res, m, declared)

		l.opts.Logger.V(1).Info("checked mapping", "pair", m.Pair(), "errors", len(res.Errors)-before)
	}

	return res
}

func (l *Linter) resolveStruct(res *diagnostic.Diagnostics, pair, id string) *analyze.TypeInfo {
	if id == "" {
		return nil // reported by rulefile.Validate
	}

	t, err := l.graph.Resolve(id)
	switch {
	case errors.Is(err, analyze.ErrAmbiguousType):
		res.AddError(CodeAmbiguousType, err.Error(), pair, id)

		return nil
	case err != nil:
		res.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.SeverityError,
			Code:        CodeTypeNotFound,
			Message:     fmt.Sprintf("type %q not found in the loaded packages", id),
			TypePair:    pair,
			Field:       id,
			Suggestions: match.Suggest(id, l.graph.Names(), nil),
		})

		return nil
	}

	if t.Kind != analyze.TypeKindStruct {
		res.AddError(CodeNotAStruct, fmt.Sprintf("%s is a %s type, not a struct", t.ID, t.Kind), pair, id)

		return nil
	}

	return t
}

func (l *Linter) checkRequires(res *diagnostic.Diagnostics, m *rulefile.Mapping) {
	for _, req := range m.Requires {
		if req.Type == "" {
			continue
		}

		if _, err := l.graph.Resolve(req.Type); err != nil {
			res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityError,
				Code:        CodeRequireNotFound,
				Message:     fmt.Sprintf("required type %q: %v", req.Type, err),
				TypePair:    m.Pair(),
				Field:       req.Type,
				Suggestions: match.Suggest(req.Type, l.graph.Names(), nil),
			})
		}
	}
}

func (l *Linter) checkMapping(res *diagnostic.Diagnostics, m mapping, declared map[[2]*analyze.TypeInfo]bool) {
	pair := m.Pair()
	explicit := make(map[string]bool)

	for _, p := range m.Properties {
		top, _, _ := strings.Cut(p.Target, ".")
		explicit[top] = true

		dst, perr := resolvePath(m.dst, p.Target)
		if perr != nil {
			addPathError(res, CodeInvalidTargetPath, pair, p.Target, perr)

			continue
		}

		if p.Expr != "" {
			l.checkExpr(res, m, p)

			continue
		}

		src, perr := resolvePath(m.src, p.Source)
		if perr != nil {
			addPathError(res, CodeInvalidSourcePath, pair, p.Source, perr)

			continue
		}

		checkAssign(res, pair, p.Source, src.Type, p.Target, dst.Type)
	}

	for _, set := range []struct {
		collection bool
		links      []rulefile.Link
	}{{false, m.Objects}, {true, m.Collections}} {
		for _, link := range set.links {
			top, _, _ := strings.Cut(link.Target, ".")
			explicit[top] = true

			l.checkLink(res, m, link, set.collection, declared)
		}
	}

	if m.All {
		l.checkAll(res, m, explicit)
	}
}

func addPathError(res *diagnostic.Diagnostics, code, pair, path string, err *pathError) {
	res.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.SeverityError,
		Code:        code,
		Message:     err.Error(),
		TypePair:    pair,
		Field:       path,
		Suggestions: err.suggestions,
	})
}

// checkAssign mirrors what rulefile.Apply accepts for a path source:
// identical or assignable types, or a conversion other than integer to
// string.
func checkAssign(res *diagnostic.Diagnostics, pair, srcPath string, src *analyze.TypeInfo, dstPath string, dst *analyze.TypeInfo) {
	switch match.TypesCompatibility(src.GoType, dst.GoType) {
	case match.Identical, match.Assignable:
		return
	case match.Convertible:
		if !integerToString(src.GoType, dst.GoType) {
			res.AddInfo(CodeConversion,
				fmt.Sprintf("%s (%s) is converted to %s", srcPath, analyze.TypeString(src), analyze.TypeString(dst)), pair, dstPath)

			return
		}
	}

	res.AddError(CodeIncompatibleTypes,
		fmt.Sprintf("%s is %s, %s is %s", srcPath, analyze.TypeString(src), dstPath, analyze.TypeString(dst)), pair, dstPath)
}

func integerToString(src, dst types.Type) bool {
	s, ok := src.Underlying().(*types.Basic)
	if !ok || s.Info()&types.IsInteger == 0 {
		return false
	}

	d, ok := dst.Underlying().(*types.Basic)

	return ok && d.Info()&types.IsString != 0
}

func (l *Linter) checkExpr(res *diagnostic.Diagnostics, m mapping, p rulefile.Property) {
	vars, _, err := rulefile.Identifiers(p.Expr)
	if err != nil {
		res.AddError(CodeUnsupportedExpression, err.Error(), m.Pair(), p.Target)

		return
	}

	known := m.src.FieldNames()

	for i, req := range m.Requires {
		name := req.Name
		if name == "" {
			name = fmt.Sprintf("dep%d", i+1)
		}

		known = append(known, name)
	}

	for _, v := range vars {
		if slices.Contains(known, v) {
			continue
		}

		res.AddWarning(CodeUnknownIdentifier,
			fmt.Sprintf("expression for %s reads %q, which is neither a field of %s nor a dependency", p.Target, v, analyze.TypeString(m.src)),
			m.Pair(), p.Target, match.Suggest(v, known, nil)...)
	}
}

func (l *Linter) checkLink(res *diagnostic.Diagnostics, m mapping, link rulefile.Link, collection bool, declared map[[2]*analyze.TypeInfo]bool) {
	pair := m.Pair()

	src, perr := resolvePath(m.src, link.Source)
	if perr != nil {
		addPathError(res, CodeInvalidSourcePath, pair, link.Source, perr)
	}

	dst, terr := resolvePath(m.dst, link.Target)
	if terr != nil {
		addPathError(res, CodeInvalidTargetPath, pair, link.Target, terr)
	}

	if perr != nil || terr != nil {
		return
	}

	srcT, dstT := src.Type.Deref(), dst.Type.Deref()

	if collection {
		if !isSequence(srcT) || !isSequence(dstT) {
			res.AddError(CodeNotASlice,
				fmt.Sprintf("collection %s (%s) -> %s (%s) needs slices on both sides",
					link.Source, analyze.TypeString(src.Type), link.Target, analyze.TypeString(dst.Type)), pair, link.Target)

			return
		}

		srcT, dstT = srcT.ElemType.Deref(), dstT.ElemType.Deref()
	}

	if srcT.Kind != analyze.TypeKindStruct || dstT.Kind != analyze.TypeKindStruct {
		// nothing to map field by field
		checkAssign(res, pair, link.Source, srcT, link.Target, dstT)

		return
	}

	if !declared[[2]*analyze.TypeInfo{srcT, dstT}] {
		res.AddWarning(CodeMissingNestedMapping,
			fmt.Sprintf("no mapping from %s to %s in this file", srcT.ID.Short(), dstT.ID.Short()), pair, link.Target)
	}
}

func isSequence(t *analyze.TypeInfo) bool {
	return t != nil && (t.Kind == analyze.TypeKindSlice || t.Kind == analyze.TypeKindArray)
}

// checkAll reports the target fields "all" leaves unmapped, the way
// builder's MapAll does at build time.
func (l *Linter) checkAll(res *diagnostic.Diagnostics, m mapping, explicit map[string]bool) {
	pair := m.Pair()
	skip := make(map[string]bool, len(m.Except)+len(explicit))

	for name := range explicit {
		skip[name] = true
	}

	for _, name := range m.Except {
		skip[name] = true

		if m.dst.Field(name) == nil {
			res.AddWarning(CodeUnknownExcept,
				fmt.Sprintf("except names %q, which is not a field of %s", name, analyze.TypeString(m.dst)),
				pair, name, match.Suggest(name, m.dst.FieldNames(), nil)...)
		}
	}

	sources := m.src.FieldNames()

	for _, tf := range m.dst.Fields {
		if skip[tf.Name] || tf.Embedded {
			continue
		}

		if reason := l.findSource(m.src, tf); reason != "" {
			suggestions := match.Suggest(tf.Name, sources, func(name string) match.Compatibility {
				return match.TypesCompatibility(m.src.Field(name).Type.GoType, tf.Type.GoType)
			})

			res.AddWarning(CodeUnmappedField, fmt.Sprintf("target field %q: %s", tf.Name, reason), pair, tf.Name, suggestions...)
		}
	}
}

// findSource returns "" when tf has a source, else why not.
func (l *Linter) findSource(src *analyze.TypeInfo, tf analyze.FieldInfo) string {
	reason := "no source field with a matching name"

	for _, mode := range []match.Mode{match.Exact, l.opts.NameMatching} {
		for _, sf := range src.Fields {
			if sf.Embedded || !mode.Equal(sf.Name, tf.Name) {
				continue
			}

			if types.Identical(sf.Type.GoType, tf.Type.GoType) {
				return ""
			}

			reason = fmt.Sprintf("source field %q is %s, target is %s", sf.Name, analyze.TypeString(sf.Type), analyze.TypeString(tf.Type))
		}
	}

	return reason
}
