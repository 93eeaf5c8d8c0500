package rulefile

import (
	"fmt"
	"go/token"

	"github.com/expr-lang/expr/parser"

	"omap/internal/diagnostic"
	"omap/tuple"
)

// Diagnostic codes reported by Validate.
const (
	CodeFileIsNil          = "file_is_nil"
	CodeUnsupportedVersion = "unsupported_version"
	CodeDuplicateTransform = "duplicate_transform"
	CodeInvalidTransform   = "invalid_transform_name"
	CodeMissingSourceType  = "missing_source_type"
	CodeMissingTargetType  = "missing_target_type"
	CodeRequiresArity      = "requires_arity"
	CodeMissingRequireType = "missing_require_type"
	CodeDuplicateRequire   = "duplicate_require"
	CodeInvalidRequireName = "invalid_require_name"
	CodeInvalidExcept      = "invalid_except"
	CodeSourceAndExpr      = "source_and_expr"
	CodeMissingSource      = "missing_source"
	CodeMissingTarget      = "missing_target"
	CodeInvalidSourcePath  = "invalid_source_path"
	CodeInvalidTargetPath  = "invalid_target_path"
	CodeDuplicateTarget    = "duplicate_target"
	CodeInvalidExpr        = "invalid_expr"
	CodeUnknownTransform   = "unknown_transform"
	CodeEmptyMapping       = "empty_mapping"
)

// Validate checks the structure of a rule file without resolving any type.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError(CodeFileIsNil, "rule file is nil", "", "")

		return res
	}

	if f.Version != "" && f.Version != "1" {
		res.AddError(CodeUnsupportedVersion, fmt.Sprintf("unsupported version %q", f.Version), "", "")
	}

	transforms := make(map[string]struct{}, len(f.Transforms))

	for _, name := range f.Transforms {
		if !token.IsIdentifier(name) {
			res.AddError(CodeInvalidTransform, fmt.Sprintf("transform name %q is not an identifier", name), "", name)

			continue
		}

		if _, ok := transforms[name]; ok {
			res.AddError(CodeDuplicateTransform, fmt.Sprintf("duplicate transform %q", name), "", name)

			continue
		}

		transforms[name] = struct{}{}
	}

	for i := range f.Mappings {
		validateMapping(res, &f.Mappings[i], transforms)
	}

	return res
}

func validateMapping(res *diagnostic.Diagnostics, m *Mapping, transforms map[string]struct{}) {
	pair := m.Pair()

	if m.Source == "" {
		res.AddError(CodeMissingSourceType, "mapping must specify a source type", pair, "")
	}

	if m.Target == "" {
		res.AddError(CodeMissingTargetType, "mapping must specify a target type", pair, "")
	}

	validateRequires(res, pair, m.Requires)

	for _, ex := range m.Except {
		if !token.IsIdentifier(ex) {
			res.AddError(CodeInvalidExcept, fmt.Sprintf("except entry %q is not a field name", ex), pair, ex)
		}
	}

	if len(m.Except) > 0 && !m.All {
		res.AddWarning(CodeInvalidExcept, "except has no effect without all", pair, "")
	}

	if !m.All && len(m.Properties) == 0 && len(m.Objects) == 0 && len(m.Collections) == 0 {
		res.AddWarning(CodeEmptyMapping, "mapping declares no rules", pair, "")
	}

	targets := make(map[string]struct{})

	checkTarget := func(path string) {
		if path == "" {
			res.AddError(CodeMissingTarget, "rule must specify a target", pair, "")

			return
		}

		if _, err := ParsePath(path); err != nil {
			res.AddError(CodeInvalidTargetPath, fmt.Sprintf("invalid target path: %v", err), pair, path)

			return
		}

		if _, dup := targets[path]; dup {
			res.AddError(CodeDuplicateTarget, fmt.Sprintf("target %q is mapped more than once", path), pair, path)
		}

		targets[path] = struct{}{}
	}

	for _, p := range m.Properties {
		checkTarget(p.Target)

		switch {
		case p.Source != "" && p.Expr != "":
			res.AddError(CodeSourceAndExpr, "property sets both source and expr", pair, p.Target)
		case p.Source == "" && p.Expr == "":
			res.AddError(CodeMissingSource, "property must specify source or expr", pair, p.Target)
		case p.Source != "":
			checkSource(res, pair, p.Source)
		default:
			validateExpr(res, pair, p, transforms)
		}
	}

	for _, links := range [][]Link{m.Objects, m.Collections} {
		for _, l := range links {
			checkTarget(l.Target)

			if l.Source == "" {
				res.AddError(CodeMissingSource, "rule must specify a source", pair, l.Target)

				continue
			}

			checkSource(res, pair, l.Source)
		}
	}
}

func checkSource(res *diagnostic.Diagnostics, pair, path string) {
	if _, err := ParsePath(path); err != nil {
		res.AddError(CodeInvalidSourcePath, fmt.Sprintf("invalid source path: %v", err), pair, path)
	}
}

func validateRequires(res *diagnostic.Diagnostics, pair string, reqs Requires) {
	if len(reqs) == 0 {
		return
	}

	if len(reqs) > tuple.MaxArity {
		res.AddError(CodeRequiresArity,
			fmt.Sprintf("%d requires, at most %d are supported", len(reqs), tuple.MaxArity), pair, "")
	}

	types := make(map[string]struct{}, len(reqs))
	names := make(map[string]struct{}, len(reqs))

	for _, req := range reqs {
		if req.Type == "" {
			res.AddError(CodeMissingRequireType, "require must specify a type", pair, req.Name)

			continue
		}

		if _, dup := types[req.Type]; dup {
			res.AddError(CodeDuplicateRequire, fmt.Sprintf("type %q is required more than once", req.Type), pair, req.Type)
		}

		types[req.Type] = struct{}{}

		if req.Name == "" {
			continue
		}

		if !token.IsIdentifier(req.Name) {
			res.AddError(CodeInvalidRequireName, fmt.Sprintf("require name %q is not an identifier", req.Name), pair, req.Name)

			continue
		}

		if _, dup := names[req.Name]; dup {
			res.AddError(CodeDuplicateRequire, fmt.Sprintf("name %q is used by more than one require", req.Name), pair, req.Name)
		}

		names[req.Name] = struct{}{}
	}
}

func validateExpr(res *diagnostic.Diagnostics, pair string, p Property, transforms map[string]struct{}) {
	tree, err := parser.Parse(p.Expr)
	if err != nil {
		res.AddError(CodeInvalidExpr, fmt.Sprintf("invalid expression: %v", err), pair, p.Target)

		return
	}

	refs := collectIdents(tree)

	for _, name := range refs.callees {
		if _, ok := transforms[name]; !ok {
			res.AddError(CodeUnknownTransform,
				fmt.Sprintf("expression calls %q, which is not listed in transforms", name), pair, p.Target)
		}
	}
}
