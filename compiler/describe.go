package compiler

import (
	"fmt"
	"reflect"

	"omap/expr"
	"omap/internal/common"
	"omap/rule"
)

type ruleInfo struct {
	source      reflect.Type
	target      reflect.Type
	description string
}

// Describe renders the description of a declared rule:
// "S.member -> T.member" with "?" for an accessor that is not a member
// access, or "MappingFunction(S, T)".
func Describe(e rule.Entry) string {
	src, dst := common.TypeName(e.SourceType()), common.TypeName(e.TargetType())

	a, ok := e.(*rule.AccessorEntry)
	if !ok {
		return fmt.Sprintf("MappingFunction(%s, %s)", src, dst)
	}

	return fmt.Sprintf("%s.%s -> %s.%s", src, memberName(a.Source()), dst, memberName(a.Target()))
}

func memberName(l *expr.Lambda) string {
	if m := expr.ExtractMember(l); m != nil {
		return m.Field.Name
	}

	return "?"
}
