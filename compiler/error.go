package compiler

import (
	"errors"
	"fmt"
	"reflect"

	"omap/internal/common"
)

var (
	ErrTargetMemberNotFound = errors.New("target member not found")
	ErrTargetNotAssignable  = errors.New("target is not assignable")
	ErrInvalidEntry         = errors.New("invalid rule entry")
	ErrDeclaration          = errors.New("invalid declaration")
)

type Code int

const (
	TargetMemberNotFound Code = iota + 1
	TargetNotAssignable
	InvalidEntry
	Declaration
)

func (c Code) String() string {
	switch c {
	case TargetMemberNotFound:
		return "target_member_not_found"
	case TargetNotAssignable:
		return "target_not_assignable"
	case InvalidEntry:
		return "invalid_entry"
	case Declaration:
		return "declaration"
	default:
		return common.UnknownStr
	}
}

// Error identifies the rule a build failed on. Index is the position of the
// rule in declaration order, -1 for errors not tied to a rule.
type Error struct {
	Code        Code
	Index       int
	Description string
	SourceType  reflect.Type
	TargetType  reflect.Type
	err         error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("omap: %s: %v", e.Description, e.err)
	}

	return fmt.Sprintf("omap: rule %d (%s): %v", e.Index, e.Description, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

func sentinel(code Code) error {
	switch code {
	case TargetMemberNotFound:
		return ErrTargetMemberNotFound
	case TargetNotAssignable:
		return ErrTargetNotAssignable
	case Declaration:
		return ErrDeclaration
	default:
		return ErrInvalidEntry
	}
}

func newError(code Code, index int, e ruleInfo, format string, args ...any) *Error {
	return &Error{
		Code:        code,
		Index:       index,
		Description: e.description,
		SourceType:  e.source,
		TargetType:  e.target,
		err:         fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel(code)),
	}
}

// NewDeclarationError reports a declaration made for the pair that cannot be
// turned into rules, for example a dependency type listed twice.
func NewDeclarationError(source, target reflect.Type, cause error) *Error {
	return &Error{
		Code:        Declaration,
		Index:       -1,
		Description: common.PairKey(source, target),
		SourceType:  source,
		TargetType:  target,
		err:         fmt.Errorf("%w: %w", ErrDeclaration, cause),
	}
}
