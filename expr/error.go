package expr

import "errors"

var (
	ErrUnboundParameter = errors.New("parameter is not bound by the lambda")
	ErrNotAssignable    = errors.New("left side of assignment is not assignable")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrFieldNotFound    = errors.New("field not found")
	ErrArity            = errors.New("wrong number of arguments")
)
