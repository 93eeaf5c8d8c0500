package rulefile

import "errors"

var (
	ErrUnknownType      = errors.New("unknown type")
	ErrAmbiguousType    = errors.New("ambiguous type")
	ErrUnknownTransform = errors.New("unknown transform")
	ErrNotATransform    = errors.New("transform must be func(T) R or func(T) (R, error)")
	ErrInvalidFile      = errors.New("invalid rule file")
	ErrExpression       = errors.New("invalid expression")
)
