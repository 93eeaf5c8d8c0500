// Package tuple holds the dependency tuple types a mapping pair is declared
// with. A pair that depends on a logger and a clock receives one
// Of2[Logger, Clock] value per invocation.
package tuple

import (
	"fmt"
	"reflect"
	"strconv"
)

// MaxArity is the largest supported number of dependencies.
const MaxArity = 8

type Of1[T1 any] struct {
	V1 T1
}

type Of2[T1, T2 any] struct {
	V1 T1
	V2 T2
}

type Of3[T1, T2, T3 any] struct {
	V1 T1
	V2 T2
	V3 T3
}

type Of4[T1, T2, T3, T4 any] struct {
	V1 T1
	V2 T2
	V3 T3
	V4 T4
}

type Of5[T1, T2, T3, T4, T5 any] struct {
	V1 T1
	V2 T2
	V3 T3
	V4 T4
	V5 T5
}

type Of6[T1, T2, T3, T4, T5, T6 any] struct {
	V1 T1
	V2 T2
	V3 T3
	V4 T4
	V5 T5
	V6 T6
}

type Of7[T1, T2, T3, T4, T5, T6, T7 any] struct {
	V1 T1
	V2 T2
	V3 T3
	V4 T4
	V5 T5
	V6 T6
	V7 T7
}

type Of8[T1, T2, T3, T4, T5, T6, T7, T8 any] struct {
	V1 T1
	V2 T2
	V3 T3
	V4 T4
	V5 T5
	V6 T6
	V7 T7
	V8 T8
}

// FieldName is the name of the i-th (0-based) element field.
func FieldName(i int) string {
	return "V" + strconv.Itoa(i+1)
}

// Elems returns the element types of a tuple type in order, or nil if t is
// not shaped like one (a struct with fields V1..Vn, 1 <= n <= MaxArity).
func Elems(t reflect.Type) []reflect.Type {
	if t == nil || t.Kind() != reflect.Struct || t.NumField() == 0 || t.NumField() > MaxArity {
		return nil
	}

	elems := make([]reflect.Type, t.NumField())
	for i := range elems {
		f := t.Field(i)
		if f.Name != FieldName(i) {
			return nil
		}

		elems[i] = f.Type
	}

	return elems
}

// TypeOf builds a tuple type with the given element types. It is
// structurally equivalent to OfN but not identical to it.
func TypeOf(elems ...reflect.Type) (reflect.Type, error) {
	if len(elems) == 0 || len(elems) > MaxArity {
		return nil, fmt.Errorf("tuple arity %d out of range 1..%d", len(elems), MaxArity)
	}

	fields := make([]reflect.StructField, len(elems))
	for i, e := range elems {
		fields[i] = reflect.StructField{Name: FieldName(i), Type: e}
	}

	return reflect.StructOf(fields), nil
}
