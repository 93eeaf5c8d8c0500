package rule

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind selects how a rule is compiled. It is fixed when the rule is declared.
type Kind int

const (
	_ Kind = iota // zero value is invalid

	// Property assigns a source value to a target field.
	Property
	// Object pairs a source value with a target field that is mapped by
	// another rule set.
	Object
	// Collection is like Object for sequences.
	Collection
	// Function runs a user supplied callable.
	Function

	// KindTotal is the number of kinds, invalid value included.
	KindTotal = int(iota)
)

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k > 0 && int(k) < KindTotal
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
