package common

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Unpack2 returns the first two elements of s, zero-filling what is missing.
func Unpack2[S ~[]E, E any](s S) (first, second E) {
	switch len(s) {
	case 0:
		return
	case 1:
		return s[0], second
	default:
		return s[0], s[1]
	}
}
