// Package mapping holds compiled rules and the immutable Configuration a
// build produces. Everything here is safe for concurrent read-only use.
package mapping
