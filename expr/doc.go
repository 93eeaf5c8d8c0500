// Package expr implements the accessor expressions mapping rules are declared
// with: a small tree of parameters, member accesses, calls, constants and
// assignments wrapped in lambdas.
//
// Trees are immutable. Rewrite returns a new tree that shares every untouched
// subtree with its input, which is what the rule compiler relies on when it
// substitutes fresh parameters into user supplied accessors.
//
// Compile turns a lambda into a closure. Member paths are resolved to field
// indexes once; calling the result never looks anything up by name.
package expr
