// Package diagnostic collects coded, severity-tagged messages produced while
// declaring, compiling, loading or linting mapping rules.
//
// Key capabilities:
//   - Unmapped field warnings with near-miss suggestions
//   - Declaration errors keyed by type pair and rule
//   - Conversion notes from the linter
package diagnostic
