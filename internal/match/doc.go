// Package match provides identifier normalization, edit distance and
// candidate ranking used to pair target fields with source fields.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - ReflectCompatibility, TypesCompatibility: grade how a source type fits a target type
//   - Rank, Suggest: rank source field names for a target field
package match
