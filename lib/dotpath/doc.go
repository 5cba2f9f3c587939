// Package dotpath implements deep access to nested JSON-family values
// (maps, slices and scalars) through dotted/bracketed path expressions
// such as "user.addresses[0].city".
//
// The package focuses on:
//   - Resolving sub-values inside arbitrarily nested structures (Get)
//   - Writing sub-values with automatic creation of intermediate containers (Set)
//   - Pruning sub-fields including slice elements (Unset)
//   - Deep copying values so callers can isolate mutations (Clone)
//
// Path Syntax:
//
//	Segments are separated by dots. Slice positions are written in brackets,
//	"items[2].name", with "items.2.name" accepted as an equivalent spelling
//	when the traversed value is a slice. Bracket indices must be
//	non-negative decimal numbers. Empty segments ("a..b"), trailing
//	separators and unterminated brackets make a path malformed: Get treats
//	malformed paths as unresolvable, Set reports them as errors.
//
// Mutation Semantics:
//
//	Set and Unset mutate the containers they traverse and return the
//	(possibly replaced) root. Callers that need the original value
//	unchanged clone it first:
//
//	  next, err := dotpath.Set(dotpath.Clone(cur), "a.b", 42)
//
// All functions operate on the JSON-compatible value family: nil, bool,
// float64, string, []any and map[string]any. Values of other types are
// treated as opaque scalars.
package dotpath
