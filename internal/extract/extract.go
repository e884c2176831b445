// # internal/extract/extract.go
//
// Package extract converts one parsed source file into a graph of
// declaration nodes and dependency edges. The work is two passes over
// the syntax tree: discovery classifies declarations and assigns their
// stable identifiers, linking re-walks the tree with a scope stack and
// derives containment, import, call, inheritance and usage edges
// through the semantic oracle.
package extract

// Extract runs both passes over a file and assembles the result. The
// accumulator is fresh per invocation; nothing is shared across files.
func Extract(fc FileContext, o Oracle) *Result {
	acc := NewAccumulator()
	set := Discover(fc, acc)
	Link(fc, o, set, acc)
	return acc.Result()
}
