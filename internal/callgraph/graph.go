// Package callgraph builds the program's direct call graph and answers the
// two questions frame allocation asks of it: does any cycle exist, and
// which functions can be on the machine's call chain at the same time.
//
// Nodes are interned to dense integer ids so the graph owns no AST
// references; everything downstream works on ids and converts back to names
// only at the edges.
package callgraph

import (
	"github.com/hachi-lang/hachi/internal/token"
)

// Graph is the immutable direct call graph of one program. Build it with
// Build; after that it is read-only.
type Graph struct {
	names  []string
	index  map[string]int
	tokens []token.Token

	callees [][]int
	callers [][]int

	addressTaken []bool
}

// Len returns the number of functions in the graph.
func (g *Graph) Len() int { return len(g.names) }

// Name returns the function name for id.
func (g *Graph) Name(id int) string { return g.names[id] }

// ID returns the dense id for a function name.
func (g *Graph) ID(name string) (int, bool) {
	id, ok := g.index[name]
	return id, ok
}

// Token returns the declaration token for id.
func (g *Graph) Token(id int) token.Token { return g.tokens[id] }

// Callees returns the ids of functions id calls directly, in first-call
// order, deduplicated.
func (g *Graph) Callees(id int) []int { return g.callees[id] }

// Callers returns the ids of functions that call id directly.
func (g *Graph) Callers(id int) []int { return g.callers[id] }

// AddressTaken reports whether the function's address escapes into a
// pointer value somewhere in the program, making it a feasible indirect
// call target.
func (g *Graph) AddressTaken(id int) bool { return g.addressTaken[id] }

// Subtree returns the set of functions reachable from id along direct call
// edges, including id itself. This is the function's call subtree: every
// function that can be live below it on the call chain.
func (g *Graph) Subtree(id int) map[int]bool {
	reach := map[int]bool{id: true}
	stack := []int{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range g.callees[n] {
			if !reach[c] {
				reach[c] = true
				stack = append(stack, c)
			}
		}
	}
	return reach
}

// Overlaps reports whether two subtree sets share any function.
func Overlaps(a, b map[int]bool) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for id := range a {
		if b[id] {
			return true
		}
	}
	return false
}
