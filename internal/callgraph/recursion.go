package callgraph

import (
	"strconv"
	"strings"

	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/pipeline"
)

// Cycle is one call cycle, as node ids in call order. A direct self-call is
// a one-element cycle.
type Cycle []int

// Chain renders the cycle as "a → b → a" for diagnostics.
func (c Cycle) chain(g *Graph) string {
	var sb strings.Builder
	for _, id := range c {
		sb.WriteString(g.Name(id))
		sb.WriteString(" → ")
	}
	sb.WriteString(g.Name(c[0]))
	return sb.String()
}

// FindCycles enumerates the distinct cycles of g via depth-first search
// with an explicit path stack: a call edge back to a function still on the
// stack closes the cycle running from that function to the stack top.
// Cycles are deduplicated under rotation and reported in a deterministic
// order (roots visited in declaration order).
func FindCycles(g *Graph) []Cycle {
	const (
		white = iota // unvisited
		gray         // on the current path
		black        // fully explored
	)
	color := make([]int, g.Len())
	pos := make([]int, g.Len()) // index on the path stack while gray
	var path []int
	var cycles []Cycle
	seen := make(map[string]bool)

	var visit func(id int)
	visit = func(id int) {
		color[id] = gray
		pos[id] = len(path)
		path = append(path, id)

		for _, callee := range g.Callees(id) {
			switch color[callee] {
			case gray:
				cycle := Cycle(append([]int(nil), path[pos[callee]:]...))
				key := cycle.canonical()
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			case white:
				visit(callee)
			}
		}

		path = path[:len(path)-1]
		color[id] = black
	}

	for id := 0; id < g.Len(); id++ {
		if color[id] == white {
			visit(id)
		}
	}
	return cycles
}

// canonical rotates the cycle to start at its smallest id so the same cycle
// discovered from different entry nodes deduplicates.
func (c Cycle) canonical() string {
	min := 0
	for i := range c {
		if c[i] < c[min] {
			min = i
		}
	}
	parts := make([]string, len(c))
	for i := range c {
		parts[i] = strconv.Itoa(c[(min+i)%len(c)])
	}
	return strings.Join(parts, ",")
}

// RecursionProcessor rejects programs whose call graph contains any cycle.
// Every function owns exactly one static frame, so a recursive activation
// would overwrite its own live locals; there is no non-fatal answer. One
// RECURSION diagnostic is emitted per distinct cycle, naming the chain.
type RecursionProcessor struct{}

func (rp *RecursionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	graph, ok := ctx.CallGraph.(*Graph)
	if !ok {
		return ctx
	}
	for _, cycle := range FindCycles(graph) {
		first := cycle[0]
		ctx.AddError(diagnostics.NewError(
			diagnostics.ErrRecursion, graph.Token(first), cycle.chain(graph)))
	}
	return ctx
}
