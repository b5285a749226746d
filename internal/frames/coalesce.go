package frames

import (
	"github.com/hachi-lang/hachi/internal/callgraph"
	"github.com/hachi-lang/hachi/internal/pipeline"
)

// Coalesce partitions all functions into groups whose members can share one
// memory region. Two functions may share exactly when they can never be on
// the call chain at the same time, which the partition approximates by call
// subtrees: members' subtrees (function included) must be pairwise
// disjoint. Disjoint subtrees mean neither function can ever be an ancestor
// of the other, so on a single call chain at most one member is live.
//
// Two classes of functions never join a shared group:
//
//   - functions reachable from more than one entry root (an interrupt
//     handler's chain can preempt main's chain, so liveness of the two
//     chains overlaps in time), and functions reachable from different
//     single roots, which can likewise be live concurrently;
//   - address-taken functions, which may be called indirectly from
//     anywhere the pointer escapes to.
//
// The partition is greedy first-fit in declaration order, not an optimal
// interval coloring; it trades packing density for a layout the programmer
// can predict. Swapping in a true interval-graph coloring would not change
// any external contract.
func Coalesce(g *callgraph.Graph, frames map[string]*Frame, entryPoints []string) []*CoalesceGroup {
	n := g.Len()

	// Roots: configured entry points that exist, plus every uncalled
	// function not reachable from them (dead entries and library roots
	// are laid out as conservatively as live ones).
	var roots []int
	isEntry := make([]bool, n)
	for _, name := range entryPoints {
		if id, ok := g.ID(name); ok && !isEntry[id] {
			isEntry[id] = true
			roots = append(roots, id)
		}
	}
	fromEntries := make(map[int]bool)
	for _, r := range roots {
		for id := range g.Subtree(r) {
			fromEntries[id] = true
		}
	}
	for id := 0; id < n; id++ {
		if !fromEntries[id] && len(g.Callers(id)) == 0 {
			roots = append(roots, id)
		}
	}

	// rootOf[id] is the single root reaching id, or -1 when several do.
	rootOf := make([]int, n)
	for i := range rootOf {
		rootOf[i] = -1
	}
	counted := make([]int, n)
	for _, r := range roots {
		for id := range g.Subtree(r) {
			counted[id]++
			rootOf[id] = r
		}
	}
	for id := 0; id < n; id++ {
		if counted[id] > 1 {
			rootOf[id] = -1
		}
	}

	type group struct {
		out     *CoalesceGroup
		root    int
		covered map[int]bool // union of member subtrees
	}
	var groups []*group

	for id := 0; id < n; id++ {
		frame := frames[g.Name(id)]
		if frame == nil {
			continue
		}
		subtree := g.Subtree(id)
		shareable := rootOf[id] >= 0 && !g.AddressTaken(id)

		var home *group
		if shareable {
			for _, grp := range groups {
				if grp.root != rootOf[id] || grp.covered == nil {
					continue
				}
				if !callgraph.Overlaps(grp.covered, subtree) {
					home = grp
					break
				}
			}
		}

		if home == nil {
			home = &group{
				out:  &CoalesceGroup{ID: len(groups)},
				root: rootOf[id],
			}
			if shareable {
				home.covered = make(map[int]bool)
			}
			groups = append(groups, home)
		}

		home.out.Functions = append(home.out.Functions, g.Name(id))
		if frame.TotalSize > home.out.Size {
			home.out.Size = frame.TotalSize
		}
		frame.GroupID = home.out.ID
		if home.covered != nil {
			for m := range subtree {
				home.covered[m] = true
			}
		}
	}

	out := make([]*CoalesceGroup, len(groups))
	for i, grp := range groups {
		out[i] = grp.out
	}
	return out
}

// CoalesceProcessor is the pipeline stage that groups frames for sharing.
type CoalesceProcessor struct{}

func (cp *CoalesceProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	graph, ok := ctx.CallGraph.(*callgraph.Graph)
	if !ok {
		return ctx
	}
	frames, ok := ctx.Frames.(map[string]*Frame)
	if !ok {
		return ctx
	}
	var entries []string
	if ctx.Platform != nil {
		entries = ctx.Platform.EntryPoints
	}
	ctx.Groups = Coalesce(graph, frames, entries)
	return ctx
}
