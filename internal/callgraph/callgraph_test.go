package callgraph_test

import (
	"strings"
	"testing"

	"github.com/hachi-lang/hachi/internal/callgraph"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/irload"
	"github.com/hachi-lang/hachi/internal/pipeline"
	"github.com/hachi-lang/hachi/internal/platform"
)

func buildGraph(t *testing.T, dump string) *callgraph.Graph {
	t.Helper()
	program, err := irload.Parse([]byte(dump), "test.hpd")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	return callgraph.Build(program)
}

func names(g *callgraph.Graph, ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Name(id)
	}
	return out
}

func TestBuildDirectEdges(t *testing.T) {
	g := buildGraph(t, `
functions:
  - name: main
    body:
      - call: worker
      - call: cleanup
      - call: worker
  - name: worker
    body:
      - call: {name: poke, args: []}
  - name: cleanup
`)
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}
	main, _ := g.ID("main")
	worker, _ := g.ID("worker")
	cleanup, _ := g.ID("cleanup")

	got := names(g, g.Callees(main))
	if len(got) != 2 || got[0] != "worker" || got[1] != "cleanup" {
		t.Errorf("main callees = %v", got)
	}
	// Builtin intrinsics never become edges.
	if len(g.Callees(worker)) != 0 {
		t.Errorf("worker callees = %v", names(g, g.Callees(worker)))
	}
	if got := names(g, g.Callers(cleanup)); len(got) != 1 || got[0] != "main" {
		t.Errorf("cleanup callers = %v", got)
	}
}

func TestBuildFindsCallsInNestedPositions(t *testing.T) {
	g := buildGraph(t, `
functions:
  - name: main
    body:
      - if:
          then:
            - loop:
                - call: a
          else:
            - call: b
      - ret: {}
  - name: a
  - name: b
`)
	main, _ := g.ID("main")
	got := names(g, g.Callees(main))
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("main callees = %v", got)
	}
}

func TestAddressTaken(t *testing.T) {
	g := buildGraph(t, `
functions:
  - name: main
    body:
      - addr: handler
  - name: handler
`)
	main, _ := g.ID("main")
	handler, _ := g.ID("handler")
	if g.AddressTaken(main) {
		t.Error("main marked address-taken")
	}
	if !g.AddressTaken(handler) {
		t.Error("handler not marked address-taken")
	}
	// Address-of adds no call edge.
	if len(g.Callees(main)) != 0 {
		t.Errorf("main callees = %v", names(g, g.Callees(main)))
	}
}

func TestSubtree(t *testing.T) {
	g := buildGraph(t, `
functions:
  - name: main
    body:
      - call: a
      - call: b
  - name: a
    body:
      - call: c
  - name: b
  - name: c
`)
	main, _ := g.ID("main")
	a, _ := g.ID("a")
	b, _ := g.ID("b")
	c, _ := g.ID("c")

	sub := g.Subtree(a)
	if !sub[a] || !sub[c] || sub[b] || sub[main] {
		t.Errorf("Subtree(a) = %v", sub)
	}
	if !callgraph.Overlaps(g.Subtree(main), g.Subtree(b)) {
		t.Error("main and b subtrees should overlap")
	}
	if callgraph.Overlaps(g.Subtree(a), g.Subtree(b)) {
		t.Error("a and b subtrees should not overlap")
	}
}

func TestFindCyclesNone(t *testing.T) {
	g := buildGraph(t, `
functions:
  - name: main
    body:
      - call: a
  - name: a
`)
	if cycles := callgraph.FindCycles(g); len(cycles) != 0 {
		t.Errorf("found %d cycles in acyclic graph", len(cycles))
	}
}

func TestFindCyclesSelfLoop(t *testing.T) {
	g := buildGraph(t, `
functions:
  - name: f
    body:
      - call: f
`)
	cycles := callgraph.FindCycles(g)
	if len(cycles) != 1 || len(cycles[0]) != 1 {
		t.Fatalf("cycles = %v", cycles)
	}
}

func TestFindCyclesIndirect(t *testing.T) {
	g := buildGraph(t, `
functions:
  - name: a
    body:
      - call: b
  - name: b
    body:
      - call: a
`)
	cycles := callgraph.FindCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1 (deduplicated under rotation)", len(cycles))
	}
	if len(cycles[0]) != 2 {
		t.Errorf("cycle length = %d", len(cycles[0]))
	}
}

func TestFindCyclesDistinct(t *testing.T) {
	g := buildGraph(t, `
functions:
  - name: a
    body:
      - call: b
      - call: a
  - name: b
    body:
      - call: a
`)
	cycles := callgraph.FindCycles(g)
	if len(cycles) != 2 {
		t.Fatalf("got %d cycles, want 2 distinct", len(cycles))
	}
}

func runRecursionStage(t *testing.T, dump string) *pipeline.PipelineContext {
	t.Helper()
	program, err := irload.Parse([]byte(dump), "test.hpd")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	ctx := pipeline.NewPipelineContext(program, platform.Default())
	p := pipeline.New(&callgraph.Processor{}, &callgraph.RecursionProcessor{})
	return p.Run(ctx)
}

func TestRecursionProcessorReportsChain(t *testing.T) {
	ctx := runRecursionStage(t, `
functions:
  - name: a
    at: "demo.hx:1:1"
    body:
      - call: b
  - name: b
    body:
      - call: a
`)
	if len(ctx.Errors) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(ctx.Errors))
	}
	diag := ctx.Errors[0]
	if diag.Code != diagnostics.ErrRecursion {
		t.Errorf("code = %s", diag.Code)
	}
	if !strings.Contains(diag.Message, "a → b → a") {
		t.Errorf("message %q does not name the chain", diag.Message)
	}
	if !ctx.HasFatal() {
		t.Error("recursion must be fatal")
	}
}

func TestRecursionProcessorCleanProgram(t *testing.T) {
	ctx := runRecursionStage(t, `
functions:
  - name: main
    body:
      - call: worker
  - name: worker
`)
	if len(ctx.Errors) != 0 {
		t.Fatalf("diagnostics: %v", ctx.Errors)
	}
}
