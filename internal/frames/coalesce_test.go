package frames_test

import (
	"testing"

	"github.com/hachi-lang/hachi/internal/callgraph"
	"github.com/hachi-lang/hachi/internal/frames"
	"github.com/hachi-lang/hachi/internal/irload"
)

func coalesce(t *testing.T, dump string, entries ...string) (*callgraph.Graph, map[string]*frames.Frame, []*frames.CoalesceGroup) {
	t.Helper()
	program, err := irload.Parse([]byte(dump), "test.hpd")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	g := callgraph.Build(program)
	fs := make(map[string]*frames.Frame)
	for _, fn := range program.Functions {
		fs[fn.Name] = frames.BuildFrame(fn)
	}
	if len(entries) == 0 {
		entries = []string{"main"}
	}
	return g, fs, frames.Coalesce(g, fs, entries)
}

func groupOf(t *testing.T, fs map[string]*frames.Frame, name string) int {
	t.Helper()
	f, ok := fs[name]
	if !ok {
		t.Fatalf("no frame for %s", name)
	}
	return f.GroupID
}

func TestCoalesceSiblingsShare(t *testing.T) {
	// main calls worker and cleanup; the two leaves can never be active
	// together and must share one region sized to the larger frame.
	_, fs, groups := coalesce(t, `
functions:
  - name: main
    body:
      - call: worker
      - call: cleanup
  - name: worker
    body:
      - var: {name: buf, type: "byte[6]"}
  - name: cleanup
    body:
      - var: {name: i, type: byte}
`)
	if groupOf(t, fs, "worker") != groupOf(t, fs, "cleanup") {
		t.Fatal("worker and cleanup did not coalesce")
	}
	if groupOf(t, fs, "main") == groupOf(t, fs, "worker") {
		t.Error("main coalesced with its own callee")
	}
	shared := groups[groupOf(t, fs, "worker")]
	if shared.Size != 6 {
		t.Errorf("shared group size = %d, want max(6,1)", shared.Size)
	}
}

func TestCoalesceCallerNeverSharesWithCallee(t *testing.T) {
	_, fs, _ := coalesce(t, `
functions:
  - name: main
    body:
      - call: a
  - name: a
    body:
      - call: b
  - name: b
`)
	if groupOf(t, fs, "main") == groupOf(t, fs, "a") ||
		groupOf(t, fs, "a") == groupOf(t, fs, "b") ||
		groupOf(t, fs, "main") == groupOf(t, fs, "b") {
		t.Error("functions on one call chain were coalesced")
	}
}

func TestCoalesceOverlappingSubtreesKeptApart(t *testing.T) {
	// a and b both call shared; their subtrees overlap, so they must not
	// coalesce even though neither calls the other.
	g, fs, _ := coalesce(t, `
functions:
  - name: main
    body:
      - call: a
      - call: b
  - name: a
    body:
      - call: shared
  - name: b
    body:
      - call: shared
  - name: shared
`)
	if groupOf(t, fs, "a") == groupOf(t, fs, "b") {
		t.Error("functions with overlapping subtrees coalesced")
	}
	aID, _ := g.ID("a")
	bID, _ := g.ID("b")
	if !callgraph.Overlaps(g.Subtree(aID), g.Subtree(bID)) {
		t.Fatal("test premise broken: subtrees should overlap")
	}
}

func TestCoalesceGroupInvariants(t *testing.T) {
	g, fs, groups := coalesce(t, `
functions:
  - name: main
    body:
      - call: a
      - call: b
      - call: c
  - name: a
    body:
      - var: {name: x, type: "byte[4]"}
  - name: b
    body:
      - var: {name: y, type: word}
  - name: c
    body:
      - var: {name: z, type: "byte[9]"}
`)
	// Every function appears in exactly one group.
	seen := make(map[string]int)
	for _, grp := range groups {
		for _, name := range grp.Functions {
			seen[name]++
			if fs[name].TotalSize > grp.Size {
				t.Errorf("member %s (%d bytes) exceeds group size %d", name, fs[name].TotalSize, grp.Size)
			}
		}
	}
	for name := range fs {
		if seen[name] != 1 {
			t.Errorf("%s appears in %d groups", name, seen[name])
		}
	}
	// Members of one group have pairwise disjoint subtrees.
	for _, grp := range groups {
		for i := 0; i < len(grp.Functions); i++ {
			for j := i + 1; j < len(grp.Functions); j++ {
				a, _ := g.ID(grp.Functions[i])
				b, _ := g.ID(grp.Functions[j])
				if callgraph.Overlaps(g.Subtree(a), g.Subtree(b)) {
					t.Errorf("group %d members %s and %s have overlapping subtrees",
						grp.ID, grp.Functions[i], grp.Functions[j])
				}
			}
		}
	}
}

func TestCoalesceAddressTakenIsSolo(t *testing.T) {
	_, fs, _ := coalesce(t, `
functions:
  - name: main
    body:
      - addr: handler
      - call: worker
  - name: worker
  - name: handler
`)
	// worker and handler are both leaves, but handler's address escapes:
	// it may run at any time, so it shares with nobody.
	if groupOf(t, fs, "handler") == groupOf(t, fs, "worker") {
		t.Error("address-taken function was coalesced")
	}
}

func TestCoalesceInterruptChainKeptApart(t *testing.T) {
	_, fs, _ := coalesce(t, `
functions:
  - name: main
    body:
      - call: worker
  - name: worker
  - name: irq_tick
    body:
      - call: blink
  - name: blink
`, "main", "irq_tick")
	// blink runs under the interrupt root and can preempt worker
	// mid-call; the chains never share.
	if groupOf(t, fs, "worker") == groupOf(t, fs, "blink") {
		t.Error("interrupt chain coalesced with main chain")
	}
}

func TestCoalesceFunctionUnderBothRootsIsSolo(t *testing.T) {
	_, fs, groups := coalesce(t, `
functions:
  - name: main
    body:
      - call: log
  - name: irq_tick
    body:
      - call: log
  - name: log
  - name: idle
`, "main", "irq_tick")
	logGroup := groups[groupOf(t, fs, "log")]
	if len(logGroup.Functions) != 1 {
		t.Errorf("log shares a group with %v", logGroup.Functions)
	}
	_ = fs["idle"]
}

func TestCoalesceSavingsNeverNegative(t *testing.T) {
	_, fs, groups := coalesce(t, `
functions:
  - name: main
    body:
      - call: a
      - call: b
  - name: a
    body:
      - var: {name: x, type: "byte[7]"}
  - name: b
    body:
      - var: {name: y, type: "byte[2]"}
`)
	total := 0
	for _, grp := range groups {
		total += grp.Size
	}
	naive := 0
	for _, f := range fs {
		naive += f.TotalSize
	}
	if total > naive {
		t.Errorf("coalesced total %d exceeds naive sum %d", total, naive)
	}
	// a and b share: 7 instead of 9.
	if total != 7 {
		t.Errorf("coalesced total = %d, want 7", total)
	}
}
