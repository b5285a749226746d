package zeropage_test

import (
	"testing"

	"github.com/hachi-lang/hachi/internal/ast"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/irload"
	"github.com/hachi-lang/hachi/internal/platform"
	"github.com/hachi-lang/hachi/internal/typesystem"
	"github.com/hachi-lang/hachi/internal/zeropage"
)

func analyze(t *testing.T, dump, fnName string) map[string]*zeropage.Usage {
	t.Helper()
	program, err := irload.Parse([]byte(dump), "test.hpd")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	fn := program.Function(fnName)
	if fn == nil {
		t.Fatalf("function %s not found", fnName)
	}
	return zeropage.AnalyzeUsage(fn)
}

func TestAnalyzeUsageCounts(t *testing.T) {
	profile := analyze(t, `
functions:
  - name: f
    params:
      - {name: n, type: byte}
    body:
      - var: {name: i, type: byte}
      - set: i
      - use: n
      - use: i
      - use: i
`, "f")

	if u := profile["i"]; u.Reads != 2 || u.Writes != 1 || u.LoopDepth != 0 {
		t.Errorf("i = %+v", u)
	}
	if u := profile["n"]; u.Reads != 1 || u.Writes != 0 {
		t.Errorf("n = %+v", u)
	}
}

func TestAnalyzeUsageLoopDepth(t *testing.T) {
	profile := analyze(t, `
functions:
  - name: f
    body:
      - var: {name: a, type: byte}
      - var: {name: b, type: byte}
      - use: a
      - loop:
          - loop:
              - use: b
`, "f")

	if u := profile["a"]; u.LoopDepth != 0 {
		t.Errorf("a depth = %d", u.LoopDepth)
	}
	if u := profile["b"]; u.LoopDepth != 2 {
		t.Errorf("b depth = %d", u.LoopDepth)
	}
}

func TestAnalyzeUsageUnusedParamHasProfile(t *testing.T) {
	profile := analyze(t, `
functions:
  - name: f
    params:
      - {name: unused, type: word}
`, "f")
	u, ok := profile["unused"]
	if !ok {
		t.Fatal("unused param has no profile")
	}
	if u.Reads != 0 || u.Writes != 0 {
		t.Errorf("unused = %+v", u)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		typ  typesystem.Type
		u    zeropage.Usage
		want int
	}{
		{"pointer beats byte", typesystem.PointerType, zeropage.Usage{Reads: 1}, 16},
		{"byte", typesystem.ByteType, zeropage.Usage{Reads: 1}, 8},
		{"word", typesystem.WordType, zeropage.Usage{Reads: 1}, 4},
		{"array never scores", typesystem.ArrayOf(typesystem.ByteType, 8), zeropage.Usage{Reads: 100}, 0},
		{"unused scores zero", typesystem.ByteType, zeropage.Usage{}, 0},
		{"loop depth doubles", typesystem.ByteType, zeropage.Usage{Reads: 2, Writes: 1, LoopDepth: 2}, 8 * 3 * 4},
	}
	for _, tt := range tests {
		if got := zeropage.Score(tt.typ, tt.u); got != tt.want {
			t.Errorf("%s: Score = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func cand(name string, size int, place ast.Placement, score, declIndex int) *zeropage.Candidate {
	return &zeropage.Candidate{
		Name:      name,
		Function:  "f",
		Size:      size,
		Placement: place,
		Score:     score,
		DeclIndex: declIndex,
	}
}

func TestAssignMandatoryOverflowAccumulates(t *testing.T) {
	// 4 free bytes, mandatory slots of 2 then 4: the first succeeds, the
	// second overflows, and both outcomes land in one result set.
	pool := zeropage.NewPool(platform.Range{Start: 0x10, End: 0x13}, nil)
	a := cand("a", 2, ast.PlaceFast, 0, 0)
	b := cand("b", 4, ast.PlaceFast, 0, 1)
	errs := zeropage.Assign(pool, []*zeropage.Candidate{a, b})

	if !a.InPool || a.Address != 0x10 {
		t.Errorf("a = %+v", a)
	}
	if b.InPool {
		t.Error("b should not fit")
	}
	if len(errs) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(errs))
	}
	if errs[0].Code != diagnostics.ErrZPOverflow {
		t.Errorf("code = %s", errs[0].Code)
	}
}

func TestAssignMandatoryBeatsScore(t *testing.T) {
	// A mandatory slot wins the pool over a higher-scoring optional one.
	pool := zeropage.NewPool(platform.Range{Start: 0x10, End: 0x11}, nil)
	hot := cand("hot", 2, ast.PlaceUnspecified, 100000, 0)
	must := cand("must", 2, ast.PlaceFast, 0, 1)
	errs := zeropage.Assign(pool, []*zeropage.Candidate{hot, must})

	if len(errs) != 0 {
		t.Fatalf("diagnostics: %v", errs)
	}
	if !must.InPool {
		t.Error("mandatory slot missed the pool")
	}
	if hot.InPool {
		t.Error("optional slot took the mandatory slot's space")
	}
}

func TestAssignForbiddenNeverPooled(t *testing.T) {
	pool := zeropage.NewPool(platform.Range{Start: 0x10, End: 0x1F}, nil)
	no := cand("no", 1, ast.PlaceNoFast, 100000, 0)
	errs := zeropage.Assign(pool, []*zeropage.Candidate{no})
	if len(errs) != 0 {
		t.Fatalf("diagnostics: %v", errs)
	}
	if no.InPool {
		t.Error("forbidden slot placed in pool")
	}
	if pool.BytesUsed() != 0 {
		t.Errorf("pool used %d bytes", pool.BytesUsed())
	}
}

func TestAssignScoredOrderAndTieBreak(t *testing.T) {
	// Pool fits exactly three of the four optional bytes. Descending
	// score wins; equal scores fall back to declaration order.
	pool := zeropage.NewPool(platform.Range{Start: 0x10, End: 0x12}, nil)
	low := cand("low", 1, ast.PlaceUnspecified, 10, 0)
	tieLate := cand("tieLate", 1, ast.PlaceUnspecified, 50, 3)
	tieEarly := cand("tieEarly", 1, ast.PlaceUnspecified, 50, 2)
	high := cand("high", 1, ast.PlaceUnspecified, 90, 1)
	zeropage.Assign(pool, []*zeropage.Candidate{low, tieLate, tieEarly, high})

	if !high.InPool || high.Address != 0x10 {
		t.Errorf("high = %+v", high)
	}
	if !tieEarly.InPool || tieEarly.Address != 0x11 {
		t.Errorf("tieEarly = %+v", tieEarly)
	}
	if !tieLate.InPool || tieLate.Address != 0x12 {
		t.Errorf("tieLate = %+v", tieLate)
	}
	if low.InPool {
		t.Error("low should have spilled")
	}

	count, bytes := zeropage.Spilled([]*zeropage.Candidate{low, tieLate, tieEarly, high})
	if count != 1 || bytes != 1 {
		t.Errorf("Spilled = %d slots / %d bytes", count, bytes)
	}
}

func TestAssignZeroScoreStaysInFrame(t *testing.T) {
	pool := zeropage.NewPool(platform.Range{Start: 0x10, End: 0x1F}, nil)
	idle := cand("idle", 1, ast.PlaceUnspecified, 0, 0)
	zeropage.Assign(pool, []*zeropage.Candidate{idle})
	if idle.InPool {
		t.Error("never-accessed slot placed in pool")
	}
}
