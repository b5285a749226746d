package zeropage

import (
	"math"
	"sort"

	"github.com/hachi-lang/hachi/internal/ast"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/token"
	"github.com/hachi-lang/hachi/internal/typesystem"
)

// Base score weights by type kind. Pointers dominate because a zero-page
// pointer unlocks indirect-indexed addressing; bytes beat words because a
// word still costs two zero-page bytes for one operand's saving; arrays
// never compete, they would drain the pool.
const (
	weightPointer = 16
	weightByte    = 8
	weightWord    = 4
	weightArray   = 0
)

// MandatoryScore is the score assigned to must-be-fast slots. They never
// compete, so the value only matters for display.
const MandatoryScore = math.MaxInt32

// Score rates how much a slot gains from living in zero page:
// kind weight × (reads + writes) × 2^loopDepth.
func Score(typ typesystem.Type, u Usage) int {
	var weight int
	switch typ.Kind {
	case typesystem.Pointer:
		weight = weightPointer
	case typesystem.Byte:
		weight = weightByte
	case typesystem.Word:
		weight = weightWord
	default:
		weight = weightArray
	}
	return weight * (u.Reads + u.Writes) << u.LoopDepth
}

// Candidate is one frame slot competing for the pool. Assign fills Address
// and InPool.
type Candidate struct {
	Name      string // variable name
	Function  string // owning function
	Token     token.Token
	Size      int
	Placement ast.Placement
	Score     int
	DeclIndex int // global declaration order, the stable tie-break

	// Results.
	InPool  bool
	Address int
}

// Assign runs the three-phase greedy allocation over candidates:
//
//  1. Must-be-fast slots, in declaration order. Each is allocated
//     unconditionally; one that does not fit produces a ZP_OVERFLOW
//     diagnostic, and the phase keeps going so every violation in the
//     program is reported in a single run.
//  2. Must-not-be-fast slots are skipped; they stay in the frame region.
//  3. Everything else competes by descending score, declaration order
//     breaking ties, each taking pool space while it lasts.
//
// The result is greedy and non-backtracking: a huge high-score slot that
// misses its window is not retried after smaller slots free nothing (nothing
// is ever freed).
func Assign(pool *Pool, candidates []*Candidate) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError

	ordered := make([]*Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DeclIndex < ordered[j].DeclIndex
	})

	for _, c := range ordered {
		if c.Placement != ast.PlaceFast {
			continue
		}
		c.Score = MandatoryScore
		if !pool.CanAllocate(c.Size) {
			errs = append(errs, diagnostics.NewError(
				diagnostics.ErrZPOverflow, c.Token, c.Name, c.Size))
			continue
		}
		c.InPool = true
		c.Address = pool.Allocate(c.Size)
	}

	scored := make([]*Candidate, 0, len(ordered))
	for _, c := range ordered {
		if c.Placement != ast.PlaceUnspecified {
			continue
		}
		if c.Score <= 0 {
			// Zero-score slots (arrays, never-accessed locals) stay
			// in the frame region.
			continue
		}
		scored = append(scored, c)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	for _, c := range scored {
		if pool.CanAllocate(c.Size) {
			c.InPool = true
			c.Address = pool.Allocate(c.Size)
		}
	}

	return errs
}

// Spilled counts the scored candidates that wanted the pool but did not get
// in, and their total size. Feeds the contention warning.
func Spilled(candidates []*Candidate) (count, bytes int) {
	for _, c := range candidates {
		if c.Placement == ast.PlaceUnspecified && c.Score > 0 && !c.InPool {
			count++
			bytes += c.Size
		}
	}
	return count, bytes
}
