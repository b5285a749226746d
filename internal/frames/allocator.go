package frames

import (
	"github.com/hachi-lang/hachi/internal/ast"
	"github.com/hachi-lang/hachi/internal/callgraph"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/pipeline"
	"github.com/hachi-lang/hachi/internal/platform"
	"github.com/hachi-lang/hachi/internal/token"
	"github.com/hachi-lang/hachi/internal/zeropage"
)

// Allocator runs the whole static frame allocation pass. One instance per
// compilation: the pool bitmap and the running layout are instance state,
// so repeated compilations can never leak addresses into each other.
type Allocator struct {
	platform *platform.Platform
}

// NewAllocator builds an allocator for one compilation on plat.
func NewAllocator(plat *platform.Platform) *Allocator {
	if plat == nil {
		plat = platform.Default()
	}
	return &Allocator{platform: plat}
}

// Allocate runs the pipeline over a checked program and returns either a
// complete frame map or a fatal result with diagnostics, never a partial
// map. Warnings may accompany a successful result.
func (a *Allocator) Allocate(program *ast.Program) *Result {
	if program == nil {
		return &Result{Diagnostics: []*diagnostics.DiagnosticError{
			diagnostics.NewError(diagnostics.ErrBadDump, token.Token{}, "no program loaded"),
		}}
	}

	ctx := pipeline.NewPipelineContext(program, a.platform)
	for _, err := range a.platform.Validate() {
		ctx.AddError(err)
	}
	if !ctx.HasFatal() {
		p := pipeline.New(
			&callgraph.Processor{},
			&callgraph.RecursionProcessor{},
			&SizeProcessor{},
			&CoalesceProcessor{},
			&LayoutProcessor{},
			&ZeroPageProcessor{},
		)
		ctx = p.Run(ctx)
	}

	result := &Result{Diagnostics: ctx.Errors}
	if ctx.HasFatal() {
		return result
	}

	frames, _ := ctx.Frames.(map[string]*Frame)
	groups, _ := ctx.Groups.([]*CoalesceGroup)
	result.OK = true
	result.FrameMap = FrameMap(frames)
	result.Stats = a.stats(frames, groups, ctx)
	return result
}

func (a *Allocator) stats(frames map[string]*Frame, groups []*CoalesceGroup, ctx *pipeline.PipelineContext) Stats {
	s := Stats{
		Functions:           len(frames),
		FrameBytesAvailable: a.platform.FrameRegion.Size(),
	}
	for _, g := range groups {
		s.FrameBytesUsed += g.Size
		if len(g.Functions) > 1 {
			s.FunctionsCoalesced += len(g.Functions)
		}
	}
	for _, f := range frames {
		s.FrameBytesNaive += f.TotalSize
	}
	if pool, ok := ctx.Pool.(*zeropage.Pool); ok {
		s.ZeroPageBytesUsed = pool.BytesUsed()
		s.ZeroPageBytesFree = pool.BytesFree()
	}
	return s
}

// LayoutProcessor assigns every coalesce group a base address, laying
// groups out sequentially from the frame-region start, then propagates
// absolute addresses to member frames and their slots. Overshooting the
// region end is a single fatal FRAME_OVERFLOW naming required versus
// available bytes.
type LayoutProcessor struct{}

func (lp *LayoutProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	frames, ok := ctx.Frames.(map[string]*Frame)
	if !ok {
		return ctx
	}
	groups, ok := ctx.Groups.([]*CoalesceGroup)
	if !ok {
		return ctx
	}
	region := ctx.Platform.FrameRegion

	next := region.Start
	for _, g := range groups {
		g.BaseAddress = next
		next += g.Size
	}

	required := next - region.Start
	if required > region.Size() {
		ctx.AddError(diagnostics.NewError(
			diagnostics.ErrFrameOverflow, token.Token{}, required, region.Size()))
		return ctx
	}

	for _, g := range groups {
		for _, name := range g.Functions {
			frame := frames[name]
			frame.BaseAddress = g.BaseAddress
			for _, slot := range frame.Slots {
				slot.Location = LocFrameRegion
				slot.Address = frame.BaseAddress + slot.Offset
			}
		}
	}
	return ctx
}

// ZeroPageProcessor promotes eligible slots into the zero-page pool,
// overriding their frame-region placement. Runs last, over the union of
// every function's slots, so mandatory placements across the whole program
// are honored before any scored competition.
type ZeroPageProcessor struct{}

func (zp *ZeroPageProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	frames, ok := ctx.Frames.(map[string]*Frame)
	if !ok {
		return ctx
	}
	pool := zeropage.NewPool(ctx.Platform.ZeroPage, ctx.Platform.Reserved)
	ctx.Pool = pool

	var candidates []*zeropage.Candidate
	slots := make(map[*zeropage.Candidate]*FrameSlot)
	declIndex := 0
	for _, fn := range ctx.Program.Functions {
		frame := frames[fn.Name]
		if frame == nil {
			continue
		}
		profile := zeropage.AnalyzeUsage(fn)
		for _, slot := range frame.Slots {
			var usage zeropage.Usage
			if u := profile[slot.Name]; u != nil {
				usage = *u
			}
			slot.Score = zeropage.Score(slot.Type, usage)
			c := &zeropage.Candidate{
				Name:      slot.Name,
				Function:  fn.Name,
				Token:     slot.Token,
				Size:      slot.Size,
				Placement: slot.Placement,
				Score:     slot.Score,
				DeclIndex: declIndex,
			}
			declIndex++
			candidates = append(candidates, c)
			slots[c] = slot
		}
	}

	for _, err := range zeropage.Assign(pool, candidates) {
		ctx.AddError(err)
	}
	if ctx.HasFatal() {
		return ctx
	}

	for c, slot := range slots {
		if c.InPool {
			slot.Location = LocFastMemory
			slot.Address = c.Address
		}
		slot.Score = c.Score
	}

	if count, bytes := zeropage.Spilled(candidates); count > 0 {
		ctx.AddError(diagnostics.NewWarning(
			diagnostics.WarnZPContention, token.Token{}, count, bytes))
	}
	return ctx
}
