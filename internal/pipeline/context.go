package pipeline

import (
	"github.com/hachi-lang/hachi/internal/ast"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/platform"
)

// Processor is one pipeline stage. Stages read earlier artifacts off the
// context, attach their own, and append diagnostics; they never mutate an
// artifact a previous stage finished.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the program, the platform, and every intermediate
// artifact through the allocation pipeline. Artifacts produced by later
// stages are stored untyped so stage packages can depend on pipeline
// without a cycle; each consumer casts back to the producer's type.
type PipelineContext struct {
	Program  *ast.Program
	Platform *platform.Platform

	// CallGraph is a *callgraph.Graph once the build stage has run.
	CallGraph interface{}

	// Frames is a map[string]*frames.Frame once sizing has run.
	Frames interface{}

	// Groups is a []*frames.CoalesceGroup once coalescing has run.
	Groups interface{}

	// Pool is a *zeropage.Pool once fast-memory allocation has run.
	Pool interface{}

	// Errors accumulates diagnostics from every stage, warnings included.
	Errors []*diagnostics.DiagnosticError
}

// NewPipelineContext builds a context for one compilation. Allocator state
// never outlives the context, so repeated compilations cannot interfere.
func NewPipelineContext(program *ast.Program, plat *platform.Platform) *PipelineContext {
	return &PipelineContext{
		Program:  program,
		Platform: plat,
	}
}

// AddError appends a diagnostic.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	ctx.Errors = append(ctx.Errors, err)
}

// HasFatal reports whether any accumulated diagnostic is fatal.
func (ctx *PipelineContext) HasFatal() bool {
	return diagnostics.HasFatal(ctx.Errors)
}
