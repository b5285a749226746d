package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. A stage that records a fatal diagnostic stops
// the run: later stages would compute addresses from inputs the earlier
// stage already rejected (a recursive program has no meaningful frames).
// Warnings do not stop anything.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if ctx.HasFatal() {
			break
		}
	}
	return ctx
}
