package frames

import (
	"github.com/hachi-lang/hachi/internal/ast"
	"github.com/hachi-lang/hachi/internal/pipeline"
)

// BuildFrame lays out one function's unaddressed frame in the fixed order
// the ABI promises: parameters in declaration order, then every local in
// the order its declaration is encountered (nested blocks flatten into the
// one frame), then the return slot for non-void functions. Offsets are the
// running byte total, so re-running on the same function always reproduces
// the same layout.
func BuildFrame(fn *ast.FunctionDeclaration) *Frame {
	frame := &Frame{FunctionName: fn.Name, GroupID: -1}

	for _, p := range fn.Params {
		frame.append(&FrameSlot{
			Name:      p.Name,
			Kind:      KindParameter,
			Type:      p.Type,
			Size:      p.Type.Size(),
			Placement: p.Placement,
			Token:     p.Token,
		})
	}

	lc := &localCollector{frame: frame}
	fn.Body.Accept(lc)

	if !fn.ReturnType.IsVoid() {
		frame.append(&FrameSlot{
			Name:  "@ret",
			Kind:  KindReturn,
			Type:  fn.ReturnType,
			Size:  fn.ReturnType.Size(),
			Token: fn.Token,
		})
	}
	return frame
}

// append places a slot at the current running total and grows it.
func (f *Frame) append(slot *FrameSlot) {
	slot.Offset = f.TotalSize
	f.Slots = append(f.Slots, slot)
	f.TotalSize += slot.Size
}

// localCollector walks a body collecting local declarations in encounter
// order. Only statements can declare, so expression methods are empty.
type localCollector struct {
	frame *Frame
}

func (lc *localCollector) VisitProgram(p *ast.Program) {}

func (lc *localCollector) VisitFunctionDeclaration(fd *ast.FunctionDeclaration) {}

func (lc *localCollector) VisitParamDeclaration(pd *ast.ParamDeclaration) {}

func (lc *localCollector) VisitBlockStatement(bs *ast.BlockStatement) {
	for _, stmt := range bs.Statements {
		stmt.Accept(lc)
	}
}

func (lc *localCollector) VisitVarStatement(vs *ast.VarStatement) {
	lc.frame.append(&FrameSlot{
		Name:      vs.Name,
		Kind:      KindLocal,
		Type:      vs.Type,
		Size:      vs.Type.Size(),
		Placement: vs.Placement,
		Token:     vs.Token,
	})
}

func (lc *localCollector) VisitAssignStatement(as *ast.AssignStatement) {}

func (lc *localCollector) VisitIfStatement(is *ast.IfStatement) {
	is.Then.Accept(lc)
	if is.Else != nil {
		is.Else.Accept(lc)
	}
}

func (lc *localCollector) VisitLoopStatement(ls *ast.LoopStatement) {
	ls.Body.Accept(lc)
}

func (lc *localCollector) VisitReturnStatement(rs *ast.ReturnStatement) {}

func (lc *localCollector) VisitExpressionStatement(es *ast.ExpressionStatement) {}

func (lc *localCollector) VisitIdentifier(id *ast.Identifier) {}

func (lc *localCollector) VisitIntegerLiteral(il *ast.IntegerLiteral) {}

func (lc *localCollector) VisitCallExpression(ce *ast.CallExpression) {}

func (lc *localCollector) VisitBinaryExpression(be *ast.BinaryExpression) {}

func (lc *localCollector) VisitUnaryExpression(ue *ast.UnaryExpression) {}

func (lc *localCollector) VisitIndexExpression(ie *ast.IndexExpression) {}

func (lc *localCollector) VisitAddressOfExpression(ae *ast.AddressOfExpression) {}

// SizeProcessor is the pipeline stage that sizes every function's frame.
type SizeProcessor struct{}

func (sp *SizeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	frames := make(map[string]*Frame, len(ctx.Program.Functions))
	for _, fn := range ctx.Program.Functions {
		frames[fn.Name] = BuildFrame(fn)
	}
	ctx.Frames = frames
	return ctx
}
