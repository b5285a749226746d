package callgraph

import (
	"github.com/hachi-lang/hachi/internal/ast"
	"github.com/hachi-lang/hachi/internal/config"
	"github.com/hachi-lang/hachi/internal/pipeline"
)

// Build constructs the call graph of program. Every declared function gets
// a node whether or not it is ever called; edges are direct calls to user
// functions, with builtin intrinsics ignored. Taking a function's address
// does not add an edge, it only marks the target as address-taken.
func Build(program *ast.Program) *Graph {
	g := &Graph{index: make(map[string]int)}
	for _, fn := range program.Functions {
		g.index[fn.Name] = len(g.names)
		g.names = append(g.names, fn.Name)
		g.tokens = append(g.tokens, fn.Token)
	}
	n := len(g.names)
	g.callees = make([][]int, n)
	g.callers = make([][]int, n)
	g.addressTaken = make([]bool, n)

	for _, fn := range program.Functions {
		caller := g.index[fn.Name]
		cv := &callVisitor{graph: g, caller: caller, seen: make(map[int]bool)}
		fn.Body.Accept(cv)
	}

	for caller, callees := range g.callees {
		for _, callee := range callees {
			g.callers[callee] = append(g.callers[callee], caller)
		}
	}
	return g
}

// callVisitor walks one function body registering direct call edges.
type callVisitor struct {
	graph  *Graph
	caller int
	seen   map[int]bool
}

func (cv *callVisitor) addEdge(callee string) {
	if config.IsBuiltin(callee) {
		return
	}
	id, ok := cv.graph.index[callee]
	if !ok {
		// Extern routine resolved by the linker; not our frame problem.
		return
	}
	if !cv.seen[id] {
		cv.seen[id] = true
		cv.graph.callees[cv.caller] = append(cv.graph.callees[cv.caller], id)
	}
}

func (cv *callVisitor) VisitProgram(p *ast.Program) {}

func (cv *callVisitor) VisitFunctionDeclaration(fd *ast.FunctionDeclaration) {}

func (cv *callVisitor) VisitParamDeclaration(pd *ast.ParamDeclaration) {}

func (cv *callVisitor) VisitBlockStatement(bs *ast.BlockStatement) {
	for _, stmt := range bs.Statements {
		stmt.Accept(cv)
	}
}

func (cv *callVisitor) VisitVarStatement(vs *ast.VarStatement) {
	if vs.Value != nil {
		vs.Value.Accept(cv)
	}
}

func (cv *callVisitor) VisitAssignStatement(as *ast.AssignStatement) {
	as.Target.Accept(cv)
	as.Value.Accept(cv)
}

func (cv *callVisitor) VisitIfStatement(is *ast.IfStatement) {
	is.Condition.Accept(cv)
	is.Then.Accept(cv)
	if is.Else != nil {
		is.Else.Accept(cv)
	}
}

func (cv *callVisitor) VisitLoopStatement(ls *ast.LoopStatement) {
	if ls.Condition != nil {
		ls.Condition.Accept(cv)
	}
	ls.Body.Accept(cv)
}

func (cv *callVisitor) VisitReturnStatement(rs *ast.ReturnStatement) {
	if rs.Value != nil {
		rs.Value.Accept(cv)
	}
}

func (cv *callVisitor) VisitExpressionStatement(es *ast.ExpressionStatement) {
	es.Expression.Accept(cv)
}

func (cv *callVisitor) VisitIdentifier(id *ast.Identifier) {}

func (cv *callVisitor) VisitIntegerLiteral(il *ast.IntegerLiteral) {}

func (cv *callVisitor) VisitCallExpression(ce *ast.CallExpression) {
	cv.addEdge(ce.Callee)
	for _, arg := range ce.Args {
		arg.Accept(cv)
	}
}

func (cv *callVisitor) VisitBinaryExpression(be *ast.BinaryExpression) {
	be.Left.Accept(cv)
	be.Right.Accept(cv)
}

func (cv *callVisitor) VisitUnaryExpression(ue *ast.UnaryExpression) {
	ue.Operand.Accept(cv)
}

func (cv *callVisitor) VisitIndexExpression(ie *ast.IndexExpression) {
	ie.Target.Accept(cv)
	ie.Index.Accept(cv)
}

func (cv *callVisitor) VisitAddressOfExpression(ae *ast.AddressOfExpression) {
	if id, ok := cv.graph.index[ae.Name]; ok {
		cv.graph.addressTaken[id] = true
	}
}

// Processor is the pipeline stage that attaches the call graph to the
// context.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	ctx.CallGraph = Build(ctx.Program)
	return ctx
}
