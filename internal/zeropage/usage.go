package zeropage

import "github.com/hachi-lang/hachi/internal/ast"

// Usage is the access profile of one variable within its function.
type Usage struct {
	Reads     int
	Writes    int
	LoopDepth int // deepest loop nesting at any access site
}

// AnalyzeUsage walks one function body and profiles every named variable:
// identifier reads, assignment writes, and the maximum loop nesting depth
// observed at any access. Parameters with no accesses get a zero profile.
func AnalyzeUsage(fn *ast.FunctionDeclaration) map[string]*Usage {
	uv := &usageVisitor{profile: make(map[string]*Usage)}
	for _, p := range fn.Params {
		uv.profile[p.Name] = &Usage{}
	}
	fn.Body.Accept(uv)
	return uv.profile
}

type usageVisitor struct {
	profile map[string]*Usage
	depth   int
}

func (uv *usageVisitor) get(name string) *Usage {
	u, ok := uv.profile[name]
	if !ok {
		u = &Usage{}
		uv.profile[name] = u
	}
	return u
}

func (uv *usageVisitor) read(name string) {
	u := uv.get(name)
	u.Reads++
	if uv.depth > u.LoopDepth {
		u.LoopDepth = uv.depth
	}
}

func (uv *usageVisitor) write(name string) {
	u := uv.get(name)
	u.Writes++
	if uv.depth > u.LoopDepth {
		u.LoopDepth = uv.depth
	}
}

func (uv *usageVisitor) VisitProgram(p *ast.Program) {}

func (uv *usageVisitor) VisitFunctionDeclaration(fd *ast.FunctionDeclaration) {}

func (uv *usageVisitor) VisitParamDeclaration(pd *ast.ParamDeclaration) {}

func (uv *usageVisitor) VisitBlockStatement(bs *ast.BlockStatement) {
	for _, stmt := range bs.Statements {
		stmt.Accept(uv)
	}
}

func (uv *usageVisitor) VisitVarStatement(vs *ast.VarStatement) {
	uv.get(vs.Name)
	if vs.Value != nil {
		vs.Value.Accept(uv)
		uv.write(vs.Name)
	}
}

func (uv *usageVisitor) VisitAssignStatement(as *ast.AssignStatement) {
	as.Value.Accept(uv)
	switch target := as.Target.(type) {
	case *ast.Identifier:
		uv.write(target.Name)
	case *ast.IndexExpression:
		// Storing through an element writes the array and reads the
		// index.
		target.Index.Accept(uv)
		if id, ok := target.Target.(*ast.Identifier); ok {
			uv.write(id.Name)
		} else {
			target.Target.Accept(uv)
		}
	default:
		target.Accept(uv)
	}
}

func (uv *usageVisitor) VisitIfStatement(is *ast.IfStatement) {
	is.Condition.Accept(uv)
	is.Then.Accept(uv)
	if is.Else != nil {
		is.Else.Accept(uv)
	}
}

func (uv *usageVisitor) VisitLoopStatement(ls *ast.LoopStatement) {
	uv.depth++
	if ls.Condition != nil {
		ls.Condition.Accept(uv)
	}
	ls.Body.Accept(uv)
	uv.depth--
}

func (uv *usageVisitor) VisitReturnStatement(rs *ast.ReturnStatement) {
	if rs.Value != nil {
		rs.Value.Accept(uv)
	}
}

func (uv *usageVisitor) VisitExpressionStatement(es *ast.ExpressionStatement) {
	es.Expression.Accept(uv)
}

func (uv *usageVisitor) VisitIdentifier(id *ast.Identifier) {
	uv.read(id.Name)
}

func (uv *usageVisitor) VisitIntegerLiteral(il *ast.IntegerLiteral) {}

func (uv *usageVisitor) VisitCallExpression(ce *ast.CallExpression) {
	for _, arg := range ce.Args {
		arg.Accept(uv)
	}
}

func (uv *usageVisitor) VisitBinaryExpression(be *ast.BinaryExpression) {
	be.Left.Accept(uv)
	be.Right.Accept(uv)
}

func (uv *usageVisitor) VisitUnaryExpression(ue *ast.UnaryExpression) {
	ue.Operand.Accept(uv)
}

func (uv *usageVisitor) VisitIndexExpression(ie *ast.IndexExpression) {
	ie.Target.Accept(uv)
	ie.Index.Accept(uv)
}

func (uv *usageVisitor) VisitAddressOfExpression(ae *ast.AddressOfExpression) {
	// Taking a variable's address counts as a read; function names have
	// no usage profile.
	if _, ok := uv.profile[ae.Name]; ok {
		uv.read(ae.Name)
	}
}
