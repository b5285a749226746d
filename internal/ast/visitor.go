package ast

// Visitor has one method per concrete node kind. A traversal implements the
// full interface and drives recursion itself by calling Accept on children;
// adding a node kind breaks every visitor at compile time, which is the
// point.
type Visitor interface {
	VisitProgram(p *Program)
	VisitFunctionDeclaration(fd *FunctionDeclaration)
	VisitParamDeclaration(pd *ParamDeclaration)

	VisitBlockStatement(bs *BlockStatement)
	VisitVarStatement(vs *VarStatement)
	VisitAssignStatement(as *AssignStatement)
	VisitIfStatement(is *IfStatement)
	VisitLoopStatement(ls *LoopStatement)
	VisitReturnStatement(rs *ReturnStatement)
	VisitExpressionStatement(es *ExpressionStatement)

	VisitIdentifier(id *Identifier)
	VisitIntegerLiteral(il *IntegerLiteral)
	VisitCallExpression(ce *CallExpression)
	VisitBinaryExpression(be *BinaryExpression)
	VisitUnaryExpression(ue *UnaryExpression)
	VisitIndexExpression(ie *IndexExpression)
	VisitAddressOfExpression(ae *AddressOfExpression)
}
