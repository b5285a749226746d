// Package ast defines the checked-program representation consumed by the
// frame-allocation backend. The frontend has already resolved every name
// and type, so nodes carry concrete typesystem.Type values and plain callee
// names rather than unresolved references.
//
// The node set is closed: traversals switch exhaustively or implement the
// one-method-per-variant Visitor, so adding a node kind is a compile-time
// checked change at every traversal site.
package ast

import (
	"github.com/hachi-lang/hachi/internal/token"
	"github.com/hachi-lang/hachi/internal/typesystem"
)

// Placement is the per-declaration zero-page directive the programmer wrote
// (or didn't).
type Placement int

const (
	// PlaceUnspecified lets the allocator decide by score.
	PlaceUnspecified Placement = iota
	// PlaceFast demands zero page; failure to fit is a fatal diagnostic.
	PlaceFast
	// PlaceNoFast pins the slot to the general frame region.
	PlaceNoFast
)

func (p Placement) String() string {
	switch p {
	case PlaceFast:
		return "fast"
	case PlaceNoFast:
		return "nofast"
	default:
		return "unspecified"
	}
}

// Node is the base interface for all AST nodes.
type Node interface {
	GetToken() token.Token
	Accept(v Visitor)
}

// Statement is a Node in statement position.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node in expression position.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of one checked compilation unit.
type Program struct {
	Functions []*FunctionDeclaration
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) GetToken() token.Token {
	if len(p.Functions) > 0 {
		return p.Functions[0].GetToken()
	}
	return token.Token{}
}

// Function returns the declaration named name, or nil.
func (p *Program) Function(name string) *FunctionDeclaration {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// FunctionDeclaration is one user function. Body is never nil for a checked
// program.
type FunctionDeclaration struct {
	Token      token.Token
	Name       string
	Params     []*ParamDeclaration
	ReturnType typesystem.Type
	Body       *BlockStatement
}

func (fd *FunctionDeclaration) Accept(v Visitor)      { v.VisitFunctionDeclaration(fd) }
func (fd *FunctionDeclaration) GetToken() token.Token { return fd.Token }

// ParamDeclaration is one formal parameter, in declaration order.
type ParamDeclaration struct {
	Token     token.Token
	Name      string
	Type      typesystem.Type
	Placement Placement
}

func (pd *ParamDeclaration) Accept(v Visitor)      { v.VisitParamDeclaration(pd) }
func (pd *ParamDeclaration) GetToken() token.Token { return pd.Token }

// BlockStatement is a brace-delimited statement list. Locals declared inside
// still live in the enclosing function's single frame; blocks only scope
// visibility, not storage.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (bs *BlockStatement) Accept(v Visitor)      { v.VisitBlockStatement(bs) }
func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }

// VarStatement declares one local. Value is optional.
type VarStatement struct {
	Token     token.Token
	Name      string
	Type      typesystem.Type
	Placement Placement
	Value     Expression
}

func (vs *VarStatement) Accept(v Visitor)      { v.VisitVarStatement(vs) }
func (vs *VarStatement) statementNode()        {}
func (vs *VarStatement) GetToken() token.Token { return vs.Token }

// AssignStatement stores Value into Target (an identifier or index
// expression).
type AssignStatement struct {
	Token  token.Token
	Target Expression
	Value  Expression
}

func (as *AssignStatement) Accept(v Visitor)      { v.VisitAssignStatement(as) }
func (as *AssignStatement) statementNode()        {}
func (as *AssignStatement) GetToken() token.Token { return as.Token }

// IfStatement branches on Condition. Else may be nil.
type IfStatement struct {
	Token     token.Token
	Condition Expression
	Then      *BlockStatement
	Else      *BlockStatement
}

func (is *IfStatement) Accept(v Visitor)      { v.VisitIfStatement(is) }
func (is *IfStatement) statementNode()        {}
func (is *IfStatement) GetToken() token.Token { return is.Token }

// LoopStatement is the single loop form the frontend lowers `while` and
// `for` into. Condition may be nil for an unconditional loop.
type LoopStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (ls *LoopStatement) Accept(v Visitor)      { v.VisitLoopStatement(ls) }
func (ls *LoopStatement) statementNode()        {}
func (ls *LoopStatement) GetToken() token.Token { return ls.Token }

// ReturnStatement leaves the function. Value is nil for void returns.
type ReturnStatement struct {
	Token token.Token
	Value Expression
}

func (rs *ReturnStatement) Accept(v Visitor)      { v.VisitReturnStatement(rs) }
func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }

// ExpressionStatement wraps an expression evaluated for effect, typically a
// call.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) Accept(v Visitor)      { v.VisitExpressionStatement(es) }
func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
