package ast

import "github.com/hachi-lang/hachi/internal/token"

// Identifier is a resolved reference to a parameter or local.
type Identifier struct {
	Token token.Token
	Name  string
}

func (id *Identifier) Accept(v Visitor)      { v.VisitIdentifier(id) }
func (id *Identifier) expressionNode()       {}
func (id *Identifier) GetToken() token.Token { return id.Token }

// IntegerLiteral is a checked numeric constant.
type IntegerLiteral struct {
	Token token.Token
	Value int
}

func (il *IntegerLiteral) Accept(v Visitor)      { v.VisitIntegerLiteral(il) }
func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }

// CallExpression invokes Callee with Args. The frontend resolved the target,
// so Callee is a plain name: either a user function defined in the program
// or a builtin intrinsic.
type CallExpression struct {
	Token  token.Token
	Callee string
	Args   []Expression
}

func (ce *CallExpression) Accept(v Visitor)      { v.VisitCallExpression(ce) }
func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// BinaryExpression applies Op to Left and Right.
type BinaryExpression struct {
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

func (be *BinaryExpression) Accept(v Visitor)      { v.VisitBinaryExpression(be) }
func (be *BinaryExpression) expressionNode()       {}
func (be *BinaryExpression) GetToken() token.Token { return be.Token }

// UnaryExpression applies Op to its operand.
type UnaryExpression struct {
	Token   token.Token
	Op      string
	Operand Expression
}

func (ue *UnaryExpression) Accept(v Visitor)      { v.VisitUnaryExpression(ue) }
func (ue *UnaryExpression) expressionNode()       {}
func (ue *UnaryExpression) GetToken() token.Token { return ue.Token }

// IndexExpression reads one element of an array variable.
type IndexExpression struct {
	Token  token.Token
	Target Expression
	Index  Expression
}

func (ie *IndexExpression) Accept(v Visitor)      { v.VisitIndexExpression(ie) }
func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }

// AddressOfExpression takes the address of a variable or function by name.
// When Name resolves to a function, that function becomes callable through
// a pointer value and the allocator must treat it conservatively.
type AddressOfExpression struct {
	Token token.Token
	Name  string
}

func (ae *AddressOfExpression) Accept(v Visitor)      { v.VisitAddressOfExpression(ae) }
func (ae *AddressOfExpression) expressionNode()       {}
func (ae *AddressOfExpression) GetToken() token.Token { return ae.Token }
