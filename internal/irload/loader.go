// Package irload reads the checked-program dump the frontend emits at the
// backend boundary. The dump is a compact YAML form of function signatures,
// declarations with placement annotations, and just enough body structure
// (calls, variable accesses, loops, branches) for the allocator's graph and
// usage analyses. It is a serialization of an already-checked program, not
// a source language: nothing here lexes or type-checks.
//
// Array type notation needs quoting inside YAML flow mappings
// ({name: buf, type: "byte[4]"}): a bare [ is a flow indicator there.
// Block-style entries may write byte[4] unquoted.
package irload

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hachi-lang/hachi/internal/ast"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/token"
	"github.com/hachi-lang/hachi/internal/typesystem"
)

type dumpYAML struct {
	Functions []functionYAML `yaml:"functions"`
}

type functionYAML struct {
	Name    string     `yaml:"name"`
	At      string     `yaml:"at,omitempty"`
	Params  []varYAML  `yaml:"params,omitempty"`
	Returns string     `yaml:"returns,omitempty"`
	Body    []stmtYAML `yaml:"body,omitempty"`
}

type varYAML struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Place string `yaml:"place,omitempty"`
	At    string `yaml:"at,omitempty"`
}

// stmtYAML is one body entry. Exactly one field is set per entry.
type stmtYAML struct {
	Var  *varYAML  `yaml:"var,omitempty"`
	Set  string    `yaml:"set,omitempty"`
	Use  string    `yaml:"use,omitempty"`
	Call *callYAML `yaml:"call,omitempty"`
	Loop *loopYAML `yaml:"loop,omitempty"`
	If   *ifYAML   `yaml:"if,omitempty"`
	Ret  *retYAML  `yaml:"ret,omitempty"`
	Addr string    `yaml:"addr,omitempty"`
}

// callYAML accepts both the shorthand scalar form (`call: worker`) and the
// full mapping form (`call: {name: worker, args: [i, j]}`).
type callYAML struct {
	Name string
	Args []string
}

func (c *callYAML) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&c.Name)
	}
	var full struct {
		Name string   `yaml:"name"`
		Args []string `yaml:"args,omitempty"`
	}
	if err := node.Decode(&full); err != nil {
		return err
	}
	c.Name = full.Name
	c.Args = full.Args
	return nil
}

// loopYAML accepts a bare statement list (`loop: [...]`) or a mapping with
// an optional condition variable (`loop: {cond: i, body: [...]}`).
type loopYAML struct {
	Cond string
	Body []stmtYAML
}

func (l *loopYAML) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&l.Body)
	}
	var full struct {
		Cond string     `yaml:"cond,omitempty"`
		Body []stmtYAML `yaml:"body"`
	}
	if err := node.Decode(&full); err != nil {
		return err
	}
	l.Cond = full.Cond
	l.Body = full.Body
	return nil
}

type ifYAML struct {
	Cond string     `yaml:"cond,omitempty"`
	Then []stmtYAML `yaml:"then"`
	Else []stmtYAML `yaml:"else,omitempty"`
}

// retYAML accepts `ret: name` (returning a variable) or `ret: {}` (void).
type retYAML struct {
	Name string
}

func (r *retYAML) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		return node.Decode(&r.Name)
	case yaml.MappingNode:
		if len(node.Content) == 0 {
			return nil
		}
	}
	return fmt.Errorf("ret takes a variable name or nothing")
}

// Load reads a dump file and lowers it to the checked AST.
func Load(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program dump: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes dump YAML. file names the dump in fallback positions.
func Parse(data []byte, file string) (*ast.Program, error) {
	var dump dumpYAML
	if err := yaml.Unmarshal(data, &dump); err != nil {
		return nil, badDump(token.Token{File: file}, err.Error())
	}

	ld := &loader{file: file}
	program := &ast.Program{}
	seen := make(map[string]bool)
	for i := range dump.Functions {
		fy := &dump.Functions[i]
		if fy.Name == "" {
			return nil, badDump(token.Token{File: file}, "function without a name")
		}
		if seen[fy.Name] {
			return nil, badDump(ld.at(fy.At, fy.Name), fmt.Sprintf("duplicate function '%s'", fy.Name))
		}
		seen[fy.Name] = true
		fn, err := ld.function(fy)
		if err != nil {
			return nil, err
		}
		program.Functions = append(program.Functions, fn)
	}
	return program, nil
}

type loader struct {
	file string

	// decl tracks names declared in the function being lowered. The frame
	// is flat, so a name may appear once per function regardless of block
	// nesting.
	decl map[string]bool
}

func (ld *loader) declare(name, fnName string, tok token.Token) error {
	if ld.decl[name] {
		return badDump(tok, fmt.Sprintf("function '%s': duplicate declaration '%s'", fnName, name))
	}
	ld.decl[name] = true
	return nil
}

func badDump(tok token.Token, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrBadDump, tok, msg)
}

// at parses the optional "line:col" or "file:line:col" position annotation.
func (ld *loader) at(at, lexeme string) token.Token {
	tok := token.Token{Lexeme: lexeme, File: ld.file}
	if at == "" {
		return tok
	}
	parts := strings.Split(at, ":")
	if len(parts) == 3 {
		tok.File = parts[0]
		parts = parts[1:]
	}
	if len(parts) == 2 {
		if line, err := strconv.Atoi(parts[0]); err == nil {
			tok.Line = line
		}
		if col, err := strconv.Atoi(parts[1]); err == nil {
			tok.Column = col
		}
	}
	return tok
}

func (ld *loader) function(fy *functionYAML) (*ast.FunctionDeclaration, error) {
	fn := &ast.FunctionDeclaration{
		Token:      ld.at(fy.At, fy.Name),
		Name:       fy.Name,
		ReturnType: typesystem.VoidType,
	}
	ld.decl = make(map[string]bool)
	if fy.Returns != "" {
		ret, err := typesystem.Parse(fy.Returns)
		if err != nil {
			return nil, badDump(fn.Token, fmt.Sprintf("function '%s': %s", fy.Name, err))
		}
		fn.ReturnType = ret
	}
	for i := range fy.Params {
		py := &fy.Params[i]
		typ, place, err := ld.typed(py, fy.Name)
		if err != nil {
			return nil, err
		}
		if err := ld.declare(py.Name, fy.Name, ld.at(py.At, py.Name)); err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, &ast.ParamDeclaration{
			Token:     ld.at(py.At, py.Name),
			Name:      py.Name,
			Type:      typ,
			Placement: place,
		})
	}
	body, err := ld.block(fn.Token, fy.Body, fy.Name)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (ld *loader) typed(vy *varYAML, fnName string) (typesystem.Type, ast.Placement, error) {
	tok := ld.at(vy.At, vy.Name)
	if vy.Name == "" {
		return typesystem.Type{}, 0, badDump(tok, fmt.Sprintf("function '%s': declaration without a name", fnName))
	}
	typ, err := typesystem.Parse(vy.Type)
	if err != nil {
		return typesystem.Type{}, 0, badDump(tok, fmt.Sprintf("function '%s', '%s': %s", fnName, vy.Name, err))
	}
	if typ.IsVoid() {
		return typesystem.Type{}, 0, badDump(tok, fmt.Sprintf("function '%s', '%s': void declaration", fnName, vy.Name))
	}
	var place ast.Placement
	switch vy.Place {
	case "":
		place = ast.PlaceUnspecified
	case "fast":
		place = ast.PlaceFast
	case "nofast":
		place = ast.PlaceNoFast
	default:
		return typesystem.Type{}, 0, badDump(tok, fmt.Sprintf("function '%s', '%s': unknown placement %q", fnName, vy.Name, vy.Place))
	}
	return typ, place, nil
}

func (ld *loader) block(tok token.Token, stmts []stmtYAML, fnName string) (*ast.BlockStatement, error) {
	block := &ast.BlockStatement{Token: tok}
	for i := range stmts {
		stmt, err := ld.statement(&stmts[i], fnName)
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	return block, nil
}

func (ld *loader) statement(sy *stmtYAML, fnName string) (ast.Statement, error) {
	switch {
	case sy.Var != nil:
		typ, place, err := ld.typed(sy.Var, fnName)
		if err != nil {
			return nil, err
		}
		if err := ld.declare(sy.Var.Name, fnName, ld.at(sy.Var.At, sy.Var.Name)); err != nil {
			return nil, err
		}
		return &ast.VarStatement{
			Token:     ld.at(sy.Var.At, sy.Var.Name),
			Name:      sy.Var.Name,
			Type:      typ,
			Placement: place,
		}, nil

	case sy.Set != "":
		tok := token.Token{Lexeme: sy.Set, File: ld.file}
		return &ast.AssignStatement{
			Token:  tok,
			Target: &ast.Identifier{Token: tok, Name: sy.Set},
			Value:  &ast.IntegerLiteral{Token: tok},
		}, nil

	case sy.Use != "":
		tok := token.Token{Lexeme: sy.Use, File: ld.file}
		return &ast.ExpressionStatement{
			Token:      tok,
			Expression: &ast.Identifier{Token: tok, Name: sy.Use},
		}, nil

	case sy.Call != nil:
		tok := token.Token{Lexeme: sy.Call.Name, File: ld.file}
		call := &ast.CallExpression{Token: tok, Callee: sy.Call.Name}
		for _, arg := range sy.Call.Args {
			call.Args = append(call.Args, &ast.Identifier{
				Token: token.Token{Lexeme: arg, File: ld.file},
				Name:  arg,
			})
		}
		return &ast.ExpressionStatement{Token: tok, Expression: call}, nil

	case sy.Loop != nil:
		tok := token.Token{Lexeme: "loop", File: ld.file}
		body, err := ld.block(tok, sy.Loop.Body, fnName)
		if err != nil {
			return nil, err
		}
		loop := &ast.LoopStatement{Token: tok, Body: body}
		if sy.Loop.Cond != "" {
			loop.Condition = &ast.Identifier{
				Token: token.Token{Lexeme: sy.Loop.Cond, File: ld.file},
				Name:  sy.Loop.Cond,
			}
		}
		return loop, nil

	case sy.If != nil:
		tok := token.Token{Lexeme: "if", File: ld.file}
		then, err := ld.block(tok, sy.If.Then, fnName)
		if err != nil {
			return nil, err
		}
		stmt := &ast.IfStatement{Token: tok, Then: then}
		if sy.If.Cond != "" {
			stmt.Condition = &ast.Identifier{
				Token: token.Token{Lexeme: sy.If.Cond, File: ld.file},
				Name:  sy.If.Cond,
			}
		} else {
			stmt.Condition = &ast.IntegerLiteral{Token: tok, Value: 1}
		}
		if len(sy.If.Else) > 0 {
			els, err := ld.block(tok, sy.If.Else, fnName)
			if err != nil {
				return nil, err
			}
			stmt.Else = els
		}
		return stmt, nil

	case sy.Ret != nil:
		tok := token.Token{Lexeme: "ret", File: ld.file}
		stmt := &ast.ReturnStatement{Token: tok}
		if sy.Ret.Name != "" {
			stmt.Value = &ast.Identifier{
				Token: token.Token{Lexeme: sy.Ret.Name, File: ld.file},
				Name:  sy.Ret.Name,
			}
		}
		return stmt, nil

	case sy.Addr != "":
		tok := token.Token{Lexeme: sy.Addr, File: ld.file}
		return &ast.ExpressionStatement{
			Token:      tok,
			Expression: &ast.AddressOfExpression{Token: tok, Name: sy.Addr},
		}, nil

	default:
		return nil, badDump(token.Token{File: ld.file}, fmt.Sprintf("function '%s': empty body entry", fnName))
	}
}
