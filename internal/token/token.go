package token

import "strconv"

// Token identifies a source location for a checked-program entity.
// The frontend resolved names and types before handing the program to the
// backend, so only the lexeme and position survive; they are carried on AST
// nodes for diagnostics.
type Token struct {
	Lexeme string
	File   string
	Line   int
	Column int
}

// Pos renders the position as "file:line:col" (or "line:col" without a file).
// Zero tokens render as "?" so synthetic nodes stay printable.
func (t Token) Pos() string {
	if t.Line == 0 {
		return "?"
	}
	pos := strconv.Itoa(t.Line) + ":" + strconv.Itoa(t.Column)
	if t.File == "" {
		return pos
	}
	return t.File + ":" + pos
}
