// Package typesystem models the resolved types the frontend hands to the
// backend. By the time the frame allocator runs, every declaration carries
// one of a closed set of concrete types; all inference and checking happened
// upstream. The only question the backend asks a type is how many bytes it
// occupies in a frame.
package typesystem

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the resolved type kinds of the target machine.
type Kind int

const (
	// Void marks the absence of a value (return type only).
	Void Kind = iota
	// Byte is an 8-bit scalar.
	Byte
	// Word is a 16-bit scalar.
	Word
	// Pointer is a 16-bit address. Kept distinct from Word because
	// pointers in zero page unlock the indirect-indexed addressing mode.
	Pointer
	// Array is a fixed-size sequence of a single element type.
	Array
)

// Type is one resolved type. Scalars carry only the kind; arrays carry the
// element type and a compile-time constant length.
type Type struct {
	Kind  Kind
	Elem  *Type // Array element type, nil otherwise
	Count int   // Array length, 0 otherwise
}

var (
	VoidType    = Type{Kind: Void}
	ByteType    = Type{Kind: Byte}
	WordType    = Type{Kind: Word}
	PointerType = Type{Kind: Pointer}
)

// ArrayOf builds a fixed array type. Multi-dimensional arrays nest:
// ArrayOf(ArrayOf(ByteType, 3), 2) is byte[2][3].
func ArrayOf(elem Type, count int) Type {
	e := elem
	return Type{Kind: Array, Elem: &e, Count: count}
}

// Size returns the type's frame footprint in bytes. Byte is 1, word and
// pointer are 2, arrays multiply out recursively. Void occupies nothing.
func (t Type) Size() int {
	switch t.Kind {
	case Byte:
		return 1
	case Word, Pointer:
		return 2
	case Array:
		return t.Elem.Size() * t.Count
	default:
		return 0
	}
}

// IsVoid reports whether the type is the void type.
func (t Type) IsVoid() bool { return t.Kind == Void }

func (t Type) String() string {
	switch t.Kind {
	case Void:
		return "void"
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Pointer:
		return "ptr"
	case Array:
		// Recover source order: byte[2][3] is a 2-array of byte[3].
		base, dims := t.unroll()
		var sb strings.Builder
		sb.WriteString(base.String())
		for _, d := range dims {
			fmt.Fprintf(&sb, "[%d]", d)
		}
		return sb.String()
	default:
		return "unknown"
	}
}

func (t Type) unroll() (Type, []int) {
	dims := []int{}
	cur := t
	for cur.Kind == Array {
		dims = append(dims, cur.Count)
		cur = *cur.Elem
	}
	return cur, dims
}

// Parse reads the compact type notation used by the program dump format:
// "void", "byte", "word", "ptr", and array forms like "byte[8]" or
// "word[2][3]". Array lengths must be positive.
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	base := s
	var dims []int
	if i := strings.IndexByte(s, '['); i >= 0 {
		base = s[:i]
		rest := s[i:]
		for rest != "" {
			if rest[0] != '[' {
				return Type{}, fmt.Errorf("malformed type %q", s)
			}
			j := strings.IndexByte(rest, ']')
			if j < 0 {
				return Type{}, fmt.Errorf("malformed type %q", s)
			}
			n, err := strconv.Atoi(rest[1:j])
			if err != nil || n <= 0 {
				return Type{}, fmt.Errorf("bad array length in type %q", s)
			}
			dims = append(dims, n)
			rest = rest[j+1:]
		}
	}

	var t Type
	switch base {
	case "void":
		t = VoidType
	case "byte":
		t = ByteType
	case "word":
		t = WordType
	case "ptr":
		t = PointerType
	default:
		return Type{}, fmt.Errorf("unknown type %q", s)
	}

	if len(dims) > 0 && t.Kind == Void {
		return Type{}, fmt.Errorf("array of void in type %q", s)
	}
	// Apply dimensions inside-out so the outermost bracket is the
	// outermost array.
	for i := len(dims) - 1; i >= 0; i-- {
		t = ArrayOf(t, dims[i])
	}
	return t, nil
}
