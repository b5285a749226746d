// Package frames implements static frame allocation: every function gets
// one fixed memory region for its parameters, locals and return slot,
// assigned entirely at compile time. The package sizes frames from checked
// declarations, coalesces frames of functions that can never be active at
// the same time, lays the groups out in the platform's frame region, and
// promotes hot slots into the zero-page pool.
//
// Generated code embeds the resulting addresses as literals, so everything
// here is deterministic: the same program and platform always produce the
// same frame map.
package frames

import (
	"sort"

	"github.com/hachi-lang/hachi/internal/ast"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/token"
	"github.com/hachi-lang/hachi/internal/typesystem"
)

// SlotKind says what a frame slot holds.
type SlotKind int

const (
	KindParameter SlotKind = iota
	KindLocal
	KindReturn
)

func (k SlotKind) String() string {
	switch k {
	case KindParameter:
		return "param"
	case KindLocal:
		return "local"
	default:
		return "return"
	}
}

// Location says which memory pool a slot ended up in.
type Location int

const (
	// LocUnassigned is the state before the orchestrator ran.
	LocUnassigned Location = iota
	// LocFrameRegion is the general RAM frame region.
	LocFrameRegion
	// LocFastMemory is the zero-page pool.
	LocFastMemory
)

func (l Location) String() string {
	switch l {
	case LocFrameRegion:
		return "frame"
	case LocFastMemory:
		return "zp"
	default:
		return "unassigned"
	}
}

// FrameSlot is one named cell of a function's frame.
type FrameSlot struct {
	Name      string
	Kind      SlotKind
	Type      typesystem.Type
	Size      int
	Offset    int // byte offset within the frame
	Placement ast.Placement
	Score     int
	Location  Location
	Address   int // absolute, valid once Location is assigned
	Token     token.Token
}

// Frame is one function's memory region before and after addressing.
// The sizing stage fills Slots and TotalSize; the coalescer sets GroupID;
// the orchestrator sets BaseAddress and the slots' absolute addresses.
// Exactly one stage writes at a time.
type Frame struct {
	FunctionName string
	Slots        []*FrameSlot
	TotalSize    int
	BaseAddress  int
	GroupID      int
}

// Slot returns the named slot, or nil.
func (f *Frame) Slot(name string) *FrameSlot {
	for _, s := range f.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ReturnSlot returns the frame's return slot, or nil for void functions.
func (f *Frame) ReturnSlot() *FrameSlot {
	for _, s := range f.Slots {
		if s.Kind == KindReturn {
			return s
		}
	}
	return nil
}

// CoalesceGroup is a set of functions proven never simultaneously active,
// sharing one region sized to the largest member.
type CoalesceGroup struct {
	ID          int
	Functions   []string
	Size        int // max member frame size
	BaseAddress int
}

// FrameMap is the terminal artifact: function name to addressed frame.
// Code generation looks addresses up here and computes nothing further.
type FrameMap map[string]*Frame

// Lookup returns the absolute address and size of one variable, parameter
// or return slot.
func (fm FrameMap) Lookup(function, name string) (addr, size int, ok bool) {
	frame, ok := fm[function]
	if !ok {
		return 0, 0, false
	}
	slot := frame.Slot(name)
	if slot == nil {
		return 0, 0, false
	}
	return slot.Address, slot.Size, true
}

// FunctionNames returns the mapped functions in lexical order, the stable
// order every dump and report uses.
func (fm FrameMap) FunctionNames() []string {
	names := make([]string, 0, len(fm))
	for name := range fm {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats summarizes a successful allocation.
type Stats struct {
	Functions           int `yaml:"functions"`
	FunctionsCoalesced  int `yaml:"functions_coalesced"`
	FrameBytesUsed      int `yaml:"frame_bytes_used"`
	FrameBytesAvailable int `yaml:"frame_bytes_available"`
	FrameBytesNaive     int `yaml:"frame_bytes_naive"` // sum of all frames, pre-coalescing
	ZeroPageBytesUsed   int `yaml:"zp_bytes_used"`
	ZeroPageBytesFree   int `yaml:"zp_bytes_free"`
}

// Result is the allocator's complete answer: either OK with a usable frame
// map, or not OK with the diagnostics explaining why. Never a partial map.
type Result struct {
	OK          bool
	FrameMap    FrameMap
	Stats       Stats
	Diagnostics []*diagnostics.DiagnosticError
}
