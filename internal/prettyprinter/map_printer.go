package prettyprinter

import (
	"bytes"
	"fmt"

	"github.com/hachi-lang/hachi/internal/frames"
)

// --- Map Printer (Output looks like a linker map listing) ---

// MapPrinter renders a frame map as the human-readable listing printed by
// -print, one block per function in declaration-independent sorted order
// with aligned slot columns.
type MapPrinter struct {
	buf bytes.Buffer
}

func NewMapPrinter() *MapPrinter {
	return &MapPrinter{}
}

// Print renders the whole allocation result.
func (p *MapPrinter) Print(result *frames.Result) string {
	p.buf.Reset()
	if !result.OK {
		return ""
	}

	for _, name := range result.FrameMap.FunctionNames() {
		p.printFrame(result.FrameMap[name])
	}
	p.printStats(result.Stats)
	return p.buf.String()
}

func (p *MapPrinter) printFrame(frame *frames.Frame) {
	fmt.Fprintf(&p.buf, "%s  %s  %d bytes  group %d\n",
		frame.FunctionName, formatAddr(frame.BaseAddress), frame.TotalSize, frame.GroupID)

	nameWidth := 0
	typeWidth := 0
	for _, slot := range frame.Slots {
		if len(slot.Name) > nameWidth {
			nameWidth = len(slot.Name)
		}
		if l := len(slot.Type.String()); l > typeWidth {
			typeWidth = l
		}
	}

	for _, slot := range frame.Slots {
		loc := "frame"
		if slot.Location == frames.LocFastMemory {
			loc = "zp"
		}
		fmt.Fprintf(&p.buf, "  %-*s  %-*s  %s  %s\n",
			nameWidth, slot.Name, typeWidth, slot.Type.String(), formatAddr(slot.Address), loc)
	}
	p.buf.WriteByte('\n')
}

func (p *MapPrinter) printStats(s frames.Stats) {
	fmt.Fprintf(&p.buf, "%d function(s), %d coalesced\n", s.Functions, s.FunctionsCoalesced)
	fmt.Fprintf(&p.buf, "frame region %d/%d bytes, zero page %d used %d free\n",
		s.FrameBytesUsed, s.FrameBytesAvailable, s.ZeroPageBytesUsed, s.ZeroPageBytesFree)
}

func formatAddr(addr int) string {
	if addr < 0x100 {
		return fmt.Sprintf("$%02X", addr)
	}
	return fmt.Sprintf("$%04X", addr)
}
