// Package platform describes the target machine's memory map as far as the
// frame allocator cares: the zero-page pool it may hand out, and the general
// RAM window reserved for static frames. Configurations are loaded from a
// platform YAML file shipped per target machine.
package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hachi-lang/hachi/internal/config"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/token"
)

// Range is an inclusive address range.
type Range struct {
	// Start is the first address of the range.
	Start int `yaml:"start"`

	// End is the last address of the range (inclusive).
	End int `yaml:"end"`
}

// Size returns the number of bytes the range spans.
func (r Range) Size() int { return r.End - r.Start + 1 }

// Contains reports whether addr lies inside the range.
func (r Range) Contains(addr int) bool { return addr >= r.Start && addr <= r.End }

// Platform is the memory configuration for one target machine.
type Platform struct {
	// Name identifies the machine in diagnostics and dumps.
	Name string `yaml:"name,omitempty"`

	// ZeroPage is the address window the fast-memory pool may allocate
	// from, typically a slice of page zero left free by the ROM.
	ZeroPage Range `yaml:"zero_page"`

	// Reserved lists zero-page sub-ranges the pool must never hand out
	// (ROM workspace, memory-mapped registers, runtime scratch).
	Reserved []Range `yaml:"reserved,omitempty"`

	// FrameRegion is the RAM window static frames are laid out in.
	FrameRegion Range `yaml:"frame_region"`

	// EntryPoints names the functions control enters from outside the
	// program: the reset entry and any interrupt handlers. Defaults to
	// ["main"].
	EntryPoints []string `yaml:"entry_points,omitempty"`
}

// Default returns a generic 64K machine layout used when no platform file
// is given: zero page $10-$FF with nothing reserved, frames at $0200-$3FFF.
func Default() *Platform {
	return &Platform{
		Name:        "generic",
		ZeroPage:    Range{Start: 0x10, End: 0xFF},
		FrameRegion: Range{Start: 0x0200, End: 0x3FFF},
		EntryPoints: []string{config.DefaultEntryPoint},
	}
}

// Load reads and validates a platform YAML file.
func Load(path string) (*Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading platform file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates platform YAML.
func Parse(data []byte) (*Platform, error) {
	var p Platform
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing platform file: %w", err)
	}
	if len(p.EntryPoints) == 0 {
		p.EntryPoints = []string{config.DefaultEntryPoint}
	}
	if errs := p.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}
	return &p, nil
}

// Validate checks the configuration for internal consistency and returns
// one BAD_PLATFORM diagnostic per problem.
func (p *Platform) Validate() []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	bad := func(format string, args ...interface{}) {
		errs = append(errs, diagnostics.NewError(
			diagnostics.ErrBadPlatform, token.Token{}, fmt.Sprintf(format, args...)))
	}

	if p.ZeroPage.Start > p.ZeroPage.End {
		bad("zero-page range $%02X-$%02X is inverted", p.ZeroPage.Start, p.ZeroPage.End)
	}
	if p.ZeroPage.Start < 0 || p.ZeroPage.End > 0xFF {
		bad("zero-page range $%02X-$%02X is outside page zero", p.ZeroPage.Start, p.ZeroPage.End)
	}
	if p.FrameRegion.Start > p.FrameRegion.End {
		bad("frame region $%04X-$%04X is inverted", p.FrameRegion.Start, p.FrameRegion.End)
	}
	if p.FrameRegion.Start < 0 || p.FrameRegion.End > 0xFFFF {
		bad("frame region $%04X-$%04X is outside the address space", p.FrameRegion.Start, p.FrameRegion.End)
	}
	for _, r := range p.Reserved {
		if r.Start > r.End {
			bad("reserved range $%02X-$%02X is inverted", r.Start, r.End)
			continue
		}
		if !p.ZeroPage.Contains(r.Start) || !p.ZeroPage.Contains(r.End) {
			bad("reserved range $%02X-$%02X lies outside the zero-page pool", r.Start, r.End)
		}
	}
	return errs
}
