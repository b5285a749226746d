// Package zeropage manages the scarce fast-memory window of the target: the
// slice of page zero the platform leaves to compiled code. Zero-page operands
// are a byte shorter and a cycle faster than absolute ones, and only
// zero-page pointers can use the indirect-indexed addressing mode, so slots
// compete for the pool by score while explicit placement annotations are
// honored first.
package zeropage

import (
	"fmt"

	"github.com/hachi-lang/hachi/internal/platform"
)

// Pool is the zero-page allocation bitmap for one compilation. It is filled
// once and discarded; there is no free operation because static allocation
// never releases an address.
type Pool struct {
	start int
	used  []bool
}

// NewPool builds a pool over the platform's zero-page window with the
// configured reservations already marked used.
func NewPool(zp platform.Range, reserved []platform.Range) *Pool {
	p := &Pool{
		start: zp.Start,
		used:  make([]bool, zp.Size()),
	}
	for _, r := range reserved {
		for addr := r.Start; addr <= r.End; addr++ {
			if zp.Contains(addr) {
				p.used[addr-zp.Start] = true
			}
		}
	}
	return p
}

// CanAllocate reports whether a contiguous free run of size bytes exists.
func (p *Pool) CanAllocate(size int) bool {
	return p.findRun(size) >= 0
}

// Allocate claims the lowest-address contiguous run of size bytes and
// returns its start address. Calling it when CanAllocate(size) is false is
// a bug in the caller, not an allocation failure, and panics.
func (p *Pool) Allocate(size int) int {
	idx := p.findRun(size)
	if idx < 0 {
		panic(fmt.Sprintf("zeropage: Allocate(%d) without CanAllocate", size))
	}
	for i := idx; i < idx+size; i++ {
		p.used[i] = true
	}
	return p.start + idx
}

// findRun returns the index of the lowest free run of size bytes, or -1.
func (p *Pool) findRun(size int) int {
	if size <= 0 {
		panic(fmt.Sprintf("zeropage: bad allocation size %d", size))
	}
	run := 0
	for i := range p.used {
		if p.used[i] {
			run = 0
			continue
		}
		run++
		if run == size {
			return i - size + 1
		}
	}
	return -1
}

// BytesUsed returns the number of claimed bytes, reservations included.
func (p *Pool) BytesUsed() int {
	n := 0
	for _, u := range p.used {
		if u {
			n++
		}
	}
	return n
}

// BytesFree returns the number of unclaimed bytes.
func (p *Pool) BytesFree() int { return len(p.used) - p.BytesUsed() }

// Size returns the total pool size in bytes.
func (p *Pool) Size() int { return len(p.used) }
