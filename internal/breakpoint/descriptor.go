// Package breakpoint maintains the Breakpoint Descriptor table and
// safely installs/removes 1-byte trap opcodes against guest memory,
// filtering firings by process/thread/core and handling the IF-masked
// single-step re-arm sequence.
package breakpoint

// TrapOpcode is the 1-byte software breakpoint instruction (INT3)
// written over the original byte at install time.
const TrapOpcode = 0xCC

// Filter narrows which contexts a Descriptor's firing applies to. Each
// of Process/Thread/Core must match exactly unless its MatchAnyPID/
// MatchAnyTID/MatchAnyCore flag is set; a zero id is a legitimate id of
// 0, not a wildcard.
type Filter struct {
	Process    uint64
	MatchAnyPID bool
	Thread     uint64
	MatchAnyTID bool
	Core       int
	MatchAnyCore bool
}

func (f Filter) Accepts(process, thread uint64, core int) bool {
	if !f.MatchAnyPID && f.Process != process {
		return false
	}
	if !f.MatchAnyTID && f.Thread != thread {
		return false
	}
	if !f.MatchAnyCore && f.Core != core {
		return false
	}
	return true
}

// Descriptor is one installed breakpoint. The physical address,
// captured at install time, is the system of record for byte
// replacement: a process context switch never invalidates it (see
// DESIGN.md for why physical addressing was chosen over virtual).
type Descriptor struct {
	ID                uint64
	VirtualAddress    uint64
	PhysicalAddress   uint64
	PreviousByte      byte
	Enabled           bool
	InstructionLength int
	Filter            Filter
	AvoidReapply      bool
}
