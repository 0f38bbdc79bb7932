package vm

import "hyperdbg/internal/guest"

// MemoryAccessor is the guest-memory side of the VM's host collaborator:
// every eb/ed/eq/poi opcode and every read or write of a !qualified
// global ultimately goes through here, never through a raw pointer.
type MemoryAccessor interface {
	ProbeRead(addr uint64, size int) bool
	ReadBytes(addr uint64, size int) ([]byte, error)
	WriteBytes(addr uint64, data []byte) error
}

// PseudoRegisterProvider resolves $proc/$thread/$peb-style pseudo
// registers against whatever context the event fired in (current
// process, current core, ...). Implementations are expected to be cheap
// and allocation-free; they run on the hot event-time path.
type PseudoRegisterProvider interface {
	PseudoRegister(id guest.PseudoRegister) (uint64, error)
}

// OutputSink receives printf's formatted output. The VM never formats
// directly to an io.Writer because event-time execution must stay
// allocation-free where possible; format.go builds the string once and
// hands it here.
type OutputSink interface {
	Write(s string)
}

// EventController is the subset of the event registry and breakpoint
// engine the VM can drive from enableevent/disableevent/pause/flush/
// event_sc/event_inject. Tag identifies the target event the way the
// script's argument names it.
type EventController interface {
	EnableEvent(tag uint64) error
	DisableEvent(tag uint64) error
	Pause() error
	Flush() error
	SetShortCircuit(tag uint64, enabled bool) error
	Inject(tag uint64) error
}

// Host bundles every external collaborator Execute needs. A script that
// never uses a given feature (no eb/ed/eq, no pseudo-registers, no
// event control) can pass nil for the corresponding field. If a nil
// collaborator is actually needed, Execute does not panic: a nil Memory
// or Pseudo yields ErrInvalidAddress, a nil Output discards printf's
// text, and a nil Events turns the event-control opcodes into no-ops.
type Host struct {
	Memory   MemoryAccessor
	Pseudo   PseudoRegisterProvider
	Output   OutputSink
	Events   EventController
}
