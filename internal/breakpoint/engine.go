package breakpoint

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// IDStartSeed mirrors event.TagStartSeed: breakpoint ids and event tags
// are rebased against the same starting value but are disjoint
// namespaces.
const IDStartSeed = 0x1000000

var (
	ErrNotInstalled     = errors.New("breakpoint not installed at that address")
	ErrUnknownID        = errors.New("unknown breakpoint id")
	ErrClearInFlight    = errors.New("cannot register while a bulk clear is in progress")
	ErrBreakpointExists = errors.New("breakpoint already installed at that address")
)

// Engine owns the live Descriptor table, keyed both by id and by
// physical address (firing only ever has the address), plus one
// CoreState per core for the single-step re-arm sequence.
type Engine struct {
	mu          sync.Mutex
	mem         MemoryAccessor
	dis         LengthDisassembler
	byID        map[uint64]*Descriptor
	byPhysical  map[uint64]*Descriptor
	nextID      uint64
	clearing    bool
	cores       map[int]*CoreState
}

func New(mem MemoryAccessor, dis LengthDisassembler) *Engine {
	return &Engine{
		mem:        mem,
		dis:        dis,
		byID:       map[uint64]*Descriptor{},
		byPhysical: map[uint64]*Descriptor{},
		nextID:     IDStartSeed,
		cores:      map[int]*CoreState{},
	}
}

// Core returns (creating if absent) the CoreState for a given logical
// CPU index.
func (e *Engine) Core(core int) *CoreState {
	e.mu.Lock()
	defer e.mu.Unlock()
	cs, ok := e.cores[core]
	if !ok {
		cs = newCoreState()
		e.cores[core] = cs
	}
	return cs
}

// defaultScanLength is how many bytes Install reads for the length
// disassembler hint; long enough for any legal x86-64 instruction.
const defaultScanLength = 15

// Install places a trap byte at virtualAddr, translated to its physical
// address at install time.
func (e *Engine) Install(virtualAddr uint64, filter Filter) (*Descriptor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clearing {
		return nil, ErrClearInFlight
	}

	phys, err := e.mem.TranslateToPhysical(virtualAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "translating 0x%x", virtualAddr)
	}
	if _, exists := e.byPhysical[phys]; exists {
		return nil, errors.Wrapf(ErrBreakpointExists, "0x%x", virtualAddr)
	}
	original, err := e.mem.ReadBytes(phys, 1)
	if err != nil {
		return nil, err
	}

	length := 1
	if e.dis != nil {
		if probe, perr := e.mem.ReadBytes(phys, defaultScanLength); perr == nil {
			if l, derr := e.dis.InstructionLength(probe); derr == nil && l > 0 {
				length = l
			}
		}
	}

	if err := e.mem.WriteByte(phys, TrapOpcode); err != nil {
		return nil, err
	}

	e.nextID++
	d := &Descriptor{
		ID:                e.nextID,
		VirtualAddress:    virtualAddr,
		PhysicalAddress:   phys,
		PreviousByte:      original[0],
		Enabled:           true,
		InstructionLength: length,
		Filter:            filter,
	}
	e.byID[d.ID] = d
	e.byPhysical[d.PhysicalAddress] = d
	return d, nil
}

// Remove clears the breakpoint identified by id, restoring the
// previous byte only if the trap byte wasn't already overwritten by
// something else in the meantime.
func (e *Engine) Remove(id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.byID[id]
	if !ok {
		return errors.Wrapf(ErrUnknownID, "%d", id)
	}
	return e.removeLocked(d)
}

func (e *Engine) removeLocked(d *Descriptor) error {
	cur, err := e.mem.ReadBytes(d.PhysicalAddress, 1)
	if err != nil {
		return err
	}
	if cur[0] == TrapOpcode {
		if err := e.mem.WriteByte(d.PhysicalAddress, d.PreviousByte); err != nil {
			return err
		}
	}
	d.Enabled = false
	delete(e.byID, d.ID)
	delete(e.byPhysical, d.PhysicalAddress)
	return nil
}

// List returns every installed Descriptor in id order, for listing
// commands such as `bl`.
func (e *Engine) List() []*Descriptor {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Descriptor, 0, len(e.byID))
	for _, d := range e.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetEnabled flips whether id's trap fires when hit. Firing still
// restores the original byte and re-arms on every hit regardless;
// Enabled only gates whether a hit is treated as accepted.
func (e *Engine) SetEnabled(id uint64, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.byID[id]
	if !ok {
		return errors.Wrapf(ErrUnknownID, "%d", id)
	}
	d.Enabled = enabled
	return nil
}

// BulkClear removes every installed breakpoint. No concurrent Install
// is permitted while it runs; the mutex held for the whole walk
// enforces that directly.
func (e *Engine) BulkClear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearing = true
	defer func() { e.clearing = false }()

	for _, d := range e.byID {
		if err := e.removeLocked(d); err != nil {
			return err
		}
	}
	return nil
}

// FiringOutcome tells the caller what to do next after Firing examines
// one trap.
type FiringOutcome struct {
	// Found is false when no Descriptor matches — the caller must
	// deliver the exception to the guest unchanged.
	Found bool

	// Accepted is true when the filter accepted this context — the
	// caller should halt and notify the controller. When false, the
	// caller should single-step past the restored instruction (with IF
	// masked) and let the Engine handle the rearm bookkeeping.
	Accepted bool

	Descriptor *Descriptor
}

// Firing looks up the Descriptor installed at physicalAddr and decides
// whether this hit should halt the debugger or be silently stepped
// past. It always restores the original byte; the caller is
// responsible for the actual single-step and for calling Rearm once
// the step completes.
func (e *Engine) Firing(physicalAddr uint64, process, thread uint64, core int) (FiringOutcome, error) {
	e.mu.Lock()
	d, ok := e.byPhysical[physicalAddr]
	e.mu.Unlock()
	if !ok {
		return FiringOutcome{Found: false}, nil
	}

	if err := e.mem.WriteByte(physicalAddr, d.PreviousByte); err != nil {
		return FiringOutcome{}, err
	}

	accepted := d.Enabled && d.Filter.Accepts(process, thread, core)
	e.Core(core).ArmPending(physicalAddr, true)
	return FiringOutcome{Found: true, Accepted: accepted, Descriptor: d}, nil
}

// Rearm rewrites the trap byte for whatever this core's single step
// just completed and returns the IF value CoreState remembered from the
// firing it is completing; it returns false with no write when nothing
// is pending on that core.
func (e *Engine) Rearm(core int) (restoredIF bool, err error) {
	cs := e.Core(core)
	addr, savedIF, ok := cs.ConsumeRearm()
	if !ok {
		return false, nil
	}
	if err := e.mem.WriteByte(addr, TrapOpcode); err != nil {
		return false, err
	}
	return savedIF, nil
}
