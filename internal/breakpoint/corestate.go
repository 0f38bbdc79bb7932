package breakpoint

import "go.uber.org/atomic"

// CoreState is the per-core single-step re-arm bookkeeping: between
// restoring the original byte and the next monitor-trap-flag vm-exit,
// the core remembers which physical address
// needs its trap byte rewritten and whether RFLAGS.IF was cleared and
// must be restored alongside it. Plain atomics, not a mutex: exactly one
// goroutine ever owns a given core's vm-exit handling at a time, but it
// may race with a concurrent query from the command interpreter.
type CoreState struct {
	pendingPhysicalAddr atomic.Uint64
	savedInterruptFlag  atomic.Bool
}

func newCoreState() *CoreState { return &CoreState{} }

// ArmPending records that physicalAddr needs its trap byte rewritten on
// this core's next single-step trap, and whether IF must be restored
// alongside it.
func (c *CoreState) ArmPending(physicalAddr uint64, savedIF bool) {
	c.pendingPhysicalAddr.Store(physicalAddr)
	c.savedInterruptFlag.Store(savedIF)
}

// ConsumeRearm clears and returns the pending rearm, if any. Returns
// ok=false if this core has nothing pending (e.g. a spurious single
// step unrelated to breakpoint rearming).
func (c *CoreState) ConsumeRearm() (physicalAddr uint64, savedIF bool, ok bool) {
	addr := c.pendingPhysicalAddr.Swap(0)
	if addr == 0 {
		return 0, false, false
	}
	return addr, c.savedInterruptFlag.Load(), true
}
