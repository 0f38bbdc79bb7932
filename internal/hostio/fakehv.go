package hostio

import (
	"fmt"

	"hyperdbg/internal/guest"
)

// FakeHypervisor is an in-memory Hypervisor used by tests and by the
// standalone cmd entry point when no real guest is attached; it treats
// virtual and physical addresses as identical.
type FakeHypervisor struct {
	mem   map[uint64]byte
	cores map[int]*guest.Registers
}

func NewFakeHypervisor() *FakeHypervisor {
	return &FakeHypervisor{mem: map[uint64]byte{}, cores: map[int]*guest.Registers{}}
}

func (h *FakeHypervisor) ReadPhysicalMemory(addr uint64, buf []byte) (int, error) {
	for i := range buf {
		buf[i] = h.mem[addr+uint64(i)]
	}
	return len(buf), nil
}

func (h *FakeHypervisor) WritePhysicalMemory(addr uint64, data []byte) (int, error) {
	for i, b := range data {
		h.mem[addr+uint64(i)] = b
	}
	return len(data), nil
}

func (h *FakeHypervisor) TranslateToPhysical(virtualAddr uint64) (uint64, error) {
	return virtualAddr, nil
}

func (h *FakeHypervisor) Registers(core int) (*guest.Registers, error) {
	r, ok := h.cores[core]
	if !ok {
		return nil, fmt.Errorf("hostio: no such core %d", core)
	}
	return r, nil
}

func (h *FakeHypervisor) SetRegisters(core int, regs *guest.Registers) error {
	h.cores[core] = regs
	return nil
}
