package hostio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/guest"
	"hyperdbg/internal/hostio"
)

func TestFakeHypervisorMemoryRoundTrip(t *testing.T) {
	hv := hostio.NewFakeHypervisor()
	require.NoError(t, writeN(hv, 0x1000, []byte{1, 2, 3, 4}))

	buf := make([]byte, 4)
	n, err := hv.ReadPhysicalMemory(0x1000, buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
}

func writeN(hv *hostio.FakeHypervisor, addr uint64, data []byte) error {
	_, err := hv.WritePhysicalMemory(addr, data)
	return err
}

func TestFakeHypervisorTranslateIsIdentity(t *testing.T) {
	hv := hostio.NewFakeHypervisor()
	phys, err := hv.TranslateToPhysical(0xdeadbeef)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xdeadbeef), phys)
}

func TestFakeHypervisorRegistersRoundTrip(t *testing.T) {
	hv := hostio.NewFakeHypervisor()
	regs := guest.NewRegisters()
	regs.SetBase(guest.RIP, 0x401000)
	require.NoError(t, hv.SetRegisters(0, regs))

	got, err := hv.Registers(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x401000), got.Base(guest.RIP))
}

func TestFakeHypervisorUnknownCoreErrors(t *testing.T) {
	hv := hostio.NewFakeHypervisor()
	_, err := hv.Registers(3)
	assert.Error(t, err)
}

func TestX86LengthDisassemblerDecodesNop(t *testing.T) {
	d := hostio.X86LengthDisassembler{}
	n, err := d.InstructionLength([]byte{0x90, 0x90, 0x90})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestX86LengthDisassemblerDecodesMovEax(t *testing.T) {
	d := hostio.X86LengthDisassembler{}
	// mov eax, 0x12345678; b8 78 56 34 12
	n, err := d.InstructionLength([]byte{0xB8, 0x78, 0x56, 0x34, 0x12})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
