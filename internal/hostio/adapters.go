package hostio

// HypervisorMemory adapts a Hypervisor to the narrower MemoryAccessor
// shape internal/vm and internal/breakpoint each declare locally, so
// neither package needs to import hostio or know about registers/core
// selection — it only ever sees bytes in, bytes out.
type HypervisorMemory struct {
	HV Hypervisor
}

func (m HypervisorMemory) ProbeRead(addr uint64, size int) bool {
	buf := make([]byte, size)
	_, err := m.HV.ReadPhysicalMemory(addr, buf)
	return err == nil
}

func (m HypervisorMemory) ReadBytes(addr uint64, size int) ([]byte, error) {
	buf := make([]byte, size)
	_, err := m.HV.ReadPhysicalMemory(addr, buf)
	return buf, err
}

func (m HypervisorMemory) WriteBytes(addr uint64, data []byte) error {
	_, err := m.HV.WritePhysicalMemory(addr, data)
	return err
}

func (m HypervisorMemory) TranslateToPhysical(virtualAddr uint64) (uint64, error) {
	return m.HV.TranslateToPhysical(virtualAddr)
}

func (m HypervisorMemory) WriteByte(physicalAddr uint64, b byte) error {
	_, err := m.HV.WritePhysicalMemory(physicalAddr, []byte{b})
	return err
}
