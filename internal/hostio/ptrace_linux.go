//go:build linux

package hostio

import (
	"golang.org/x/sys/unix"

	"hyperdbg/internal/guest"
)

// LinuxProcessInspector implements ProcessInspector over ptrace(2), a
// stand-in for real guest access in place of a VT-x/AMD-V hypervisor
// driver, which is out of scope here.
type LinuxProcessInspector struct {
	pid int
}

func NewLinuxProcessInspector(pid int) *LinuxProcessInspector {
	return &LinuxProcessInspector{pid: pid}
}

func (p *LinuxProcessInspector) PID() int { return p.pid }

func (p *LinuxProcessInspector) Attach() error { return unix.PtraceAttach(p.pid) }
func (p *LinuxProcessInspector) Detach() error { return unix.PtraceDetach(p.pid) }

func (p *LinuxProcessInspector) ReadMemory(addr uint64, buf []byte) (int, error) {
	return unix.PtracePeekData(p.pid, uintptr(addr), buf)
}

func (p *LinuxProcessInspector) WriteMemory(addr uint64, data []byte) (int, error) {
	return unix.PtracePokeData(p.pid, uintptr(addr), data)
}

func (p *LinuxProcessInspector) SingleStep() error { return unix.PtraceSingleStep(p.pid) }
func (p *LinuxProcessInspector) Continue() error   { return unix.PtraceCont(p.pid, 0) }

func (p *LinuxProcessInspector) GetRegisters() (*guest.Registers, error) {
	var raw unix.PtraceRegs
	if err := unix.PtraceGetRegs(p.pid, &raw); err != nil {
		return nil, err
	}
	regs := guest.NewRegisters()
	regs.SetBase(guest.RAX, raw.Rax)
	regs.SetBase(guest.RBX, raw.Rbx)
	regs.SetBase(guest.RCX, raw.Rcx)
	regs.SetBase(guest.RDX, raw.Rdx)
	regs.SetBase(guest.RSI, raw.Rsi)
	regs.SetBase(guest.RDI, raw.Rdi)
	regs.SetBase(guest.RBP, raw.Rbp)
	regs.SetBase(guest.RSP, raw.Rsp)
	regs.SetBase(guest.R8, raw.R8)
	regs.SetBase(guest.R9, raw.R9)
	regs.SetBase(guest.R10, raw.R10)
	regs.SetBase(guest.R11, raw.R11)
	regs.SetBase(guest.R12, raw.R12)
	regs.SetBase(guest.R13, raw.R13)
	regs.SetBase(guest.R14, raw.R14)
	regs.SetBase(guest.R15, raw.R15)
	regs.SetBase(guest.RIP, raw.Rip)
	regs.SetBase(guest.RFlags, raw.Eflags)
	regs.SetBase(guest.CS, raw.Cs)
	regs.SetBase(guest.SS, raw.Ss)
	regs.SetBase(guest.DS, raw.Ds)
	regs.SetBase(guest.ES, raw.Es)
	regs.SetBase(guest.FS, raw.Fs)
	regs.SetBase(guest.GS, raw.Gs)
	return regs, nil
}

func (p *LinuxProcessInspector) SetRegisters(regs *guest.Registers) error {
	var raw unix.PtraceRegs
	if err := unix.PtraceGetRegs(p.pid, &raw); err != nil {
		return err
	}
	raw.Rax = regs.Base(guest.RAX)
	raw.Rbx = regs.Base(guest.RBX)
	raw.Rcx = regs.Base(guest.RCX)
	raw.Rdx = regs.Base(guest.RDX)
	raw.Rsi = regs.Base(guest.RSI)
	raw.Rdi = regs.Base(guest.RDI)
	raw.Rbp = regs.Base(guest.RBP)
	raw.Rsp = regs.Base(guest.RSP)
	raw.R8 = regs.Base(guest.R8)
	raw.R9 = regs.Base(guest.R9)
	raw.R10 = regs.Base(guest.R10)
	raw.R11 = regs.Base(guest.R11)
	raw.R12 = regs.Base(guest.R12)
	raw.R13 = regs.Base(guest.R13)
	raw.R14 = regs.Base(guest.R14)
	raw.R15 = regs.Base(guest.R15)
	raw.Rip = regs.Base(guest.RIP)
	raw.Eflags = regs.Base(guest.RFlags)
	return unix.PtraceSetRegs(p.pid, &raw)
}
