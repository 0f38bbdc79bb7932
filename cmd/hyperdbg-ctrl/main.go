// Command hyperdbg-ctrl is the controller-side CLI: it reads command
// lines from stdin, dispatches them through internal/command against a
// fake in-process guest (internal/hostio.FakeHypervisor) when no real
// transport is configured, and prints results to stdout. Wiring a real
// serial/TCP debuggee is internal/transport's job; this entry point
// only needs a MessageReader/RemoteForwarder pair to upgrade from the
// local fake to a live one.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hyperdbg/internal/breakpoint"
	"hyperdbg/internal/command"
	"hyperdbg/internal/config"
	"hyperdbg/internal/event"
	"hyperdbg/internal/guest"
	"hyperdbg/internal/hostio"
	"hyperdbg/internal/resolver"
	"hyperdbg/internal/telemetry"
	"hyperdbg/internal/vm"
)

// stdoutSink satisfies command.OutputSink by writing straight to
// stdout, the controller's message sink.
type stdoutSink struct{}

func (stdoutSink) Write(s string) { fmt.Print(s) }

// fakeControl adapts hostio.FakeHypervisor's core-0 view to
// command.DebuggerControl for standalone use (no attached hypervisor).
type fakeControl struct {
	hv *hostio.FakeHypervisor
}

func (c fakeControl) Go() error       { return nil }
func (c fakeControl) StepInto() error { return nil }
func (c fakeControl) StepOver() error { return nil }

func (c fakeControl) DumpBytes(addr uint64, count int) ([]byte, error) {
	buf := make([]byte, count)
	_, err := c.hv.ReadPhysicalMemory(addr, buf)
	return buf, err
}

func (c fakeControl) WriteBytes(addr uint64, data []byte) error {
	_, err := c.hv.WritePhysicalMemory(addr, data)
	return err
}

func (c fakeControl) Registers() *guest.Registers {
	regs, err := c.hv.Registers(0)
	if err != nil {
		regs = guest.NewRegisters()
		_ = c.hv.SetRegisters(0, regs)
	}
	return regs
}

// noopPDBLoader stands in for a real symbol-server/PDB backend, which
// is out of scope for this module: symbol loading is modeled as an
// external collaborator, never a concrete downloader.
type noopPDBLoader struct{}

func (noopPDBLoader) LoadSymbols(image *resolver.ModuleImage, pdbPath string) ([]resolver.NamedSymbol, error) {
	return nil, nil
}

func main() {
	root := &cobra.Command{
		Use:   "hyperdbg-ctrl",
		Short: "HyperDbg-style script-engine controller",
	}
	v := viper.New()
	config.BindFlags(root, v)

	root.RunE = func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(v)
		log := telemetry.New(cfg.LogLevel, cfg.LogJSON)

		hv := hostio.NewFakeHypervisor()
		_ = hv.SetRegisters(0, guest.NewRegisters())

		mem := hostio.HypervisorMemory{HV: hv}
		bpEngine := breakpoint.New(mem, hostio.X86LengthDisassembler{})
		events := event.NewRegistry()
		res := resolver.New(noopPDBLoader{})
		globals := vm.NewGlobalStore(0)
		m := vm.New(vm.Host{
			Memory: mem,
			Output: vmOutputAdapter{stdoutSink{}},
		})

		table := command.NewBuiltinTable(command.Deps{
			Control:     fakeControl{hv: hv},
			Breakpoints: bpEngine,
			Events:      events,
			Resolver:    res,
			VM:          m,
			Globals:     globals,
			Output:      stdoutSink{},
		})
		interp := command.NewInterpreter(table, false, nil, stdoutSink{})

		log.Info("hyperdbg-ctrl ready")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		var pending []string
		for scanner.Scan() {
			line := scanner.Text()
			pending = append(pending, line)
			if depth := interp.Feed(line); depth > 0 {
				continue
			}
			full := strings.Join(pending, "\n")
			pending = nil
			if err := interp.Dispatch(full); err != nil {
				log.WithErr(err).Warn("command failed")
			}
		}
		return scanner.Err()
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// vmOutputAdapter bridges command.OutputSink to vm.OutputSink, which
// are structurally identical but declared separately so neither
// package depends on the other.
type vmOutputAdapter struct{ sink command.OutputSink }

func (a vmOutputAdapter) Write(s string) { a.sink.Write(s) }
