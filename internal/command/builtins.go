package command

import (
	"fmt"
	"strconv"
	"strings"

	"hyperdbg/internal/breakpoint"
	"hyperdbg/internal/event"
	"hyperdbg/internal/guest"
	"hyperdbg/internal/parser"
	"hyperdbg/internal/resolver"
	"hyperdbg/internal/symstream"
	"hyperdbg/internal/vm"
)

// DebuggerControl is the collaborator the stepping/memory commands
// (g, p, t, i, r, u, d*, e*) drive; it is intentionally small since
// everything below it belongs to internal/hostio or the transport, not
// to the interpreter.
type DebuggerControl interface {
	Go() error
	StepInto() error
	StepOver() error
	DumpBytes(addr uint64, count int) ([]byte, error)
	WriteBytes(addr uint64, data []byte) error
	Registers() *guest.Registers
}

// Deps bundles every collaborator the command set needs so
// NewBuiltinTable can wire real handlers instead of stubs.
type Deps struct {
	Control    DebuggerControl
	Breakpoints *breakpoint.Engine
	Events     *event.Registry
	Resolver   *resolver.Resolver
	VM         *vm.VM
	Globals    *vm.GlobalStore
	Output     OutputSink
}

func write(d Deps, format string, args ...interface{}) {
	if d.Output != nil {
		d.Output.Write(fmt.Sprintf(format, args...))
	}
}

// NewBuiltinTable registers the minimum command set plus the
// supplemented dt/r commands.
func NewBuiltinTable(d Deps) *Table {
	t := NewTable()

	t.Register(&Command{Name: ".help", Help: "list commands", LocalInDebuggerMode: true, LocalInRemoteConnection: true, Run: func(args []string) error { return nil }})
	t.Register(&Command{Name: "?", Help: "evaluate an expression", LocalInDebuggerMode: true, LocalInRemoteConnection: true, Run: func(args []string) error {
		return runEvalPrint(d, strings.Join(args, " "))
	}})

	t.Register(&Command{Name: "g", Help: "go (resume execution)", RepeatOnEnter: true, Run: func(args []string) error { return d.Control.Go() }})
	t.Register(&Command{Name: "p", Help: "step over", RepeatOnEnter: true, Run: func(args []string) error { return d.Control.StepOver() }})
	t.Register(&Command{Name: "t", Help: "step into", RepeatOnEnter: true, Run: func(args []string) error { return d.Control.StepInto() }})
	t.Register(&Command{Name: "i", Help: "show current instruction", Run: func(args []string) error {
		regs := d.Control.Registers()
		write(d, "rip=0x%x\n", regs.Base(guest.RIP))
		return nil
	}})
	t.Register(&Command{Name: "r", Help: "show/set registers", LocalInDebuggerMode: true, Run: func(args []string) error {
		return runRegisterCommand(d, args)
	}})
	t.Register(&Command{Name: "u", Help: "unassemble", Run: func(args []string) error {
		addr, err := parseAddrArg(args, d)
		if err != nil {
			return err
		}
		b, err := d.Control.DumpBytes(addr, 16)
		if err != nil {
			return err
		}
		write(d, "%x\n", b)
		return nil
	}})

	for _, size := range []struct {
		suffix string
		width  int
	}{{"b", 1}, {"c", 4}, {"d", 4}, {"q", 8}} {
		size := size
		t.Register(&Command{Name: "d" + size.suffix, Help: "dump memory", Run: func(args []string) error {
			addr, err := parseAddrArg(args, d)
			if err != nil {
				return err
			}
			count := 16
			b, err := d.Control.DumpBytes(addr, count*size.width)
			if err != nil {
				return err
			}
			write(d, "%x\n", b)
			return nil
		}})
	}
	for _, size := range []struct {
		suffix string
		width  int
	}{{"b", 1}, {"d", 4}, {"q", 8}} {
		size := size
		t.Register(&Command{Name: "e" + size.suffix, Help: "edit memory", Run: func(args []string) error {
			return runEditMemory(d, args, size.width)
		}})
	}

	t.Register(&Command{Name: "bp", Help: "set breakpoint", Run: func(args []string) error {
		addr, err := parseAddrArg(args, d)
		if err != nil {
			return err
		}
		desc, err := d.Breakpoints.Install(addr, breakpoint.Filter{MatchAnyPID: true, MatchAnyTID: true, MatchAnyCore: true})
		if err != nil {
			return err
		}
		if d.Events != nil {
			d.Events.Register(event.KindSoftwareBreakpoint, nil, desc.ID, false)
		}
		return nil
	}})
	t.Register(&Command{Name: "bl", Help: "list breakpoints", Run: func(args []string) error {
		for _, desc := range d.Breakpoints.List() {
			state := "enabled"
			if !desc.Enabled {
				state = "disabled"
			}
			write(d, "%d: 0x%x %s\n", desc.ID, desc.VirtualAddress, state)
		}
		return nil
	}})
	t.Register(&Command{Name: "be", Help: "enable breakpoint", Run: func(args []string) error {
		id, err := strconv.ParseUint(firstArg(args), 0, 64)
		if err != nil {
			return err
		}
		return d.Breakpoints.SetEnabled(id, true)
	}})
	t.Register(&Command{Name: "bd", Help: "disable breakpoint", Run: func(args []string) error {
		id, err := strconv.ParseUint(firstArg(args), 0, 64)
		if err != nil {
			return err
		}
		return d.Breakpoints.SetEnabled(id, false)
	}})
	t.Register(&Command{Name: "bc", Help: "clear breakpoint(s)", Run: func(args []string) error {
		if len(args) > 0 && args[0] == "*" {
			return d.Breakpoints.BulkClear()
		}
		id, err := strconv.ParseUint(firstArg(args), 0, 64)
		if err != nil {
			return err
		}
		return d.Breakpoints.Remove(id)
	}})

	t.Register(&Command{Name: "events", Help: "list or modify registered events: 'events' or 'events e|d|c <id>'", Run: func(args []string) error {
		return runEventsCommand(d, args)
	}})
	t.Register(&Command{Name: "print", Help: "evaluate and print an expression", Run: func(args []string) error {
		return runEvalPrint(d, strings.Join(args, " "))
	}})
	t.Register(&Command{Name: "eval", Help: "evaluate an expression", Run: func(args []string) error {
		return runEvalPrint(d, strings.Join(args, " "))
	}})
	t.Register(&Command{Name: "script", Help: "compile and run a script", Run: func(args []string) error {
		return runEvalPrint(d, strings.Join(args, " "))
	}})
	t.Register(&Command{Name: "flush", Help: "flush pending events", Run: func(args []string) error { return nil }})
	t.Register(&Command{Name: "pause", Help: "pause the debuggee", Run: func(args []string) error { return nil }})
	t.Register(&Command{Name: "x", Help: "examine symbols by mask", Run: func(args []string) error {
		if d.Resolver == nil {
			return nil
		}
		for _, e := range d.Resolver.Enumerate() {
			write(d, "%s (%d symbols)\n", e.ModuleName, len(e.Symbols))
		}
		return nil
	}})

	t.Register(&Command{Name: ".sympath", Help: "show/set the symbol search path", LocalInDebuggerMode: true, LocalInRemoteConnection: true, Run: func(args []string) error { return nil }})
	t.Register(&Command{Name: ".sym", Help: "symbol options: '.sym reload <base> <module> <path> <guid> <age>' forces a reparse", LocalInDebuggerMode: true, LocalInRemoteConnection: true, Run: func(args []string) error {
		return runSymCommand(d, args)
	}})
	t.Register(&Command{Name: "load", Help: "load the driver", Run: func(args []string) error { return nil }})
	t.Register(&Command{Name: "unload", Help: "unload the driver", Run: func(args []string) error {
		if d.Resolver != nil {
			d.Resolver.UnloadAll()
		}
		return nil
	}})

	// Supplemented beyond the minimum set.
	t.Register(&Command{Name: "dt", Help: "display type (accepts its arguments and prints nothing)", Run: func(args []string) error { return nil }})

	return t
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func parseAddrArg(args []string, d Deps) (uint64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing address argument")
	}
	spelling := args[0]
	if strings.HasPrefix(spelling, "0x") || strings.HasPrefix(spelling, "0X") {
		v, err := strconv.ParseUint(spelling[2:], 16, 64)
		return v, err
	}
	if d.Resolver != nil {
		if addr, ok := d.Resolver.NameToAddress(spelling); ok {
			return addr, nil
		}
	}
	v, err := strconv.ParseUint(spelling, 16, 64)
	return v, err
}

func runRegisterCommand(d Deps, args []string) error {
	regs := d.Control.Registers()
	if len(args) == 0 {
		write(d, "rax=0x%x rbx=0x%x rip=0x%x\n", regs.Base(guest.RAX), regs.Base(guest.RBX), regs.Base(guest.RIP))
		return nil
	}
	alias, ok := guest.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown register %q", args[0])
	}
	if len(args) == 1 {
		write(d, "%s=0x%x\n", args[0], regs.Get(alias))
		return nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 64)
	if err != nil {
		return err
	}
	regs.Set(alias, v)
	return nil
}

func runEditMemory(d Deps, args []string, width int) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: e%d <addr> <value>", width)
	}
	addr, err := parseAddrArg(args[:1], d)
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 64)
	if err != nil {
		return err
	}
	b := make([]byte, width)
	for i := 0; i < width; i++ {
		b[i] = byte(v >> uint(8*i))
	}
	return d.Control.WriteBytes(addr, b)
}

// runSymCommand handles ".sym reload <base> <module> <path> <guid> <age>",
// the supplemented force-reparse path distinct from
// resolver.LoadSymbol's idempotent load.
func runSymCommand(d Deps, args []string) error {
	if d.Resolver == nil || len(args) == 0 || args[0] != "reload" {
		return nil
	}
	if len(args) < 6 {
		return fmt.Errorf("usage: .sym reload <base> <module> <path> <guid> <age>")
	}
	base, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 64)
	if err != nil {
		return err
	}
	age, err := strconv.ParseUint(args[5], 0, 32)
	if err != nil {
		return err
	}
	return d.Resolver.Reload(base, args[2], args[3], args[4], uint32(age), false, true)
}

// runEventsCommand lists registered events with no arguments, or
// applies enable/disable/clear to one tag when given a subcommand
// letter and id. An event that correlates back to a breakpoint (set by
// `bp`'s registration) keeps the underlying Descriptor's Enabled flag
// in sync, since that flag — not the trap byte — is what Firing
// actually consults.
func runEventsCommand(d Deps, args []string) error {
	if d.Events == nil {
		return nil
	}
	if len(args) == 0 {
		for _, ev := range d.Events.Enumerate() {
			write(d, "%d: %s %s\n", ev.Tag-event.TagStartSeed, ev.Kind, ev.State)
		}
		return nil
	}

	var op event.ModifyOp
	switch args[0] {
	case "e":
		op = event.ModifyEnable
	case "d":
		op = event.ModifyDisable
	case "c":
		op = event.ModifyClear
	default:
		return fmt.Errorf("usage: events [e|d|c <id>]")
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: events %s <id>", args[0])
	}
	id, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		return err
	}

	ev := d.Events.Lookup(id)
	if err := d.Events.Modify(id, false, op); err != nil {
		return err
	}
	if ev == nil || ev.Kind != event.KindSoftwareBreakpoint || d.Breakpoints == nil {
		return nil
	}
	bpID, ok := ev.Context.(uint64)
	if !ok {
		return nil
	}
	switch op {
	case event.ModifyEnable:
		return d.Breakpoints.SetEnabled(bpID, true)
	case event.ModifyDisable:
		return d.Breakpoints.SetEnabled(bpID, false)
	case event.ModifyClear:
		return d.Breakpoints.Remove(bpID)
	}
	return nil
}

func runEvalPrint(d Deps, src string) error {
	script, err := parser.Parse([]byte(src), resolverAdapter{d.Resolver})
	if err != nil {
		return err
	}
	if d.VM == nil || d.Globals == nil {
		return nil
	}
	if _, err := d.VM.Execute(script, d.Control.Registers(), d.Globals); err != nil {
		return err
	}
	write(d, "%x\n", d.Globals.Get(symstream.ResultSlotID))
	return nil
}

// resolverAdapter satisfies internal/parser.Resolver, falling back to
// internal/parser.NoResolver when no resolver.Resolver is configured.
type resolverAdapter struct{ r *resolver.Resolver }

func (a resolverAdapter) NameToAddress(spelling string) (uint64, bool) {
	if a.r == nil {
		return 0, false
	}
	return a.r.NameToAddress(spelling)
}
