package command

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNothingToRepeat = errors.New("no previous command to repeat")
)

// RemoteForwarder sends a raw command line to the remote debuggee over
// the transport layer when the interpreter decides a command must run
// there instead of locally.
type RemoteForwarder interface {
	ForwardCommandLine(line string) error
}

// OutputSink receives text for the user: the interpreter's help
// listings and, through Deps.Output, the built-in commands' own output.
// Dispatch failures are returned as errors, not written here.
type OutputSink interface {
	Write(s string)
}

// Interpreter converts a line of input into a dispatched Command call,
// tracking multi-line continuation and "repeat last command on empty
// Enter" state.
type Interpreter struct {
	table     *Table
	remote    bool
	forwarder RemoteForwarder
	output    OutputSink
	lastLine  string
	multiline *multilineTracker
}

func NewInterpreter(table *Table, remote bool, forwarder RemoteForwarder, output OutputSink) *Interpreter {
	return &Interpreter{table: table, remote: remote, forwarder: forwarder, output: output, multiline: newMultilineTracker()}
}

// Feed processes one line of raw input (including continuation lines
// of a multi-line command) and reports the resulting brace/quote
// nesting depth; a depth > 0 means the caller should keep reading
// continuation lines before calling Dispatch.
func (in *Interpreter) Feed(line string) int {
	return in.multiline.Feed(line)
}

// Dispatch resolves and runs (or forwards) a complete command line.
func (in *Interpreter) Dispatch(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		if in.lastLine == "" {
			return nil // empty prompt, nothing to repeat, not an error
		}
		cmd, ok := in.firstCommand(in.lastLine)
		if !ok || !cmd.RepeatOnEnter {
			return nil
		}
		return in.run(cmd, in.lastLine)
	}

	fields := strings.Fields(trimmed)
	name := fields[0]

	if name == ".help" || name == "help" || name == ".hh" {
		return in.help(fields[1:])
	}

	cmd, ok := in.table.Lookup(name)
	if !ok {
		return errors.Wrapf(ErrUnknownCommand, "%s", name)
	}

	if err := in.run(cmd, trimmed); err != nil {
		return err
	}
	if cmd.RepeatOnEnter {
		in.lastLine = trimmed
	} else {
		in.lastLine = ""
	}
	return nil
}

func (in *Interpreter) firstCommand(line string) (*Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	return in.table.Lookup(fields[0])
}

func (in *Interpreter) run(cmd *Command, line string) error {
	local := in.remote && cmd.LocalInRemoteConnection || !in.remote && cmd.LocalInDebuggerMode
	if in.remote && !local {
		if in.forwarder == nil {
			return errors.New("command requires a remote connection but none is configured")
		}
		return in.forwarder.ForwardCommandLine(line)
	}
	args := strings.Fields(line)[1:]
	return cmd.Run(args)
}

func (in *Interpreter) help(args []string) error {
	if in.output == nil {
		return nil
	}
	if len(args) == 0 {
		for _, name := range in.table.Names() {
			cmd, _ := in.table.Lookup(name)
			in.output.Write(cmd.Name + "\t" + cmd.Help + "\n")
		}
		return nil
	}
	cmd, ok := in.table.Lookup(args[0])
	if !ok {
		return errors.Wrapf(ErrUnknownCommand, "%s", args[0])
	}
	in.output.Write(cmd.Name + "\t" + cmd.Help + "\n")
	return nil
}
