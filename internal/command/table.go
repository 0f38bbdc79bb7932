// Package command implements the command interpreter: tokenizing a
// user line, resolving it through an attribute-flagged command table,
// and routing it either to a local handler or across the transport to
// a remote debuggee.
package command

import "strings"

// Handler runs one command's local implementation.
type Handler func(args []string) error

// Command is one command-table entry with its routing attributes.
type Command struct {
	Name string
	Help string
	Run  Handler

	// CaseSensitive: if false, the line is lowercased before matching
	// this entry's name.
	CaseSensitive bool

	// LocalInDebuggerMode / LocalInRemoteConnection: whether this
	// command executes locally when attached in-process vs. over a
	// remote connection. Over a remote connection, a command without
	// LocalInRemoteConnection is forwarded to the remote debuggee;
	// without one, every command runs locally whatever
	// LocalInDebuggerMode says.
	LocalInDebuggerMode     bool
	LocalInRemoteConnection bool

	// RepeatOnEnter: pressing Enter at an empty prompt reruns the last
	// command if it carried this flag (e.g. p, t, g).
	RepeatOnEnter bool

	// WontStopDebugger: the command may continue past subsequent halts
	// silently rather than blocking on the next event.
	WontStopDebugger bool
}

// Table is the fixed set of registered commands, looked up by name.
type Table struct {
	byName map[string]*Command
	order  []string
}

func NewTable() *Table {
	return &Table{byName: map[string]*Command{}}
}

func (t *Table) Register(cmd *Command) {
	t.byName[cmd.Name] = cmd
	t.order = append(t.order, cmd.Name)
}

// Lookup resolves name against the table: an exact match first, then a
// case-insensitive fallback restricted to entries that declared
// CaseSensitive == false.
func (t *Table) Lookup(name string) (*Command, bool) {
	if cmd, ok := t.byName[name]; ok {
		return cmd, true
	}
	lower := strings.ToLower(name)
	for _, n := range t.order {
		cmd := t.byName[n]
		if !cmd.CaseSensitive && strings.ToLower(cmd.Name) == lower {
			return cmd, true
		}
	}
	return nil, false
}

// Names returns every registered command name, in registration order
// (used by .help with no argument).
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
