package parser

// MaxSlots bounds each of the global/local name->slot maps. This mirrors
// asm/sym.go's MaxSymbols: small integers are cheap to carry in a Symbol
// payload and a fixed cap makes VariableLimitExceeded a simple compare
// instead of a dynamic-growth failure mode.
const MaxSlots = 0x7FFE

// VariableTable holds the two disjoint name->slot maps: global
// (persistent across events for the same process) and
// local (per script invocation). A LocalId never outlives one event
// firing's evaluation; a GlobalId outlives it — the VM enforces that by
// construction (locals live in a per-invocation array), not this table.
type VariableTable struct {
	globalIndex map[string]int
	globalNames []string
	localIndex  map[string]int
	localNames  []string
}

func NewVariableTable() *VariableTable {
	return &VariableTable{
		globalIndex: map[string]int{},
		localIndex:  map[string]int{},
	}
}

// Global returns the slot for name, allocating one on first sight.
func (vt *VariableTable) Global(name string) (int, error) {
	if idx, ok := vt.globalIndex[name]; ok {
		return idx, nil
	}
	if len(vt.globalNames) >= MaxSlots {
		return 0, newError(KindVariableLimitExceeded, zeroPos, "global variable limit exceeded at %q", name)
	}
	idx := len(vt.globalNames)
	vt.globalNames = append(vt.globalNames, name)
	vt.globalIndex[name] = idx
	return idx, nil
}

// Local returns the slot for name, allocating one on first sight.
func (vt *VariableTable) Local(name string) (int, error) {
	if idx, ok := vt.localIndex[name]; ok {
		return idx, nil
	}
	if len(vt.localNames) >= MaxSlots {
		return 0, newError(KindVariableLimitExceeded, zeroPos, "local variable limit exceeded at %q", name)
	}
	idx := len(vt.localNames)
	vt.localNames = append(vt.localNames, name)
	vt.localIndex[name] = idx
	return idx, nil
}

func (vt *VariableTable) GlobalCount() int { return len(vt.globalNames) }
func (vt *VariableTable) LocalCount() int  { return len(vt.localNames) }
