// Package guest models the read-only view of guest CPU state the script
// VM evaluates against, and the fixed alias table mapping register
// spellings (rax, eax, ah, cr3, dr7, zf, ...) onto that state.
package guest

// Base is a canonical 64-bit-wide architectural register. Aliases like
// eax/ax/ah/al all resolve to Base == RAX with a narrower width/offset.
type Base int

const (
	RAX Base = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	RIP
	RFlags
	CR0
	CR2
	CR3
	CR4
	CR8
	DR0
	DR1
	DR2
	DR3
	DR6
	DR7
	CS
	DS
	ES
	FS
	GS
	SS
	IDTRBase
	IDTRLimit
	GDTRBase
	GDTRLimit
	LDTR
	TR
	baseCount
)

// Registers is a read-only snapshot of guest state at the moment an
// event fired. The VM is never allowed to mutate it directly; writes
// only happen through explicit SetValue calls whose target register is
// named by the compiled symbol stream, via Registers.Set.
type Registers struct {
	gpr   [baseCount]uint64
	valid [baseCount]bool
}

// NewRegisters returns a zeroed snapshot; callers (the event dispatch
// path, or tests) populate it with Set before handing it to the VM.
func NewRegisters() *Registers {
	return &Registers{}
}

func (r *Registers) SetBase(b Base, v uint64) {
	r.gpr[b] = v
	r.valid[b] = true
}

func (r *Registers) Base(b Base) uint64 {
	return r.gpr[b]
}

func (r *Registers) HasBase(b Base) bool {
	return r.valid[b]
}

// Alias describes one named register spelling: its canonical Base, the
// bit offset within that base register, and the width in bits. eax is
// {RAX, 0, 32}; ah is {RAX, 8, 8}; zf is {RFlags, 6, 1}.
type Alias struct {
	Name   string
	Base   Base
	Offset uint
	Width  uint
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Get reads the aliased field out of the base register's current value.
func (r *Registers) Get(a Alias) uint64 {
	v := r.gpr[a.Base]
	return (v >> a.Offset) & mask(a.Width)
}

// Set writes the aliased field into the base register, preserving the
// untouched bits, matching SetValue's "Register widths obeyed" rule.
func (r *Registers) Set(a Alias, v uint64) {
	cur := r.gpr[a.Base]
	m := mask(a.Width) << a.Offset
	cur = (cur &^ m) | ((v << a.Offset) & m)
	r.gpr[a.Base] = cur
	r.valid[a.Base] = true
}

// AliasTable is the fixed register lookup table the lexer and the VM
// both consult: the lexer to recognize a spelling as a Register token,
// the VM to resolve GetValue/SetValue for a Register operand.
var AliasTable = buildAliasTable()

func buildAliasTable() map[string]Alias {
	t := map[string]Alias{}
	add := func(name string, base Base, offset, width uint) {
		t[name] = Alias{Name: name, Base: base, Offset: offset, Width: width}
	}

	type gpr struct {
		base             Base
		r64, r32, r16    string
		hi8, lo8         string // hi8 == "" for r8..r15 (no ah-style high byte)
	}
	gprs := []gpr{
		{RAX, "rax", "eax", "ax", "ah", "al"},
		{RBX, "rbx", "ebx", "bx", "bh", "bl"},
		{RCX, "rcx", "ecx", "cx", "ch", "cl"},
		{RDX, "rdx", "edx", "dx", "dh", "dl"},
		{RSI, "rsi", "esi", "si", "", "sil"},
		{RDI, "rdi", "edi", "di", "", "dil"},
		{RBP, "rbp", "ebp", "bp", "", "bpl"},
		{RSP, "rsp", "esp", "sp", "", "spl"},
		{R8, "r8", "r8d", "r8w", "", "r8b"},
		{R9, "r9", "r9d", "r9w", "", "r9b"},
		{R10, "r10", "r10d", "r10w", "", "r10b"},
		{R11, "r11", "r11d", "r11w", "", "r11b"},
		{R12, "r12", "r12d", "r12w", "", "r12b"},
		{R13, "r13", "r13d", "r13w", "", "r13b"},
		{R14, "r14", "r14d", "r14w", "", "r14b"},
		{R15, "r15", "r15d", "r15w", "", "r15b"},
	}
	for _, g := range gprs {
		add(g.r64, g.base, 0, 64)
		add(g.r32, g.base, 0, 32)
		add(g.r16, g.base, 0, 16)
		if g.hi8 != "" {
			add(g.hi8, g.base, 8, 8)
		}
		add(g.lo8, g.base, 0, 8)
	}

	add("rip", RIP, 0, 64)
	add("eip", RIP, 0, 32)
	add("rflags", RFlags, 0, 64)
	add("eflags", RFlags, 0, 32)

	// Individual RFLAGS bits, by architectural bit position.
	flagBits := map[string]uint{
		"cf": 0, "pf": 2, "af": 4, "zf": 6, "sf": 7,
		"tf": 8, "if": 9, "df": 10, "of": 11,
	}
	for name, bit := range flagBits {
		add(name, RFlags, bit, 1)
	}

	add("cr0", CR0, 0, 64)
	add("cr2", CR2, 0, 64)
	add("cr3", CR3, 0, 64)
	add("cr4", CR4, 0, 64)
	add("cr8", CR8, 0, 64)
	add("dr0", DR0, 0, 64)
	add("dr1", DR1, 0, 64)
	add("dr2", DR2, 0, 64)
	add("dr3", DR3, 0, 64)
	add("dr6", DR6, 0, 64)
	add("dr7", DR7, 0, 64)

	add("cs", CS, 0, 16)
	add("ds", DS, 0, 16)
	add("es", ES, 0, 16)
	add("fs", FS, 0, 16)
	add("gs", GS, 0, 16)
	add("ss", SS, 0, 16)

	add("idtr_base", IDTRBase, 0, 64)
	add("idtr_limit", IDTRLimit, 0, 16)
	add("gdtr_base", GDTRBase, 0, 64)
	add("gdtr_limit", GDTRLimit, 0, 16)
	add("ldtr", LDTR, 0, 16)
	add("tr", TR, 0, 16)

	return t
}

// Lookup returns the Alias for a register spelling (without any leading
// '@'), and whether it was found.
func Lookup(name string) (Alias, bool) {
	a, ok := AliasTable[name]
	return a, ok
}

// EncodeAlias packs {Base, Offset, Width} into the 64-bit payload a
// Register Symbol carries, so the VM can decode it without a string
// lookup at event time (event-time evaluation must stay allocation-
// and map-lookup-free).
func EncodeAlias(a Alias) uint64 {
	return uint64(a.Base)<<16 | uint64(a.Offset)<<8 | uint64(a.Width)
}

// DecodeAlias is EncodeAlias's inverse.
func DecodeAlias(id uint64) Alias {
	return Alias{
		Base:   Base(id >> 16),
		Offset: uint((id >> 8) & 0xFF),
		Width:  uint(id & 0xFF),
	}
}
