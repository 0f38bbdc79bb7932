package symstream

// Opcode identifies an operator Symbol. Numeric ids are part of the ABI
// between the controller and the debuggee and must never be
// renumbered once a capability descriptor has advertised them; they
// are declared in one block below for that reason, pairing a fixed
// opcode with a fixed signature.
type Opcode uint64

const (
	OpAdd Opcode = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAsr
	OpAsl
	OpOr
	OpXor
	OpAnd
	OpNot
	OpNeg
	OpInc
	OpDec

	OpEq
	OpNeq
	OpGt
	OpLt
	OpGte
	OpLte

	OpJmp
	OpJz
	OpJnz

	OpMov

	OpMemReadByte
	OpMemReadDword
	OpMemReadQword
	OpMemWriteByte
	OpMemWriteDword
	OpMemWriteQword
	OpPoi

	OpPrintf

	OpEnableEvent
	OpDisableEvent
	OpPause
	OpFlush
	OpEventSc
	OpEventInject

	OpSpinlockLock
	OpSpinlockUnlock
	OpInterlockedExchange
	OpInterlockedExchangeAdd
	OpInterlockedIncrement
	OpInterlockedDecrement
	OpInterlockedCompareExchange

	OpHi
	OpLow
	OpStrlen
	OpWcslen

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod",
	OpAsr: "asr", OpAsl: "asl", OpOr: "or", OpXor: "xor", OpAnd: "and",
	OpNot: "not", OpNeg: "neg", OpInc: "inc", OpDec: "dec",
	OpEq: "eq", OpNeq: "neq", OpGt: "gt", OpLt: "lt", OpGte: "gte", OpLte: "lte",
	OpJmp: "jmp", OpJz: "jz", OpJnz: "jnz",
	OpMov: "mov",
	OpMemReadByte: "mem_read_byte", OpMemReadDword: "mem_read_dword", OpMemReadQword: "mem_read_qword",
	OpMemWriteByte: "eb", OpMemWriteDword: "ed", OpMemWriteQword: "eq_mem", OpPoi: "poi",
	OpPrintf:       "printf",
	OpEnableEvent:  "enableevent", OpDisableEvent: "disableevent", OpPause: "pause", OpFlush: "flush",
	OpEventSc: "event_sc", OpEventInject: "event_inject",
	OpSpinlockLock: "spinlock_lock", OpSpinlockUnlock: "spinlock_unlock",
	OpInterlockedExchange: "interlocked_exchange", OpInterlockedExchangeAdd: "interlocked_exchange_add",
	OpInterlockedIncrement: "interlocked_increment", OpInterlockedDecrement: "interlocked_decrement",
	OpInterlockedCompareExchange: "interlocked_compare_exchange",
	OpHi:                         "hi", OpLow: "low", OpStrlen: "strlen", OpWcslen: "wcslen",
}

func (op Opcode) String() string {
	if op >= opcodeCount {
		return "Opcode(?)"
	}
	return opcodeNames[op]
}

// arity is a pure function of the opcode: arity{get,set}. printf is the sole exception — its second get-operand
// carries argc, and GetArity below reports only the two fixed operands
// (fmt, argc); the caller must read argc out of the stream to know how
// many trailing argument operands follow.
type arity struct {
	get int
	set int
}

var arities = [opcodeCount]arity{
	OpAdd: {2, 1}, OpSub: {2, 1}, OpMul: {2, 1}, OpDiv: {2, 1}, OpMod: {2, 1},
	OpAsr: {2, 1}, OpAsl: {2, 1}, OpOr: {2, 1}, OpXor: {2, 1}, OpAnd: {2, 1},
	OpNot: {1, 1}, OpNeg: {1, 1}, OpInc: {1, 1}, OpDec: {1, 1},

	OpEq: {2, 1}, OpNeq: {2, 1}, OpGt: {2, 1}, OpLt: {2, 1}, OpGte: {2, 1}, OpLte: {2, 1},

	OpJmp: {1, 0}, OpJz: {2, 0}, OpJnz: {2, 0},

	OpMov: {1, 1},

	OpMemReadByte: {1, 1}, OpMemReadDword: {1, 1}, OpMemReadQword: {1, 1},
	OpMemWriteByte: {2, 0}, OpMemWriteDword: {2, 0}, OpMemWriteQword: {2, 0},
	OpPoi: {1, 1},

	OpPrintf: {2, 0}, // fmt, argc; argN operands follow argc dynamically

	OpEnableEvent: {1, 0}, OpDisableEvent: {1, 0}, OpPause: {0, 0}, OpFlush: {0, 0},
	OpEventSc: {1, 0}, OpEventInject: {1, 0},

	OpSpinlockLock: {1, 0}, OpSpinlockUnlock: {1, 0},
	OpInterlockedExchange: {2, 1}, OpInterlockedExchangeAdd: {2, 1},
	OpInterlockedIncrement: {1, 1}, OpInterlockedDecrement: {1, 1},
	OpInterlockedCompareExchange: {3, 1},

	OpHi: {1, 1}, OpLow: {1, 1}, OpStrlen: {1, 1}, OpWcslen: {1, 1},
}

// GetArity is the read-operand count declared for op (the fixed count
// for printf; see IsVariadic), or 0 for an unknown opcode.
func GetArity(op Opcode) int {
	if op >= opcodeCount {
		return 0
	}
	return arities[op].get
}

// SetArity is the write-operand count declared for op, or 0 for an
// unknown opcode.
func SetArity(op Opcode) int {
	if op >= opcodeCount {
		return 0
	}
	return arities[op].set
}

// IsVariadic reports whether op's true operand count can only be known
// by reading previously-decoded operands (true only for printf, whose
// argc operand determines how many trailing arg operands follow).
func IsVariadic(op Opcode) bool { return op == OpPrintf }
