// Package transport implements the host<->debuggee packet ABI: a fixed
// indicator + opcode header, framing sentinels for serial and TCP
// carriers, and codecs for the packet kinds the core cares about
// (event registration, action attachment, event modification, paused
// notifications, log lines).
package transport

// Indicator is the fixed 64-bit magic every packet begins with.
const Indicator uint64 = 0x4859504552444247

// MustHandleLocallyBit is bit 31 of the opcode, marking a packet the
// receiving side must act on itself rather than simply relay.
const MustHandleLocallyBit uint32 = 1 << 31

// OpCode identifies a packet kind by its low 16 bits. Struct-enum,
// matching token.Kind/symstream.Opcode.
type OpCode struct{ code uint32 }

var (
	OpRegisterEvent     = OpCode{1}
	OpAddActionToEvent   = OpCode{2}
	OpModifyEvents       = OpCode{3}
	OpDebuggeeUserInput  = OpCode{4}
	OpUserDebuggerPause  = OpCode{5}
	OpLogInfo            = OpCode{6}
	OpLogWarning         = OpCode{7}
	OpLogError           = OpCode{8}
	OpLogNonImmediate    = OpCode{9}
	OpCommandReloadSymbol = OpCode{10}
)

var opCodeNames = map[uint32]string{
	1: "RegisterEvent", 2: "AddActionToEvent", 3: "ModifyEvents",
	4: "DebuggeeUserInput", 5: "UserDebuggerPause",
	6: "LogInfo", 7: "LogWarning", 8: "LogError", 9: "LogNonImmediate",
	10: "CommandReloadSymbol",
}

func (o OpCode) String() string {
	if name, ok := opCodeNames[o.code]; ok {
		return name
	}
	return "OpCode(?)"
}

// Code returns the raw 16-bit opcode value a Header carries, without
// the must-handle-locally bit.
func (o OpCode) Code() uint32 { return o.code }

// Header is the fixed prefix of every packet.
type Header struct {
	Indicator uint64
	OpCode    uint32 // low 16 bits: kind; bit 31: MustHandleLocallyBit
}

func NewHeader(op OpCode, mustHandleLocally bool) Header {
	code := op.code
	if mustHandleLocally {
		code |= MustHandleLocallyBit
	}
	return Header{Indicator: Indicator, OpCode: code}
}

func (h Header) Kind() OpCode                 { return OpCode{h.OpCode &^ MustHandleLocallyBit} }
func (h Header) MustHandleLocally() bool      { return h.OpCode&MustHandleLocallyBit != 0 }
func (h Header) Valid() bool                  { return h.Indicator == Indicator }
