package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// GeneralEvent is the wire form of REGISTER_EVENT: enough to
// reconstruct an event.Event's kind, condition script and filter on
// the receiving side without any host-only state.
type GeneralEvent struct {
	Kind            uint32
	Tag             uint64
	Core            int32
	ProcessID       uint64
	ThreadID        uint64
	ShortCircuit    bool
	ConditionScript []byte // wire-packed script ABI, see scriptabi.go; empty means unconditional
}

// GeneralAction is the wire form of ADD_ACTION_TO_EVENT.
type GeneralAction struct {
	Tag        uint64
	ActionKind uint32
	Script     []byte // wire-packed script ABI for ActionRunScript
	CustomCode []byte
}

// ModifyEventsRequest is the wire form of MODIFY_EVENTS.
type ModifyEventsRequest struct {
	Tag uint64
	All bool
	Op  uint32 // 0=enable 1=disable 2=clear
}

// PausedPacket is sent from debuggee to host when execution halts
// (breakpoint hit, event fired with ActionBreakToDebugger, or an
// explicit USER_DEBUGGER_PAUSE request completes).
type PausedPacket struct {
	Rip           uint64
	Core          int32
	ProcessID     uint64
	ThreadID      uint64
	EventTag      uint64 // 0 if this pause was not event-triggered
}

// LogPacket carries one LOG_INFO/LOG_WARNING/LOG_ERROR/LOG_NONIMMEDIATE line.
type LogPacket struct {
	Text string
}

// readFixed reads exactly len(v) bytes worth of v's fields via
// binary.Read, reporting a short read as an error rather than silently
// zero-filling (unlike func/func.go's readChunk, the host<->debuggee
// link has no "ran off the end of the file" case to tolerate).
func readFixed(r io.Reader, v interface{}) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("transport: short read decoding %T: %w", v, err)
	}
	return nil
}

func writeFixed(w *bytes.Buffer, v interface{}) error {
	return binary.Write(w, binary.LittleEndian, v)
}

type wireGeneralEvent struct {
	Kind         uint32
	_            uint32 // padding to keep the uint64 fields aligned
	Tag          uint64
	Core         int32
	_            uint32
	ProcessID    uint64
	ThreadID     uint64
	ShortCircuit uint8
	_            [7]uint8
	ScriptLen    uint32
}

// EncodeGeneralEvent renders a GeneralEvent to its wire form.
func EncodeGeneralEvent(e GeneralEvent) []byte {
	buf := &bytes.Buffer{}
	w := wireGeneralEvent{
		Kind: e.Kind, Tag: e.Tag, Core: e.Core,
		ProcessID: e.ProcessID, ThreadID: e.ThreadID,
		ScriptLen: uint32(len(e.ConditionScript)),
	}
	if e.ShortCircuit {
		w.ShortCircuit = 1
	}
	_ = writeFixed(buf, w)
	buf.Write(e.ConditionScript)
	return buf.Bytes()
}

// DecodeGeneralEvent parses a GeneralEvent from its wire form.
func DecodeGeneralEvent(data []byte) (GeneralEvent, error) {
	r := bytes.NewReader(data)
	var w wireGeneralEvent
	if err := readFixed(r, &w); err != nil {
		return GeneralEvent{}, err
	}
	script := make([]byte, w.ScriptLen)
	if w.ScriptLen > 0 {
		if err := readFixed(r, script); err != nil {
			return GeneralEvent{}, err
		}
	}
	return GeneralEvent{
		Kind: w.Kind, Tag: w.Tag, Core: w.Core,
		ProcessID: w.ProcessID, ThreadID: w.ThreadID,
		ShortCircuit:    w.ShortCircuit != 0,
		ConditionScript: script,
	}, nil
}

type wireGeneralAction struct {
	Tag           uint64
	ActionKind    uint32
	ScriptLen     uint32
	CustomCodeLen uint32
	_             uint32
}

func EncodeGeneralAction(a GeneralAction) []byte {
	buf := &bytes.Buffer{}
	w := wireGeneralAction{Tag: a.Tag, ActionKind: a.ActionKind, ScriptLen: uint32(len(a.Script)), CustomCodeLen: uint32(len(a.CustomCode))}
	_ = writeFixed(buf, w)
	buf.Write(a.Script)
	buf.Write(a.CustomCode)
	return buf.Bytes()
}

func DecodeGeneralAction(data []byte) (GeneralAction, error) {
	r := bytes.NewReader(data)
	var w wireGeneralAction
	if err := readFixed(r, &w); err != nil {
		return GeneralAction{}, err
	}
	script := make([]byte, w.ScriptLen)
	if w.ScriptLen > 0 {
		if err := readFixed(r, script); err != nil {
			return GeneralAction{}, err
		}
	}
	code := make([]byte, w.CustomCodeLen)
	if w.CustomCodeLen > 0 {
		if err := readFixed(r, code); err != nil {
			return GeneralAction{}, err
		}
	}
	return GeneralAction{Tag: w.Tag, ActionKind: w.ActionKind, Script: script, CustomCode: code}, nil
}

type wireModifyEvents struct {
	Tag uint64
	All uint8
	Op  uint8
	_   [6]uint8
}

func EncodeModifyEvents(m ModifyEventsRequest) []byte {
	buf := &bytes.Buffer{}
	w := wireModifyEvents{Tag: m.Tag, Op: uint8(m.Op)}
	if m.All {
		w.All = 1
	}
	_ = writeFixed(buf, w)
	return buf.Bytes()
}

func DecodeModifyEvents(data []byte) (ModifyEventsRequest, error) {
	var w wireModifyEvents
	if err := readFixed(bytes.NewReader(data), &w); err != nil {
		return ModifyEventsRequest{}, err
	}
	return ModifyEventsRequest{Tag: w.Tag, All: w.All != 0, Op: uint32(w.Op)}, nil
}

type wirePaused struct {
	Rip       uint64
	Core      int32
	_         uint32
	ProcessID uint64
	ThreadID  uint64
	EventTag  uint64
}

func EncodePaused(p PausedPacket) []byte {
	buf := &bytes.Buffer{}
	_ = writeFixed(buf, wirePaused{Rip: p.Rip, Core: p.Core, ProcessID: p.ProcessID, ThreadID: p.ThreadID, EventTag: p.EventTag})
	return buf.Bytes()
}

func DecodePaused(data []byte) (PausedPacket, error) {
	var w wirePaused
	if err := readFixed(bytes.NewReader(data), &w); err != nil {
		return PausedPacket{}, err
	}
	return PausedPacket{Rip: w.Rip, Core: w.Core, ProcessID: w.ProcessID, ThreadID: w.ThreadID, EventTag: w.EventTag}, nil
}

func EncodeLog(p LogPacket) []byte  { return []byte(p.Text) }
func DecodeLog(data []byte) LogPacket { return LogPacket{Text: string(data)} }
