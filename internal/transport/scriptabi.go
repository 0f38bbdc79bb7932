package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"hyperdbg/internal/symstream"
	"hyperdbg/internal/vm"
)

// wireScriptHeader is the fixed prefix of the compiled-script ABI:
// {u32 length, u32 entry_offset, Symbol[length]}. The Symbol width (32
// or 64 bits per Type/Value) is fixed by the debuggee's advertised
// capability and chosen by the caller, not carried in the wire format
// itself.
type wireScriptHeader struct {
	Length      uint32
	EntryOffset uint32
}

// EncodeScript packs a compiled script to its wire ABI at the given
// capability word width, truncating operand values per vm.Pack.
func EncodeScript(script *symstream.CompiledScript, widthBits int) ([]byte, error) {
	words := vm.Pack(script, widthBits)
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, wireScriptHeader{
		Length:      uint32(len(words)),
		EntryOffset: script.EntryOffset,
	}); err != nil {
		return nil, err
	}
	for _, w := range words {
		if err := writePackedWord(buf, w, widthBits); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeScript unpacks a wire script back into symbols and the entry
// offset; the caller supplies widthBits since it isn't self-describing.
func DecodeScript(data []byte, widthBits int) ([]symstream.Symbol, uint32, error) {
	r := bytes.NewReader(data)
	var hdr wireScriptHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, 0, fmt.Errorf("transport: reading script header: %w", err)
	}
	words := make([]vm.PackedWord, hdr.Length)
	for i := range words {
		w, err := readPackedWord(r, widthBits)
		if err != nil {
			return nil, 0, fmt.Errorf("transport: reading script symbol %d: %w", i, err)
		}
		words[i] = w
	}
	return vm.Unpack(words), hdr.EntryOffset, nil
}

func writePackedWord(w io.Writer, word vm.PackedWord, widthBits int) error {
	switch {
	case widthBits <= 32:
		return binary.Write(w, binary.LittleEndian, struct{ Type, Value uint32 }{uint32(word.Type), uint32(word.Value)})
	default:
		return binary.Write(w, binary.LittleEndian, struct{ Type, Value uint64 }{word.Type, word.Value})
	}
}

func readPackedWord(r io.Reader, widthBits int) (vm.PackedWord, error) {
	if widthBits <= 32 {
		var v struct{ Type, Value uint32 }
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return vm.PackedWord{}, err
		}
		return vm.PackedWord{Type: uint64(v.Type), Value: uint64(v.Value)}, nil
	}
	var v struct{ Type, Value uint64 }
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return vm.PackedWord{}, err
	}
	return vm.PackedWord{Type: v.Type, Value: v.Value}, nil
}
