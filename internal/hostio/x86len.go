package hostio

import "golang.org/x/arch/x86/x86asm"

// X86LengthDisassembler decodes one x86-64 instruction to determine its
// length; cmd/hyperdbg-ctrl passes it to breakpoint.New. The breakpoint
// engine has no built-in default: with a nil LengthDisassembler it
// records a length of 1.
type X86LengthDisassembler struct{}

func (X86LengthDisassembler) InstructionLength(code []byte) (int, error) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return 0, err
	}
	return inst.Len, nil
}
