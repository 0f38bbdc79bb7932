package vm

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"hyperdbg/internal/symstream"
)

// printf implements the OpPrintf opcode: gets[0] is the format string's
// pool index, gets[1] is argc, gets[2:] are the already-evaluated
// arguments. Output goes to the configured OutputSink rather than being
// returned, since printf is a side-effecting builtin, not an
// expression — the sole variadic symbol in the stream.
func (m *VM) printf(gets []operand, f *frame) error {
	idx := int(gets[0].val)
	if idx < 0 || idx >= len(f.strings) {
		return errors.Wrap(ErrInvalidAddress, "bad format string pool index")
	}
	format := f.strings[idx]
	args := gets[2:]

	out, err := expandFormat(format, args, m, f)
	if err != nil {
		return err
	}
	if m.host.Output != nil {
		m.host.Output.Write(out)
	}
	return nil
}

// expandFormat implements this builtin's fixed conversion set: %s %ws
// %d %u %x %o %b %llx %llu %c, plus the %% escape. Width/precision
// modifiers are not part of that set and are passed through literally
// if present — this is a scanner-level builtin, not a general printf
// clone.
func expandFormat(format string, args []operand, m *VM, f *frame) (string, error) {
	var b strings.Builder
	argi := 0
	nextArg := func() (operand, error) {
		if argi >= len(args) {
			return operand{}, errors.Wrap(ErrCapabilityExceeded, "printf: too few arguments for format")
		}
		a := args[argi]
		argi++
		return a, nil
	}

	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '%' || i+1 >= len(runes) {
			b.WriteRune(c)
			continue
		}
		i++
		spec := runes[i]

		// "ll" length modifier: %llx, %llu
		if spec == 'l' && i+2 < len(runes) && runes[i+1] == 'l' {
			i += 2
			spec = runes[i]
			switch spec {
			case 'x':
				a, err := nextArg()
				if err != nil {
					return "", err
				}
				b.WriteString(strconv.FormatUint(a.val, 16))
			case 'u':
				a, err := nextArg()
				if err != nil {
					return "", err
				}
				b.WriteString(strconv.FormatUint(a.val, 10))
			default:
				b.WriteRune('%')
				b.WriteRune('l')
				b.WriteRune('l')
				b.WriteRune(spec)
			}
			continue
		}

		switch spec {
		case '%':
			b.WriteRune('%')
		case 's':
			a, err := nextArg()
			if err != nil {
				return "", err
			}
			b.WriteString(readCString(m, f, a, false))
		case 'w':
			if i+1 < len(runes) && runes[i+1] == 's' {
				i++
				a, err := nextArg()
				if err != nil {
					return "", err
				}
				b.WriteString(readCString(m, f, a, true))
			} else {
				b.WriteRune('%')
				b.WriteRune('w')
			}
		case 'd':
			a, err := nextArg()
			if err != nil {
				return "", err
			}
			b.WriteString(strconv.FormatInt(int64(a.val), 10))
		case 'u':
			a, err := nextArg()
			if err != nil {
				return "", err
			}
			b.WriteString(strconv.FormatUint(a.val, 10))
		case 'x':
			a, err := nextArg()
			if err != nil {
				return "", err
			}
			b.WriteString(strconv.FormatUint(a.val, 16))
		case 'o':
			a, err := nextArg()
			if err != nil {
				return "", err
			}
			b.WriteString(strconv.FormatUint(a.val, 8))
		case 'b':
			a, err := nextArg()
			if err != nil {
				return "", err
			}
			b.WriteString(strconv.FormatUint(a.val, 2))
		case 'c':
			a, err := nextArg()
			if err != nil {
				return "", err
			}
			b.WriteRune(rune(a.val))
		default:
			b.WriteRune('%')
			b.WriteRune(spec)
		}
	}
	return b.String(), nil
}

// invalidStringPlaceholder is what printf's %s/%ws substitute when the
// argument is a guest address the VM refuses or fails to dereference,
// rather than aborting the action the way a hard Execute error would.
const invalidStringPlaceholder = "<invalid>"

// readCString resolves a %s/%ws argument: a string-pool literal
// directly, or a guest address read byte-by-byte (or UTF-16-code-unit
// by code unit for %ws) until a NUL terminator. A bad or unreadable
// guest pointer yields invalidStringPlaceholder instead of an error.
func readCString(m *VM, f *frame, a operand, wide bool) string {
	if a.sym.Type == symstream.KindString {
		idx := int(a.sym.Value)
		if idx < 0 || idx >= len(f.strings) {
			return invalidStringPlaceholder
		}
		return f.strings[idx]
	}
	if m.host.Memory == nil || !m.host.Memory.ProbeRead(a.val, 1) {
		return invalidStringPlaceholder
	}
	step := 1
	if wide {
		step = 2
	}
	var b strings.Builder
	const maxScan = 4096
	for n := 0; n < maxScan; n++ {
		chunk, err := m.host.Memory.ReadBytes(a.val+uint64(n*step), step)
		if err != nil {
			return invalidStringPlaceholder
		}
		if wide {
			if len(chunk) < 2 || (chunk[0] == 0 && chunk[1] == 0) {
				return b.String()
			}
			b.WriteRune(rune(uint16(chunk[0]) | uint16(chunk[1])<<8))
		} else {
			if len(chunk) < 1 || chunk[0] == 0 {
				return b.String()
			}
			b.WriteByte(chunk[0])
		}
	}
	return invalidStringPlaceholder
}
