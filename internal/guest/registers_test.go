package guest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/guest"
)

func TestLookupResolvesWideAndNarrowAliases(t *testing.T) {
	rax, ok := guest.Lookup("rax")
	require.True(t, ok)
	assert.Equal(t, guest.RAX, rax.Base)
	assert.Equal(t, uint(64), rax.Width)

	al, ok := guest.Lookup("al")
	require.True(t, ok)
	assert.Equal(t, guest.RAX, al.Base)
	assert.Equal(t, uint(0), al.Offset)
	assert.Equal(t, uint(8), al.Width)

	ah, ok := guest.Lookup("ah")
	require.True(t, ok)
	assert.Equal(t, guest.RAX, ah.Base)
	assert.Equal(t, uint(8), ah.Offset)
	assert.Equal(t, uint(8), ah.Width)
}

func TestLookupUnknownNameFails(t *testing.T) {
	_, ok := guest.Lookup("notareg")
	assert.False(t, ok)
}

func TestGetSetRoundTripPreservesUntouchedBits(t *testing.T) {
	regs := guest.NewRegisters()
	rax, _ := guest.Lookup("rax")
	regs.Set(rax, 0x1122334455667788)

	al, _ := guest.Lookup("al")
	regs.Set(al, 0xFF)
	assert.Equal(t, uint64(0x11223344556677FF), regs.Base(guest.RAX))
	assert.Equal(t, uint64(0xFF), regs.Get(al))

	ah, _ := guest.Lookup("ah")
	assert.Equal(t, uint64(0x77), regs.Get(ah))
}

func TestSetBaseMarksValid(t *testing.T) {
	regs := guest.NewRegisters()
	assert.False(t, regs.HasBase(guest.RIP))
	regs.SetBase(guest.RIP, 0x401000)
	assert.True(t, regs.HasBase(guest.RIP))
	assert.Equal(t, uint64(0x401000), regs.Base(guest.RIP))
}

func TestFlagBitAliasesAreSingleBit(t *testing.T) {
	regs := guest.NewRegisters()
	regs.SetBase(guest.RFlags, 0)

	zf, ok := guest.Lookup("zf")
	require.True(t, ok)
	assert.Equal(t, uint(1), zf.Width)
	assert.Equal(t, uint64(0), regs.Get(zf))

	regs.Set(zf, 1)
	assert.Equal(t, uint64(1), regs.Get(zf))
	assert.Equal(t, uint64(1)<<6, regs.Base(guest.RFlags))

	// cf (bit 0) must remain untouched by setting zf.
	cf, ok := guest.Lookup("cf")
	require.True(t, ok)
	assert.Equal(t, uint64(0), regs.Get(cf))
}

func TestEncodeDecodeAliasRoundTrip(t *testing.T) {
	al, ok := guest.Lookup("al")
	require.True(t, ok)
	id := guest.EncodeAlias(al)
	decoded := guest.DecodeAlias(id)
	assert.Equal(t, al.Base, decoded.Base)
	assert.Equal(t, al.Offset, decoded.Offset)
	assert.Equal(t, al.Width, decoded.Width)
}

func TestLookupPseudoKnownAndUnknown(t *testing.T) {
	p, ok := guest.LookupPseudo("$pid")
	require.True(t, ok)
	assert.Equal(t, guest.PseudoPID, p)

	_, ok = guest.LookupPseudo("$nope")
	assert.False(t, ok)
}
