package resolver_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/resolver"
)

type fakeLoader struct {
	syms  []resolver.NamedSymbol
	calls int
}

func (f *fakeLoader) LoadSymbols(image *resolver.ModuleImage, pdbPath string) ([]resolver.NamedSymbol, error) {
	f.calls++
	return f.syms, nil
}

func tempImage(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "mod-*.pdb")
	require.NoError(t, err)
	_, err = f.Write([]byte("stub pdb bytes"))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestNameToAddressExactAndQualified(t *testing.T) {
	loader := &fakeLoader{syms: []resolver.NamedSymbol{
		{Name: "KeInitializeApc", Offset: 0x100, Size: 0x40},
		{Name: "IoCreateDevice", Offset: 0x200, Size: 0x80},
	}}
	r := resolver.New(loader)
	require.NoError(t, r.LoadSymbol(0x1000, "ntkrnlmp", tempImage(t), "guid-1", 1, false))

	addr, ok := r.NameToAddress("nt!KeInitializeApc")
	require.True(t, ok)
	assert.EqualValues(t, 0x1100, addr)

	// Case-insensitive fallback.
	addr, ok = r.NameToAddress("nt!keinitializeapc")
	require.True(t, ok)
	assert.EqualValues(t, 0x1100, addr)
}

func TestLoadSymbolIdempotentByIdentity(t *testing.T) {
	loader := &fakeLoader{syms: []resolver.NamedSymbol{{Name: "f", Offset: 0, Size: 8}}}
	r := resolver.New(loader)
	path := tempImage(t)
	require.NoError(t, r.LoadSymbol(0x1000, "nt", path, "guid-1", 1, false))
	require.NoError(t, r.LoadSymbol(0x1000, "nt", path, "guid-1", 1, false))
	assert.Equal(t, 1, r.QueryCount())
}

func TestAddressToNearestInsideAndPastEnd(t *testing.T) {
	loader := &fakeLoader{syms: []resolver.NamedSymbol{
		{Name: "Foo", Offset: 0x100, Size: 0x10},
	}}
	r := resolver.New(loader)
	require.NoError(t, r.LoadSymbol(0x1000, "nt", tempImage(t), "g", 1, false))

	near, ok := r.AddressToNearest(0x1105)
	require.True(t, ok)
	assert.Equal(t, "Foo", near.Name)
	assert.EqualValues(t, 0x5, near.Delta)

	// Past the symbol's end but within MaxDistance: still resolves.
	near, ok = r.AddressToNearest(0x1100 + 0x10 + 0x100)
	require.True(t, ok)
	assert.Equal(t, "Foo", near.Name)

	// Far beyond MaxDistance: no match.
	_, ok = r.AddressToNearest(0x1100 + resolver.MaxDistance + 0x1000)
	assert.False(t, ok)
}

func TestReloadWithoutForceIsIdempotent(t *testing.T) {
	loader := &fakeLoader{syms: []resolver.NamedSymbol{{Name: "f", Offset: 0, Size: 8}}}
	r := resolver.New(loader)
	path := tempImage(t)
	require.NoError(t, r.Reload(0x1000, "nt", path, "guid-1", 1, false, false))
	require.NoError(t, r.Reload(0x1000, "nt", path, "guid-1", 1, false, false))
	assert.Equal(t, 1, r.QueryCount())
	assert.Equal(t, 1, loader.calls)
}

func TestReloadWithForceReparsesSameIdentity(t *testing.T) {
	loader := &fakeLoader{syms: []resolver.NamedSymbol{{Name: "f", Offset: 0, Size: 8}}}
	r := resolver.New(loader)
	path := tempImage(t)
	require.NoError(t, r.Reload(0x1000, "nt", path, "guid-1", 1, false, false))
	require.NoError(t, r.Reload(0x1000, "nt", path, "guid-1", 1, false, true))
	assert.Equal(t, 1, r.QueryCount()) // old entry replaced, not duplicated
	assert.Equal(t, 2, loader.calls)
}

func TestUnloadAllClearsState(t *testing.T) {
	loader := &fakeLoader{syms: []resolver.NamedSymbol{{Name: "f", Offset: 0, Size: 8}}}
	r := resolver.New(loader)
	require.NoError(t, r.LoadSymbol(0x1000, "nt", tempImage(t), "g", 1, false))
	r.UnloadAll()
	assert.Equal(t, 0, r.QueryCount())
	_, ok := r.NameToAddress("nt!f")
	assert.False(t, ok)
}
