package resolver

import (
	"sort"
	"strings"
)

// MaxDistance bounds how far past a symbol's end address_to_nearest
// will still report "name+size+delta" instead of giving up.
const MaxDistance = 0xFFFF

// PDBLoader is the external collaborator that turns a PDB file's bytes
// into a flat symbol list; the resolver itself never parses PDB/CodeView
// records, matching this package's boundary with internal/hostio.
type PDBLoader interface {
	LoadSymbols(image *ModuleImage, pdbPath string) ([]NamedSymbol, error)
}

// nearestEntry is one flattened, sorted point in the disassembler map:
// a module-base-relative address plus the symbol owning it.
type nearestEntry struct {
	addr   uint64 // module_base + symbol.Offset
	name   string
	size   uint64
	module string
}

// Resolver holds every loaded module's symbol table and the derived
// nearest-symbol index the disassembler view queries.
type Resolver struct {
	loader  PDBLoader
	entries []*Entry
	nearest []nearestEntry // kept sorted by addr; rebuilt on every load/unload
}

func New(loader PDBLoader) *Resolver {
	return &Resolver{loader: loader}
}

// LoadSymbol parses pdbPath via the configured PDBLoader and appends
// its entry, idempotent by (module_base, guid, age): a duplicate load
// of the same module identity is a no-op rather than a second entry.
func (r *Resolver) LoadSymbol(moduleBase uint64, moduleName, pdbPath, guid string, age uint32, isUserMode bool) error {
	for _, e := range r.entries {
		base, g, a := e.key()
		if base == moduleBase && g == guid && a == age {
			return nil
		}
	}

	image, err := OpenModuleImage(pdbPath)
	if err != nil {
		return err
	}
	defer image.Close()

	syms, err := r.loader.LoadSymbols(image, pdbPath)
	if err != nil {
		return err
	}

	entry := &Entry{
		ModuleName: canonicalModuleName(moduleName),
		ModuleBase: moduleBase,
		PDBPath:    pdbPath,
		PDBGUID:    guid,
		PDBAge:     age,
		IsUserMode: isUserMode,
		Symbols:    syms,
	}
	r.entries = append(r.entries, entry)
	r.rebuildNearestIndex()
	return nil
}

// Reload re-parses pdbPath for moduleBase even when a load with the
// same (base, guid, age) identity already exists; LoadSymbol's
// idempotency check treats that as a no-op, but a "reload" request
// (distinct from an initial load) means the caller wants fresh symbols
// regardless, e.g. after a PDB was replaced on disk under the same name.
func (r *Resolver) Reload(moduleBase uint64, moduleName, pdbPath, guid string, age uint32, isUserMode bool, force bool) error {
	if !force {
		return r.LoadSymbol(moduleBase, moduleName, pdbPath, guid, age, isUserMode)
	}
	kept := r.entries[:0:0]
	for _, e := range r.entries {
		base, g, a := e.key()
		if base == moduleBase && g == guid && a == age {
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return r.LoadSymbol(moduleBase, moduleName, pdbPath, guid, age, isUserMode)
}

// UnloadAll drops every loaded module's symbol table.
func (r *Resolver) UnloadAll() {
	r.entries = nil
	r.nearest = nil
}

func (r *Resolver) rebuildNearestIndex() {
	flat := make([]nearestEntry, 0, 256)
	for _, e := range r.entries {
		for _, s := range e.Symbols {
			flat = append(flat, nearestEntry{
				addr:   e.ModuleBase + s.Offset,
				name:   s.Name,
				size:   s.Size,
				module: e.ModuleName,
			})
		}
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].addr < flat[j].addr })
	r.nearest = flat
}

// NameToAddress resolves a `module!name` (or bare `name`, searched
// across every loaded module) spelling to an address: exact lookup
// first, then a case-insensitive fallback.
func (r *Resolver) NameToAddress(spelling string) (uint64, bool) {
	module, name := splitQualified(spelling)
	module = canonicalModuleName(module)

	if addr, ok := r.lookupExact(module, name, false); ok {
		return addr, true
	}
	return r.lookupExact(module, name, true)
}

func (r *Resolver) lookupExact(module, name string, caseInsensitive bool) (uint64, bool) {
	for _, e := range r.entries {
		if module != "" && !moduleNameMatches(e.ModuleName, module, caseInsensitive) {
			continue
		}
		for _, s := range e.Symbols {
			if symbolNameMatches(s.Name, name, caseInsensitive) {
				return e.ModuleBase + s.Offset, true
			}
		}
	}
	return 0, false
}

func moduleNameMatches(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func symbolNameMatches(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// splitQualified splits "module!name" into its two parts; a spelling
// with no '!' is treated as an unqualified name (module == "").
func splitQualified(spelling string) (module, name string) {
	if idx := strings.IndexByte(spelling, '!'); idx >= 0 {
		return spelling[:idx], spelling[idx+1:]
	}
	return "", spelling
}

// NearestSymbol is address_to_nearest's result: the owning symbol's
// name, the byte delta from its start (also when ip lies past the
// symbol's end), and the module it belongs to.
type NearestSymbol struct {
	Name   string
	Delta  uint64
	Module string
}

// AddressToNearest binary-searches the disassembler map for the
// largest entry <= ip. If ip falls inside the symbol's reported size,
// or past its end by at most MaxDistance, it reports the name and the
// delta from the symbol's start; otherwise no match.
func (r *Resolver) AddressToNearest(ip uint64) (NearestSymbol, bool) {
	if len(r.nearest) == 0 {
		return NearestSymbol{}, false
	}
	i := sort.Search(len(r.nearest), func(i int) bool { return r.nearest[i].addr > ip }) - 1
	if i < 0 {
		return NearestSymbol{}, false
	}
	e := r.nearest[i]
	delta := ip - e.addr
	if delta <= e.size {
		return NearestSymbol{Name: e.name, Delta: delta, Module: e.module}, true
	}
	if delta-e.size <= MaxDistance {
		return NearestSymbol{Name: e.name, Delta: delta, Module: e.module}, true
	}
	return NearestSymbol{}, false
}

// QueryCount reports how many modules are currently loaded, for the x
// command and for host PDB-download prompts.
func (r *Resolver) QueryCount() int { return len(r.entries) }

// Enumerate returns every loaded module's entry, in load order.
func (r *Resolver) Enumerate() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
