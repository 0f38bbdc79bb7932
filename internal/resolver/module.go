// Package resolver maps `module!name` identifiers to addresses: it
// loads per-module symbol tables from PDB-derived collaborator data,
// folds OS-kernel module aliases, and answers both compile-time
// name-to-address lookups and event-time "nearest symbol" queries for
// the disassembler view.
package resolver

import "strings"

// kernelAliases folds every spelling a Windows debugger accepts for the
// kernel module onto the canonical name "nt".
var kernelAliases = map[string]bool{
	"nt": true, "ntkrnlmp": true, "ntoskrnl": true, "ntkrnlpa": true, "ntkrpamp": true,
}

func canonicalModuleName(name string) string {
	lower := strings.ToLower(name)
	if kernelAliases[lower] {
		return "nt"
	}
	return name
}

// Entry is one loaded module's symbol table identity, extended with
// the PDB identity fields LoadSymbol needs for idempotent reloads.
type Entry struct {
	ModuleName  string
	ModuleBase  uint64
	ImagePath   string
	PDBPath     string
	PDBGUID     string
	PDBAge      uint32
	IsUserMode  bool
	Symbols     []NamedSymbol
}

// NamedSymbol is one symbol inside a loaded module, offset-relative to
// ModuleBase, with the byte size the disassembler-map nearest-lookup
// needs to decide "inside this symbol" vs "past its end".
type NamedSymbol struct {
	Name   string
	Offset uint64
	Size   uint64
}

func (e *Entry) key() (base uint64, guid string, age uint32) {
	return e.ModuleBase, e.PDBGUID, e.PDBAge
}
