package guest

// PseudoRegister names a runtime value exposed to scripts that is not an
// architectural register — $proc, $tid, $ip, and similar. The lexer only
// needs the name table below to classify a token; the value itself is
// supplied at event time by a vm.PseudoRegisterProvider (see
// internal/vm/host.go), since "current process" has no meaning to the VM on
// its own.
type PseudoRegister int

const (
	PseudoProc PseudoRegister = iota
	PseudoThread
	PseudoProcess
	PseudoPID
	PseudoTID
	PseudoPEB
	PseudoTEB
	PseudoIP
	PseudoSP
	PseudoFlags
	PseudoCoreID
	PseudoEventTag
	pseudoCount
)

var PseudoRegisterTable = map[string]PseudoRegister{
	"$proc":    PseudoProc,
	"$thread":  PseudoThread,
	"$process": PseudoProcess,
	"$pid":     PseudoPID,
	"$tid":     PseudoTID,
	"$peb":     PseudoPEB,
	"$teb":     PseudoTEB,
	"$ip":      PseudoIP,
	"$sp":      PseudoSP,
	"$flags":   PseudoFlags,
	"$core":    PseudoCoreID,
	"$tag":     PseudoEventTag,
}

// LookupPseudo returns the PseudoRegister for a spelling including its
// leading '$', and whether it was found. An unknown $name yields false,
// matching spec §4.1's "Unknown $name yields Unknown" rule.
func LookupPseudo(name string) (PseudoRegister, bool) {
	p, ok := PseudoRegisterTable[name]
	return p, ok
}
