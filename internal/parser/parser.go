// Package parser reduces a token stream against the script grammar
// (expressions with C precedence, assignment, if/else, while, do/while,
// for, {} blocks, printf and the builtin functions) into a flat
// CompiledScript symbol stream.
package parser

import (
	"strconv"

	"hyperdbg/internal/guest"
	"hyperdbg/internal/symstream"
	"hyperdbg/internal/token"
)

// Parser holds everything the emitter needs while reducing one script:
// the token stream, the variable/temp allocators, the in-progress
// symbol buffer and string pool, and the compile-time resolver.
type Parser struct {
	toks     *token.Stream
	vars     *VariableTable
	temps    *tempAllocator
	resolver Resolver

	stream  []symstream.Symbol
	strings []string
	locals  map[string]bool // names declared via `local`, resolved to LocalId
}

// New prepares a Parser over src. resolver may be NoResolver if no
// modules are loaded.
func New(src []byte, resolver Resolver) *Parser {
	if resolver == nil {
		resolver = NoResolver
	}
	return &Parser{
		toks:     token.NewStream(src),
		vars:     NewVariableTable(),
		temps:    newTempAllocator(),
		resolver: resolver,
		locals:   map[string]bool{},
	}
}

// Parse compiles src into a CompiledScript. On any error the emitted
// buffer is discarded and only the error is returned: no partial script
// ever escapes.
func Parse(src []byte, resolver Resolver) (*symstream.CompiledScript, error) {
	p := New(src, resolver)
	if err := p.parseProgram(); err != nil {
		return nil, err
	}
	return &symstream.CompiledScript{
		Stream:  p.stream,
		Strings: p.strings,
		VariableBounds: symstream.VariableBounds{
			GlobalSlots: p.vars.GlobalCount(),
			LocalSlots:  p.vars.LocalCount(),
			TempSlots:   MaxTemps,
		},
	}, nil
}

func (p *Parser) emit(s symstream.Symbol) int {
	p.stream = append(p.stream, s)
	return len(p.stream) - 1
}

func (p *Parser) emitOp(op symstream.Opcode, gets []symstream.Symbol, sets []symstream.Symbol) {
	p.emit(symstream.Operator(op))
	for _, g := range gets {
		p.emit(g)
	}
	for _, s := range sets {
		p.emit(s)
	}
}

func (p *Parser) newTemp() (symstream.Symbol, int, error) {
	slot, err := p.temps.alloc()
	if err != nil {
		return symstream.Symbol{}, 0, err
	}
	return symstream.Temp(uint64(slot)), slot, nil
}

func (p *Parser) freeTemp(slot int) {
	p.temps.free(slot)
}

func (p *Parser) internString(s string) symstream.Symbol {
	idx := len(p.strings)
	p.strings = append(p.strings, s)
	return symstream.StringRef(uint64(idx))
}

// --- program / statements ---

func (p *Parser) parseProgram() error {
	for {
		tk := p.toks.Peek()
		if tk.Kind() == token.EndOfStream {
			return nil
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseStatement() error {
	tk := p.toks.Peek()
	switch {
	case tk.Kind() == token.Special && tk.Value() == "{":
		return p.parseBlock()
	case tk.Kind() == token.Special && tk.Value() == ";":
		p.toks.Next()
		return nil
	case tk.Kind() == token.Keyword && tk.Value() == "if":
		return p.parseIf()
	case tk.Kind() == token.Keyword && tk.Value() == "while":
		return p.parseWhile()
	case tk.Kind() == token.Keyword && tk.Value() == "do":
		return p.parseDoWhile()
	case tk.Kind() == token.Keyword && tk.Value() == "for":
		return p.parseFor()
	case (tk.Kind() == token.UnresolvedGlobalID || tk.Kind() == token.UnresolvedLocalID) && tk.Value() == "local":
		return p.parseLocalDecl()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseBlock() error {
	p.expectSpecial("{")
	for {
		tk := p.toks.Peek()
		if tk.Kind() == token.Special && tk.Value() == "}" {
			p.toks.Next()
			return nil
		}
		if tk.Kind() == token.EndOfStream {
			return p.syntaxError(tk, "unexpected end of script, expected }")
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
}

// parseLocalDecl handles `local name [= expr];`, the parser's own
// extension for choosing the LocalId namespace over the default
// GlobalId one.
func (p *Parser) parseLocalDecl() error {
	p.toks.Next() // `local`
	nameTok := p.toks.Next()
	if nameTok.Kind() != token.UnresolvedGlobalID || nameTok.HasBang {
		return p.syntaxError(nameTok, "expected identifier after local")
	}
	p.locals[nameTok.Value()] = true
	tk := p.toks.Peek()
	if tk.Kind() == token.Special && tk.Value() == "=" {
		p.toks.Next()
		rhs, err := p.parseExpr(0)
		if err != nil {
			return err
		}
		slot, err := p.vars.Local(nameTok.Value())
		if err != nil {
			return err
		}
		p.emitOp(symstream.OpMov, []symstream.Symbol{rhs}, []symstream.Symbol{symstream.LocalID(uint64(slot))})
	}
	return p.expectSemicolon()
}

func (p *Parser) parseIf() error {
	p.toks.Next() // `if`
	p.expectSpecial("(")
	cond, err := p.parseExpr(0)
	if err != nil {
		return err
	}
	p.expectSpecial(")")

	jzOpIdx := p.emitJumpPlaceholder(symstream.OpJz, cond)
	if err := p.parseStatement(); err != nil {
		return err
	}

	tk := p.toks.Peek()
	if tk.Kind() == token.Keyword && tk.Value() == "else" {
		p.toks.Next()
		jmpOpIdx := p.emitJumpPlaceholder(symstream.OpJmp, symstream.Symbol{})
		p.patchJumpTarget(jzOpIdx, len(p.stream))
		if err := p.parseStatement(); err != nil {
			return err
		}
		p.patchJumpTarget(jmpOpIdx, len(p.stream))
	} else {
		p.patchJumpTarget(jzOpIdx, len(p.stream))
	}
	return nil
}

func (p *Parser) parseWhile() error {
	p.toks.Next() // `while`
	top := len(p.stream)
	p.expectSpecial("(")
	cond, err := p.parseExpr(0)
	if err != nil {
		return err
	}
	p.expectSpecial(")")
	jzOpIdx := p.emitJumpPlaceholder(symstream.OpJz, cond)
	if err := p.parseStatement(); err != nil {
		return err
	}
	p.emitOp(symstream.OpJmp, []symstream.Symbol{symstream.Num(uint64(top))}, nil)
	p.patchJumpTarget(jzOpIdx, len(p.stream))
	return nil
}

func (p *Parser) parseDoWhile() error {
	p.toks.Next() // `do`
	top := len(p.stream)
	if err := p.parseStatement(); err != nil {
		return err
	}
	tk := p.toks.Next()
	if !(tk.Kind() == token.Keyword && tk.Value() == "while") {
		return p.syntaxError(tk, "expected while after do block")
	}
	p.expectSpecial("(")
	cond, err := p.parseExpr(0)
	if err != nil {
		return err
	}
	p.expectSpecial(")")
	p.emitOp(symstream.OpJnz, []symstream.Symbol{cond, symstream.Num(uint64(top))}, nil)
	return p.expectSemicolon()
}

func (p *Parser) parseFor() error {
	p.toks.Next() // `for`
	p.expectSpecial("(")
	// init
	if tk := p.toks.Peek(); !(tk.Kind() == token.Special && tk.Value() == ";") {
		if err := p.parseExprStatement(); err != nil {
			return err
		}
	} else {
		p.toks.Next()
	}

	top := len(p.stream)
	var jzOpIdx int = -1
	if tk := p.toks.Peek(); !(tk.Kind() == token.Special && tk.Value() == ";") {
		cond, err := p.parseExpr(0)
		if err != nil {
			return err
		}
		jzOpIdx = p.emitJumpPlaceholder(symstream.OpJz, cond)
	}
	p.expectSpecial(";")

	// Post-expression is parsed into its own code region and spliced in
	// after the body, since it executes after the body but is written
	// before it lexically.
	postStart := len(p.stream)
	hasPost := false
	if tk := p.toks.Peek(); !(tk.Kind() == token.Special && tk.Value() == ")") {
		if _, err := p.parseExpr(0); err != nil {
			return err
		}
		hasPost = true
	}
	postCode := append([]symstream.Symbol(nil), p.stream[postStart:]...)
	p.stream = p.stream[:postStart]
	_ = hasPost
	p.expectSpecial(")")

	if err := p.parseStatement(); err != nil {
		return err
	}
	p.stream = append(p.stream, postCode...)
	p.emitOp(symstream.OpJmp, []symstream.Symbol{symstream.Num(uint64(top))}, nil)
	if jzOpIdx >= 0 {
		p.patchJumpTarget(jzOpIdx, len(p.stream))
	}
	return nil
}

// emitJumpPlaceholder emits a conditional (op==Jz/Jnz, cond supplied) or
// unconditional (op==Jmp) jump with a sentinel target, returning the
// stream index of the operator symbol so the caller can patch the
// target once it's known.
func (p *Parser) emitJumpPlaceholder(op symstream.Opcode, cond symstream.Symbol) int {
	idx := p.emit(symstream.Operator(op))
	if op != symstream.OpJmp {
		p.emit(cond)
	}
	p.emit(symstream.Num(0)) // placeholder target
	return idx
}

// patchJumpTarget rewrites the target operand of the jump operator at
// idx to target. The target operand is always the last operand emitted
// for jmp/jz/jnz.
func (p *Parser) patchJumpTarget(idx int, target int) {
	op := symstream.Opcode(p.stream[idx].Value)
	targetOperandIdx := idx + symstream.GetArity(op)
	p.stream[targetOperandIdx] = symstream.Num(uint64(target))
}

func (p *Parser) expectSemicolon() error {
	tk := p.toks.Next()
	if !(tk.Kind() == token.Special && tk.Value() == ";") {
		return p.syntaxError(tk, "expected ;")
	}
	return nil
}

func (p *Parser) expectSpecial(v string) error {
	tk := p.toks.Next()
	if !(tk.Kind() == token.Special && tk.Value() == v) {
		return p.syntaxError(tk, "expected %q", v)
	}
	return nil
}

func (p *Parser) syntaxError(tk token.Token, format string, args ...any) error {
	return newError(KindSyntaxError, tk.Position(), format, args...)
}

// parseExprStatement parses a bare expression statement. It also
// recognizes the condition-script form `expr ? { block }` used to attach
// a firing condition to an event: the block runs only if expr is
// nonzero, and no trailing `;` is required after it. In
// both forms, the expression's value is recorded as the script's overall
// result (see resultSlot), which is what Execute reports as "fired".
func (p *Parser) parseExprStatement() error {
	if tk := p.toks.Peek(); tk.Kind() == token.Special && tk.Value() == ";" {
		p.toks.Next()
		return nil
	}
	val, err := p.parseExpr(0)
	if err != nil {
		return err
	}
	p.emitOp(symstream.OpMov, []symstream.Symbol{val}, []symstream.Symbol{resultSlot()})

	if tk := p.toks.Peek(); tk.Kind() == token.Special && tk.Value() == "?" {
		p.toks.Next()
		jzIdx := p.emitJumpPlaceholder(symstream.OpJz, val)
		p.freeTempIfTemp(val)
		if err := p.parseStatement(); err != nil {
			return err
		}
		p.patchJumpTarget(jzIdx, len(p.stream))
		return nil
	}
	p.freeTempIfTemp(val)
	return p.expectSemicolon()
}

// resultSlot names the reserved GlobalId slot the VM treats specially:
// it is never allocated out of the ordinary VariableTable, so it can
// never collide with a user global, and Execute reads it back as the
// script's overall fire/skip value.
func resultSlot() symstream.Symbol {
	return symstream.GlobalID(symstream.ResultSlotID)
}

// --- expressions (precedence climbing) ---

type binOp struct {
	prec int
	op   symstream.Opcode
}

var binOps = map[string]binOp{
	"||": {1, symstream.OpOr},
	"&&": {2, symstream.OpAnd},
	"|":  {3, symstream.OpOr},
	"^":  {4, symstream.OpXor},
	"&":  {5, symstream.OpAnd},
	"==": {6, symstream.OpEq},
	"!=": {6, symstream.OpNeq},
	"<":  {7, symstream.OpLt},
	"<=": {7, symstream.OpLte},
	">":  {7, symstream.OpGt},
	">=": {7, symstream.OpGte},
	"<<": {8, symstream.OpAsl},
	">>": {8, symstream.OpAsr},
	"+":  {9, symstream.OpAdd},
	"-":  {9, symstream.OpSub},
	"*":  {10, symstream.OpMul},
	"/":  {10, symstream.OpDiv},
	"%":  {10, symstream.OpMod},
}

var compoundAssign = map[string]symstream.Opcode{
	"+=": symstream.OpAdd, "-=": symstream.OpSub, "*=": symstream.OpMul, "/=": symstream.OpDiv,
}

// parseExpr parses an expression with operators of precedence >= minPrec
// and returns the Symbol (a Temp, variable, register, or immediate) that
// holds the result. It also handles assignment, which binds looser than
// every binOp (checked before entering the precedence climb).
func (p *Parser) parseExpr(minPrec int) (symstream.Symbol, error) {
	if sym, ok, err := p.tryParseAssignment(); ok || err != nil {
		return sym, err
	}
	lhs, err := p.parseUnary()
	if err != nil {
		return symstream.Symbol{}, err
	}
	return p.parseBinRHS(minPrec, lhs)
}

func (p *Parser) tryParseAssignment() (symstream.Symbol, bool, error) {
	tk := p.toks.Peek()
	if !isIdentLikeLValue(tk) {
		return symstream.Symbol{}, false, nil
	}
	// Two-token lookahead: identifier/register followed by = or compound-=.
	first := p.toks.Next()
	op := p.toks.Peek()
	isAssign := op.Kind() == token.Special && op.Value() == "="
	_, isCompound := compoundAssign[op.Value()]
	isCompound = isCompound && op.Kind() == token.Special
	isIncDec := op.Kind() == token.Special && (op.Value() == "++" || op.Value() == "--")

	if !isAssign && !isCompound && !isIncDec {
		p.toks.Unget(first)
		return symstream.Symbol{}, false, nil
	}

	target, err := p.lvalueSymbol(first)
	if err != nil {
		return symstream.Symbol{}, true, err
	}

	if isIncDec {
		p.toks.Next()
		opc := symstream.OpInc
		if op.Value() == "--" {
			opc = symstream.OpDec
		}
		p.emitOp(opc, []symstream.Symbol{target}, []symstream.Symbol{target})
		return target, true, nil
	}

	p.toks.Next() // consume = or +=/-=/*=//=
	rhs, err := p.parseExpr(0)
	if err != nil {
		return symstream.Symbol{}, true, err
	}
	if isCompound {
		opc := compoundAssign[op.Value()]
		tmp, slot, err := p.newTemp()
		if err != nil {
			return symstream.Symbol{}, true, err
		}
		p.emitOp(opc, []symstream.Symbol{target, rhs}, []symstream.Symbol{tmp})
		p.emitOp(symstream.OpMov, []symstream.Symbol{tmp}, []symstream.Symbol{target})
		p.freeTemp(slot)
		return target, true, nil
	}
	p.emitOp(symstream.OpMov, []symstream.Symbol{rhs}, []symstream.Symbol{target})
	return target, true, nil
}

func isIdentLikeLValue(tk token.Token) bool {
	switch tk.Kind() {
	case token.UnresolvedGlobalID, token.UnresolvedLocalID, token.Register:
		return !tk.HasBang
	}
	return false
}

// lvalueSymbol resolves an identifier/register token already consumed by
// the caller into the Symbol naming its storage location.
func (p *Parser) lvalueSymbol(tk token.Token) (symstream.Symbol, error) {
	switch tk.Kind() {
	case token.Register:
		return p.registerSymbol(tk)
	default:
		return p.identifierSymbol(tk)
	}
}

func (p *Parser) registerSymbol(tk token.Token) (symstream.Symbol, error) {
	alias, ok := guest.Lookup(tk.Value())
	if !ok {
		return symstream.Symbol{}, p.syntaxError(tk, "unknown register %q", tk.Value())
	}
	return symstream.Register(guest.EncodeAlias(alias)), nil
}

func (p *Parser) identifierSymbol(tk token.Token) (symstream.Symbol, error) {
	if tk.HasBang {
		addr, ok := p.resolver.NameToAddress(tk.Value())
		if !ok {
			return symstream.Symbol{}, newError(KindUndefinedIdentifier, tk.Position(), "undefined identifier %q", tk.Value())
		}
		return symstream.Num(addr), nil
	}
	if p.locals[tk.Value()] {
		slot, err := p.vars.Local(tk.Value())
		if err != nil {
			return symstream.Symbol{}, err
		}
		return symstream.LocalID(uint64(slot)), nil
	}
	slot, err := p.vars.Global(tk.Value())
	if err != nil {
		return symstream.Symbol{}, err
	}
	return symstream.GlobalID(uint64(slot)), nil
}

func (p *Parser) parseBinRHS(minPrec int, lhs symstream.Symbol) (symstream.Symbol, error) {
	for {
		tk := p.toks.Peek()
		bop, ok := binOps[tk.Value()]
		if !ok || tk.Kind() != token.Special || bop.prec < minPrec {
			return lhs, nil
		}
		p.toks.Next()
		rhs, err := p.parseUnary()
		if err != nil {
			return symstream.Symbol{}, err
		}
		for {
			next := p.toks.Peek()
			nextOp, ok := binOps[next.Value()]
			if !ok || next.Kind() != token.Special || nextOp.prec <= bop.prec {
				break
			}
			rhs, err = p.parseBinRHS(bop.prec+1, rhs)
			if err != nil {
				return symstream.Symbol{}, err
			}
		}
		tmp, slot, err := p.newTemp()
		if err != nil {
			return symstream.Symbol{}, err
		}
		p.emitOp(bop.op, []symstream.Symbol{lhs, rhs}, []symstream.Symbol{tmp})
		p.freeTempIfTemp(lhs)
		p.freeTempIfTemp(rhs)
		_ = slot
		lhs = tmp
	}
}

func (p *Parser) freeTempIfTemp(s symstream.Symbol) {
	if s.Type == symstream.KindTemp {
		p.freeTemp(int(s.Value))
	}
}

func (p *Parser) parseUnary() (symstream.Symbol, error) {
	tk := p.toks.Peek()
	if tk.Kind() == token.Special {
		switch tk.Value() {
		case "-":
			p.toks.Next()
			operand, err := p.parseUnary()
			if err != nil {
				return symstream.Symbol{}, err
			}
			tmp, _, err := p.newTemp()
			if err != nil {
				return symstream.Symbol{}, err
			}
			p.emitOp(symstream.OpNeg, []symstream.Symbol{operand}, []symstream.Symbol{tmp})
			p.freeTempIfTemp(operand)
			return tmp, nil
		case "~":
			p.toks.Next()
			operand, err := p.parseUnary()
			if err != nil {
				return symstream.Symbol{}, err
			}
			tmp, _, err := p.newTemp()
			if err != nil {
				return symstream.Symbol{}, err
			}
			p.emitOp(symstream.OpNot, []symstream.Symbol{operand}, []symstream.Symbol{tmp})
			p.freeTempIfTemp(operand)
			return tmp, nil
		case "!":
			p.toks.Next()
			operand, err := p.parseUnary()
			if err != nil {
				return symstream.Symbol{}, err
			}
			tmp, _, err := p.newTemp()
			if err != nil {
				return symstream.Symbol{}, err
			}
			p.emitOp(symstream.OpEq, []symstream.Symbol{operand, symstream.Num(0)}, []symstream.Symbol{tmp})
			p.freeTempIfTemp(operand)
			return tmp, nil
		}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (symstream.Symbol, error) {
	tk := p.toks.Next()
	switch tk.Kind() {
	case token.Hex:
		v, err := strconv.ParseUint(orZero(tk.Value()), 16, 64)
		if err != nil {
			return symstream.Symbol{}, p.syntaxError(tk, "invalid hex literal %q", tk.Value())
		}
		return symstream.Num(v), nil
	case token.Decimal:
		v, err := strconv.ParseUint(orZero(tk.Value()), 10, 64)
		if err != nil {
			return symstream.Symbol{}, p.syntaxError(tk, "invalid decimal literal %q", tk.Value())
		}
		return symstream.Num(v), nil
	case token.Octal:
		v, err := strconv.ParseUint(orZero(tk.Value()), 8, 64)
		if err != nil {
			return symstream.Symbol{}, p.syntaxError(tk, "invalid octal literal %q", tk.Value())
		}
		return symstream.Num(v), nil
	case token.Binary:
		v, err := strconv.ParseUint(orZero(tk.Value()), 2, 64)
		if err != nil {
			return symstream.Symbol{}, p.syntaxError(tk, "invalid binary literal %q", tk.Value())
		}
		return symstream.Num(v), nil
	case token.String:
		return p.internString(tk.Value()), nil
	case token.Register:
		return p.registerSymbol(tk)
	case token.PseudoRegister:
		return symstream.PseudoRegister(uint64(pseudoID(tk.Value()))), nil
	case token.UnresolvedGlobalID, token.UnresolvedLocalID:
		if next := p.toks.Peek(); next.Kind() == token.Special && next.Value() == "(" {
			return p.parseCall(tk)
		}
		return p.identifierSymbol(tk)
	case token.Special:
		if tk.Value() == "(" {
			inner, err := p.parseExpr(0)
			if err != nil {
				return symstream.Symbol{}, err
			}
			if err := p.expectSpecial(")"); err != nil {
				return symstream.Symbol{}, err
			}
			return inner, nil
		}
	}
	return symstream.Symbol{}, p.syntaxError(tk, "unexpected token %s", tk)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func pseudoID(name string) int {
	p, _ := guest.LookupPseudo(name)
	return int(p)
}

// parseCall handles builtin-function call syntax: name(arg, arg, ...).
// The callee token has already been consumed by the caller.
func (p *Parser) parseCall(name token.Token) (symstream.Symbol, error) {
	p.toks.Next() // '('
	var args []symstream.Symbol
	if tk := p.toks.Peek(); !(tk.Kind() == token.Special && tk.Value() == ")") {
		for {
			a, err := p.parseExpr(0)
			if err != nil {
				return symstream.Symbol{}, err
			}
			args = append(args, a)
			tk := p.toks.Peek()
			if tk.Kind() == token.Special && tk.Value() == "," {
				p.toks.Next()
				continue
			}
			break
		}
	}
	if err := p.expectSpecial(")"); err != nil {
		return symstream.Symbol{}, err
	}
	return p.emitBuiltin(name, args)
}

func (p *Parser) emitBuiltin(name token.Token, args []symstream.Symbol) (symstream.Symbol, error) {
	result := func(op symstream.Opcode, gets []symstream.Symbol) (symstream.Symbol, error) {
		tmp, _, err := p.newTemp()
		if err != nil {
			return symstream.Symbol{}, err
		}
		p.emitOp(op, gets, []symstream.Symbol{tmp})
		return tmp, nil
	}
	noResult := func(op symstream.Opcode, gets []symstream.Symbol) (symstream.Symbol, error) {
		p.emitOp(op, gets, nil)
		return symstream.Num(0), nil
	}

	switch name.Value() {
	case "eb":
		return noResult(symstream.OpMemWriteByte, args)
	case "ed":
		return noResult(symstream.OpMemWriteDword, args)
	case "eq":
		return noResult(symstream.OpMemWriteQword, args)
	case "poi":
		return result(symstream.OpPoi, args)
	case "hi":
		return result(symstream.OpHi, args)
	case "low":
		return result(symstream.OpLow, args)
	case "strlen":
		return result(symstream.OpStrlen, args)
	case "wcslen":
		return result(symstream.OpWcslen, args)
	case "disableevent":
		return noResult(symstream.OpDisableEvent, args)
	case "enableevent":
		return noResult(symstream.OpEnableEvent, args)
	case "pause":
		return noResult(symstream.OpPause, args)
	case "flush":
		return noResult(symstream.OpFlush, args)
	case "event_sc":
		return noResult(symstream.OpEventSc, args)
	case "event_inject":
		return noResult(symstream.OpEventInject, args)
	case "printf":
		if len(args) == 0 {
			return symstream.Symbol{}, p.syntaxError(name, "printf requires a format string")
		}
		gets := append([]symstream.Symbol{args[0], symstream.Num(uint64(len(args) - 1))}, args[1:]...)
		p.emitOp(symstream.OpPrintf, gets, nil)
		return symstream.Num(0), nil
	default:
		return symstream.Symbol{}, newError(KindUnknownOperator, name.Position(), "unknown operator %q", name.Value())
	}
}
