package grammar

import (
	"fmt"

	"github.com/tanagra-lang/tanagra/errs"
)

// RHSElement is one element of the sequence BuildProduction accepts: a
// symbol with an optional label, or an embedded action payload (spec.md
// §4.1, §6).
type RHSElement struct {
	Symbol GrammarSymbol
	Label  string

	// Action is non-empty exactly when this element is an embedded
	// action rather than a grammar symbol.
	Action string
}

func (e RHSElement) isAction() bool { return e.Symbol == nil && e.Action != "" }

// Builder implements the Builder API of spec.md §6, the external
// contract consumed by the (out-of-scope) grammar-spec parser.
type Builder struct {
	em  *errs.Manager
	reg *Registry

	productions     []*Production
	nextProdIndex   int
	nextActionIndex int

	nextPrecedenceLevel int

	start    *NonTerminal
	startSet bool

	anonCounter int

	// wildcards records every base symbol that get_star/plus/opt_symbol
	// synthesized a helper for, in first-call order, so
	// expand_wildcard_rules can emit their backing productions exactly
	// once each.
	wildcards []GrammarSymbol
}

// NewBuilder returns a Builder backed by the given diagnostic sink.
func NewBuilder(em *errs.Manager) *Builder {
	return &Builder{
		em:                  em,
		reg:                 newRegistry(),
		nextProdIndex:       1, // index 0 is reserved for the start production
		nextActionIndex:     1, // action index 0 is reserved for the start production
		nextPrecedenceLevel: NoPrec + 1,
	}
}

// Registry exposes the interned symbols for read access by later
// pipeline stages.
func (b *Builder) Registry() *Registry { return b.reg }

// AddTerminal appends a new terminal and assigns it the next index.
// Duplicate names are not detected here (spec.md §4.1: "the spec parser
// must" detect that).
func (b *Builder) AddTerminal(name string, typeTag string) (*Terminal, error) {
	return b.reg.addTerminal(name, typeTag, typeTag != ""), nil
}

// AddNonTerminal appends a new non-terminal and assigns it the next
// index.
func (b *Builder) AddNonTerminal(name string, typeTag string) (*NonTerminal, error) {
	return b.reg.addNonTerminal(name, typeTag, typeTag != ""), nil
}

// SetPrecedenceGroup assigns the next precedence level to every terminal
// in the group, with the given associativity. Levels increase
// monotonically across calls: the left-most declaration is the lowest
// binding (spec.md §4.1, §9).
func (b *Builder) SetPrecedenceGroup(terminals []*Terminal, assoc Assoc) {
	level := b.nextPrecedenceLevel
	b.nextPrecedenceLevel++
	for _, t := range terminals {
		t.precedenceLevel = level
		t.assoc = assoc
	}
}

// SetStartSymbol creates the synthesized start non-terminal $START with a
// single production $START ::= nt EOF. It may be called at most once.
func (b *Builder) SetStartSymbol(nt *NonTerminal) error {
	if b.startSet {
		return b.fatal(errs.KindInternalInvariant, "set_start_symbol called more than once")
	}
	b.start = nt
	b.startSet = true
	return b.buildStartProduction()
}

// ensureStart implements "if omitted, the first user production's LHS
// becomes the start on first build_production" (spec.md §4.1).
func (b *Builder) ensureStart(firstLHS *NonTerminal) error {
	if b.startSet {
		return nil
	}
	b.start = firstLHS
	b.startSet = true
	return b.buildStartProduction()
}

func (b *Builder) buildStartProduction() error {
	startNT := b.reg.addNonTerminal(startSymbolName, "", false)

	prod := &Production{
		index:             0,
		actionIndex:       0,
		lhs:               startNT,
		rhs:               []Part{{Symbol: b.start}, {Symbol: b.reg.EOFTerminal()}},
		indexOfIntermediateResult: -1,
	}
	b.start.markUsed()
	b.reg.EOFTerminal().markUsed()
	startNT.productions = append(startNT.productions, prod)
	b.productions = append(b.productions, prod)
	return nil
}

// StartSymbol returns the user-declared start non-terminal (not the
// synthesized $START wrapper), or nil if none has been set yet.
func (b *Builder) StartSymbol() *NonTerminal { return b.start }

// StartProduction returns the synthesized $START ::= start EOF
// production, or nil before SetStartSymbol/BuildProduction has run.
func (b *Builder) StartProduction() *Production {
	if len(b.productions) == 0 {
		return nil
	}
	return b.productions[0]
}

func (b *Builder) fatal(kind errs.Kind, detail string) error {
	return b.em.Report(kind, detail)
}

// GetStarSymbol returns (creating on first call) the non-terminal
// implementing sym* (spec.md §4.1).
func (b *Builder) GetStarSymbol(sym GrammarSymbol) (*NonTerminal, error) {
	base := b.symbolBaseOf(sym)
	if base.starSymbol != nil {
		return base.starSymbol, nil
	}

	typeTag, hasType := sym.Type()
	nt := b.reg.addNonTerminal(sym.Name()+"*", typeTag+"[]", hasType)
	base.starSymbol = nt
	if base.plusSymbol == nil && base.optSymbol == nil {
		b.wildcards = append(b.wildcards, sym)
	}
	return nt, nil
}

// GetPlusSymbol returns (creating on first call) the non-terminal
// implementing sym+ (spec.md §4.1).
func (b *Builder) GetPlusSymbol(sym GrammarSymbol) (*NonTerminal, error) {
	base := b.symbolBaseOf(sym)
	if base.plusSymbol != nil {
		return base.plusSymbol, nil
	}

	typeTag, hasType := sym.Type()
	nt := b.reg.addNonTerminal(sym.Name()+"+", typeTag+"[]", hasType)
	base.plusSymbol = nt
	if base.starSymbol == nil && base.optSymbol == nil {
		b.wildcards = append(b.wildcards, sym)
	}
	return nt, nil
}

// GetOptSymbol returns (creating on first call) the non-terminal
// implementing sym? (spec.md §4.1).
func (b *Builder) GetOptSymbol(sym GrammarSymbol) (*NonTerminal, error) {
	base := b.symbolBaseOf(sym)
	if base.optSymbol != nil {
		return base.optSymbol, nil
	}

	typeTag, hasType := sym.Type()
	nt := b.reg.addNonTerminal(sym.Name()+"?", typeTag, hasType)
	base.optSymbol = nt
	if base.starSymbol == nil && base.plusSymbol == nil {
		b.wildcards = append(b.wildcards, sym)
	}
	return nt, nil
}

func (b *Builder) symbolBaseOf(sym GrammarSymbol) *symbolBase {
	switch s := sym.(type) {
	case *Terminal:
		return &s.symbolBase
	case *NonTerminal:
		return &s.symbolBase
	default:
		panic(fmt.Sprintf("unknown GrammarSymbol implementation: %T", sym))
	}
}

// ExpandWildcardRules emits the backing productions for every star/plus/opt
// helper synthesized so far (spec.md §4.1):
//
//	opt(X)  ::= ε | X
//	plus(X) ::= X | plus(X) X
//	star(X) ::= ε | plus(X)
//
// It must be called once, after every user production has been
// registered, since get_star/plus/opt_symbol may still be called while
// productions are being built.
func (b *Builder) ExpandWildcardRules() error {
	for _, base := range b.wildcards {
		sb := b.symbolBaseOf(base)
		_, hasType := base.Type()

		if sb.plusSymbol != nil {
			if err := b.buildPlusProductions(base, sb.plusSymbol, hasType); err != nil {
				return err
			}
		}
		if sb.starSymbol != nil {
			if sb.plusSymbol == nil {
				plus, err := b.GetPlusSymbol(base)
				if err != nil {
					return err
				}
				if err := b.buildPlusProductions(base, plus, hasType); err != nil {
					return err
				}
			}
			if err := b.buildStarProductions(sb.starSymbol, sb.plusSymbol, hasType); err != nil {
				return err
			}
		}
		if sb.optSymbol != nil {
			if err := b.buildOptProductions(base, sb.optSymbol, hasType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) buildPlusProductions(base GrammarSymbol, plus *NonTerminal, tagged bool) error {
	single := &Production{lhs: plus, rhs: []Part{{Symbol: base}}, indexOfIntermediateResult: -1}
	if tagged {
		single.tag = TagStarSingle
	}
	base.markUsed()
	b.assignActionIndex(single)
	if err := b.appendProduction(single); err != nil {
		return err
	}

	appendProd := &Production{lhs: plus, rhs: []Part{{Symbol: plus}, {Symbol: base}}, indexOfIntermediateResult: -1}
	if tagged {
		appendProd.tag = TagStarAppend
	}
	plus.markUsed()
	base.markUsed()
	b.assignActionIndex(appendProd)
	return b.appendProduction(appendProd)
}

func (b *Builder) buildStarProductions(star, plus *NonTerminal, tagged bool) error {
	empty := &Production{lhs: star, rhs: nil, indexOfIntermediateResult: -1}
	if tagged {
		empty.tag = TagStarEmpty
	}
	b.assignActionIndex(empty)
	if err := b.appendProduction(empty); err != nil {
		return err
	}

	viaPlus := &Production{lhs: star, rhs: []Part{{Symbol: plus}}, indexOfIntermediateResult: -1}
	plus.markUsed()
	b.assignActionIndex(viaPlus)
	return b.appendProduction(viaPlus)
}

func (b *Builder) buildOptProductions(base GrammarSymbol, opt *NonTerminal, tagged bool) error {
	empty := &Production{lhs: opt, rhs: nil, indexOfIntermediateResult: -1}
	if tagged {
		empty.tag = TagStarEmpty
	}
	b.assignActionIndex(empty)
	if err := b.appendProduction(empty); err != nil {
		return err
	}

	viaBase := &Production{lhs: opt, rhs: []Part{{Symbol: base}}, indexOfIntermediateResult: -1}
	base.markUsed()
	b.assignActionIndex(viaBase)
	return b.appendProduction(viaBase)
}

// BuildProduction implements spec.md §4.1's seven-step recipe.
func (b *Builder) BuildProduction(lhs *NonTerminal, parts []RHSElement, prec *Terminal) (*Production, error) {
	if err := b.ensureStart(lhs); err != nil {
		return nil, err
	}

	// Step 1: merge adjacent action parts.
	merged := mergeAdjacentActions(parts)

	// Step 2: strip a trailing action as the production's own action.
	ownAction := ""
	if n := len(merged); n > 0 && merged[n-1].isAction() {
		ownAction = merged[n-1].Action
		merged = merged[:n-1]
	}

	// Step 3: substitute remaining mid-rule actions with fresh anonymous
	// non-terminals, recording the position of the most recent one.
	rhs := make([]Part, 0, len(merged))
	lastActionPos := -1
	var actionProds []*Production
	for _, el := range merged {
		if el.isAction() {
			anon := b.newAnonNonTerminal(lhs)
			actionProd := &Production{
				lhs:                       anon,
				rhs:                       nil,
				action:                    el.Action,
				indexOfIntermediateResult: -1,
				base:                      nil, // filled in once the base production exists
				actionRHSPosition:         len(rhs),
			}
			actionProds = append(actionProds, actionProd)
			anon.markUsed()
			rhs = append(rhs, Part{Symbol: anon})
			lastActionPos = len(rhs) - 1
			continue
		}

		if el.Symbol == nil {
			// An undeclared RHS symbol rejects the whole production
			// rather than silently dropping the element: threading a nil
			// placeholder through the LALR machine would surface as a
			// confusing downstream panic instead of a clear diagnostic.
			detail := fmt.Sprintf("production for %s references an undeclared symbol", lhs.Name())
			b.em.Report(errs.KindUndeclaredSymbol, detail)
			return nil, &errs.Diagnostic{Kind: errs.KindUndeclaredSymbol, Detail: detail}
		}

		el.Symbol.markUsed()
		rhs = append(rhs, Part{Symbol: el.Symbol, Label: el.Label})
	}

	// Step 4: determine precedence.
	precLevel, assoc, err := b.resolvePrecedence(rhs, prec)
	if err != nil {
		return nil, err
	}

	prod := &Production{
		lhs:                       lhs,
		rhs:                       rhs,
		action:                    ownAction,
		precedenceLevel:           precLevel,
		assoc:                     assoc,
		indexOfIntermediateResult: lastActionPos,
	}

	// Step 5: deduplicate action bodies against LHS's existing productions.
	if existing := b.findDuplicateActionIndex(lhs, prod); existing != -1 {
		prod.actionIndex = existing
	} else if prod.IsProxy() {
		// Step 6: proxies get action_index -1.
		prod.actionIndex = -1
	} else {
		prod.actionIndex = b.nextActionIndex
		b.nextActionIndex++
	}

	// Step 7: append the main production and every synthesized action
	// production.
	if err := b.appendProduction(prod); err != nil {
		return nil, err
	}

	for _, ap := range actionProds {
		ap.base = prod
		ap.actionIndex = b.nextActionIndex
		b.nextActionIndex++
		if err := b.appendProduction(ap); err != nil {
			return nil, err
		}
	}

	return prod, nil
}

// assignActionIndex gives p a fresh dense action index unless it is a
// proxy production, in which case it gets -1 (spec.md §4.1 steps 5-6).
func (b *Builder) assignActionIndex(p *Production) {
	if p.IsProxy() {
		p.actionIndex = -1
		return
	}
	p.actionIndex = b.nextActionIndex
	b.nextActionIndex++
}

func (b *Builder) appendProduction(p *Production) error {
	p.index = b.nextProdIndex
	b.nextProdIndex++
	b.productions = append(b.productions, p)
	p.lhs.productions = append(p.lhs.productions, p)
	return nil
}

func (b *Builder) newAnonNonTerminal(lhs *NonTerminal) *NonTerminal {
	name := fmt.Sprintf("$NT%d", b.anonCounter)
	b.anonCounter++
	typeTag, hasType := lhs.Type()
	return b.reg.addNonTerminal(name, typeTag, hasType)
}

func mergeAdjacentActions(parts []RHSElement) []RHSElement {
	var out []RHSElement
	for _, el := range parts {
		if el.isAction() && len(out) > 0 && out[len(out)-1].isAction() {
			out[len(out)-1].Action += el.Action
			continue
		}
		out = append(out, el)
	}
	return out
}

// resolvePrecedence implements step 4: prec wins when given; otherwise
// the rightmost RHS terminal carrying explicit precedence. More than one
// RHS terminal carrying precedence (with no explicit prec) is reported
// but does not abort — the rightmost one is still used, so the pipeline
// can continue (spec.md §7, error kind 2).
func (b *Builder) resolvePrecedence(rhs []Part, prec *Terminal) (int, Assoc, error) {
	if prec != nil {
		return prec.precedenceLevel, prec.assoc, nil
	}

	var rightmost *Terminal
	count := 0
	for _, part := range rhs {
		t, ok := part.Symbol.(*Terminal)
		if !ok || t.precedenceLevel == NoPrec {
			continue
		}
		count++
		rightmost = t
	}

	if count > 1 {
		if err := b.fatal(errs.KindMultiplePrecedenceSources, fmt.Sprintf("production has %d RHS terminals with explicit precedence", count)); err != nil {
			return NoPrec, AssocNoPrec, err
		}
	}

	if rightmost == nil {
		return NoPrec, AssocNoPrec, nil
	}
	return rightmost.precedenceLevel, rightmost.assoc, nil
}

// findDuplicateActionIndex implements step 5's per-non-terminal linear
// scan (spec.md §9: "acceptable" for the small production counts per
// LHS).
func (b *Builder) findDuplicateActionIndex(lhs *NonTerminal, prod *Production) int {
	for _, existing := range lhs.productions {
		if existing.action != prod.action {
			continue
		}
		if len(existing.rhs) != len(prod.rhs) {
			continue
		}
		match := true
		for i := range existing.rhs {
			existingPart, newPart := existing.rhs[i], prod.rhs[i]
			existingType, existingHasType := existingPart.Symbol.Type()
			newType, newHasType := newPart.Symbol.Type()
			if existingPart.Symbol != newPart.Symbol || existingPart.Label != newPart.Label || existingHasType != newHasType || existingType != newType {
				match = false
				break
			}
		}
		if match {
			return existing.actionIndex
		}
	}
	return -1
}

// AllProductions returns every production built so far, in dense index
// order (index 0 is the synthesized start production).
func (b *Builder) AllProductions() []*Production { return b.productions }
