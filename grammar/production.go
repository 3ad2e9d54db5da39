package grammar

// Part pairs a RHS symbol with its optional label (spec.md §3,
// "SymbolPart").
type Part struct {
	Symbol GrammarSymbol
	Label  string
}

// Synthetic action tags attached to the productions expand_wildcard_rules
// emits, so the (out-of-scope) emitter can tell an empty-list
// initialization from a singleton or an append (spec.md §4.1, §8
// scenario 5).
const (
	TagStarEmpty  = "STAR0" // the ε alternative of star(X) or opt(X)
	TagStarSingle = "STAR1" // plus(X) ::= X
	TagStarAppend = "STAR2" // plus(X) ::= plus(X) X
)

// Production is a single grammar rule (spec.md §3). A Production whose
// rhs is empty and whose base is non-nil is what spec.md §3 calls an
// ActionProduction: the synthesized non-terminal that replaces a
// mid-rule action.
type Production struct {
	index       int // dense id in production order
	actionIndex int // -1 for proxy productions

	lhs *NonTerminal
	rhs []Part

	action string // opaque code payload; "" if the production has none
	tag    string // one of the Tag* constants, or "" if untagged

	precedenceLevel int
	assoc           Assoc

	nullableKnown bool
	nullable      bool

	// indexOfIntermediateResult is the position within rhs of the
	// previous mid-rule action, or -1. It exists only for the (out of
	// scope) emitter to recover the right stack slot.
	indexOfIntermediateResult int

	// base and actionRHSPosition are set only on ActionProductions: base
	// is the production the mid-rule action was factored out of, and
	// actionRHSPosition is where the synthesized non-terminal sits
	// within base's rhs.
	base              *Production
	actionRHSPosition int
}

// Index is this production's dense id in production order.
func (p *Production) Index() int { return p.index }

// ActionIndex is the dense id shared by productions with identical RHS
// signature and action code; -1 marks a proxy production.
func (p *Production) ActionIndex() int { return p.actionIndex }

func (p *Production) LHS() *NonTerminal { return p.lhs }

func (p *Production) RHS() []Part { return p.rhs }

func (p *Production) RHSLen() int { return len(p.rhs) }

func (p *Production) Action() string { return p.action }

func (p *Production) Tag() string { return p.tag }

func (p *Production) PrecedenceLevel() int { return p.precedenceLevel }

func (p *Production) Associativity() Assoc { return p.assoc }

// IsActionProduction reports whether p is a synthesized stand-in for a
// mid-rule action (spec.md §3, ActionProduction).
func (p *Production) IsActionProduction() bool { return p.base != nil }

func (p *Production) BaseProduction() *Production { return p.base }

func (p *Production) ActionRHSPosition() int { return p.actionRHSPosition }

// IsProxy reports whether p is a no-op reduction: a single-symbol RHS
// with no action (spec.md §3, §4.5, §9 GLOSSARY).
func (p *Production) IsProxy() bool {
	return len(p.rhs) == 1 && p.action == "" && p.tag == "" && !p.IsActionProduction()
}

// IsEmpty reports whether p has an empty RHS.
func (p *Production) IsEmpty() bool { return len(p.rhs) == 0 }

// symbolAt returns the grammar symbol at RHS position i, nil if out of
// range.
func (p *Production) symbolAt(i int) GrammarSymbol {
	if i < 0 || i >= len(p.rhs) {
		return nil
	}
	return p.rhs[i].Symbol
}
