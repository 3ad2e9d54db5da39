package grammar

import "github.com/tanagra-lang/tanagra/errs"

// Grammar is the aggregate root of spec.md §3: the interned symbols, the
// production list (with EBNF and embedded-action rewrites already
// applied), and — once the analysis pipeline has run — the LALR machine
// and its compiled tables.
type Grammar struct {
	reg         *Registry
	productions []*Production
	startProd   *Production

	em *errs.Manager

	machine *LalrMachine
	tables  *Tables
}

// NewGrammar finalizes a Builder's output into a Grammar. The builder must
// already have had ExpandWildcardRules called on it.
func NewGrammar(b *Builder) *Grammar {
	return &Grammar{
		reg:         b.Registry(),
		productions: b.AllProductions(),
		startProd:   b.StartProduction(),
		em:          b.em,
	}
}

// Registry returns the interned terminal/non-terminal symbols.
func (g *Grammar) Registry() *Registry { return g.reg }

// Productions returns every production, in dense index order.
func (g *Grammar) Productions() []*Production { return g.productions }

// StartProduction returns the synthesized $START ::= start EOF production.
func (g *Grammar) StartProduction() *Production { return g.startProd }

// Machine returns the built LALR automaton, nil before Compile has run.
func (g *Grammar) Machine() *LalrMachine { return g.machine }

// Tables returns the compiled action/goto tables, nil before BuildTables
// has run through Compile.
func (g *Grammar) Tables() *Tables { return g.tables }

// ConflictCount is the total number of reported reduce/reduce and
// unresolved shift/reduce conflicts (spec.md §4.5).
func (g *Grammar) ConflictCount() int { return g.em.ConflictCount() }

// Diagnostics returns every non-fatal diagnostic reported while building
// or compiling g.
func (g *Grammar) Diagnostics() []*errs.Diagnostic { return g.em.Diagnostics() }
