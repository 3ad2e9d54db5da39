package grammar

import "fmt"

// Assoc is a terminal's declared associativity. AssocNoPrec is the
// sentinel for "no associativity declared," distinct from any real
// associativity so it is never conflated with a declared one (spec.md §9
// "Design Notes": "Encode NO_PREC as a distinct sentinel").
type Assoc int

const (
	AssocNoPrec Assoc = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNonAssoc:
		return "nonassoc"
	default:
		return "noprec"
	}
}

// NoPrec is the precedence-level sentinel meaning "no precedence
// declared" (spec.md §3).
const NoPrec = -1

// GrammarSymbol is the tagged-variant symbol of spec.md §3, implemented
// by *Terminal and *NonTerminal.
type GrammarSymbol interface {
	Name() string
	// Type returns the symbol's stack-slot type tag, if any.
	Type() (string, bool)
	// Index is unique within the symbol's own variant (terminal or
	// non-terminal), contiguous, and matches its position in the
	// registry's vector for that variant.
	Index() int
	UseCount() int
	IsTerminal() bool

	markUsed()
}

// symbolBase is embedded by Terminal and NonTerminal; it carries every
// field common to both variants of GrammarSymbol.
type symbolBase struct {
	name     string
	typeTag  string
	hasType  bool
	index    int
	useCount int

	starSymbol *NonTerminal
	plusSymbol *NonTerminal
	optSymbol  *NonTerminal
}

func (s *symbolBase) Name() string { return s.name }

func (s *symbolBase) Type() (string, bool) { return s.typeTag, s.hasType }

func (s *symbolBase) Index() int { return s.index }

func (s *symbolBase) UseCount() int { return s.useCount }

func (s *symbolBase) markUsed() { s.useCount++ }

// Terminal is a terminal symbol, with the precedence and associativity
// spec.md §3 adds beyond the base GrammarSymbol fields.
type Terminal struct {
	symbolBase

	precedenceLevel int
	assoc           Assoc
}

var _ GrammarSymbol = (*Terminal)(nil)

func (t *Terminal) IsTerminal() bool { return true }

// PrecedenceLevel returns NoPrec when the terminal carries no declared
// precedence.
func (t *Terminal) PrecedenceLevel() int { return t.precedenceLevel }

func (t *Terminal) Associativity() Assoc { return t.assoc }

func (t *Terminal) String() string {
	return fmt.Sprintf("terminal(%s)", t.name)
}

// errorTerminalName and eofTerminalName name the two pre-registered
// sentinel terminals (spec.md §3: "error at terminal-index 0, EOF at
// terminal-index 1").
const (
	errorTerminalName = "error"
	eofTerminalName   = "$EOF"

	errorTerminalIndex = 0
	eofTerminalIndex   = 1
)

// NonTerminal is a non-terminal symbol: its productions, nullability,
// and FIRST set (spec.md §3).
type NonTerminal struct {
	symbolBase

	productions []*Production

	nullableKnown bool
	nullable      bool

	first *TerminalSet
}

var _ GrammarSymbol = (*NonTerminal)(nil)

func (n *NonTerminal) IsTerminal() bool { return false }

func (n *NonTerminal) Productions() []*Production { return n.productions }

func (n *NonTerminal) Nullable() bool { return n.nullable }

// First returns the non-terminal's FIRST set. It is nil until
// compute_firsts() has run.
func (n *NonTerminal) First() *TerminalSet { return n.first }

func (n *NonTerminal) String() string {
	return fmt.Sprintf("non-terminal(%s)", n.name)
}

func (n *NonTerminal) isStart() bool {
	return n.name == startSymbolName
}

const startSymbolName = "$START"

// symbolLess implements the symbol total order of spec.md §3 and §5:
// terminals precede non-terminals; within a variant, by index.
func symbolLess(a, b GrammarSymbol) bool {
	if a.IsTerminal() != b.IsTerminal() {
		return a.IsTerminal()
	}
	return a.Index() < b.Index()
}
