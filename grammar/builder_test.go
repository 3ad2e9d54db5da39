package grammar

import (
	"testing"

	"github.com/tanagra-lang/tanagra/errs"
)

func TestBuilder_StartSymbolDefaultsToFirstProductionLHS(t *testing.T) {
	b := NewBuilder(errs.New())
	s, _ := b.AddNonTerminal("S", "")
	x, _ := b.AddTerminal("x", "")

	if _, err := b.BuildProduction(s, []RHSElement{{Symbol: x}}, nil); err != nil {
		t.Fatalf("BuildProduction: %v", err)
	}

	if b.StartSymbol() != s {
		t.Fatalf("expected S to become the start symbol by default")
	}
	start := b.StartProduction()
	if start == nil || start.Index() != 0 || start.ActionIndex() != 0 {
		t.Fatalf("expected a synthesized start production at index 0 with action_index 0, got %+v", start)
	}
	if len(start.RHS()) != 2 || start.RHS()[0].Symbol != s || start.RHS()[1].Symbol != b.Registry().EOFTerminal() {
		t.Fatalf("expected start production $START ::= S EOF, got rhs %+v", start.RHS())
	}
}

func TestBuilder_SetStartSymbolTwiceIsFatal(t *testing.T) {
	b := NewBuilder(errs.New())
	s, _ := b.AddNonTerminal("S", "")

	if err := b.SetStartSymbol(s); err != nil {
		t.Fatalf("first SetStartSymbol: %v", err)
	}
	if err := b.SetStartSymbol(s); err == nil {
		t.Fatalf("expected the second SetStartSymbol call to be a fatal error")
	}
}

func TestBuilder_ProxyProductionGetsActionIndexMinusOne(t *testing.T) {
	b := NewBuilder(errs.New())
	s, _ := b.AddNonTerminal("S", "")
	a, _ := b.AddNonTerminal("A", "")

	prod, err := b.BuildProduction(s, []RHSElement{{Symbol: a}}, nil)
	if err != nil {
		t.Fatalf("BuildProduction: %v", err)
	}
	if !prod.IsProxy() {
		t.Fatalf("a single-symbol, action-less production must be a proxy")
	}
	if prod.ActionIndex() != -1 {
		t.Fatalf("expected proxy action_index -1, got %d", prod.ActionIndex())
	}
}

func TestBuilder_DuplicateActionBodiesShareActionIndex(t *testing.T) {
	b := NewBuilder(errs.New())
	s, _ := b.AddNonTerminal("S", "")
	x, _ := b.AddTerminal("x", "")
	y, _ := b.AddTerminal("y", "")

	p1, err := b.BuildProduction(s, []RHSElement{{Symbol: x}, {Action: "same"}}, nil)
	if err != nil {
		t.Fatalf("BuildProduction 1: %v", err)
	}
	p2, err := b.BuildProduction(s, []RHSElement{{Symbol: y}, {Action: "same"}}, nil)
	if err != nil {
		t.Fatalf("BuildProduction 2: %v", err)
	}

	if p1.ActionIndex() == p2.ActionIndex() {
		t.Fatalf("productions with different RHS must not share an action_index just because the action text matches")
	}

	p3, err := b.BuildProduction(s, []RHSElement{{Symbol: x}, {Action: "same"}}, nil)
	if err != nil {
		t.Fatalf("BuildProduction 3: %v", err)
	}
	if p3.ActionIndex() != p1.ActionIndex() {
		t.Fatalf("identical RHS signature and action must reuse action_index %d, got %d", p1.ActionIndex(), p3.ActionIndex())
	}
}

func TestBuilder_MidRuleActionFactoring(t *testing.T) {
	b := NewBuilder(errs.New())
	a, _ := b.AddNonTerminal("A", "T")
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

	if prod.Action() != "act2" {
		t.Fatalf("expected the trailing action to become the production's own action, got %q", prod.Action())
	}
	if len(prod.RHS()) != 3 {
		t.Fatalf("expected rhs [B, NT$k, C], got %+v", prod.RHS())
	}
	anon, ok := prod.RHS()[1].Symbol.(*NonTerminal)
	if !ok {
		t.Fatalf("expected the middle rhs symbol to be the synthesized non-terminal")
	}
	if typeTag, hasType := anon.Type(); !hasType || typeTag != "T" {
		t.Fatalf("expected the synthesized non-terminal's type to match the LHS's, got (%q, %v)", typeTag, hasType)
	}
	if anon.UseCount() != 1 {
		t.Fatalf("expected the synthesized non-terminal to be used exactly once, got %d", anon.UseCount())
	}
	if len(anon.Productions()) != 1 {
		t.Fatalf("expected exactly one ActionProduction for the synthesized non-terminal")
	}
	actionProd := anon.Productions()[0]
	if !actionProd.IsActionProduction() || actionProd.BaseProduction() != prod {
		t.Fatalf("expected the synthesized production to be an ActionProduction based on the main production")
	}
	if actionProd.Action() != "act1" {
		t.Fatalf("expected the synthesized production's action to be act1, got %q", actionProd.Action())
	}
	if actionProd.ActionRHSPosition() != 1 {
		t.Fatalf("expected action_rhs_position 1, got %d", actionProd.ActionRHSPosition())
	}
}

func TestBuilder_AdjacentActionsMerge(t *testing.T) {
	b := NewBuilder(errs.New())
	s, _ := b.AddNonTerminal("S", "")
	x, _ := b.AddTerminal("x", "")

	prod, err := b.BuildProduction(s, []RHSElement{
		{Symbol: x},
		{Action: "part1"},
		{Action: "part2"},
	}, nil)
	if err != nil {
		t.Fatalf("BuildProduction: %v", err)
	}
	if prod.Action() != "part1part2" {
		t.Fatalf("expected adjacent actions to be concatenated, got %q", prod.Action())
	}
}

func TestBuilder_UndeclaredSymbolRejectsProduction(t *testing.T) {
	em := errs.New()
	b := NewBuilder(em)
	s, _ := b.AddNonTerminal("S", "")

	_, err := b.BuildProduction(s, []RHSElement{{Symbol: nil}}, nil)
	if err == nil {
		t.Fatalf("expected an undeclared symbol to reject the production")
	}
	if em.CountOf(errs.KindUndeclaredSymbol) != 1 {
		t.Fatalf("expected the diagnostic to be recorded, got count %d", em.CountOf(errs.KindUndeclaredSymbol))
	}
}

func TestBuilder_MultiplePrecedenceSourcesReported(t *testing.T) {
	em := errs.New()
	b := NewBuilder(em)
	s, _ := b.AddNonTerminal("S", "")
	x, _ := b.AddTerminal("x", "")
	y, _ := b.AddTerminal("y", "")
	b.SetPrecedenceGroup([]*Terminal{x}, AssocLeft)
	b.SetPrecedenceGroup([]*Terminal{y}, AssocLeft)

	if _, err := b.BuildProduction(s, []RHSElement{{Symbol: x}, {Symbol: y}}, nil); err != nil {
		t.Fatalf("BuildProduction: %v", err)
	}
	if em.CountOf(errs.KindMultiplePrecedenceSources) != 1 {
		t.Fatalf("expected exactly one multiple-precedence-sources diagnostic, got %d", em.CountOf(errs.KindMultiplePrecedenceSources))
	}
}

func TestBuilder_GetStarSymbolIsIdempotent(t *testing.T) {
	b := NewBuilder(errs.New())
	item, _ := b.AddTerminal("item", "T")

	star1, err := b.GetStarSymbol(item)
	if err != nil {
		t.Fatalf("GetStarSymbol: %v", err)
	}
	star2, err := b.GetStarSymbol(item)
	if err != nil {
		t.Fatalf("GetStarSymbol: %v", err)
	}
	if star1 != star2 {
		t.Fatalf("expected GetStarSymbol to return the same non-terminal across calls")
	}
	if typeTag, hasType := star1.Type(); !hasType || typeTag != "T[]" {
		t.Fatalf("expected star symbol type T[], got (%q, %v)", typeTag, hasType)
	}
}

func TestBuilder_ExpandWildcardRules(t *testing.T) {
	b := NewBuilder(errs.New())
	item, _ := b.AddTerminal("item", "T")
	l, _ := b.AddNonTerminal("L", "T[]")

	star, err := b.GetStarSymbol(item)
	if err != nil {
		t.Fatalf("GetStarSymbol: %v", err)
	}
	if _, err := b.BuildProduction(l, []RHSElement{{Symbol: star}}, nil); err != nil {
		t.Fatalf("BuildProduction: %v", err)
	}
	if err := b.ExpandWildcardRules(); err != nil {
		t.Fatalf("ExpandWildcardRules: %v", err)
	}

	if len(star.Productions()) != 2 {
		t.Fatalf("expected star(item) to have 2 productions (epsilon, via plus), got %d", len(star.Productions()))
	}
	var sawEmpty bool
	for _, p := range star.Productions() {
		if p.IsEmpty() {
			sawEmpty = true
			if p.Tag() != TagStarEmpty {
				t.Fatalf("expected the empty star alternative to be tagged %s, got %q", TagStarEmpty, p.Tag())
			}
		}
	}
	if !sawEmpty {
		t.Fatalf("expected one of star(item)'s productions to be the empty alternative")
	}
}
