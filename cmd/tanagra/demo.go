package main

import (
	"fmt"

	"github.com/tanagra-lang/tanagra/errs"
	"github.com/tanagra-lang/tanagra/grammar"
)

// demoGrammars are the fixed, hand-built grammars the build command can
// assemble by name; the scanner that would turn grammar source text into
// a Builder call sequence is out of scope for this module.
var demoGrammars = map[string]func(em *errs.Manager) (*grammar.Grammar, error){
	"expr":          buildExprDemo,
	"dangling-else": buildDanglingElseDemo,
}

// buildExprDemo assembles an expression grammar with %left PLUS below
// %left TIMES, the classic precedence-resolved shift/reduce example.
func buildExprDemo(em *errs.Manager) (*grammar.Grammar, error) {
	b := grammar.NewBuilder(em)

	e, err := b.AddNonTerminal("E", "")
	if err != nil {
		return nil, err
	}
	plus, err := b.AddTerminal("PLUS", "")
	if err != nil {
		return nil, err
	}
	times, err := b.AddTerminal("TIMES", "")
	if err != nil {
		return nil, err
	}
	id, err := b.AddTerminal("ID", "")
	if err != nil {
		return nil, err
	}

	b.SetPrecedenceGroup([]*grammar.Terminal{plus}, grammar.AssocLeft)
	b.SetPrecedenceGroup([]*grammar.Terminal{times}, grammar.AssocLeft)

	rules := [][]grammar.RHSElement{
		{{Symbol: e}, {Symbol: plus}, {Symbol: e}},
		{{Symbol: e}, {Symbol: times}, {Symbol: e}},
		{{Symbol: id}},
	}
	for _, rhs := range rules {
		if _, err := b.BuildProduction(e, rhs, nil); err != nil {
			return nil, err
		}
	}
	if err := b.ExpandWildcardRules(); err != nil {
		return nil, err
	}
	return grammar.NewGrammar(b), nil
}

// buildDanglingElseDemo assembles the classic dangling-else grammar,
// which carries exactly one shift/reduce conflict resolved by the
// shift-wins default.
func buildDanglingElseDemo(em *errs.Manager) (*grammar.Grammar, error) {
	b := grammar.NewBuilder(em)

	s, err := b.AddNonTerminal("S", "")
	if err != nil {
		return nil, err
	}
	ifTok, err := b.AddTerminal("IF", "")
	if err != nil {
		return nil, err
	}
	cond, err := b.AddTerminal("E", "")
	if err != nil {
		return nil, err
	}
	elseTok, err := b.AddTerminal("ELSE", "")
	if err != nil {
		return nil, err
	}

	rules := [][]grammar.RHSElement{
		{{Symbol: ifTok}, {Symbol: cond}, {Symbol: s}},
		{{Symbol: ifTok}, {Symbol: cond}, {Symbol: s}, {Symbol: elseTok}, {Symbol: s}},
	}
	for _, rhs := range rules {
		if _, err := b.BuildProduction(s, rhs, nil); err != nil {
			return nil, err
		}
	}
	if err := b.ExpandWildcardRules(); err != nil {
		return nil, err
	}
	return grammar.NewGrammar(b), nil
}

func availableDemoNames() []string {
	names := make([]string, 0, len(demoGrammars))
	for name := range demoGrammars {
		names = append(names, name)
	}
	return names
}

func unknownDemoError(name string) error {
	return fmt.Errorf("unknown demo grammar %q (available: %v)", name, availableDemoNames())
}
