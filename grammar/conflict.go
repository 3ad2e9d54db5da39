package grammar

import (
	"fmt"

	"github.com/tanagra-lang/tanagra/errs"
)

// shiftReduceOutcome is the result of resolving a shift/reduce collision
// in one action-table cell (spec.md §4.5 step 2).
type shiftReduceOutcome int

const (
	shiftWins shiftReduceOutcome = iota
	reduceWins
	neitherWins
)

// resolveShiftReduce implements spec.md §4.5 step 2's precedence
// resolution. reduceProd is the production already occupying the cell.
// Only the unresolved, shift-wins-by-default case is reported as a
// conflict: precedence- or associativity-driven resolutions are
// deterministic outcomes, not ambiguities.
func resolveShiftReduce(t *Terminal, reduceProd *Production, em *errs.Manager, stateIndex int) shiftReduceOutcome {
	if t.precedenceLevel > NoPrec && reduceProd.precedenceLevel > NoPrec {
		switch {
		case t.precedenceLevel > reduceProd.precedenceLevel:
			return shiftWins
		case t.precedenceLevel < reduceProd.precedenceLevel:
			return reduceWins
		default:
			switch t.assoc {
			case AssocLeft:
				return reduceWins
			case AssocRight:
				return shiftWins
			default: // AssocNonAssoc
				return neitherWins
			}
		}
	}

	em.Report(errs.KindShiftReduceConflict, fmt.Sprintf(
		"state %d: shift/reduce conflict on %s with production %d; resolved by shift",
		stateIndex, t.Name(), reduceProd.Index()))
	return shiftWins
}

// CheckTables implements spec.md §6's check_tables(): scans the final
// action table and warns for any production whose action_index never
// appears as the index of a reduce cell.
func CheckTables(g *Grammar, t *Tables, em *errs.Manager) {
	used := map[int]bool{}
	for _, row := range t.Action {
		for _, cell := range row {
			if isReduceAction(cell) {
				used[decodeReduceAction(cell)] = true
			}
		}
	}

	reported := map[int]bool{}
	for _, prod := range g.productions {
		if prod.ActionIndex() < 0 || reported[prod.ActionIndex()] {
			continue
		}
		if !used[prod.ActionIndex()] {
			reported[prod.ActionIndex()] = true
			em.Report(errs.KindUnreducedProduction, fmt.Sprintf(
				"production %d (action index %d) is never reduced", prod.Index(), prod.ActionIndex()))
		}
	}
}

// CheckConflictExpectation implements spec.md §6's final check: the
// observed conflict count must match the user's declared expectation
// (-1 disables the check). A mismatch is fatal (spec.md §7, kind 6).
func CheckConflictExpectation(em *errs.Manager, expect int) error {
	if expect == -1 {
		return nil
	}
	if got := em.ConflictCount(); got != expect {
		return em.Report(errs.KindConflictExpectationMismatch, fmt.Sprintf(
			"expected %d conflicts, got %d", expect, got))
	}
	return nil
}
