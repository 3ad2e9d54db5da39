package grammar

import (
	"fmt"
	"sort"

	"github.com/tanagra-lang/tanagra/errs"
)

// Action-cell encoding (spec.md §4.5): a single integer per cell.
const (
	actionError = 0
)

func encodeShift(state int) int  { return 2*state + 1 }
func encodeReduce(action int) int { return 2*action + 2 }

func isShiftAction(v int) bool { return v != actionError && v%2 == 1 }
func isReduceAction(v int) bool { return v != actionError && v%2 == 0 }

func decodeShiftState(v int) int  { return (v - 1) / 2 }
func decodeReduceAction(v int) int { return (v - 2) / 2 }

// gotoNone marks an absent reduce-goto cell; state index 0 is a valid
// destination, so 0 cannot serve as the sentinel.
const gotoNone = -1

// Tables is the pair of per-state action/goto tables of spec.md §3.
type Tables struct {
	NumStates       int
	NumTerminals    int
	NumNonTerminals int

	// Action is indexed [state][terminal.Index()].
	Action [][]int
	// Goto is indexed [state][nonTerminal.Index()]; gotoNone when absent.
	Goto [][]int

	// Default holds, per state, the chosen default reduce action when
	// compact_reduces is enabled; actionError otherwise.
	Default []int

	// emptyActionIndices marks action indices belonging to an empty-RHS
	// production, consulted by applyDefaultActions's loop-avoidance rule.
	emptyActionIndices map[int]bool
}

// BuildTables implements spec.md §4.5: per-state reduce population,
// shift population with precedence-based conflict resolution, goto
// population, and (when compactReduces) default-action row compaction.
func BuildTables(g *Grammar, m *LalrMachine, em *errs.Manager, compactReduces bool) *Tables {
	reg := g.reg
	numStates := len(m.States())
	numTerms := reg.TerminalCount()
	numNonTerms := reg.NonTerminalCount()

	t := &Tables{
		NumStates:          numStates,
		NumTerminals:       numTerms,
		NumNonTerminals:    numNonTerms,
		Action:             make([][]int, numStates),
		Goto:               make([][]int, numStates),
		Default:            make([]int, numStates),
		emptyActionIndices: map[int]bool{},
	}
	for _, prod := range g.productions {
		if prod.IsEmpty() && prod.ActionIndex() >= 0 {
			t.emptyActionIndices[prod.ActionIndex()] = true
		}
	}

	for _, state := range m.States() {
		row := make([]int, numTerms)
		reduceProd := make([]*Production, numTerms)

		for _, item := range state.SortedItems() {
			if !item.Reducible() {
				continue
			}
			prod := item.Production()
			la := m.Lookaheads(state, item)
			for _, term := range la.Members(reg) {
				idx := term.Index()
				if row[idx] == actionError {
					row[idx] = encodeReduce(prod.ActionIndex())
					reduceProd[idx] = prod
					continue
				}
				if isReduceAction(row[idx]) {
					em.Report(errs.KindReduceReduceConflict, fmt.Sprintf(
						"state %d: reduce/reduce conflict on %s between productions %d and %d; kept %d",
						state.Index(), term.Name(), reduceProd[idx].Index(), prod.Index(), reduceProd[idx].Index()))
				}
			}
		}

		gotoRow := make([]int, numNonTerms)
		for i := range gotoRow {
			gotoRow[i] = gotoNone
		}

		for _, sym := range sortedTransitionSymbols(state) {
			target := state.transitions[sym]
			switch s := sym.(type) {
			case *Terminal:
				idx := s.Index()
				if row[idx] == actionError {
					row[idx] = encodeShift(target.Index())
					continue
				}

				outcome := resolveShiftReduce(s, reduceProd[idx], em, state.Index())
				switch outcome {
				case shiftWins:
					row[idx] = encodeShift(target.Index())
					reduceProd[idx] = nil
				case reduceWins:
					// row already holds the reduce; nothing to change.
				case neitherWins:
					row[idx] = actionError
					reduceProd[idx] = nil
				}
			case *NonTerminal:
				gotoRow[s.Index()] = target.Index()
			}
		}

		t.Action[state.Index()] = row
		t.Goto[state.Index()] = gotoRow
		t.Default[state.Index()] = actionError
	}

	if compactReduces {
		t.applyDefaultActions(reg)
	}

	return t
}

// sortedTransitionSymbols returns state's outgoing symbols in the total
// order of spec.md §5 ("Transition-building iterates symbols in symbol
// total order").
func sortedTransitionSymbols(state *LalrState) []GrammarSymbol {
	syms := make([]GrammarSymbol, 0, len(state.transitions))
	for sym := range state.transitions {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return symbolLess(syms[i], syms[j]) })
	return syms
}

// applyDefaultActions implements spec.md §4.5 step 4: pick the
// most-covered reduce action per row as its default (never an empty-RHS
// reduction unless its coverage is ≥ 2; an error-terminal reduce is always
// forced as the default), then rewrite ERROR cells to the default, except
// the error column when the default reduces an empty production.
func (t *Tables) applyDefaultActions(reg *Registry) {
	errIdx := reg.ErrorTerminal().Index()

	for state := 0; state < t.NumStates; state++ {
		row := t.Action[state]

		coverage := map[int]int{} // action index -> covering column count
		for _, cell := range row {
			if !isReduceAction(cell) {
				continue
			}
			coverage[decodeReduceAction(cell)]++
		}

		forced := -1
		if isReduceAction(row[errIdx]) {
			forced = decodeReduceAction(row[errIdx])
		}

		best := -1
		bestCount := 0
		for a, count := range coverage {
			if a == forced {
				continue
			}
			if t.emptyActionIndices[a] && count < 2 {
				continue
			}
			if count > bestCount {
				best = a
				bestCount = count
			}
		}

		chosen := forced
		if chosen == -1 {
			chosen = best
		}
		if chosen == -1 {
			continue
		}

		t.Default[state] = encodeReduce(chosen)

		for idx := range row {
			if row[idx] != actionError {
				continue
			}
			if idx == errIdx && t.emptyActionIndices[chosen] {
				continue
			}
			row[idx] = t.Default[state]
		}
	}
}
