package grammar

import "github.com/tanagra-lang/tanagra/compressor"

// CompressedTables is the emitter-facing export of spec.md §6: the
// compressed action and reduce-goto tables, plus per-production records.
type CompressedTables struct {
	Action *compressor.CombTable
	Goto   *compressor.CombTable

	// DefaultAction holds, per state, the row's chosen default action
	// (spec.md §4.5 step 4; actionError when compact_reduces was off).
	DefaultAction []int

	// Productions is keyed by production index: (lhs_index, rhs_length,
	// action_index).
	Productions []ProductionRecord
}

// ProductionRecord is the per-production export spec.md §6 lists.
type ProductionRecord struct {
	LHSIndex    int
	RHSLength   int
	ActionIndex int
}

// Compress packs t into the flat short[] comb encoding of spec.md §4.6.
func Compress(g *Grammar, t *Tables) *CompressedTables {
	actionRows := make([]compressor.SparseRow, 0, t.NumStates)
	for state := 0; state < t.NumStates; state++ {
		row := t.Action[state]
		def := t.Default[state]

		var cols, vals []int
		for col, cell := range row {
			if cell == def {
				continue
			}
			cols = append(cols, col)
			vals = append(vals, cell)
		}
		actionRows = append(actionRows, compressor.SparseRow{Row: state, Cols: cols, Vals: vals})
	}

	gotoRows := make([]compressor.SparseRow, 0, t.NumStates)
	for state := 0; state < t.NumStates; state++ {
		row := t.Goto[state]

		var cols, vals []int
		for col, cell := range row {
			if cell == gotoNone {
				continue
			}
			cols = append(cols, col)
			vals = append(vals, cell)
		}
		gotoRows = append(gotoRows, compressor.SparseRow{Row: state, Cols: cols, Vals: vals})
	}

	records := make([]ProductionRecord, len(g.productions))
	for i, prod := range g.productions {
		records[i] = ProductionRecord{
			LHSIndex:    prod.lhs.Index(),
			RHSLength:   len(prod.rhs),
			ActionIndex: prod.ActionIndex(),
		}
	}

	return &CompressedTables{
		Action:        compressor.CompressSparseRows(actionRows, t.NumStates, 2),
		Goto:          compressor.CompressSparseRows(gotoRows, t.NumStates, 1),
		DefaultAction: append([]int{}, t.Default...),
		Productions:   records,
	}
}
