package grammar

import "github.com/tanagra-lang/tanagra/config"

// Compile runs the full analyzer/table-builder pipeline of spec.md §6 in
// its required order: nullability, FIRST sets, the LALR(1) machine, the
// action/goto tables, the unreduced-production check, and finally the
// conflict-expectation check. A non-nil error means a fatal diagnostic was
// raised (spec.md §7, kinds 6 and 7); non-fatal diagnostics accumulate in
// the Manager the Grammar was built with and are available via its
// Diagnostics/ConflictCount methods regardless of the return value.
func (g *Grammar) Compile(opts config.Options) (*Tables, error) {
	g.ComputeNullability()
	g.ComputeFirsts()

	machine, err := BuildLALRMachine(g)
	if err != nil {
		return nil, err
	}
	g.machine = machine

	tables := BuildTables(g, machine, g.em, opts.CompactReduces)
	g.tables = tables

	CheckTables(g, tables, g.em)

	if err := CheckConflictExpectation(g.em, opts.Expect); err != nil {
		return tables, err
	}

	return tables, nil
}
