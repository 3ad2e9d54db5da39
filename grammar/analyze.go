package grammar

// ComputeNullability runs the nullability fixpoint of spec.md §4.2: a
// production is nullable iff every RHS symbol is a nullable non-terminal,
// and a non-terminal is nullable iff any of its productions is nullable.
// Idempotent; safe to call more than once, though the pipeline calls it
// exactly once (spec.md §6 precondition).
func (g *Grammar) ComputeNullability() {
	for {
		changed := false
		for _, prod := range g.productions {
			if prod.nullableKnown && prod.nullable {
				continue
			}

			nullable := true
			for _, part := range prod.rhs {
				nt, ok := part.Symbol.(*NonTerminal)
				if !ok || !nt.nullable {
					nullable = false
					break
				}
			}

			if nullable && !prod.nullable {
				prod.nullable = true
				changed = true
			}
			prod.nullableKnown = true

			if nullable && !prod.lhs.nullable {
				prod.lhs.nullable = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// ComputeFirsts runs the FIRST-set fixpoint of spec.md §4.2. Preconditions:
// ComputeNullability has already run.
func (g *Grammar) ComputeFirsts() {
	terminalCount := g.reg.TerminalCount()
	for _, nt := range g.reg.nonTerminals {
		if nt.first == nil {
			nt.first = NewTerminalSet(terminalCount)
		}
	}

	for {
		changed := false
		for _, prod := range g.productions {
			if growFirstOfProduction(prod) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

func growFirstOfProduction(prod *Production) bool {
	acc := prod.lhs.first
	changed := false
	for _, part := range prod.rhs {
		switch s := part.Symbol.(type) {
		case *Terminal:
			return acc.Add(s) || changed
		case *NonTerminal:
			if acc.Union(s.first) {
				changed = true
			}
			if !s.nullable {
				return changed
			}
		}
	}
	return changed
}

// firstOfSuffix computes FIRST of prod.rhs[head:], the helper spec.md §4.3
// calls to seed calc_lookahead's closure companion: union at each position
// until a non-nullable symbol is hit, returning whether the whole suffix
// (including an empty one) is nullable.
func firstOfSuffix(prod *Production, head int, terminalCount int) (*TerminalSet, bool) {
	out := NewTerminalSet(terminalCount)
	for i := head; i < len(prod.rhs); i++ {
		switch s := prod.rhs[i].Symbol.(type) {
		case *Terminal:
			out.Add(s)
			return out, false
		case *NonTerminal:
			out.Union(s.first)
			if !s.nullable {
				return out, false
			}
		}
	}
	return out, true
}
