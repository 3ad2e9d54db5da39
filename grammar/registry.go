package grammar

// Registry interns every terminal and non-terminal symbol for one
// grammar, assigning the contiguous, variant-local indices spec.md §3
// requires.
type Registry struct {
	terminals    []*Terminal
	nonTerminals []*NonTerminal

	termByName    map[string]*Terminal
	nonTermByName map[string]*NonTerminal
}

func newRegistry() *Registry {
	r := &Registry{
		termByName:    map[string]*Terminal{},
		nonTermByName: map[string]*NonTerminal{},
	}

	errTerm := &Terminal{
		symbolBase:      symbolBase{name: errorTerminalName, index: errorTerminalIndex},
		precedenceLevel: NoPrec,
	}
	eofTerm := &Terminal{
		symbolBase:      symbolBase{name: eofTerminalName, index: eofTerminalIndex},
		precedenceLevel: NoPrec,
	}
	r.terminals = append(r.terminals, errTerm, eofTerm)
	r.termByName[errTerm.name] = errTerm
	r.termByName[eofTerm.name] = eofTerm

	return r
}

// ErrorTerminal returns the pre-registered error sentinel (index 0).
func (r *Registry) ErrorTerminal() *Terminal { return r.terminals[errorTerminalIndex] }

// EOFTerminal returns the pre-registered end-of-input sentinel (index 1).
func (r *Registry) EOFTerminal() *Terminal { return r.terminals[eofTerminalIndex] }

// Terminals returns every registered terminal, in index order.
func (r *Registry) Terminals() []*Terminal { return r.terminals }

// NonTerminals returns every registered non-terminal, in index order.
func (r *Registry) NonTerminals() []*NonTerminal { return r.nonTerminals }

func (r *Registry) addTerminal(name string, typeTag string, hasType bool) *Terminal {
	t := &Terminal{
		symbolBase: symbolBase{
			name:    name,
			typeTag: typeTag,
			hasType: hasType,
			index:   len(r.terminals),
		},
		precedenceLevel: NoPrec,
	}
	r.terminals = append(r.terminals, t)
	r.termByName[name] = t
	return t
}

func (r *Registry) addNonTerminal(name string, typeTag string, hasType bool) *NonTerminal {
	nt := &NonTerminal{
		symbolBase: symbolBase{
			name:    name,
			typeTag: typeTag,
			hasType: hasType,
			index:   len(r.nonTerminals),
		},
	}
	r.nonTerminals = append(r.nonTerminals, nt)
	r.nonTermByName[name] = nt
	return nt
}

// TerminalCount is the number of registered terminals, including the two
// sentinels.
func (r *Registry) TerminalCount() int { return len(r.terminals) }

// NonTerminalCount is the number of registered non-terminals.
func (r *Registry) NonTerminalCount() int { return len(r.nonTerminals) }
