package grammar

import (
	"crypto/sha256"
	"sort"
)

// kernelID identifies a LalrState by the set of LrItems in its kernel only
// (lookaheads excluded), per spec.md §3's invariant "Two LALR states share
// a kernel ⇔ they are the same state object."
type kernelID [32]byte

func computeKernelID(sortedKernel []*LrItem) kernelID {
	h := sha256.New()
	for _, it := range sortedKernel {
		h.Write(it.id[:])
	}
	var out kernelID
	copy(out[:], h.Sum(nil))
	return out
}

// LalrState is one state of the LALR(1) viable-prefix automaton (spec.md
// §3).
type LalrState struct {
	index int

	// items holds the full closure in the order items were discovered:
	// the kernel first, then items added by closure. Table construction
	// re-sorts by LrItem total order where spec.md §5 requires it.
	items []*LrItem
	la    map[itemID]lookaheadRef

	transitions map[GrammarSymbol]*LalrState
}

// Index is this state's dense id, assigned in discovery order.
func (s *LalrState) Index() int { return s.index }

// Items returns every item in the state's closure.
func (s *LalrState) Items() []*LrItem { return s.items }

// Transitions returns the state's outgoing transitions, keyed by the
// symbol shifted or goto'd on.
func (s *LalrState) Transitions() map[GrammarSymbol]*LalrState { return s.transitions }

// SortedItems returns the state's items in LrItem total order (spec.md §5:
// "Item iteration within a state follows LrItem total order").
func (s *LalrState) SortedItems() []*LrItem {
	out := append([]*LrItem{}, s.items...)
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// LalrMachine is the built automaton: every state, the kernel-hash index,
// and the arena owning every state's Lookaheads (spec.md §4.4, Design
// Notes §9).
type LalrMachine struct {
	states   []*LalrState
	byKernel map[kernelID]*LalrState
	start    *LalrState
	arena    *lookaheadArena

	terminalCount int
}

// States returns every state, in discovery order (state.index matches its
// position here).
func (m *LalrMachine) States() []*LalrState { return m.states }

// Start is the initial state, seeded with [$START ::= · start EOF, {EOF}].
func (m *LalrMachine) Start() *LalrState { return m.start }

// Lookaheads returns the current Lookaheads set of item in state. Valid
// only after BuildLALRMachine has returned, once propagation has settled.
func (m *LalrMachine) Lookaheads(state *LalrState, item *LrItem) *TerminalSet {
	ref, ok := state.la[item.id]
	if !ok {
		return NewTerminalSet(m.terminalCount)
	}
	return m.arena.set(ref)
}

// BuildLALRMachine implements spec.md §4.4's driver: seed the initial
// state from the start production, then iterate an index over the state
// vector (which grows during iteration), running closure and successor
// computation on each state in turn.
func BuildLALRMachine(g *Grammar) (*LalrMachine, error) {
	terminalCount := g.reg.TerminalCount()
	m := &LalrMachine{
		byKernel:      map[kernelID]*LalrState{},
		arena:         newLookaheadArena(terminalCount),
		terminalCount: terminalCount,
	}

	startProd := g.productions[0]
	initialItem, err := newLRItem(startProd, 0)
	if err != nil {
		return nil, err
	}

	eofSeed := NewTerminalSet(terminalCount)
	eofSeed.Add(g.reg.EOFTerminal())

	m.start = m.getOrCreateState([]*LrItem{initialItem}, map[itemID]*TerminalSet{initialItem.id: eofSeed})

	for i := 0; i < len(m.states); i++ {
		state := m.states[i]
		m.closure(state)
		if err := m.computeSuccessors(state); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// getOrCreateState implements spec.md §4.4's get_or_create_state: kernel is
// keyed purely by the set of LrItems (lookaheads excluded). A matching
// kernel merges newLA into the existing state's Lookaheads, which is what
// drives propagation (§4.4.3); otherwise a fresh state is allocated and
// enqueued (appending to m.states is the enqueue, since the driver loop
// iterates the slice by growing index).
func (m *LalrMachine) getOrCreateState(kernelItems []*LrItem, newLA map[itemID]*TerminalSet) *LalrState {
	sort.Slice(kernelItems, func(i, j int) bool { return kernelItems[i].less(kernelItems[j]) })

	deduped := kernelItems[:0:0]
	seen := map[itemID]bool{}
	for _, it := range kernelItems {
		if seen[it.id] {
			continue
		}
		seen[it.id] = true
		deduped = append(deduped, it)
	}
	kernelItems = deduped

	id := computeKernelID(kernelItems)
	if existing, ok := m.byKernel[id]; ok {
		for itemID, set := range newLA {
			if ref, ok := existing.la[itemID]; ok {
				m.arena.unionInto(ref, set)
			}
		}
		return existing
	}

	st := &LalrState{
		index:       len(m.states),
		la:          map[itemID]lookaheadRef{},
		transitions: map[GrammarSymbol]*LalrState{},
	}
	st.items = append(st.items, kernelItems...)
	for _, it := range kernelItems {
		ref := m.arena.new()
		st.la[it.id] = ref
		if set, ok := newLA[it.id]; ok {
			m.arena.unionInto(ref, set)
		}
	}

	m.byKernel[id] = st
	m.states = append(m.states, st)
	return st
}

// closure implements spec.md §4.4.1: a worklist of items, expanding every
// non-terminal dotted symbol into its productions' initial items, unioning
// in the computed lookahead and registering a propagation listener when
// the trailing sequence after the dotted symbol is nullable.
func (m *LalrMachine) closure(state *LalrState) {
	worklist := append([]*LrItem{}, state.items...)

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		nt, ok := item.DottedSymbol().(*NonTerminal)
		if !ok {
			continue
		}

		newLA := calcLookahead(item, m.terminalCount)
		nullableTail := item.isNullableTail()
		srcRef := state.la[item.id]

		for _, prod := range nt.productions {
			newItem, err := newLRItem(prod, 0)
			if err != nil {
				continue
			}

			ref, exists := state.la[newItem.id]
			if !exists {
				ref = m.arena.new()
				state.la[newItem.id] = ref
				state.items = append(state.items, newItem)
				worklist = append(worklist, newItem)
			}

			m.arena.unionInto(ref, newLA)
			if nullableTail {
				// The lookahead inherited by item also applies once N
				// reduces through an empty tail, so whatever later flows
				// into item's own Lookaheads must flow into newItem's too.
				m.arena.listen(srcRef, ref)
			}
		}
	}
}

// computeSuccessors implements spec.md §4.4.2: items are grouped by the
// symbol immediately after their dot, in symbol total order for
// determinism (spec.md §5). For each symbol, gatherProxyChain walks the
// proxy chain inline (Design Notes §9: "a local worklist over symbols
// within compute_successors, not as a separate pre-pass"), so that
// shifting through a no-op single-symbol reduction lands directly in the
// state its LHS would have reached, without ever materializing the
// proxy's own reduce step. Each group's non-proxy items are shifted into
// a new kernel seeded with the current state's Lookaheads, and the
// successor's corresponding Lookaheads are registered as listeners of the
// current item's.
func (m *LalrMachine) computeSuccessors(state *LalrState) error {
	groups := map[GrammarSymbol][]*LrItem{}
	for _, item := range state.items {
		sym := item.DottedSymbol()
		if sym == nil {
			continue
		}
		groups[sym] = append(groups[sym], item)
	}

	syms := make([]GrammarSymbol, 0, len(groups))
	for sym := range groups {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return symbolLess(syms[i], syms[j]) })

	for _, sym := range syms {
		items := gatherProxyChain(groups, sym)

		kernelItems := make([]*LrItem, 0, len(items))
		newLA := map[itemID]*TerminalSet{}
		shiftedByOrig := make(map[itemID]*LrItem, len(items))

		for _, item := range items {
			// A proxy production's dot-0 item (L ::= · X, no action) is
			// never itself shifted: gatherProxyChain already followed it
			// to L's own dotted items, so the reduce L ::= X is optimized
			// away and never appears in any state (spec.md §9 GLOSSARY,
			// "Proxy production").
			if item.Dot() == 0 && item.Production().IsProxy() {
				continue
			}

			shifted, err := item.shift()
			if err != nil {
				return err
			}
			shiftedByOrig[item.id] = shifted
			kernelItems = append(kernelItems, shifted)

			seed := m.arena.set(state.la[item.id]).Clone()
			if existing, ok := newLA[shifted.id]; ok {
				existing.Union(seed)
			} else {
				newLA[shifted.id] = seed
			}
		}

		if len(kernelItems) == 0 {
			// Every item reachable from sym was a proxy's entry item;
			// the chain never terminates in an actual shift within this
			// state. Nothing to transition on.
			continue
		}

		successor := m.getOrCreateState(kernelItems, newLA)

		for _, item := range items {
			shifted, ok := shiftedByOrig[item.id]
			if !ok {
				continue
			}
			if destRef, ok := successor.la[shifted.id]; ok {
				m.arena.listen(state.la[item.id], destRef)
			}
		}

		state.transitions[sym] = successor
	}

	return nil
}

// gatherProxyChain collects every item reachable from sym by repeatedly
// following proxy productions' LHS as described in spec.md §4.4.2: start
// with the items dotted at sym; whenever one of those items belongs to a
// proxy production (single-symbol RHS, no action) at dot 0, its LHS is
// also a symbol whose dotted items belong to this same group, followed
// transitively. A visited set guards against a grammar whose proxy chain
// cycles back on itself.
func gatherProxyChain(groups map[GrammarSymbol][]*LrItem, sym GrammarSymbol) []*LrItem {
	visited := map[GrammarSymbol]bool{sym: true}
	queue := []GrammarSymbol{sym}

	var gathered []*LrItem
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		for _, item := range groups[s] {
			gathered = append(gathered, item)
			if item.Dot() == 0 && item.Production().IsProxy() {
				lhs := item.Production().LHS()
				if !visited[lhs] {
					visited[lhs] = true
					queue = append(queue, lhs)
				}
			}
		}
	}
	return gathered
}
