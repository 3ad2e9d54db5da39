package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// itemID identifies an LrItem by its (production, dot) pair alone, so two
// items with the same production and dot always compare equal regardless of
// where they were constructed (spec.md §3).
type itemID [32]byte

func newItemID(prod *Production, dot int) itemID {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(prod.index))
	binary.LittleEndian.PutUint64(b[8:16], uint64(dot))
	return sha256.Sum256(b[:])
}

// LrItem is a production paired with a dot position (spec.md §3). It is
// immutable; advancing the dot produces (and memoizes) a new LrItem rather
// than mutating this one.
type LrItem struct {
	id   itemID
	prod *Production
	dot  int

	dottedSymbol GrammarSymbol // nil at the end of the RHS
	reducible    bool
	kernel       bool

	shifted *LrItem // memoized newLRItem(prod, dot+1), computed lazily
}

// newLRItem builds the item [prod, dot]. dot must be in [0, len(rhs)].
func newLRItem(prod *Production, dot int) (*LrItem, error) {
	if dot < 0 || dot > len(prod.rhs) {
		return nil, fmt.Errorf("grammar: dot %d out of range for production with %d RHS symbols", dot, len(prod.rhs))
	}

	item := &LrItem{
		id:        newItemID(prod, dot),
		prod:      prod,
		dot:       dot,
		reducible: dot == len(prod.rhs),
		kernel:    dot > 0 || prod.lhs.isStart(),
	}
	if dot < len(prod.rhs) {
		item.dottedSymbol = prod.rhs[dot].Symbol
	}
	return item, nil
}

// Production is the item's underlying production.
func (it *LrItem) Production() *Production { return it.prod }

// Dot is the item's dot position.
func (it *LrItem) Dot() int { return it.dot }

// DottedSymbol is the symbol immediately after the dot, nil if the item is
// reducible.
func (it *LrItem) DottedSymbol() GrammarSymbol { return it.dottedSymbol }

// Reducible reports whether the dot sits at the end of the RHS.
func (it *LrItem) Reducible() bool { return it.reducible }

// Kernel reports whether this item belongs to a state's kernel: either the
// augmented initial item, or one reached by a prior shift (spec.md §3).
func (it *LrItem) Kernel() bool { return it.kernel }

// shift returns (creating and memoizing on first call) the item with the
// dot advanced by one position.
func (it *LrItem) shift() (*LrItem, error) {
	if it.shifted != nil {
		return it.shifted, nil
	}
	s, err := newLRItem(it.prod, it.dot+1)
	if err != nil {
		return nil, err
	}
	it.shifted = s
	return s, nil
}

// less implements the LrItem total order of spec.md §3: by production
// index, then dot position.
func (it *LrItem) less(other *LrItem) bool {
	if it.prod.index != other.prod.index {
		return it.prod.index < other.prod.index
	}
	return it.dot < other.dot
}

// isNullableTail reports whether every symbol after the dotted symbol is a
// nullable non-terminal — the condition spec.md §4.4.1 calls
// "shifted_item.is_nullable()": after shifting past the dotted symbol,
// everything remaining can vanish.
func (it *LrItem) isNullableTail() bool {
	for i := it.dot + 1; i < len(it.prod.rhs); i++ {
		sym := it.prod.rhs[i].Symbol
		nt, ok := sym.(*NonTerminal)
		if !ok || !nt.nullable {
			return false
		}
	}
	return true
}

// calcLookahead implements spec.md §4.3 for an item [L ::= α · N γ, l]:
// the FIRST set of γ, the symbols after the dotted one N, built by scanning
// left to right and stopping at the first non-nullable symbol. The caller
// decides whether to union in the inherited lookahead l.
func calcLookahead(item *LrItem, terminalCount int) *TerminalSet {
	out, _ := firstOfSuffix(item.prod, item.dot+1, terminalCount)
	return out
}
