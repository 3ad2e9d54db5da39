package compressor

import (
	"fmt"
	"sort"
)

// This file implements spec.md §4.6's row-displacement comb packing:
// rows are placed at the smallest base (a multiple of the stride) with no
// collision against slots already claimed by an earlier row, generalized from a single
// table-wide empty value to a *per-row* default and to the exact
// flat-short[] layout the emitter needs, where each claimed slot of a
// row-tagged table carries the claiming row's id alongside its value so
// a runtime probe can tell a real hit from a coincidental collision.

// escapeBit marks a comb unit that continues into the next unit rather
// than standing alone (spec.md §4.6: "Integers beyond 0x7FFF are encoded
// as two 16-bit units with the high unit set").
const escapeBit = 0x8000

// EncodeShort splits v into one or two uint16 units.
func EncodeShort(v int) []uint16 {
	if v >= 0 && v < escapeBit {
		return []uint16{uint16(v)}
	}
	return []uint16{uint16((v>>16)&0x7fff) | escapeBit, uint16(v & 0xffff)}
}

// DecodeShort decodes the value starting at units[i], returning the value
// and the number of units it occupied (1 or 2).
func DecodeShort(units []uint16, i int) (int, int) {
	if units[i]&escapeBit == 0 {
		return int(units[i]), 1
	}
	hi := int(units[i] &^ escapeBit)
	lo := int(units[i+1])
	return hi<<16 | lo, 2
}

// unoccupiedGoto is the sentinel spec.md §4.6 assigns to an empty
// reduce-goto comb slot ("unoccupied slots carry the sentinel 1"). Unlike
// the action table, the goto comb carries no row tag.
const unoccupiedGoto = 1

// SparseRow is one table row's columns that differ from its own chosen
// default, ready for CompressSparseRows.
type SparseRow struct {
	Row  int
	Cols []int
	Vals []int
}

// CombTable is the packed double-array encoding of spec.md §4.6: Base
// holds, per row, the offset into Comb; Stride is 2 for the action table
// (a row-id tag followed by the value) or 1 for the reduce-goto table (a
// bare value, with unoccupiedGoto marking an empty slot).
type CombTable struct {
	NumRows int
	Stride  int
	Base    []int
	Comb    []uint16
}

// Lookup mirrors the runtime decode spec.md §4.6 describes for the
// emitter: probe Base[row]+Stride*col, falling back to fallback on a miss.
// A Stride-1 comb carries no row tag, so a miss is detected only when the
// slot is past the end or holds unoccupiedGoto; a column the row never set
// may read another row's value.
func (c *CombTable) Lookup(row, col, fallback int) int {
	slot := c.Base[row] + c.Stride*col
	if c.Stride == 1 {
		if slot < 0 || slot >= len(c.Comb) || c.Comb[slot] == unoccupiedGoto {
			return fallback
		}
		return int(c.Comb[slot])
	}

	if slot < 0 || slot+1 >= len(c.Comb) || int(c.Comb[slot]) != row {
		return fallback
	}
	v, _ := DecodeShort(c.Comb, slot+1)
	return v
}

// CompressSparseRows runs spec.md §4.6's row-displacement algorithm over
// rows that may each have a different default: rows are processed in
// size-descending order (better packing, not required for correctness),
// and each is placed at the smallest non-negative multiple of stride with no
// collision against slots already claimed by an earlier row. Stepping the
// base by stride keeps every row's (tag, value) pairs aligned, so a tag
// slot never overlaps another row's value slot.
func CompressSparseRows(rows []SparseRow, numRows, stride int) *CombTable {
	ordered := append([]SparseRow{}, rows...)
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i].Cols) > len(ordered[j].Cols) })

	unoccupied := uint16(unoccupiedGoto)
	if stride == 2 {
		unoccupied = 0xffff // row id 0 is a valid state, so 0 would match row 0's (tag==row) probe; no row id reaches 0xffff.
	}

	claimed := map[int]bool{}
	base := make([]int, numRows)
	var comb []uint16

	grow := func(n int) {
		for len(comb) < n {
			comb = append(comb, unoccupied)
		}
	}

	for _, r := range ordered {
		if len(r.Cols) == 0 {
			continue
		}

		b := 0
	search:
		for {
			for _, c := range r.Cols {
				if claimed[b+stride*c] {
					b += stride
					continue search
				}
			}
			break
		}

		for i, c := range r.Cols {
			slot := b + stride*c
			claimed[slot] = true
			if stride == 2 {
				units := EncodeShort(r.Vals[i])
				if len(units) != 1 {
					panic(fmt.Sprintf("compressor: value %d at row %d col %d needs EncodeShort's two-unit escape form, which the row-tagged comb's fixed stride-2 layout cannot carry", r.Vals[i], r.Row, c))
				}
				grow(slot + 2)
				comb[slot] = uint16(r.Row)
				comb[slot+1] = units[0]
			} else {
				grow(slot + 1)
				comb[slot] = uint16(r.Vals[i])
			}
		}
		base[r.Row] = b
	}

	return &CombTable{NumRows: numRows, Stride: stride, Base: base, Comb: comb}
}
