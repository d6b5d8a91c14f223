// Package ledger holds the quantity primitives every stock movement goes
// through. Results never go below zero.
package ledger

import (
	"sort"

	"github.com/erazemk/dresi/internal/model"
)

// Decrement returns current minus by, clamped at zero.
func Decrement(current, by int) int {
	if by >= current {
		return 0
	}
	return current - by
}

// Increment returns current plus by.
func Increment(current, by int) int {
	return current + by
}

// Total returns the summed quantity over all sizes.
func Total(sizes []model.SizeQuantity) int {
	total := 0
	for _, s := range sizes {
		total += s.Quantity
	}
	return total
}

// SizeDeltas maps a size to a signed quantity change.
type SizeDeltas map[string]int

// ApplyDeltas returns a copy of sizes with each delta applied. Negative deltas
// are clamped at zero; deltas for sizes the product does not have are ignored.
func ApplyDeltas(sizes []model.SizeQuantity, deltas SizeDeltas) []model.SizeQuantity {
	out := make([]model.SizeQuantity, len(sizes))
	for i, s := range sizes {
		d := deltas[s.Size]
		switch {
		case d < 0:
			s.Quantity = Decrement(s.Quantity, -d)
		case d > 0:
			s.Quantity = Increment(s.Quantity, d)
		}
		out[i] = s
	}
	return out
}

// Negate returns deltas with every sign flipped.
func (d SizeDeltas) Negate() SizeDeltas {
	out := make(SizeDeltas, len(d))
	for size, q := range d {
		out[size] = -q
	}
	return out
}

// ProductDeltas groups line items by product into one SizeDeltas per product.
// sign is -1 to consume stock and +1 to give it back.
func ProductDeltas(items []model.LineItem, sign int) map[int64]SizeDeltas {
	out := make(map[int64]SizeDeltas)
	for _, it := range items {
		d, ok := out[it.ProductID]
		if !ok {
			d = make(SizeDeltas)
			out[it.ProductID] = d
		}
		d[it.Size] += sign * it.Quantity
	}
	return out
}

// ProductIDs returns the keys of a ProductDeltas map in ascending order so
// cascades run in a stable sequence.
func ProductIDs(m map[int64]SizeDeltas) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
