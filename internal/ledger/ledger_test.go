package ledger

import (
	"testing"

	"github.com/erazemk/dresi/internal/model"
)

func TestDecrement(t *testing.T) {
	tests := []struct {
		current, by, expected int
	}{
		{10, 3, 7},
		{5, 5, 0},
		{5, 8, 0},
		{0, 1, 0},
		{4, 0, 4},
	}

	for _, tt := range tests {
		if got := Decrement(tt.current, tt.by); got != tt.expected {
			t.Errorf("Decrement(%d, %d) = %d, want %d", tt.current, tt.by, got, tt.expected)
		}
	}
}

func TestIncrement(t *testing.T) {
	if got := Increment(3, 2); got != 5 {
		t.Errorf("Increment(3, 2) = %d, want 5", got)
	}
}

func TestTotal(t *testing.T) {
	sizes := []model.SizeQuantity{{Size: "S", Quantity: 2}, {Size: "M", Quantity: 6}}
	if got := Total(sizes); got != 8 {
		t.Errorf("Total = %d, want 8", got)
	}
	if got := Total(nil); got != 0 {
		t.Errorf("Total(nil) = %d, want 0", got)
	}
}

func TestApplyDeltasClampsAndKeepsOriginal(t *testing.T) {
	sizes := []model.SizeQuantity{{Size: "S", Quantity: 2}, {Size: "M", Quantity: 10}, {Size: "L", Quantity: 1}}

	got := ApplyDeltas(sizes, SizeDeltas{"S": -5, "M": -3, "L": 4, "XXL": -1})

	want := map[string]int{"S": 0, "M": 7, "L": 5}
	if len(got) != 3 {
		t.Fatalf("expected 3 sizes, got %d", len(got))
	}
	for _, s := range got {
		if s.Quantity != want[s.Size] {
			t.Errorf("size %s: got %d, want %d", s.Size, s.Quantity, want[s.Size])
		}
	}

	if sizes[0].Quantity != 2 {
		t.Error("expected input slice to be left untouched")
	}
}

func TestProductDeltasGroupsBySize(t *testing.T) {
	items := []model.LineItem{
		{ProductID: 2, Size: "M", Quantity: 1},
		{ProductID: 1, Size: "M", Quantity: 2},
		{ProductID: 1, Size: "L", Quantity: 1},
		{ProductID: 1, Size: "M", Quantity: 3},
	}

	got := ProductDeltas(items, -1)
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	if got[1]["M"] != -5 || got[1]["L"] != -1 {
		t.Errorf("unexpected deltas for product 1: %v", got[1])
	}
	if got[2]["M"] != -1 {
		t.Errorf("unexpected deltas for product 2: %v", got[2])
	}

	ids := ProductIDs(got)
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("expected sorted ids [1 2], got %v", ids)
	}

	neg := got[1].Negate()
	if neg["M"] != 5 || neg["L"] != 1 {
		t.Errorf("unexpected negated deltas: %v", neg)
	}
}
