package model

import (
	"testing"
	"time"
)

func TestSale_SoldOut(t *testing.T) {
	zero, two := 0, 2

	tests := []struct {
		name string
		sale Sale
		want bool
	}{
		{name: "unknown remaining", sale: Sale{ListingID: "a", NumSold: 1}, want: false},
		{name: "zero remaining", sale: Sale{ListingID: "a", NumSold: 1, QuantityRemaining: &zero}, want: true},
		{name: "stock left", sale: Sale{ListingID: "a", NumSold: 1, QuantityRemaining: &two}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sale.SoldOut(); got != tt.want {
				t.Errorf("SoldOut() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInventoryDiff_Decrease(t *testing.T) {
	tests := []struct {
		name string
		diff InventoryDiff
		want int
	}{
		{name: "sale", diff: InventoryDiff{PrevQuantity: 5, CurrentQuantity: 3}, want: 2},
		{name: "sold out", diff: InventoryDiff{PrevQuantity: 1, CurrentQuantity: 0}, want: 1},
		{name: "restock", diff: InventoryDiff{PrevQuantity: 1, CurrentQuantity: 9}, want: 0},
		{name: "unchanged", diff: InventoryDiff{PrevQuantity: 4, CurrentQuantity: 4}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.diff.Decrease(); got != tt.want {
				t.Errorf("Decrease() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWatermark_Advance(t *testing.T) {
	early := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	t.Run("moves forward", func(t *testing.T) {
		got := Watermark{Timestamp: early, SaleCount: 10}.Advance(Watermark{Timestamp: late, SaleCount: 12})
		if !got.Timestamp.Equal(late) {
			t.Errorf("Timestamp = %v, want %v", got.Timestamp, late)
		}
		if got.SaleCount != 12 {
			t.Errorf("SaleCount = %d, want 12", got.SaleCount)
		}
	})

	t.Run("never regresses", func(t *testing.T) {
		got := Watermark{Timestamp: late, SaleCount: 12}.Advance(Watermark{Timestamp: early, SaleCount: 3})
		if !got.Timestamp.Equal(late) {
			t.Errorf("Timestamp = %v, want %v", got.Timestamp, late)
		}
		if got.SaleCount != 12 {
			t.Errorf("SaleCount = %d, want 12", got.SaleCount)
		}
	})

	t.Run("zero value has no timestamp", func(t *testing.T) {
		var w Watermark
		if w.HasTimestamp() {
			t.Error("HasTimestamp() = true for zero watermark")
		}
		if got := w.Advance(Watermark{Timestamp: early}); !got.HasTimestamp() {
			t.Error("HasTimestamp() = false after advancing")
		}
	})
}
