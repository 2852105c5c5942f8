package reconcile

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/wacksbywarby/wacks/internal/model"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

func intPtr(v int) *int { return &v }

func order(id string, minutes int, completed bool, items ...model.LineItem) model.Order {
	return model.Order{ID: id, OccurredAt: at(minutes), Completed: completed, LineItems: items}
}

func item(listingID string, qty int) model.LineItem {
	return model.LineItem{ListingID: listingID, Name: "Werby " + listingID, Quantity: qty}
}

func TestOrders_Bootstrap(t *testing.T) {
	r := New(Options{}, nil)

	res := r.Orders(OrderInput{
		Orders: []model.Order{
			order("o1", 1, true, item("A", 1)),
			order("o2", 5, false, item("B", 1)),
			order("o3", 3, true, item("C", 1), item("D", 2)),
		},
	})

	if res.Mode != ModeBootstrap {
		t.Errorf("Mode = %s, want %s", res.Mode, ModeBootstrap)
	}
	if res.Announce {
		t.Error("Announce = true, want false on first run")
	}
	want := model.Watermark{Timestamp: at(5), SaleCount: 3}
	if diff := cmp.Diff(want, res.Watermark); diff != "" {
		t.Errorf("Watermark mismatch (-want +got):\n%s", diff)
	}
}

func TestOrders_BootstrapUsesRecentWindow(t *testing.T) {
	r := New(Options{}, nil)

	res := r.Orders(OrderInput{
		Orders: []model.Order{order("o9", 10, true, item("A", 1))},
		Recent: []model.Order{
			order("o7", 8, true, item("A", 1)),
			order("o8", 9, true, item("B", 1)),
			order("o9", 10, true, item("A", 1)),
		},
	})

	if res.Watermark.SaleCount != 3 {
		t.Errorf("SaleCount = %d, want %d", res.Watermark.SaleCount, 3)
	}
	if !res.Watermark.Timestamp.Equal(at(10)) {
		t.Errorf("Timestamp = %v, want %v", res.Watermark.Timestamp, at(10))
	}
}

func TestOrders_Incremental(t *testing.T) {
	r := New(Options{}, nil)
	prev := model.Watermark{Timestamp: at(0), SaleCount: 10}

	res := r.Orders(OrderInput{
		Previous: prev,
		Orders: []model.Order{
			order("o2", 4, true, item("B", 1)),
			order("o1", 2, true, item("A", 1), item("C", 3)),
			order("o3", 6, false, item("D", 1)),
		},
	})

	if res.Mode != ModeIncremental {
		t.Errorf("Mode = %s, want %s", res.Mode, ModeIncremental)
	}
	if !res.Announce {
		t.Error("Announce = false, want true")
	}

	wantSales := []model.Sale{
		{ListingID: "A", NumSold: 1, OccurredAt: at(2), OrderID: "o1", FallbackDisplayName: "Werby A"},
		{ListingID: "C", NumSold: 3, OccurredAt: at(2), OrderID: "o1", FallbackDisplayName: "Werby C"},
		{ListingID: "B", NumSold: 1, OccurredAt: at(4), OrderID: "o2", FallbackDisplayName: "Werby B"},
	}
	if diff := cmp.Diff(wantSales, res.Sales); diff != "" {
		t.Errorf("Sales mismatch (-want +got):\n%s", diff)
	}

	// Incomplete o3 still advances the timestamp.
	want := model.Watermark{Timestamp: at(6), SaleCount: 13}
	if diff := cmp.Diff(want, res.Watermark); diff != "" {
		t.Errorf("Watermark mismatch (-want +got):\n%s", diff)
	}
}

func TestOrders_CountUnits(t *testing.T) {
	r := New(Options{CountUnits: true}, nil)
	prev := model.Watermark{Timestamp: at(0), SaleCount: 10}

	res := r.Orders(OrderInput{
		Previous: prev,
		Orders: []model.Order{
			order("o1", 2, true, item("A", 1), item("C", 3)),
		},
	})

	total := prev.SaleCount
	for _, s := range res.Sales {
		total += s.NumSold
	}
	if res.Watermark.SaleCount != total {
		t.Errorf("SaleCount = %d, want %d", res.Watermark.SaleCount, total)
	}
}

func TestOrders_ExactBoundaryExcluded(t *testing.T) {
	r := New(Options{}, nil)
	prev := model.Watermark{Timestamp: at(5), SaleCount: 10}

	res := r.Orders(OrderInput{
		Previous: prev,
		Orders: []model.Order{
			order("o1", 5, true, item("A", 1)),
			order("o0", 3, true, item("B", 1)),
			order("o2", 6, true, item("C", 1)),
		},
	})

	if len(res.Sales) != 1 || res.Sales[0].OrderID != "o2" {
		t.Fatalf("Sales = %+v, want only o2", res.Sales)
	}
	want := model.Watermark{Timestamp: at(6), SaleCount: 11}
	if diff := cmp.Diff(want, res.Watermark); diff != "" {
		t.Errorf("Watermark mismatch (-want +got):\n%s", diff)
	}
}

func TestOrders_Idempotent(t *testing.T) {
	r := New(Options{}, nil)
	orders := []model.Order{
		order("o1", 2, true, item("A", 1)),
		order("o2", 4, true, item("B", 1)),
	}

	first := r.Orders(OrderInput{Previous: model.Watermark{Timestamp: at(0), SaleCount: 10}, Orders: orders})
	second := r.Orders(OrderInput{Previous: first.Watermark, Orders: orders})

	if len(second.Sales) != 0 {
		t.Errorf("len(Sales) = %d, want 0", len(second.Sales))
	}
	if second.Announce {
		t.Error("Announce = true, want false")
	}
	if diff := cmp.Diff(first.Watermark, second.Watermark); diff != "" {
		t.Errorf("Watermark changed (-first +second):\n%s", diff)
	}
}

func TestOrders_DuplicateOrders(t *testing.T) {
	r := New(Options{}, nil)

	res := r.Orders(OrderInput{
		Previous: model.Watermark{Timestamp: at(0), SaleCount: 1},
		Orders: []model.Order{
			order("o1", 2, true, item("A", 1)),
			order("o1", 2, true, item("A", 1)),
		},
	})

	if len(res.Sales) != 1 {
		t.Errorf("len(Sales) = %d, want 1", len(res.Sales))
	}
	if res.Watermark.SaleCount != 2 {
		t.Errorf("SaleCount = %d, want 2", res.Watermark.SaleCount)
	}
}

func TestOrders_Backfill(t *testing.T) {
	r := New(Options{}, nil)

	res := r.Orders(OrderInput{
		Previous: model.Watermark{Timestamp: at(0)},
		Orders:   []model.Order{order("o5", 3, true, item("A", 1))},
		Recent: []model.Order{
			order("o3", -10, true, item("X", 1)),
			order("o4", -5, false, item("Y", 1)),
			order("o5", 3, true, item("A", 1)),
		},
	})

	if res.Mode != ModeBackfill {
		t.Errorf("Mode = %s, want %s", res.Mode, ModeBackfill)
	}
	if !res.Announce {
		t.Error("Announce = false, want true")
	}
	if res.Watermark.SaleCount != 2 {
		t.Errorf("SaleCount = %d, want 2", res.Watermark.SaleCount)
	}
}

func TestOrders_NoRegression(t *testing.T) {
	r := New(Options{}, nil)
	prev := model.Watermark{Timestamp: at(10), SaleCount: 50}

	t.Run("empty result keeps watermark", func(t *testing.T) {
		res := r.Orders(OrderInput{Previous: prev})
		if diff := cmp.Diff(prev, res.Watermark); diff != "" {
			t.Errorf("Watermark mismatch (-want +got):\n%s", diff)
		}
		if res.Announce {
			t.Error("Announce = true, want false")
		}
	})

	t.Run("backfill recount below stored count", func(t *testing.T) {
		p := model.Watermark{Timestamp: at(10)}
		res := r.Orders(OrderInput{Previous: p, Orders: []model.Order{order("o1", 1, true, item("A", 1))}})
		if res.Watermark.Timestamp.Before(p.Timestamp) {
			t.Errorf("Timestamp regressed to %v", res.Watermark.Timestamp)
		}
	})

	t.Run("older orders only", func(t *testing.T) {
		res := r.Orders(OrderInput{
			Previous: prev,
			Orders:   []model.Order{order("o1", 1, true, item("A", 1))},
		})
		if diff := cmp.Diff(prev, res.Watermark); diff != "" {
			t.Errorf("Watermark mismatch (-want +got):\n%s", diff)
		}
		if len(res.Sales) != 0 {
			t.Errorf("len(Sales) = %d, want 0", len(res.Sales))
		}
	})
}

func TestSales_Fields(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	orders := []model.Order{{
		ID:         "o1",
		Completed:  true,
		OccurredAt: at(1),
		Location:   "Market Stall",
		LineItems: []model.LineItem{
			{ListingID: "A", Name: "Annette", Quantity: 2, UnitPrice: &price, QuantityRemaining: intPtr(0)},
		},
	}}

	got := Sales(orders)
	want := []model.Sale{{
		ListingID:           "A",
		QuantityRemaining:   intPtr(0),
		NumSold:             2,
		OccurredAt:          at(1),
		Location:            "Market Stall",
		FallbackDisplayName: "Annette",
		OrderID:             "o1",
		UnitPrice:           &price,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sales() mismatch (-want +got):\n%s", diff)
	}
	if !got[0].SoldOut() {
		t.Error("SoldOut() = false, want true")
	}
}

func TestSales_TieBreakByOrderID(t *testing.T) {
	got := Sales([]model.Order{
		order("b", 1, true, item("B1", 1), item("B2", 1)),
		order("a", 1, true, item("A1", 1)),
	})

	var ids []string
	for _, s := range got {
		ids = append(ids, s.ListingID)
	}
	if diff := cmp.Diff([]string{"A1", "B1", "B2"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkIncomplete(t *testing.T) {
	raw := []model.Order{
		{ID: "o1", Status: "1", OccurredAt: at(1), LineItems: []model.LineItem{item("A", 1)}},
		{ID: "o2", Status: "7", OccurredAt: at(2), LineItems: []model.LineItem{item("B", 1)}},
		{ID: "o3", Status: "4", OccurredAt: at(3), LineItems: []model.LineItem{item("C", 1)}},
	}

	// Complement: the provider answered a separate status-7 query.
	complement := MarkIncomplete(raw, []model.Order{raw[1]})

	// Client-side: completion from the status field.
	clientSide := make([]model.Order, len(raw))
	for i, o := range raw {
		o.Completed = o.Status != "7"
		clientSide[i] = o
	}

	if diff := cmp.Diff(clientSide, complement); diff != "" {
		t.Errorf("strategies disagree (-client +complement):\n%s", diff)
	}
	if raw[0].Completed {
		t.Error("MarkIncomplete modified its input")
	}

	r := New(Options{}, nil)
	prev := model.Watermark{Timestamp: at(0), SaleCount: 1}
	a := r.Orders(OrderInput{Previous: prev, Orders: complement})
	b := r.Orders(OrderInput{Previous: prev, Orders: clientSide})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("results disagree (-complement +client):\n%s", diff)
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]model.Order{
		{ID: "o1", Status: "first"},
		{ID: ""},
		{ID: "o1", Status: "second"},
		{ID: ""},
	})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Status != "first" {
		t.Errorf("Status = %q, want first", got[0].Status)
	}
}
