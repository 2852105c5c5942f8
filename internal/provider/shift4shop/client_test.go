package shift4shop

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wacksbywarby/wacks/internal/config"
)

func testConfig(baseURL string) config.Shift4ShopConfig {
	return config.Shift4ShopConfig{
		BaseURL:             baseURL,
		SecureURL:           "wicksbywerby.com",
		PrivateKey:          "pk",
		Token:               "tok",
		StatusFilter:        StatusFilterClient,
		IncompleteStatusIDs: []int{config.StatusNotCompleted},
		PageLimit:           2,
		MaxPages:            10,
		BackfillWindow:      24 * time.Hour,
	}
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{Timeout: 5 * time.Second, MaxRetries: 0, RetryBackoff: time.Millisecond}
}

func floatPtr(v float64) *float64 { return &v }

var testOrders = []Order{
	{OrderID: 1, OrderDate: "2024-03-01T10:00:00", OrderStatusID: 1, OrderItemList: []OrderItem{
		{CatalogID: 101, ItemQuantity: 1, ItemUnitPrice: 24, ItemDescription: "Annette", ItemUnitStock: floatPtr(0)},
	}},
	{OrderID: 2, OrderDate: "2024-03-01T11:00:00", OrderStatusID: 7, OrderItemList: []OrderItem{
		{CatalogID: 102, ItemQuantity: 1, ItemUnitPrice: 18.5, ItemDescription: "Felix"},
	}},
	{OrderID: 3, OrderDate: "2024-03-01T12:00:00", OrderStatusID: 4, OrderItemList: []OrderItem{
		{CatalogID: 103, ItemQuantity: 2, ItemUnitPrice: 10, ItemDescription: "Dimitri"},
		{CatalogID: 104, ItemQuantity: 1.5, ItemDescription: "Half a werby"},
	}},
	{OrderID: 4, OrderDate: "not a date", OrderStatusID: 1},
}

// orderServer serves testOrders with limit/offset paging and orderstatus filtering.
func orderServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		if r.URL.Path != "/Orders" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("SecureURL"); got != "wicksbywerby.com" {
			t.Errorf("SecureURL = %q", got)
		}
		if got := r.Header.Get("PrivateKey"); got != "pk" {
			t.Errorf("PrivateKey = %q", got)
		}
		if got := r.Header.Get("Token"); got != "tok" {
			t.Errorf("Token = %q", got)
		}

		q := r.URL.Query()
		var matched []Order
		for _, o := range testOrders {
			if s := q.Get("orderstatus"); s != "" && s != strconv.Itoa(o.OrderStatusID) {
				continue
			}
			matched = append(matched, o)
		}

		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		if offset >= len(matched) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`[{"Key":"Error","Value":"No orders found"}]`))
			return
		}
		end := min(offset+limit, len(matched))
		json.NewEncoder(w).Encode(matched[offset:end])
	}))
}

func TestOrdersSince_ClientSideFilter(t *testing.T) {
	server := orderServer(t, nil)
	defer server.Close()

	c := New(testConfig(server.URL), testAPIConfig(), nil)
	orders, err := c.OrdersSince(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("OrdersSince() error = %v", err)
	}

	if len(orders) != 3 {
		t.Fatalf("len(orders) = %d, want 3 (unparseable order skipped)", len(orders))
	}

	completed := map[string]bool{}
	for _, o := range orders {
		completed[o.ID] = o.Completed
	}
	if diff := cmp.Diff(map[string]bool{"1": true, "2": false, "3": true}, completed); diff != "" {
		t.Errorf("Completed mismatch (-want +got):\n%s", diff)
	}

	first := orders[0]
	if !first.OccurredAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("OccurredAt = %v", first.OccurredAt)
	}
	li := first.LineItems[0]
	if li.ListingID != "101" || li.Name != "Annette" || li.Quantity != 1 {
		t.Errorf("LineItem = %+v", li)
	}
	if li.UnitPrice == nil || li.UnitPrice.String() != "24" {
		t.Errorf("UnitPrice = %v, want 24", li.UnitPrice)
	}
	if li.QuantityRemaining == nil || *li.QuantityRemaining != 0 {
		t.Errorf("QuantityRemaining = %v, want 0", li.QuantityRemaining)
	}

	// The fractional quantity line is skipped, the order kept.
	if n := len(orders[2].LineItems); n != 1 {
		t.Errorf("len(LineItems) of order 3 = %d, want 1", n)
	}
}

func TestOrdersSince_ComplementMatchesClientSide(t *testing.T) {
	server := orderServer(t, nil)
	defer server.Close()

	clientCfg := testConfig(server.URL)
	complementCfg := testConfig(server.URL)
	complementCfg.StatusFilter = StatusFilterComplement

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a, err := New(clientCfg, testAPIConfig(), nil).OrdersSince(context.Background(), since)
	if err != nil {
		t.Fatalf("client OrdersSince() error = %v", err)
	}
	b, err := New(complementCfg, testAPIConfig(), nil).OrdersSince(context.Background(), since)
	if err != nil {
		t.Fatalf("complement OrdersSince() error = %v", err)
	}

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("strategies disagree (-client +complement):\n%s", diff)
	}
}

func TestOrdersSince_QueryParams(t *testing.T) {
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Query().Get("datestart"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(testConfig(server.URL), testAPIConfig(), nil)
	c.now = func() time.Time { return time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC) }

	orders, err := c.OrdersSince(context.Background(), time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC))
	if err != nil {
		t.Fatalf("OrdersSince() error = %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("len(orders) = %d, want 0 for 404", len(orders))
	}

	if _, err := c.RecentOrders(context.Background()); err != nil {
		t.Fatalf("RecentOrders() error = %v", err)
	}

	want := []string{"03/01/2024 14:05:09", "03/01/2024 08:30:00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("datestart mismatch (-want +got):\n%s", diff)
	}
}

func TestOrdersSince_MaxPages(t *testing.T) {
	var requests atomic.Int32
	server := orderServer(t, &requests)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.PageLimit = 1
	cfg.MaxPages = 2

	orders, err := New(cfg, testAPIConfig(), nil).OrdersSince(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("OrdersSince() error = %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("len(orders) = %d, want 2", len(orders))
	}
	if requests.Load() != 2 {
		t.Errorf("requests = %d, want 2", requests.Load())
	}
}

func TestRecentOrders_SinglePage(t *testing.T) {
	var requests atomic.Int32
	server := orderServer(t, &requests)
	defer server.Close()

	orders, err := New(testConfig(server.URL), testAPIConfig(), nil).RecentOrders(context.Background())
	if err != nil {
		t.Fatalf("RecentOrders() error = %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("len(orders) = %d, want one page of 2", len(orders))
	}
	if requests.Load() != 1 {
		t.Errorf("requests = %d, want 1", requests.Load())
	}
}

func TestOrdersSince_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New(testConfig(server.URL), testAPIConfig(), nil).OrdersSince(context.Background(), time.Time{})
	if err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestListCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Products" {
			t.Errorf("Path = %s, want /Products", r.URL.Path)
		}
		if r.URL.Query().Get("offset") != "0" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"SKUInfo":{"CatalogID":101,"SKU":"ANN","Name":"Annette","Price":24,"Stock":3}}]`))
	}))
	defer server.Close()

	items, err := New(testConfig(server.URL), testAPIConfig(), nil).ListCatalog(context.Background())
	if err != nil {
		t.Fatalf("ListCatalog() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != "101" || items[0].Name != "Annette" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Quantity == nil || *items[0].Quantity != 3 {
		t.Errorf("Quantity = %v, want 3", items[0].Quantity)
	}
}

func TestParseOrderDate(t *testing.T) {
	want := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)
	for _, s := range []string{"2024-03-01T14:05:09", "2024-03-01T14:05:09Z", "03/01/2024 14:05:09"} {
		got, err := parseOrderDate(s)
		if err != nil {
			t.Errorf("parseOrderDate(%q) error = %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseOrderDate(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := parseOrderDate("yesterday"); err == nil {
		t.Error("expected error for yesterday")
	}
}

func TestOrderToModel_WholeSeconds(t *testing.T) {
	o := Order{
		OrderID:       7,
		OrderDate:     "2024-05-01T17:45:12.345",
		OrderStatusID: 4,
		OrderItemList: []OrderItem{{CatalogID: 1, ItemQuantity: 1}},
	}

	got, _, err := o.toModel(true)
	if err != nil {
		t.Fatalf("toModel() error = %v", err)
	}
	want := time.Date(2024, 5, 1, 17, 45, 12, 0, time.UTC)
	if !got.OccurredAt.Equal(want) {
		t.Errorf("OccurredAt = %v, want %v", got.OccurredAt, want)
	}

	stored, err := time.Parse(Layout, got.OccurredAt.Format(Layout))
	if err != nil {
		t.Fatalf("parse stored watermark: %v", err)
	}
	if !stored.Equal(got.OccurredAt) {
		t.Errorf("stored watermark = %v, want %v", stored, got.OccurredAt)
	}
}

func TestOrderItemToModel(t *testing.T) {
	tests := []struct {
		name string
		item OrderItem
		ok   bool
	}{
		{"whole quantity", OrderItem{CatalogID: 1, ItemQuantity: 2}, true},
		{"zero quantity", OrderItem{CatalogID: 1, ItemQuantity: 0}, false},
		{"negative quantity", OrderItem{CatalogID: 1, ItemQuantity: -1}, false},
		{"fractional quantity", OrderItem{CatalogID: 1, ItemQuantity: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.item.toModel()
			if ok != tt.ok {
				t.Errorf("toModel() ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}
