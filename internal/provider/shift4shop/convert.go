package shift4shop

import (
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/wacksbywarby/wacks/internal/model"
)

// orderDateLayouts are the OrderDate formats seen from the API, tried in order.
var orderDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	Layout,
}

func parseOrderDate(s string) (time.Time, error) {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Newf("unrecognized order date %q", s)
}

// toModel converts an order. OccurredAt is cut to whole seconds to match the precision
// of the stored watermark. Items with an unusable quantity are returned in skipped
// instead of failing the order.
func (o Order) toModel(completed bool) (order model.Order, skipped []OrderItem, err error) {
	occurred, err := parseOrderDate(o.OrderDate)
	if err != nil {
		return model.Order{}, nil, err
	}

	order = model.Order{
		ID:         strconv.Itoa(o.OrderID),
		Status:     strconv.Itoa(o.OrderStatusID),
		Completed:  completed,
		OccurredAt: occurred.Truncate(time.Second),
	}
	for _, item := range o.OrderItemList {
		li, ok := item.toModel()
		if !ok {
			skipped = append(skipped, item)
			continue
		}
		order.LineItems = append(order.LineItems, li)
	}
	return order, skipped, nil
}

func (i OrderItem) toModel() (model.LineItem, bool) {
	qty, ok := wholeNumber(i.ItemQuantity)
	if !ok || qty <= 0 {
		return model.LineItem{}, false
	}

	price := decimal.NewFromFloat(i.ItemUnitPrice).Round(2)
	li := model.LineItem{
		ListingID: strconv.Itoa(i.CatalogID),
		Name:      i.ItemDescription,
		Quantity:  qty,
		UnitPrice: &price,
	}
	if i.ItemUnitStock != nil {
		if stock, ok := wholeNumber(*i.ItemUnitStock); ok && stock >= 0 {
			li.QuantityRemaining = &stock
		}
	}
	return li, true
}

func wholeNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
