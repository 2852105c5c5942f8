package square

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/wacksbywarby/wacks/internal/model"
)

// StateCompleted is the only order state that counts as a sale.
const StateCompleted = "COMPLETED"

// occurredAt prefers closed_at, the field orders are searched and sorted by.
func (o Order) occurredAt() (time.Time, error) {
	raw := o.ClosedAt
	if raw == "" {
		raw = o.CreatedAt
	}
	t, err := time.Parse(Layout, raw)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse order time %q", raw)
	}
	return t.UTC(), nil
}

func (o Order) toModel() (order model.Order, skipped []LineItem, err error) {
	occurred, err := o.occurredAt()
	if err != nil {
		return model.Order{}, nil, err
	}

	order = model.Order{
		ID:         o.ID,
		Status:     o.State,
		Completed:  o.State == StateCompleted,
		OccurredAt: occurred,
		Location:   o.LocationID,
	}
	for _, item := range o.LineItems {
		li, ok := item.toModel()
		if !ok {
			skipped = append(skipped, item)
			continue
		}
		order.LineItems = append(order.LineItems, li)
	}
	return order, skipped, nil
}

func (li LineItem) toModel() (model.LineItem, bool) {
	qty, ok := parseQuantity(li.Quantity)
	if !ok || qty <= 0 {
		return model.LineItem{}, false
	}

	id := li.CatalogObjectID
	if id == "" {
		// Custom amounts have no catalog object.
		id = li.UID
	}

	out := model.LineItem{
		ListingID: id,
		Name:      li.Name,
		Quantity:  qty,
	}
	if li.VariationName != "" && li.VariationName != "Regular" {
		out.Name = li.Name + " (" + li.VariationName + ")"
	}
	if li.BasePriceMoney != nil {
		price := decimal.New(li.BasePriceMoney.Amount, -2)
		out.UnitPrice = &price
	}
	return out, true
}

// parseQuantity accepts whole-number decimal strings such as "2" or "2.0".
func parseQuantity(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	return int(d.IntPart()), true
}
