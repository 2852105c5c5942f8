package square

// Order is a Square order as returned by SearchOrders.
type Order struct {
	ID         string     `json:"id"`
	LocationID string     `json:"location_id"`
	State      string     `json:"state"` // OPEN, COMPLETED or CANCELED
	CreatedAt  string     `json:"created_at"`
	ClosedAt   string     `json:"closed_at"`
	LineItems  []LineItem `json:"line_items"`
}

// LineItem is one line of an Order. Quantity is a decimal string.
type LineItem struct {
	UID             string `json:"uid"`
	CatalogObjectID string `json:"catalog_object_id"`
	Name            string `json:"name"`
	VariationName   string `json:"variation_name"`
	Quantity        string `json:"quantity"`
	BasePriceMoney  *Money `json:"base_price_money"`
}

// Money is an amount in the smallest currency unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type searchOrdersRequest struct {
	LocationIDs   []string    `json:"location_ids"`
	Cursor        string      `json:"cursor,omitempty"`
	Limit         int         `json:"limit,omitempty"`
	ReturnEntries bool        `json:"return_entries"`
	Query         *orderQuery `json:"query,omitempty"`
}

type orderQuery struct {
	Filter orderFilter `json:"filter"`
	Sort   orderSort   `json:"sort"`
}

type orderFilter struct {
	DateTimeFilter dateTimeFilter `json:"date_time_filter"`
}

type dateTimeFilter struct {
	ClosedAt timeRange `json:"closed_at"`
}

type timeRange struct {
	StartAt string `json:"start_at,omitempty"`
	EndAt   string `json:"end_at,omitempty"`
}

type orderSort struct {
	SortField string `json:"sort_field"`
	SortOrder string `json:"sort_order"`
}

type searchOrdersResponse struct {
	Orders []Order `json:"orders"`
	Cursor string  `json:"cursor"`
}

type inventoryCountsRequest struct {
	CatalogObjectIDs []string `json:"catalog_object_ids"`
	LocationIDs      []string `json:"location_ids,omitempty"`
	States           []string `json:"states,omitempty"`
	Cursor           string   `json:"cursor,omitempty"`
}

// InventoryCount is the stock of one catalog object at one location.
type InventoryCount struct {
	CatalogObjectID string `json:"catalog_object_id"`
	LocationID      string `json:"location_id"`
	State           string `json:"state"`
	Quantity        string `json:"quantity"`
}

type inventoryCountsResponse struct {
	Counts []InventoryCount `json:"counts"`
	Cursor string           `json:"cursor"`
}

// CatalogObject is an ITEM from the catalog list endpoint.
type CatalogObject struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	ItemData *ItemData `json:"item_data"`
}

// ItemData holds an item's name and variations.
type ItemData struct {
	Name       string             `json:"name"`
	Variations []VariationObject `json:"variations"`
}

// VariationObject is an ITEM_VARIATION nested in an item.
type VariationObject struct {
	ID                string         `json:"id"`
	ItemVariationData *VariationData `json:"item_variation_data"`
}

// VariationData holds a variation's name.
type VariationData struct {
	Name string `json:"name"`
}

type listCatalogResponse struct {
	Objects []CatalogObject `json:"objects"`
	Cursor  string          `json:"cursor"`
}
