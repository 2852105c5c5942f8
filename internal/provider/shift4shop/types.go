package shift4shop

// Order is an order as returned by GET /Orders.
type Order struct {
	OrderID       int         `json:"OrderID"`
	InvoiceNumber int         `json:"InvoiceNumber"`
	OrderDate     string      `json:"OrderDate"`
	OrderStatusID int         `json:"OrderStatusID"`
	OrderItemList []OrderItem `json:"OrderItemList"`
}

// OrderItem is one line of an Order.
type OrderItem struct {
	CatalogID       int      `json:"CatalogID"`
	ItemID          string   `json:"ItemID"`
	ItemQuantity    float64  `json:"ItemQuantity"`
	ItemUnitPrice   float64  `json:"ItemUnitPrice"`
	ItemDescription string   `json:"ItemDescription"`
	ItemUnitStock   *float64 `json:"ItemUnitStock"`
}

// Product is a catalog product as returned by GET /Products.
type Product struct {
	SKUInfo SKUInfo `json:"SKUInfo"`
}

// SKUInfo identifies a product and its stock.
type SKUInfo struct {
	CatalogID int     `json:"CatalogID"`
	SKU       string  `json:"SKU"`
	Name      string  `json:"Name"`
	Price     float64 `json:"Price"`
	Stock     float64 `json:"Stock"`
}
