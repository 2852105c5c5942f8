package etsy

// Listing is a shop listing from the Open API v3 listings endpoint.
type Listing struct {
	ListingID int64  `json:"listing_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	State     string `json:"state"`
}

type listingsResponse struct {
	Count   int       `json:"count"`
	Results []Listing `json:"results"`
}

// Shop holds the fields of getShop the client reads.
type Shop struct {
	ShopID               int64  `json:"shop_id"`
	ShopName             string `json:"shop_name"`
	TransactionSoldCount int    `json:"transaction_sold_count"`
}
