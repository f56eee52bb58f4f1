package draft

// Request/response shapes for the cart HTTP surface. Business-value checks
// (positive quantity, non-negative price) live here in the validate tags:
// the Store itself only sanitizes numeric representations.

type addItemRequest struct {
	ProductID    int64   `json:"product_id" validate:"required,gt=0"`
	ProductName  string  `json:"product_name" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"required,gt=0"`
	UnitPriceUSD float64 `json:"unit_price_usd" validate:"gte=0"`
}

type updateItemRequest struct {
	Quantity     *float64 `json:"quantity" validate:"omitempty,gt=0"`
	UnitPriceUSD *float64 `json:"unit_price_usd" validate:"omitempty,gte=0"`
}

type filtersRequest struct {
	BrandID    *int64 `json:"brand_id"`
	CategoryID *int64 `json:"category_id"`
}

type highlightRequest struct {
	ProductID   int64   `json:"product_id" validate:"required,gt=0"`
	ProductName string  `json:"product_name"`
	PriceUSD    float64 `json:"price_usd" validate:"gte=0"`
}

type submitRequest struct {
	Dealer int64 `json:"dealer" validate:"required,gt=0"`
}

type cartResponse struct {
	ID          string     `json:"id"`
	Items       []LineItem `json:"items"`
	Filters     Filters    `json:"filters"`
	Highlighted *Product   `json:"highlighted,omitempty"`
	TotalUSD    float64    `json:"total_usd"`
}

func newCartResponse(store *Store) cartResponse {
	return cartResponse{
		ID:          store.ID(),
		Items:       store.Items(),
		Filters:     store.Filters(),
		Highlighted: store.Highlighted(),
		TotalUSD:    store.TotalUSD(),
	}
}
