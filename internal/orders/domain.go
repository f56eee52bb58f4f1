package orders

import "time"

// Status is one value of the closed order-lifecycle enum. The remote order
// service owns the lifecycle; this service only ever proposes values from
// this set.
type Status string

const (
	StatusCreated   Status = "created"
	StatusConfirmed Status = "confirmed"
	StatusPacked    Status = "packed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

// AllStatuses lists every lifecycle status in display order.
var AllStatuses = []Status{
	StatusCreated,
	StatusConfirmed,
	StatusPacked,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
}

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrderItem is one line of a submitted order as the remote service encodes it.
type OrderItem struct {
	Product  int64   `json:"product"`
	Qty      float64 `json:"qty"`
	PriceUSD float64 `json:"price_usd"`
}

// Order is the remote service's order representation. Referenced, not owned.
type Order struct {
	ID       int64       `json:"id"`
	Dealer   int64       `json:"dealer"`
	Status   Status      `json:"status"`
	Items    []OrderItem `json:"items"`
	TotalUSD float64     `json:"total_usd"`
}

// CreateOrderRequest is the POST /orders/ payload.
type CreateOrderRequest struct {
	Dealer int64       `json:"dealer"`
	Status Status      `json:"status"`
	Items  []OrderItem `json:"items"`
}

// StatusChange is one row of the server-maintained status history.
// A nil OldStatus denotes the order's initial creation.
type StatusChange struct {
	ID         int64     `json:"id"`
	OldStatus  *Status   `json:"old_status"`
	NewStatus  Status    `json:"new_status"`
	Actor      *string   `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}
