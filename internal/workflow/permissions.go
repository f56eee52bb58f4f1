// Package workflow governs which order status may be set next, by whom,
// and how a staged change is confirmed and reconciled.
package workflow

import "github.com/vantage-erp/vantage-erp/internal/orders"

// StatusSet is an immutable set of lifecycle statuses.
type StatusSet map[orders.Status]struct{}

// Contains reports membership.
func (s StatusSet) Contains(status orders.Status) bool {
	_, ok := s[status]
	return ok
}

// List returns the members in lifecycle display order.
func (s StatusSet) List() []orders.Status {
	out := make([]orders.Status, 0, len(s))
	for _, status := range orders.AllStatuses {
		if s.Contains(status) {
			out = append(out, status)
		}
	}
	return out
}

func statusSet(statuses ...orders.Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, status := range statuses {
		set[status] = struct{}{}
	}
	return set
}

// rolePermissions maps the acting role to the statuses it may set. The table
// is loaded once at process start and is deliberately not user-editable.
// Permissions depend on role only, not on the order's current status.
var rolePermissions = map[string]StatusSet{
	"sales":     statusSet(orders.StatusCreated, orders.StatusConfirmed, orders.StatusCancelled),
	"warehouse": statusSet(orders.StatusPacked, orders.StatusShipped, orders.StatusDelivered, orders.StatusReturned),
	"finance":   statusSet(orders.AllStatuses...),
	"admin":     statusSet(orders.AllStatuses...),
	"owner":     statusSet(orders.AllStatuses...),
}

// PermittedStatuses resolves the statuses a role may set. Unknown or empty
// roles resolve to the empty set: no permission never widens to all
// permissions.
func PermittedStatuses(role string) StatusSet {
	if set, ok := rolePermissions[role]; ok {
		return set
	}
	return StatusSet{}
}
