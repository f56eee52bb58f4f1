package workflow

import (
	"time"

	"github.com/vantage-erp/vantage-erp/internal/orders"
)

// RoleHeader carries the acting role resolved by the upstream auth layer.
// Role resolution itself is not this service's concern; the value is
// consumed read-only and an absent header fails closed.
const RoleHeader = "X-Acting-Role"

type stageRequest struct {
	CurrentStatus orders.Status `json:"current_status" validate:"required"`
	Status        orders.Status `json:"status" validate:"required"`
}

type permittedResponse struct {
	Role     string          `json:"role"`
	Statuses []orders.Status `json:"statuses"`
}

// historyEntry mirrors orders.StatusChange with the initial-creation marker
// pre-computed: a nil old status is the order being created, not a
// transition from an unknown state.
type historyEntry struct {
	ID         int64          `json:"id"`
	OldStatus  *orders.Status `json:"old_status"`
	NewStatus  orders.Status  `json:"new_status"`
	Actor      *string        `json:"actor"`
	OccurredAt time.Time      `json:"occurred_at"`
	Initial    bool           `json:"initial"`
}

func newHistoryEntries(changes []orders.StatusChange) []historyEntry {
	entries := make([]historyEntry, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, historyEntry{
			ID:         change.ID,
			OldStatus:  change.OldStatus,
			NewStatus:  change.NewStatus,
			Actor:      change.Actor,
			OccurredAt: change.OccurredAt,
			Initial:    change.OldStatus == nil,
		})
	}
	return entries
}
