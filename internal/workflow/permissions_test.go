package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/orders"
)

func TestPermittedStatusesFailClosed(t *testing.T) {
	require.Empty(t, PermittedStatuses(""))
	require.Empty(t, PermittedStatuses("unknown-role"))

	for _, status := range orders.AllStatuses {
		require.False(t, PermittedStatuses("unknown-role").Contains(status))
	}
}

func TestPermittedStatusesSales(t *testing.T) {
	set := PermittedStatuses("sales")
	require.ElementsMatch(t,
		[]orders.Status{orders.StatusCreated, orders.StatusConfirmed, orders.StatusCancelled},
		set.List())
	require.False(t, set.Contains(orders.StatusPacked))
}

func TestPermittedStatusesWarehouse(t *testing.T) {
	set := PermittedStatuses("warehouse")
	require.True(t, set.Contains(orders.StatusPacked))
	require.True(t, set.Contains(orders.StatusReturned))
	require.False(t, set.Contains(orders.StatusCancelled))
}

func TestPermittedStatusesFullAccessRoles(t *testing.T) {
	for _, role := range []string{"finance", "admin", "owner"} {
		require.Len(t, PermittedStatuses(role).List(), len(orders.AllStatuses), role)
	}
}

func TestStatusSetListKeepsLifecycleOrder(t *testing.T) {
	set := statusSet(orders.StatusCancelled, orders.StatusCreated, orders.StatusShipped)
	require.Equal(t,
		[]orders.Status{orders.StatusCreated, orders.StatusShipped, orders.StatusCancelled},
		set.List())
}
