package draft

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/orders"
)

type fakeCreator struct {
	lastReq orders.CreateOrderRequest
	calls   int
	err     error
}

func (f *fakeCreator) Create(_ context.Context, req orders.CreateOrderRequest) (orders.Order, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return orders.Order{}, f.err
	}
	return orders.Order{ID: 42, Dealer: req.Dealer, Status: req.Status, Items: req.Items}, nil
}

func TestSubmitBuildsPayloadAndClears(t *testing.T) {
	snapshots := newMemorySnapshots()
	creator := &fakeCreator{}
	svc := NewService(snapshots, creator, slog.Default())
	ctx := context.Background()

	cart := svc.CreateCart(ctx)
	cart.AddItem(ctx, LineItem{ProductID: 7, ProductName: "Widget", Quantity: 2, UnitPriceUSD: 10})
	cart.AddItem(ctx, LineItem{ProductID: 7, ProductName: "Widget", Quantity: 3, UnitPriceUSD: 12})

	order, err := svc.Submit(ctx, cart.ID(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(42), order.ID)

	require.Equal(t, int64(5), creator.lastReq.Dealer)
	require.Equal(t, orders.StatusCreated, creator.lastReq.Status)
	require.Equal(t, []orders.OrderItem{{Product: 7, Qty: 5, PriceUSD: 12}}, creator.lastReq.Items)

	require.Empty(t, cart.Items())
	_, present := snapshots.data[cart.ID()]
	require.False(t, present)
}

func TestSubmitEmptyDraft(t *testing.T) {
	svc := NewService(nil, &fakeCreator{}, slog.Default())
	ctx := context.Background()

	cart := svc.CreateCart(ctx)
	_, err := svc.Submit(ctx, cart.ID(), 5)
	require.ErrorIs(t, err, ErrEmptyDraft)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	creator := &fakeCreator{err: errors.New("boom")}
	svc := NewService(nil, creator, slog.Default())
	ctx := context.Background()

	cart := svc.CreateCart(ctx)
	cart.AddItem(ctx, LineItem{ProductID: 1, Quantity: 1, UnitPriceUSD: 2})

	_, err := svc.Submit(ctx, cart.ID(), 5)
	require.Error(t, err)
	require.Len(t, cart.Items(), 1)
}

func TestCartRestoresFromSnapshot(t *testing.T) {
	snapshots := newMemorySnapshots()
	svc := NewService(snapshots, &fakeCreator{}, slog.Default())
	ctx := context.Background()

	cart := svc.CreateCart(ctx)
	cart.AddItem(ctx, LineItem{ProductID: 3, Quantity: 1.5, UnitPriceUSD: 4})
	id := cart.ID()

	// a fresh registry simulates process churn; the snapshot survives
	restored := NewService(snapshots, &fakeCreator{}, slog.Default()).Cart(ctx, id)
	items := restored.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(3), items[0].ProductID)
	require.Equal(t, 1.5, items[0].Quantity)
}
