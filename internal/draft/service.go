package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/vantage-erp/vantage-erp/internal/orders"
)

// ErrEmptyDraft indicates a submission attempt with no staged lines.
var ErrEmptyDraft = errors.New("draft: cart has no line items")

// OrderCreator submits a finished draft to the remote order service.
type OrderCreator interface {
	Create(ctx context.Context, req orders.CreateOrderRequest) (orders.Order, error)
}

// Service owns the cart registry. Each cart is an isolated Store instance;
// an unknown cart id resolves to whatever its durable snapshot holds, which
// is how a reload survives process churn.
type Service struct {
	mu        sync.Mutex
	stores    map[string]*Store
	snapshots SnapshotStore
	creator   OrderCreator
	logger    *slog.Logger
}

// NewService constructs the cart registry.
func NewService(snapshots SnapshotStore, creator OrderCreator, logger *slog.Logger) *Service {
	return &Service{
		stores:    make(map[string]*Store),
		snapshots: snapshots,
		creator:   creator,
		logger:    logger,
	}
}

// CreateCart mints a new empty cart and returns it.
func (s *Service) CreateCart(ctx context.Context) *Store {
	id := uuid.NewString()
	store := NewStore(ctx, id, s.snapshots, s.logger)
	s.mu.Lock()
	s.stores[id] = store
	s.mu.Unlock()
	return store
}

// Cart returns the store for id, restoring it from durable storage when the
// registry does not hold it yet.
func (s *Service) Cart(ctx context.Context, id string) *Store {
	s.mu.Lock()
	if store, ok := s.stores[id]; ok {
		s.mu.Unlock()
		return store
	}
	s.mu.Unlock()

	store := NewStore(ctx, id, s.snapshots, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.stores[id]; ok {
		return existing
	}
	s.stores[id] = store
	return store
}

// DropCart clears the cart and evicts it from the registry.
func (s *Service) DropCart(ctx context.Context, id string) {
	s.mu.Lock()
	store, ok := s.stores[id]
	delete(s.stores, id)
	s.mu.Unlock()
	if !ok {
		store = NewStore(ctx, id, s.snapshots, s.logger)
	}
	store.Clear(ctx)
}

// Submit sends the cart's lines to the remote order-creation endpoint and
// clears the draft on success. The draft stays intact when the remote call
// fails so nothing staged is lost.
func (s *Service) Submit(ctx context.Context, id string, dealer int64) (orders.Order, error) {
	store := s.Cart(ctx, id)
	items := store.Items()
	if len(items) == 0 {
		return orders.Order{}, ErrEmptyDraft
	}

	payload := make([]orders.OrderItem, 0, len(items))
	for _, item := range items {
		payload = append(payload, orders.OrderItem{
			Product:  item.ProductID,
			Qty:      item.Quantity,
			PriceUSD: item.UnitPriceUSD,
		})
	}

	order, err := s.creator.Create(ctx, orders.CreateOrderRequest{
		Dealer: dealer,
		Status: orders.StatusCreated,
		Items:  payload,
	})
	if err != nil {
		return orders.Order{}, fmt.Errorf("submit draft: %w", err)
	}

	store.Clear(ctx)
	s.logger.Info("draft submitted",
		slog.String("cart_id", id),
		slog.Int64("order_id", order.ID),
		slog.Int("lines", len(items)))
	return order, nil
}
