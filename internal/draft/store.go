package draft

import (
	"context"
	"log/slog"
	"sync"
)

// LineItem is one candidate order line inside a draft cart. At most one
// line exists per product within a cart.
type LineItem struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     float64 `json:"quantity"`
	UnitPriceUSD float64 `json:"unit_price_usd"`
}

// Filters narrows which products are offered for new additions. It never
// affects lines already in the cart.
type Filters struct {
	BrandID    *int64 `json:"brand_id,omitempty"`
	CategoryID *int64 `json:"category_id,omitempty"`
}

// Product identifies the currently highlighted product in the picker.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	PriceUSD float64 `json:"price_usd"`
}

// ItemPatch overwrites only the supplied fields of an existing line.
type ItemPatch struct {
	Quantity     *float64
	UnitPriceUSD *float64
}

// Store is the staging area for one order-in-progress. Mutations are applied
// in call order and each one synchronously mirrors to the snapshot store, so
// a restore at any point observes the latest mutation. A nil snapshot store
// degrades to pure in-memory behavior.
//
// The store sanitizes numeric representations but does not police business
// values; callers reject non-positive quantities and negative prices before
// mutating.
type Store struct {
	mu        sync.Mutex
	id        string
	filters   Filters
	items     []LineItem
	highlight *Product
	snapshots SnapshotStore
	logger    *slog.Logger
}

// NewStore builds a cart store and restores any durable snapshot for id.
// Snapshot read failures degrade silently to an empty draft.
func NewStore(ctx context.Context, id string, snapshots SnapshotStore, logger *slog.Logger) *Store {
	s := &Store{id: id, snapshots: snapshots, logger: logger}
	if snapshots != nil {
		items, err := snapshots.Load(ctx, id)
		if err != nil {
			logger.Warn("draft restore failed, starting empty", slog.String("cart_id", id), slog.Any("error", err))
		} else {
			s.items = items
		}
	}
	return s
}

// ID returns the cart identifier.
func (s *Store) ID() string {
	return s.id
}

// SetFilters shallow-merges the supplied fields into the active filters.
func (s *Store) SetFilters(partial Filters) Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	if partial.BrandID != nil {
		s.filters.BrandID = partial.BrandID
	}
	if partial.CategoryID != nil {
		s.filters.CategoryID = partial.CategoryID
	}
	return s.filters
}

// Filters returns the active product filters.
func (s *Store) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Highlight records the product currently highlighted in the picker.
func (s *Store) Highlight(p *Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = p
}

// Highlighted returns the highlighted product, if any.
func (s *Store) Highlighted() *Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight
}

// AddItem stages a candidate line. Re-adding a product accumulates the
// normalized quantity onto the existing line and overwrites its price;
// otherwise the line is appended. Never produces duplicate lines.
func (s *Store) AddItem(ctx context.Context, candidate LineItem) LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty := NormalizeQuantity(candidate.Quantity)
	for i := range s.items {
		if s.items[i].ProductID == candidate.ProductID {
			s.items[i].Quantity = NormalizeQuantity(s.items[i].Quantity + qty)
			s.items[i].UnitPriceUSD = candidate.UnitPriceUSD
			merged := s.items[i]
			s.persist(ctx)
			return merged
		}
	}

	added := LineItem{
		ProductID:    candidate.ProductID,
		ProductName:  candidate.ProductName,
		Quantity:     qty,
		UnitPriceUSD: candidate.UnitPriceUSD,
	}
	s.items = append(s.items, added)
	s.persist(ctx)
	return added
}

// UpdateItem overwrites the supplied fields on the matching line. Updating
// an absent product is a no-op reported by the second return value.
func (s *Store) UpdateItem(ctx context.Context, productID int64, patch ItemPatch) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID != productID {
			continue
		}
		if patch.Quantity != nil {
			s.items[i].Quantity = NormalizeQuantity(*patch.Quantity)
		}
		if patch.UnitPriceUSD != nil {
			s.items[i].UnitPriceUSD = *patch.UnitPriceUSD
		}
		updated := s.items[i]
		s.persist(ctx)
		return updated, true
	}
	return LineItem{}, false
}

// RemoveItem deletes the matching line; absent products are a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// Clear empties the cart, drops the highlight and deletes the durable
// snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.highlight = nil
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, s.id); err != nil {
			s.logger.Warn("draft snapshot delete failed", slog.String("cart_id", s.id), slog.Any("error", err))
		}
	}
}

// Items returns a copy of the staged lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalUSD sums quantity * unit price across the cart.
func (s *Store) TotalUSD() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.items {
		total += item.Quantity * item.UnitPriceUSD
	}
	return total
}

// persist mirrors the current items to durable storage. Failures are logged
// and swallowed: the worst case is silent loss of a non-authoritative draft.
// Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	if err := s.snapshots.Save(ctx, s.id, items); err != nil {
		s.logger.Warn("draft snapshot save failed", slog.String("cart_id", s.id), slog.Any("error", err))
	}
}
