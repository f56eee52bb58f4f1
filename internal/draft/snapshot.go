package draft

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
)

// SnapshotStore persists a cart's line items durably so a reload does not
// lose unsaved work. Implementations must treat an empty item slice as
// deletion: an empty draft is represented by absence, not an empty record.
type SnapshotStore interface {
	Save(ctx context.Context, cartID string, items []LineItem) error
	Load(ctx context.Context, cartID string) ([]LineItem, error)
	Delete(ctx context.Context, cartID string) error
}

// EncodeSnapshot serializes line items for durable storage.
func EncodeSnapshot(items []LineItem) ([]byte, error) {
	return json.Marshal(items)
}

// DecodeSnapshot restores line items from a stored payload. It never fails:
// an unparsable payload yields an empty slice and individual entries whose
// product id does not coerce to an integral number, or whose quantity does
// not coerce to a finite number, are dropped.
// Quantities are re-normalized and a missing or invalid price defaults to 0.
func DecodeSnapshot(raw []byte) []LineItem {
	if len(raw) == 0 {
		return nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}
	items := make([]LineItem, 0, len(rows))
	for _, row := range rows {
		id, ok := finiteNumber(row["product_id"])
		if !ok || id != math.Trunc(id) {
			continue
		}
		qty, ok := finiteNumber(row["quantity"])
		if !ok {
			continue
		}
		price, ok := finiteNumber(row["unit_price_usd"])
		if !ok {
			price = 0
		}
		name, _ := row["product_name"].(string)
		items = append(items, LineItem{
			ProductID:    int64(id),
			ProductName:  name,
			Quantity:     NormalizeQuantity(qty),
			UnitPriceUSD: price,
		})
	}
	return items
}

// finiteNumber coerces a decoded JSON value to a finite float64.
func finiteNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
