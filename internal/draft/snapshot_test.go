package draft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshotCorruptPayload(t *testing.T) {
	require.Empty(t, DecodeSnapshot([]byte("not json at all")))
	require.Empty(t, DecodeSnapshot([]byte(`{"items": true}`)))
	require.Empty(t, DecodeSnapshot(nil))
}

func TestDecodeSnapshotDropsInvalidEntries(t *testing.T) {
	raw := []byte(`[
		{"product_id": 7, "product_name": "Widget", "quantity": 2.5, "unit_price_usd": 10},
		{"product_id": "not-a-number", "quantity": 1},
		{"product_id": 8, "quantity": "oops"},
		{"product_id": "9", "quantity": "3.333", "unit_price_usd": "bad"}
	]`)

	items := DecodeSnapshot(raw)
	require.Len(t, items, 2)

	require.Equal(t, int64(7), items[0].ProductID)
	require.Equal(t, "Widget", items[0].ProductName)
	require.Equal(t, 2.5, items[0].Quantity)
	require.Equal(t, 10.0, items[0].UnitPriceUSD)

	// string numbers coerce, quantity re-normalizes, bad price defaults to 0
	require.Equal(t, int64(9), items[1].ProductID)
	require.Equal(t, 3.33, items[1].Quantity)
	require.Equal(t, 0.0, items[1].UnitPriceUSD)
}

func TestDecodeSnapshotDropsFractionalProductID(t *testing.T) {
	raw := []byte(`[
		{"product_id": 9.5, "quantity": 1, "unit_price_usd": 2},
		{"product_id": "7.25", "quantity": 1},
		{"product_id": 3, "quantity": 1}
	]`)

	// a fractional id must not truncate into some other product's line
	items := DecodeSnapshot(raw)
	require.Len(t, items, 1)
	require.Equal(t, int64(3), items[0].ProductID)
}

func TestSnapshotRoundTrip(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, ProductName: "A", Quantity: 2, UnitPriceUSD: 9.99},
		{ProductID: 2, ProductName: "B", Quantity: 0.5, UnitPriceUSD: 0},
	}
	payload, err := EncodeSnapshot(items)
	require.NoError(t, err)
	require.Equal(t, items, DecodeSnapshot(payload))
}
