package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, slog.Default())
}

func TestCreateOrder(t *testing.T) {
	var got CreateOrderRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Order{ID: 42, Dealer: got.Dealer, Status: got.Status, Items: got.Items})
	}))

	order, err := client.Create(context.Background(), CreateOrderRequest{
		Dealer: 5,
		Status: StatusCreated,
		Items:  []OrderItem{{Product: 7, Qty: 5, PriceUSD: 12}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), order.ID)
	require.Equal(t, []OrderItem{{Product: 7, Qty: 5, PriceUSD: 12}}, got.Items)
}

func TestCreateOrderRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	_, err := client.Create(context.Background(), CreateOrderRequest{Dealer: 5, Status: StatusCreated})
	require.ErrorIs(t, err, ErrRejected)
}

func TestUpdateStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/orders/9/status/", r.URL.Path)

		var body map[string]Status
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, StatusPacked, body["status"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{ID: 9, Status: StatusPacked})
	}))

	order, err := client.UpdateStatus(context.Background(), 9, StatusPacked)
	require.NoError(t, err)
	require.Equal(t, StatusPacked, order.Status)
}

func TestUpdateStatusNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.UpdateStatus(context.Background(), 9, StatusPacked)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHistory(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/9/history/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"old_status":null,"new_status":"created","actor":null,"occurred_at":"2026-01-02T10:00:00Z"},
			{"id":2,"old_status":"created","new_status":"confirmed","actor":"sales@hq","occurred_at":"2026-01-02T11:00:00Z"}
		]`))
	}))

	entries, err := client.History(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Nil(t, entries[0].OldStatus)
	require.NotNil(t, entries[1].OldStatus)
	require.Equal(t, StatusCreated, *entries[1].OldStatus)
}

func TestStatusValid(t *testing.T) {
	require.True(t, StatusCreated.Valid())
	require.True(t, StatusReturned.Valid())
	require.False(t, Status("teleported").Valid())
	require.False(t, Status("").Valid())
}
