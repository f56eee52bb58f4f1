package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrOrderNotFound indicates the remote service does not know the order.
	ErrOrderNotFound = errors.New("orders: order not found")
	// ErrRejected indicates the remote service refused the request.
	ErrRejected = errors.New("orders: request rejected")
)

// ClientConfig configures the outbound order-service client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the authoritative remote order service.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient constructs a Client for the given base URL.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	return &Client{http: httpClient, logger: logger}
}

// Create submits a new order built from a draft cart.
func (c *Client) Create(ctx context.Context, req CreateOrderRequest) (Order, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/orders/")
	if err != nil {
		return Order{}, fmt.Errorf("orders: create request failed: %w", err)
	}
	switch code := resp.StatusCode(); {
	case code == 200 || code == 201:
		var order Order
		if err := json.Unmarshal(resp.Body(), &order); err != nil {
			return Order{}, fmt.Errorf("orders: decode create response: %w", err)
		}
		return order, nil
	case code >= 400 && code < 500:
		c.logger.Warn("order creation rejected", slog.Int("status", code))
		return Order{}, fmt.Errorf("%w: status %d", ErrRejected, code)
	default:
		return Order{}, fmt.Errorf("orders: unexpected status code %d", code)
	}
}

// UpdateStatus patches the order's lifecycle status. The returned order
// minimally carries the status the server settled on.
func (c *Client) UpdateStatus(ctx context.Context, orderID int64, status Status) (Order, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", strconv.FormatInt(orderID, 10)).
		SetBody(map[string]Status{"status": status}).
		Patch("/orders/{id}/status/")
	if err != nil {
		return Order{}, fmt.Errorf("orders: status update failed: %w", err)
	}
	switch code := resp.StatusCode(); {
	case code == 200:
		var order Order
		if err := json.Unmarshal(resp.Body(), &order); err != nil {
			return Order{}, fmt.Errorf("orders: decode status response: %w", err)
		}
		return order, nil
	case code == 404:
		return Order{}, ErrOrderNotFound
	case code >= 400 && code < 500:
		c.logger.Warn("status update rejected", slog.Int64("order_id", orderID), slog.Int("status", code))
		return Order{}, fmt.Errorf("%w: status %d", ErrRejected, code)
	default:
		return Order{}, fmt.Errorf("orders: unexpected status code %d", code)
	}
}

// History fetches the server-ordered status change log for an order.
func (c *Client) History(ctx context.Context, orderID int64) ([]StatusChange, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(orderID, 10)).
		Get("/orders/{id}/history/")
	if err != nil {
		return nil, fmt.Errorf("orders: history request failed: %w", err)
	}
	switch code := resp.StatusCode(); {
	case code == 200:
		var entries []StatusChange
		if err := json.Unmarshal(resp.Body(), &entries); err != nil {
			return nil, fmt.Errorf("orders: decode history response: %w", err)
		}
		return entries, nil
	case code == 404:
		return nil, ErrOrderNotFound
	default:
		return nil, fmt.Errorf("orders: unexpected status code %d", code)
	}
}
