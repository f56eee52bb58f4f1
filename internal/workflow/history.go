package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/vantage-erp/vantage-erp/internal/orders"
)

// HistoryFetcher reads the server-maintained status change log.
type HistoryFetcher interface {
	History(ctx context.Context, orderID int64) ([]orders.StatusChange, error)
}

// HistoryService projects the remote audit trail. Entries keep the server's
// ordering. Concurrent fetches for one order are collapsed via singleflight
// and the last successful copy is cached; when the upstream fetch fails the
// cached copy is served so a previously rendered trail is never destroyed
// by a transient error.
type HistoryService struct {
	fetcher HistoryFetcher
	cache   *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
}

// NewHistoryService constructs the read surface. cache may be nil, which
// disables the last-good fallback.
func NewHistoryService(fetcher HistoryFetcher, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *HistoryService {
	return &HistoryService{fetcher: fetcher, cache: cache, ttl: ttl, logger: logger}
}

func historyKey(orderID int64) string {
	return fmt.Sprintf("workflow:history:%d", orderID)
}

// History returns the status change log for orderID.
func (s *HistoryService) History(ctx context.Context, orderID int64) ([]orders.StatusChange, error) {
	if orderID <= 0 {
		return nil, ErrMissingOrder
	}

	v, err, _ := s.group.Do(historyKey(orderID), func() (any, error) {
		entries, err := s.fetcher.History(ctx, orderID)
		if err == nil {
			s.cacheSet(ctx, orderID, entries)
			return entries, nil
		}
		if cached, ok := s.cacheGet(ctx, orderID); ok {
			s.logger.Warn("history fetch failed, serving last-good copy",
				slog.Int64("order_id", orderID), slog.Any("error", err))
			return cached, nil
		}
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return v.([]orders.StatusChange), nil
}

// Invalidate drops the cached trail so the next read refetches, e.g. right
// after a confirmed transition.
func (s *HistoryService) Invalidate(ctx context.Context, orderID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, historyKey(orderID)).Err(); err != nil {
		s.logger.Warn("history cache invalidate failed",
			slog.Int64("order_id", orderID), slog.Any("error", err))
	}
}

func (s *HistoryService) cacheSet(ctx context.Context, orderID int64, entries []orders.StatusChange) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, historyKey(orderID), payload, s.ttl).Err(); err != nil {
		s.logger.Warn("history cache set failed",
			slog.Int64("order_id", orderID), slog.Any("error", err))
	}
}

func (s *HistoryService) cacheGet(ctx context.Context, orderID int64) ([]orders.StatusChange, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, historyKey(orderID)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []orders.StatusChange
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}
