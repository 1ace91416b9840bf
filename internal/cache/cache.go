// Package cache is the read-through response cache. It only ever speeds things up: every
// failure is logged and treated as a miss.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"github.com/iyhunko/inventory-dashboard/internal/metrics"
)

// Prefix starts every key written by this package.
const Prefix = "cache:"

// Cache stores serialized responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// InvalidatePrefix drops every key starting with prefix.
	InvalidatePrefix(ctx context.Context, prefix string)
}

// Key builds the key of an owner's response: cache:<owner>:<parts joined by ':'>. The owner and
// every part are query-escaped so no segment can contain the separator.
func Key(owner string, parts ...string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = url.QueryEscape(part)
	}
	return OwnerPrefix(owner) + strings.Join(escaped, ":")
}

// OwnerPrefix is the prefix shared by every key of owner.
func OwnerPrefix(owner string) string {
	return Prefix + url.QueryEscape(owner) + ":"
}

// Fetch returns the cached value under key, or calls load and caches its result.
func Fetch[T any](ctx context.Context, c Cache, key string, load func() (T, error)) (T, error) {
	if raw, ok := c.Get(ctx, key); ok {
		var cached T
		err := json.Unmarshal(raw, &cached)
		if err == nil {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return cached, nil
		}
		slog.Warn("failed to decode cached value", slog.String("key", key), slog.Any("err", err))
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()

	value, err := load()
	if err != nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		slog.Warn("failed to encode value for cache", slog.String("key", key), slog.Any("err", err))
		return value, nil
	}
	c.Set(ctx, key, raw)
	return value, nil
}

// Noop never stores anything. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Noop) Set(context.Context, string, []byte) {}

func (Noop) InvalidatePrefix(context.Context, string) {}
