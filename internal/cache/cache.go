// Package cache keeps query results keyed by (name, params), shares in-flight
// fetches between identical callers and drops results by name when a
// mutation changes the underlying rows.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrDisabled is returned by FetchIf when a query lacks its required
// parameters. Nothing is fetched or cached.
var ErrDisabled = errors.New("query disabled: required parameters missing")

// Key identifies a cached result: the logical query name plus its
// canonicalised parameters.
type Key struct {
	Name   string
	Params string
}

// NewKey builds a key with params sorted by name, so equal parameter sets
// always produce equal keys.
func NewKey(name string, params map[string]string) Key {
	if len(params) == 0 {
		return Key{Name: name}
	}
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(params[k]))
	}
	return Key{Name: name, Params: b.String()}
}

func (k Key) String() string {
	return k.Name + ":" + k.Params
}

// Coordinator is the process-wide query cache. It is safe for concurrent use.
type Coordinator struct {
	store  Store
	group  singleflight.Group
	logger *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

func NewCoordinator(store Store, logger *slog.Logger) *Coordinator {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:       store,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

func (c *Coordinator) generation(name string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[name]
}

// storeIfCurrent caches raw unless key.Name was invalidated after the fetch
// began. The check and the write happen under c.mu so an Invalidate cannot
// slip between them.
func (c *Coordinator) storeIfCurrent(ctx context.Context, key Key, gen uint64, raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key.Name] != gen {
		return
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		c.logger.Warn("cache write failed", "key", key.String(), "error", err)
	}
}

// Invalidate drops every cached entry of each name, whatever its params.
// Fetches already in flight for those names will not populate the cache.
func (c *Coordinator) Invalidate(ctx context.Context, names ...string) error {
	c.mu.Lock()
	for _, name := range names {
		c.generations[name]++
	}
	c.mu.Unlock()

	var errs []error
	for _, name := range names {
		if err := c.store.DeleteName(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	c.logger.Debug("cache invalidated", "names", names)
	return nil
}

// Fetch returns the cached value for key or runs fn once for all concurrent
// callers of the same key. Errors are returned to every waiting caller and
// are never cached.
func Fetch[T any](ctx context.Context, c *Coordinator, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("cache read failed", "key", key.String(), "error", err)
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("cache entry unreadable", "key", key.String())
	}

	gen := c.generation(key.Name)
	flightKey := key.String() + "#" + strconv.FormatUint(gen, 10)

	ch := c.group.DoChan(flightKey, func() (interface{}, error) {
		// The shared fetch outlives any single caller going away.
		detached := context.WithoutCancel(ctx)
		value, err := fn(detached)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key.Name, err)
		}
		c.storeIfCurrent(detached, key, gen, raw)
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		var value T
		if err := json.Unmarshal(res.Val.([]byte), &value); err != nil {
			return zero, fmt.Errorf("decode %s: %w", key.Name, err)
		}
		return value, nil
	}
}

// FetchIf is Fetch for queries that only run once their required parameters
// are present.
func FetchIf[T any](ctx context.Context, c *Coordinator, enabled bool, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	if !enabled {
		var zero T
		return zero, ErrDisabled
	}
	return Fetch(ctx, c, key, fn)
}
