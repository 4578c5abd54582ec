package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrMiss = errors.New("cache miss")

// Cache stores rendered responses. Get returns ErrMiss for absent or expired
// keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Generational namespaces every key with a generation number. Bumping the
// generation makes all earlier entries unreachable without deleting them;
// they age out through the backend's own eviction.
type Generational struct {
	logger     *slog.Logger
	backend    Cache
	ttl        time.Duration
	generation atomic.Uint64
	group      singleflight.Group
}

func NewGenerational(backend Cache, ttl time.Duration) *Generational {
	return &Generational{
		logger:  slog.Default().With(slog.String("module", "cache")),
		backend: backend,
		ttl:     ttl,
	}
}

func (g *Generational) Generation() uint64 {
	return g.generation.Load()
}

// Bump invalidates everything cached so far. The backend is cleared as well
// to free the unreachable entries; a failing clear is only logged.
func (g *Generational) Bump(ctx context.Context) uint64 {
	gen := g.generation.Add(1)
	g.logger.Debug("cache generation bumped", slog.Uint64("generation", gen))
	if err := g.backend.Clear(ctx); err != nil {
		g.logger.Warn("cache clear failed", slog.Any("error", err))
	}
	return gen
}

// Forget drops key from the current generation.
func (g *Generational) Forget(ctx context.Context, key string) error {
	return g.backend.Delete(ctx, g.key(key))
}

func (g *Generational) key(key string) string {
	return "g" + strconv.FormatUint(g.generation.Load(), 10) + ":" + key
}

const renderTimeout = 30 * time.Second

// GetOrRender returns the cached value for key or renders, stores and returns
// it. Concurrent callers for the same key share a single render, so render
// gets a context that outlives the caller who started it. Backend errors are
// logged and treated as a miss.
func (g *Generational) GetOrRender(ctx context.Context, key string, render func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	fullKey := g.key(key)

	data, err := g.backend.Get(ctx, fullKey)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrMiss) {
		g.logger.Warn("cache read failed", slog.String("key", fullKey), slog.Any("error", err))
	}

	v, err, _ := g.group.Do(fullKey, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), renderTimeout)
		defer cancel()

		data, err := render(ctx)
		if err != nil {
			return nil, err
		}
		if err := g.backend.Set(ctx, fullKey, data, g.ttl); err != nil {
			g.logger.Warn("cache write failed", slog.String("key", fullKey), slog.Any("error", err))
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", key, err)
	}
	return v.([]byte), nil
}
