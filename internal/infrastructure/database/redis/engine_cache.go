package redis

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/smilescombine/internal/chem/smiles"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/pkg/errors"
)

// Engine is the molecular engine being cached.
type Engine interface {
	Canonicalize(ctx context.Context, s string, opts smiles.RenderOptions) (string, error)
	AromaticRings(ctx context.Context, s string) (int, error)
}

// CacheObserver receives hit and miss notifications per operation.
type CacheObserver interface {
	CacheHit(op string)
	CacheMiss(op string)
}

const (
	OpCanonicalize  = "canonicalize"
	OpAromaticRings = "aromatic_rings"
)

// CachedEngine memoises an Engine in a Cache.  Concurrent lookups of the
// same key share one computation.  Cache failures are logged and the inner
// engine answers; engine errors are never cached.
type CachedEngine struct {
	inner    Engine
	cache    Cache
	logger   logging.Logger
	ttl      time.Duration
	observer CacheObserver
	group    singleflight.Group
}

type CachedEngineOption func(*CachedEngine)

func WithEntryTTL(ttl time.Duration) CachedEngineOption {
	return func(e *CachedEngine) { e.ttl = ttl }
}

func WithObserver(o CacheObserver) CachedEngineOption {
	return func(e *CachedEngine) { e.observer = o }
}

func NewCachedEngine(inner Engine, cache Cache, log logging.Logger, opts ...CachedEngineOption) *CachedEngine {
	e := &CachedEngine{inner: inner, cache: cache, logger: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func canonicalKey(s string, opts smiles.RenderOptions) string {
	mode := "c:"
	if opts.AllHsExplicit {
		mode = "h:"
	}
	return "canon:" + mode + s
}

func ringsKey(s string) string {
	return "rings:" + s
}

func (e *CachedEngine) Canonicalize(ctx context.Context, s string, opts smiles.RenderOptions) (string, error) {
	key := canonicalKey(s, opts)
	if v, ok := e.lookup(ctx, OpCanonicalize, key); ok {
		return v, nil
	}
	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		out, err := e.inner.Canonicalize(ctx, s, opts)
		if err != nil {
			return "", err
		}
		e.store(ctx, key, out)
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (e *CachedEngine) AromaticRings(ctx context.Context, s string) (int, error) {
	key := ringsKey(s)
	if v, ok := e.lookup(ctx, OpAromaticRings, key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n, nil
		}
		e.logger.Warn("Discarding malformed cache entry", logging.String("key", key))
	}
	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		n, err := e.inner.AromaticRings(ctx, s)
		if err != nil {
			return 0, err
		}
		e.store(ctx, key, strconv.Itoa(n))
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (e *CachedEngine) lookup(ctx context.Context, op, key string) (string, bool) {
	v, err := e.cache.Get(ctx, key)
	if err == nil {
		if e.observer != nil {
			e.observer.CacheHit(op)
		}
		return v, true
	}
	if !errors.Is(err, ErrCacheMiss) {
		e.logger.Warn("Engine cache read failed", logging.String("key", key), logging.Err(err))
	}
	if e.observer != nil {
		e.observer.CacheMiss(op)
	}
	return "", false
}

func (e *CachedEngine) store(ctx context.Context, key, value string) {
	if err := e.cache.Set(ctx, key, value, e.ttl); err != nil {
		e.logger.Warn("Engine cache write failed", logging.String("key", key), logging.Err(err))
	}
}

//Personal.AI order the ending
