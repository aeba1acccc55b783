package address

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"financas/internal/cache"
	"financas/internal/core"
)

// cacheEntry remembers negative answers as well, so a mistyped code is not
// sent upstream on every keystroke.
type cacheEntry struct {
	addr     core.Address
	notFound bool
}

// Metrics counts lookups by outcome.
type Metrics struct {
	Lookups  int64
	NotFound int64
	Failures int64
	Upstream int64
}

// CachedLookup puts an LRU cache, request coalescing and an optional
// persistent store in front of another Lookuper. Transport failures are
// never cached.
type CachedLookup struct {
	next  Lookuper
	cache *cache.LRUCache[cacheEntry]
	store Store
	group singleflight.Group

	lookups  atomic.Int64
	notFound atomic.Int64
	failures atomic.Int64
	upstream atomic.Int64
}

// NewCachedLookup wraps next with an LRU of size entries living ttl.
// store may be nil.
func NewCachedLookup(next Lookuper, size int, ttl time.Duration, store Store) *CachedLookup {
	return &CachedLookup{
		next:  next,
		cache: cache.NewLRUCache[cacheEntry](size, ttl),
		store: store,
	}
}

// CleanExpired implements cache.Cleaner.
func (l *CachedLookup) CleanExpired() int {
	return l.cache.CleanExpired()
}

// CacheStats returns the LRU counters.
func (l *CachedLookup) CacheStats() cache.Stats {
	return l.cache.Stats()
}

// Lookup implements Lookuper. Callers asking for the same key share one
// upstream call; a caller whose context ends stops waiting without
// cancelling the call for the others.
func (l *CachedLookup) Lookup(ctx context.Context, postalCode string) (core.Address, error) {
	l.lookups.Add(1)
	key := core.PostalCodeKey(postalCode)

	if e, ok := l.cache.Get(key); ok {
		return l.resolve(e)
	}

	ch := l.group.DoChan(key, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx), key, postalCode)
	})
	select {
	case <-ctx.Done():
		return core.Address{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			l.failures.Add(1)
			return core.Address{}, res.Err
		}
		return l.resolve(res.Val.(cacheEntry))
	}
}

// fetch consults the store, then the upstream, and caches the answer.
// The upstream client bounds the call with its own timeout.
func (l *CachedLookup) fetch(ctx context.Context, key, postalCode string) (cacheEntry, error) {
	if l.store != nil {
		addr, found, err := l.store.GetAddress(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "Address store read failed", "component", "address", "postal_code", key, "error", err)
		} else if found {
			e := cacheEntry{addr: addr}
			l.cache.Set(key, e)
			return e, nil
		}
	}

	l.upstream.Add(1)
	addr, err := l.next.Lookup(ctx, postalCode)
	switch {
	case errors.Is(err, core.ErrAddressNotFound):
		e := cacheEntry{notFound: true}
		l.cache.Set(key, e)
		return e, nil
	case err != nil:
		return cacheEntry{}, err
	}

	e := cacheEntry{addr: addr}
	l.cache.Set(key, e)
	if l.store != nil {
		if err := l.store.PutAddress(ctx, addr); err != nil {
			slog.WarnContext(ctx, "Address store write failed", "component", "address", "postal_code", key, "error", err)
		}
	}
	return e, nil
}

func (l *CachedLookup) resolve(e cacheEntry) (core.Address, error) {
	if e.notFound {
		l.notFound.Add(1)
		return core.Address{}, core.ErrAddressNotFound
	}
	return e.addr, nil
}

// Metrics returns outcome counters.
func (l *CachedLookup) Metrics() Metrics {
	return Metrics{
		Lookups:  l.lookups.Load(),
		NotFound: l.notFound.Load(),
		Failures: l.failures.Load(),
		Upstream: l.upstream.Load(),
	}
}
