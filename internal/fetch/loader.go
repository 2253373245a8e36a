package fetch

import (
	"context"
	"errors"
	"fmt"

	"cbso/pkg/platform/sentinel"
)

// Source is what the loader needs from the registry client.
type Source interface {
	References(ctx context.Context, enterpriseID string) ([]byte, error)
	AccountingData(ctx context.Context, filingID string) ([]byte, error)
}

// Loader reads registry payloads through the cache. Cache write failures are
// returned to the caller: silently refetching on every run would hide a
// broken cache behind registry quota burn.
type Loader struct {
	source Source
	cache  PayloadCache
}

// NewLoader combines a registry source with a payload cache.
func NewLoader(source Source, cache PayloadCache) *Loader {
	return &Loader{source: source, cache: cache}
}

// References returns the reference-list payload for one enterprise.
func (l *Loader) References(ctx context.Context, enterpriseID string) ([]byte, error) {
	return l.through(ctx, "refs:"+enterpriseID, func() ([]byte, error) {
		return l.source.References(ctx, enterpriseID)
	})
}

// Filing returns the filed document payload for one reference number.
func (l *Loader) Filing(ctx context.Context, filingID string) ([]byte, error) {
	return l.through(ctx, "filing:"+filingID, func() ([]byte, error) {
		return l.source.AccountingData(ctx, filingID)
	})
}

func (l *Loader) through(ctx context.Context, key string, fetch func() ([]byte, error)) ([]byte, error) {
	payload, err := l.cache.Get(ctx, key)
	if err == nil {
		return payload, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	payload, err = fetch()
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, key, payload); err != nil {
		return nil, fmt.Errorf("cache %s: %w", key, err)
	}
	return payload, nil
}
