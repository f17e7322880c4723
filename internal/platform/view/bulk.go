package view

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
)

// BulkResult reports which keys a bulk delete removed and which failed.
type BulkResult[K comparable] struct {
	Deleted []K          `json:"deleted"`
	Failed  map[K]string `json:"failed,omitempty"`
}

// DeleteFunc removes one record on the server.
type DeleteFunc[K comparable] func(ctx context.Context, k K) error

// DeleteEach deletes keys one at a time, continuing past failures. Failed
// carries the backend's message per key; the returned error combines every
// failure so the caller can raise a single notification.
func DeleteEach[K comparable](ctx context.Context, keys []K, del DeleteFunc[K]) (BulkResult[K], error) {
	res := BulkResult[K]{Failed: map[K]string{}}
	var errs error

	for _, k := range keys {
		err := ctx.Err()
		if err == nil {
			err = del(ctx, k)
		}
		if err != nil {
			res.Failed[k] = apiclient.Message(err)
			errs = multierr.Append(errs, fmt.Errorf("delete %v: %w", k, err))
			continue
		}
		res.Deleted = append(res.Deleted, k)
	}

	if len(res.Failed) == 0 {
		res.Failed = nil
	}
	return res, errs
}

// LookupFunc enriches one row, for example by resolving a display name.
type LookupFunc[T any] func(ctx context.Context, item T) (T, error)

// ResolveEach runs lookup for every item concurrently (at most limit at a
// time; limit <= 0 means unbounded) and returns the results only once all
// have finished. A row whose lookup fails is kept unchanged; the failures
// are combined into the returned error.
func ResolveEach[T any](ctx context.Context, items []T, limit int, lookup LookupFunc[T]) ([]T, error) {
	out := make([]T, len(items))
	copy(out, items)

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range items {
		i := i
		g.Go(func() error {
			resolved, err := lookup(ctx, items[i])
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return nil
			}
			out[i] = resolved
			return nil
		})
	}
	_ = g.Wait()
	return out, errs
}
