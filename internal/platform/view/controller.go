// Package view implements the list state shared by every page: fetch the
// full collection once, apply role visibility, then search and paginate
// locally. The visible page is always recomputed from the full list.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/myhealth/myhealth/pkg/pagination"
)

var (
	// ErrStale is returned by Hydrate when a newer Hydrate started while
	// this one was in flight. Its result was discarded.
	ErrStale = errors.New("view: result superseded by a newer load")
	// ErrClosed is returned when the controller was closed mid-load.
	ErrClosed = errors.New("view: controller closed")
)

// FetchFunc loads the full collection.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Config describes one list.
type Config[T any] struct {
	// PageSize defaults to pagination.DefaultPageSize.
	PageSize int
	// Fields returns the display fields the search term is matched against.
	Fields func(T) []string
	// Scope, when set, drops records the current role should not see. It
	// narrows the display only; the backend still decides access.
	Scope func(T) bool
}

// Controller holds one list's state. It is safe for concurrent use.
type Controller[T any, K comparable] struct {
	mu     sync.Mutex
	cfg    Config[T]
	key    func(T) K
	all    []T
	query  string
	page   int
	gen    uint64
	closed bool
}

// New creates a controller whose records are identified by key.
func New[T any, K comparable](key func(T) K, cfg Config[T]) *Controller[T, K] {
	cfg.PageSize = pagination.NormalizeSize(cfg.PageSize)
	return &Controller[T, K]{cfg: cfg, key: key, page: 1}
}

// Hydrate fetches the collection, applies Scope, and resets to page 1.
// On failure the list is left empty and the error returned.
func (c *Controller[T, K]) Hydrate(ctx context.Context, fetch FetchFunc[T]) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	items, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if gen != c.gen {
		return ErrStale
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	c.page = 1
	if err != nil {
		c.all = nil
		return err
	}
	c.all = c.scope(items)
	return nil
}

func (c *Controller[T, K]) scope(items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c.cfg.Scope == nil || c.cfg.Scope(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Controller[T, K]) filtered() []T {
	return pagination.Filter(c.all, c.query, c.cfg.Fields)
}

// Apply sets query and page together, as one request to a list endpoint
// does.
func (c *Controller[T, K]) Apply(p pagination.Params) pagination.Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = p.Query
	if p.PageSize > 0 {
		c.cfg.PageSize = pagination.NormalizeSize(p.PageSize)
	}
	c.page = pagination.ClampPage(p.Page, len(c.filtered()), c.cfg.PageSize)
	return pagination.Paginate(c.filtered(), c.page, c.cfg.PageSize)
}

// Visible returns the current page.
func (c *Controller[T, K]) Visible() pagination.Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pagination.Paginate(c.filtered(), c.page, c.cfg.PageSize)
}

// Remove prunes records after the server confirmed their deletion.
func (c *Controller[T, K]) Remove(keys ...K) {
	if len(keys) == 0 {
		return
	}
	drop := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.all[:0:0]
	for _, it := range c.all {
		if _, ok := drop[c.key(it)]; !ok {
			kept = append(kept, it)
		}
	}
	c.all = kept
	c.page = pagination.ClampPage(c.page, len(c.filtered()), c.cfg.PageSize)
}

// Close makes in-flight loads discard their results.
func (c *Controller[T, K]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Load does one request's worth of list work: fetch, scope, search, page.
// On failure it returns an empty first page alongside the error.
func Load[T any, K comparable](ctx context.Context, key func(T) K, cfg Config[T], p pagination.Params, fetch FetchFunc[T]) (pagination.Page[T], error) {
	c := New(key, cfg)
	defer c.Close()
	if err := c.Hydrate(ctx, fetch); err != nil {
		return c.Visible(), err
	}
	return c.Apply(p), nil
}
