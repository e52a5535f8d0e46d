package forge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/forgeworks-io/forge-client/internal/constants"
)

// PageFunc issues one list request with the given page and page size and
// returns the validated envelope. The cursor calls it once per advance, so a
// fresh request is built every time.
type PageFunc func(ctx context.Context, page, pageSize int) (*Envelope, error)

// PageGuard narrows a generic success envelope to an endpoint-specific item
// slice. Returning ok=false marks an API contract mismatch, which is fatal.
type PageGuard[T any] func(env *Envelope) ([]T, bool)

// SliceGuard is the guard for list endpoints whose data payload is a plain
// JSON array of T.
func SliceGuard[T any](env *Envelope) ([]T, bool) {
	if !env.IsSuccess() {
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, false
	}

	return items, true
}

// Cursor is a lazy, restartable-per-advance iterator over a paginated list
// endpoint. State is created on the first advance (page 1, page size 100
// unless configured) and mutated only by the cursor itself. A short or empty
// page marks exhaustion; after that no further requests are issued.
type Cursor[T any] struct {
	fetch    PageFunc
	guard    PageGuard[T]
	page     int
	pageSize int
	started  bool
	done     bool
}

// CursorOption configures a Cursor.
type CursorOption[T any] func(*Cursor[T])

// WithPageSize overrides the default page size of 100.
func WithPageSize[T any](size int) CursorOption[T] {
	return func(c *Cursor[T]) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// NewCursor creates a cursor over fetch, narrowing each page through guard.
func NewCursor[T any](fetch PageFunc, guard PageGuard[T], opts ...CursorOption[T]) *Cursor[T] {
	cursor := &Cursor[T]{
		fetch:    fetch,
		guard:    guard,
		pageSize: constants.DefaultPageSize,
	}

	for _, opt := range opts {
		opt(cursor)
	}

	return cursor
}

// HasNext reports whether another advance may yield items. It is advisory:
// the page after a full page can still be empty.
func (c *Cursor[T]) HasNext() bool {
	return !c.done
}

// Next advances the cursor by one page. After exhaustion it returns
// ErrNoMorePages without touching the network. A guard rejection returns
// ErrPageShape and poisons the cursor, since retrying a contract mismatch
// cannot succeed.
func (c *Cursor[T]) Next(ctx context.Context) ([]T, error) {
	if c.done {
		return nil, ErrNoMorePages
	}

	if !c.started {
		c.page = 1
		c.started = true
	}

	env, err := c.fetch(ctx, c.page, c.pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetching page %d: %w", c.page, err)
	}

	items, ok := c.guard(env)
	if !ok {
		c.done = true

		return nil, fmt.Errorf("%w: page %d", ErrPageShape, c.page)
	}

	if len(items) == 0 || len(items) < c.pageSize {
		c.done = true
	}

	// The counter advances even past the last page so a restarted guard or
	// retry never re-reads a page it already consumed.
	c.page++

	return items, nil
}

// All drains the cursor sequentially and returns every item.
func (c *Cursor[T]) All(ctx context.Context) ([]T, error) {
	var all []T

	for c.HasNext() {
		items, err := c.Next(ctx)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)
	}

	return all, nil
}

// ForEach applies fn to every item, stopping on the first error.
func (c *Cursor[T]) ForEach(ctx context.Context, fn func(item T) error) error {
	for c.HasNext() {
		items, err := c.Next(ctx)
		if err != nil {
			return err
		}

		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}
	}

	return nil
}

// PageResult is one page delivered by StreamPages.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// StreamPages drains the cursor on a goroutine and delivers pages over a
// channel. The cursor itself stays strictly sequential; how far the consumer
// lets the producer run ahead is the channel buffer's concern, i.e. the
// caller's.
func StreamPages[T any](ctx context.Context, cursor *Cursor[T]) <-chan PageResult[T] {
	results := make(chan PageResult[T], 1)

	go func() {
		defer close(results)

		for cursor.HasNext() {
			items, err := cursor.Next(ctx)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- PageResult[T]{Items: items}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}
