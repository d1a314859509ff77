// Package resources wraps the read side of the backend: each accessor calls
// one command, announces failures through a notifier and hands the payload
// to the view.
package resources

import (
	"context"
	"errors"
	"sync"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/result"
)

// ErrNotLoaded is returned by accessors that read a value no fetch has
// produced yet.
var ErrNotLoaded = errors.New("resource not loaded")

type base struct {
	invoker  bridge.Invoker
	notifier notify.Notifier
}

func newBase(inv bridge.Invoker, n notify.Notifier) base {
	if n == nil {
		n = notify.Discard
	}

	return base{invoker: inv, notifier: n}
}

// fetch runs command and returns its payload. A failure is shown to the user
// and returned so lazy views can render their error state.
func fetch[T any](ctx context.Context, b base, command string, args any) (T, error) {
	res := result.Invoke[T](ctx, b.invoker, command, args)
	if !res.Success {
		var zero T
		notify.Error(ctx, b.notifier, bridge.Message(res.Err()))

		return zero, res.Err()
	}

	return res.Data.Data, nil
}

// fetchList is fetch for list views, which fall back to an empty list.
func fetchList[T any](ctx context.Context, b base, command string, args any) []T {
	items, err := fetch[[]T](ctx, b, command, args)
	if err != nil || items == nil {
		return []T{}
	}

	return items
}

// exec runs a mutation and shows success when it is accepted.
func exec(ctx context.Context, b base, command string, args any, success string) error {
	if err := result.Exec(ctx, b.invoker, command, args).Err(); err != nil {
		notify.Error(ctx, b.notifier, bridge.Message(err))

		return err
	}

	if success != "" {
		notify.Success(ctx, b.notifier, success)
	}

	return nil
}

// Lazy holds the last value produced by load. Get always reloads; Memo only
// loads when nothing is held yet.
type Lazy[T any] struct {
	load func(context.Context) (T, error)

	mu     sync.Mutex
	value  T
	loaded bool
}

func NewLazy[T any](load func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{load: load}
}

// Get reloads the value. A failed load keeps the previous value.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.reload(ctx)
}

// Memo returns the held value, loading it on first use.
func (l *Lazy[T]) Memo(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.value, nil
	}

	return l.reload(ctx)
}

// Last returns the held value without loading.
func (l *Lazy[T]) Last() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.value, l.loaded
}

func (l *Lazy[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	l.value, l.loaded = zero, false
}

func (l *Lazy[T]) reload(ctx context.Context) (T, error) {
	value, err := l.load(ctx)
	if err != nil {
		return value, err
	}

	l.value, l.loaded = value, true

	return value, nil
}
