// Package result turns fallible calls into plain success/failure values so the
// UI layer never has to handle a raised error.
package result

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/decmed/pkg/bridge"
)

// Result is the outcome of one call. On success Data is meaningful, otherwise
// Error holds the failure text.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	err error
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps err as a failed result. A nil err is reported as an unknown error.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown error")
	}

	return Result[T]{Error: err.Error(), err: err}
}

// Try runs fn exactly once. A panic inside fn becomes a failure.
func Try[T any](fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				res = Fail[T](v)
			default:
				res = Fail[T](fmt.Errorf("%v", v))
			}
		}
	}()

	data, err := fn()
	if err != nil {
		return Fail[T](err)
	}

	return Ok(data)
}

// Err returns the failure cause, or nil on success.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}

	if r.err != nil {
		return r.err
	}

	return errors.New(r.Error)
}

// RedirectCode reports the backend redirect code carried by a failure.
func (r Result[T]) RedirectCode() (bridge.RedirectCode, bool) {
	if r.Success {
		return 0, false
	}

	if r.err != nil {
		return bridge.RedirectCodeOf(r.err)
	}

	return bridge.ParseRedirectCode(r.Error)
}

// Invoke sends command through inv and decodes the typed response envelope.
func Invoke[T any](ctx context.Context, inv bridge.Invoker, command string, args any) Result[bridge.Response[T]] {
	return Try(func() (bridge.Response[T], error) {
		raw, err := inv.Invoke(ctx, command, args)
		if err != nil {
			return bridge.Response[T]{}, err
		}

		return bridge.Decode[T](command, raw)
	})
}

// Exec is Invoke for commands whose response payload is ignored.
func Exec(ctx context.Context, inv bridge.Invoker, command string, args any) Result[bridge.Response[any]] {
	return Invoke[any](ctx, inv, command, args)
}
