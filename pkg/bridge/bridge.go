// Package bridge is the command boundary into the native backend. Every backend
// operation is a named command with a JSON payload that either resolves to a
// Response or is rejected with a CommandError.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
)

// Invoker sends one command to the backend and returns the raw response body.
type Invoker interface {
	Invoke(ctx context.Context, command string, args any) (json.RawMessage, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, command string, args any) (json.RawMessage, error)

func (f InvokerFunc) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	return f(ctx, command, args)
}

// Args is the usual shape of a command payload.
type Args map[string]any

type Status string

const (
	StatusSuccess Status = "Success"
	StatusError   Status = "Error"
)

// Response is the envelope every successful command resolves with.
type Response[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
}

// Decode unmarshals a raw command response into a typed envelope.
func Decode[T any](command string, raw json.RawMessage) (Response[T], error) {
	var resp Response[T]
	if len(raw) == 0 {
		return resp, fmt.Errorf("%s: %w: empty body", command, ErrMalformedResponse)
	}

	if err := json.Unmarshal(raw, &resp); err != nil {
		return resp, fmt.Errorf("%s: %w: %w", command, ErrMalformedResponse, err)
	}

	return resp, nil
}

// Bytes is binary command data. It travels as a JSON array of numbers, the
// encoding the backend expects for byte vectors.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	nums := make([]int, len(b))
	for i, v := range b {
		nums[i] = int(v)
	}

	return json.Marshal(nums)
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}

	out := make([]byte, len(nums))
	for i, v := range nums {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte value %d out of range", v)
		}

		out[i] = byte(v)
	}

	*b = out

	return nil
}
