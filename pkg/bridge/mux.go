package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// HandlerFunc serves one command. The returned value becomes Response.Data.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Mux is an in-process Invoker dispatching commands to registered handlers.
// It backs Go-side hosts served through Mount and the test backends.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewMux() *Mux {
	return &Mux{
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers h for command, replacing any previous handler.
func (m *Mux) Handle(command string, h HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[command] = h
}

// Commands returns the registered command names.
func (m *Mux) Commands() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}

	return names
}

func (m *Mux) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	m.mu.RLock()
	h, ok := m.handlers[command]
	m.mu.RUnlock()

	if !ok {
		return nil, &CommandError{
			Command: command,
			Message: fmt.Sprintf("Command %s not found", command),
			Err:     ErrUnknownCommand,
		}
	}

	payload, err := encodeArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%s: encode args: %w", command, err)
	}

	data, err := h(ctx, payload)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return nil, cmdErr
		}

		return nil, NewCommandError(command, err.Error())
	}

	return json.Marshal(Response[any]{Status: StatusSuccess, Data: data})
}

// Reject builds the error a handler returns to signal a redirect-coded rejection.
func Reject(message string, code RedirectCode) error {
	return errors.New(message + " $<" + fmt.Sprint(int(code)) + ">$")
}

func encodeArgs(args any) (json.RawMessage, error) {
	switch v := args.(type) {
	case nil:
		return json.RawMessage("{}"), nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	default:
		return json.Marshal(v)
	}
}
