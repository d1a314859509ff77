package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/client"
	"github.com/google/uuid"
)

const (
	// InvokePath is the route a host serves commands on.
	InvokePath = "/invoke/:command"

	RequestIDHeader = "X-Request-ID"
)

// wireError is the body of a rejected command on the HTTP transport.
type wireError struct {
	Error string `json:"error"`
}

// HTTPInvoker sends commands to a host serving InvokePath.
type HTTPInvoker struct {
	baseURL string
	client  *client.Client
	logger  *slog.Logger
}

// NewHTTPInvoker creates an invoker for the host at baseURL. A zero timeout
// leaves requests bounded only by the caller's context.
func NewHTTPInvoker(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPInvoker {
	c := client.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}

	return &HTTPInvoker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  c,
		logger:  logger.With("module", "bridge-http"),
	}
}

func (h *HTTPInvoker) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	payload, err := encodeArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%s: encode args: %w", command, err)
	}

	requestID := uuid.NewString()
	url := h.baseURL + "/invoke/" + command

	h.logger.DebugContext(ctx, "Invoking command", "command", command, "request_id", requestID)

	resp, err := h.client.Post(url, client.Config{
		Ctx: ctx,
		Header: map[string]string{
			"Content-Type":  "application/json",
			RequestIDHeader: requestID,
		},
		Body: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: transport: %w", command, err)
	}
	defer resp.Close()

	body := append(json.RawMessage(nil), resp.Body()...)

	if status := resp.StatusCode(); status < 200 || status > 299 {
		var wire wireError
		if err := json.Unmarshal(body, &wire); err != nil || wire.Error == "" {
			wire.Error = strings.TrimSpace(string(body))
		}

		h.logger.DebugContext(ctx, "Command rejected",
			"command", command,
			"request_id", requestID,
			"status", status,
			"error", wire.Error)

		cmdErr := NewCommandError(command, wire.Error)
		if status == 404 {
			cmdErr.Err = ErrUnknownCommand
		}

		return nil, cmdErr
	}

	return body, nil
}
