// Package notify raises the transient success/error messages shown to the user.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukex/decmed/pkg/eventbus"
	"github.com/dukex/decmed/pkg/events"
	"github.com/dukex/decmed/pkg/models"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Toast struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewToast(level Level, message string) Toast {
	return Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, toast Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, toast Toast)

func (f NotifierFunc) Notify(ctx context.Context, toast Toast) {
	f(ctx, toast)
}

func Success(ctx context.Context, n Notifier, message string) {
	if n != nil {
		n.Notify(ctx, NewToast(LevelSuccess, message))
	}
}

func Error(ctx context.Context, n Notifier, message string) {
	if n != nil {
		n.Notify(ctx, NewToast(LevelError, message))
	}
}

// Discard drops every toast.
var Discard Notifier = NotifierFunc(func(context.Context, Toast) {})

type multi []Notifier

// Multi fans a toast out to every notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

func (m multi) Notify(ctx context.Context, toast Toast) {
	for _, n := range m {
		n.Notify(ctx, toast)
	}
}

// LogNotifier writes toasts to the log. Errors are logged at warn level since
// they are expected user-facing outcomes.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify")}
}

func (l *LogNotifier) Notify(ctx context.Context, toast Toast) {
	level := slog.LevelInfo
	if toast.Level == LevelError {
		level = slog.LevelWarn
	}

	l.logger.Log(ctx, level, toast.Message, "toast_id", toast.ID, "level", toast.Level)
}

// BusNotifier publishes each toast as a ToastRaised event.
type BusNotifier struct {
	publisher eventbus.EventPublisher
	client    models.ClientKind
	logger    *slog.Logger
}

func NewBusNotifier(publisher eventbus.EventPublisher, client models.ClientKind, logger *slog.Logger) *BusNotifier {
	return &BusNotifier{
		publisher: publisher,
		client:    client,
		logger:    logger.With("module", "notify-bus"),
	}
}

func (b *BusNotifier) Notify(ctx context.Context, toast Toast) {
	event := events.ToastRaised{
		BaseEvent: events.NewBaseEvent(events.ToastRaisedEvent, b.client),
		Level:     string(toast.Level),
		Message:   toast.Message,
	}
	event.ID = toast.ID

	if err := b.publisher.Publish(ctx, string(b.client), event); err != nil {
		b.logger.ErrorContext(ctx, "Failed to publish toast", "error", err, "toast_id", toast.ID)
	}
}

// Buffer keeps the most recent toasts for clients that poll for them.
type Buffer struct {
	mu     sync.Mutex
	toasts []Toast
	limit  int
}

func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = 50
	}

	return &Buffer{limit: limit}
}

func (b *Buffer) Notify(_ context.Context, toast Toast) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.toasts = append(b.toasts, toast)
	if over := len(b.toasts) - b.limit; over > 0 {
		b.toasts = append([]Toast(nil), b.toasts[over:]...)
	}
}

// Drain returns the buffered toasts, oldest first, and empties the buffer.
func (b *Buffer) Drain() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.toasts
	b.toasts = nil

	if out == nil {
		return []Toast{}
	}

	return out
}

// Snapshot returns the buffered toasts without removing them.
func (b *Buffer) Snapshot() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Toast{}, b.toasts...)
}
