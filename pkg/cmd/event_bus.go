package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/dukex/decmed/pkg/channels/gochannel"
	"github.com/dukex/decmed/pkg/channels/kafka"
	"github.com/dukex/decmed/pkg/eventbus"
	"github.com/dukex/decmed/pkg/events"
)

// NewEventBus creates the bus for provider: "gochannel" keeps events in the
// process and "kafka" publishes them to brokers.
func NewEventBus(provider, brokers, clientName string, logger *slog.Logger) (eventbus.EventBus, error) {
	wlogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", "gochannel":
		pub, sub, err := gochannel.CreateChannel(wlogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wlogger, kafka.ParseBrokers(brokers), clientName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}

// FollowEvents logs every client event seen on bus until ctx is done.
func FollowEvents(ctx context.Context, bus eventbus.EventSubscriber, logger *slog.Logger) error {
	logger = logger.With("module", "events")

	for _, eventType := range []events.EventType{
		events.ToastRaisedEvent,
		events.SessionSignedInEvent,
		events.SessionSignedOutEvent,
		events.RedirectIssuedEvent,
		events.WizardCompletedEvent,
	} {
		if err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			logger.InfoContext(ctx, "Event", "type", eventType, "event", event)

			return nil
		}); err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
