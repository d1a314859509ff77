package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/channels/gochannel"
	"github.com/dukex/decmed/pkg/eventbus"
	"github.com/dukex/decmed/pkg/events"
	"github.com/dukex/decmed/pkg/models"
)

func newBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishHandle(t *testing.T) {
	bus := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.ToastRaised, 1)
	require.NoError(t, bus.Handle(events.ToastRaisedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.ToastRaised)
		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	toast := events.ToastRaised{
		BaseEvent: events.NewBaseEvent(events.ToastRaisedEvent, models.ClientPatient),
		Level:     "success",
		Message:   "Profile updated successfully",
	}
	require.NoError(t, bus.Publish(ctx, "patient", toast))

	select {
	case got := <-received:
		assert.Equal(t, toast.ID, got.ID)
		assert.Equal(t, "Profile updated successfully", got.Message)
		assert.Equal(t, models.ClientPatient, got.Client)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestWatermillEventBus_UnhandledTypesAreSkipped(t *testing.T) {
	bus := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.EventType, 2)
	require.NoError(t, bus.Handle(events.SessionSignedOutEvent, func(_ context.Context, event any) error {
		received <- event.(*events.SessionSignedOut).GetType()
		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "hospital", events.RedirectIssued{
		BaseEvent: events.NewBaseEvent(events.RedirectIssuedEvent, models.ClientHospital),
		Path:      "/dashboard",
		Target:    "/signin",
	}))
	require.NoError(t, bus.Publish(ctx, "hospital", events.SessionSignedOut{
		BaseEvent: events.NewBaseEvent(events.SessionSignedOutEvent, models.ClientHospital),
	}))

	select {
	case got := <-received:
		assert.Equal(t, events.SessionSignedOutEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	assert.NotEmpty(t, bus.GenerateID())
}
