package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/decmed/pkg/eventbus"
	"github.com/dukex/decmed/pkg/events"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/persistence"
	"github.com/dukex/decmed/pkg/state"
)

// NavLink is one entry of the dashboard navigation.
type NavLink struct {
	Label     string `json:"label"`
	Link      string `json:"link"`
	PageTitle string `json:"pageTitle"`
}

// Snapshot is the observable part of a Context.
type Snapshot struct {
	SignedIn bool         `json:"signedIn"`
	Role     *models.Role `json:"role"`
}

// Context is the session shared by every page of one client. It is the only
// writer of the role; SignIn and SignOut are the only mutations.
type Context struct {
	client    models.ClientKind
	current   *state.Store[Snapshot]
	store     persistence.SessionStore
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

type Option func(*Context)

// WithStore persists sign-ins so Restore can pick them up after a restart.
func WithStore(store persistence.SessionStore) Option {
	return func(c *Context) { c.store = store }
}

// WithPublisher announces sign-ins and sign-outs on the event bus.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(c *Context) { c.publisher = publisher }
}

func NewContext(client models.ClientKind, logger *slog.Logger, opts ...Option) *Context {
	c := &Context{
		client:  client,
		current: state.NewStore(Snapshot{}),
		logger:  logger.With("module", "session", "client", string(client)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Context) Client() models.ClientKind {
	return c.client
}

func (c *Context) Role() *models.Role {
	return c.current.Get().Role
}

func (c *Context) SignedIn() bool {
	return c.current.Get().SignedIn
}

func (c *Context) Snapshot() Snapshot {
	return c.current.Get()
}

// Subscribe calls fn after every sign-in or sign-out.
func (c *Context) Subscribe(fn func(Snapshot)) func() {
	return c.current.Subscribe(fn)
}

// SignIn records the signed-in role. Persistence or publish failures are
// logged; the in-memory session is updated regardless.
func (c *Context) SignIn(ctx context.Context, role *models.Role) {
	c.current.Set(Snapshot{SignedIn: true, Role: role})

	if c.store != nil {
		snapshot := &persistence.Snapshot{Client: c.client, Role: role, SignedInAt: time.Now().UTC()}
		if err := c.store.Save(ctx, snapshot); err != nil {
			c.logger.ErrorContext(ctx, "Failed to persist session", "error", err)
		}
	}

	c.publish(ctx, events.SessionSignedIn{
		BaseEvent: events.NewBaseEvent(events.SessionSignedInEvent, c.client),
		Role:      role,
	})
}

// SignOut clears the role.
func (c *Context) SignOut(ctx context.Context) {
	c.current.Set(Snapshot{})

	if c.store != nil {
		if err := c.store.Clear(ctx, c.client); err != nil {
			c.logger.ErrorContext(ctx, "Failed to clear persisted session", "error", err)
		}
	}

	c.publish(ctx, events.SessionSignedOut{
		BaseEvent: events.NewBaseEvent(events.SessionSignedOutEvent, c.client),
	})
}

// Restore loads the persisted session, if any. It does not publish.
func (c *Context) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	snapshot, err := c.store.Load(ctx, c.client)
	if err != nil {
		if persistence.IsSessionNotFound(err) {
			return nil
		}

		return err
	}

	c.current.Set(Snapshot{SignedIn: true, Role: snapshot.Role})

	return nil
}

// Sync brings the context in line with a gate decision: a ready decision with
// a different role signs in, a signed-out state signs out.
func (c *Context) Sync(ctx context.Context, d Decision) {
	current := c.current.Get()

	switch {
	case d.State == Ready:
		if !current.SignedIn || !sameRole(current.Role, d.Role) {
			c.SignIn(ctx, d.Role)
		}
	case !d.State.SignedIn() && current.SignedIn:
		c.SignOut(ctx)
	}
}

// Nav lists the dashboard links for the current client and role.
func (c *Context) Nav() []NavLink {
	nav := []NavLink{
		{Label: "Home", Link: PathDashboard, PageTitle: "Home"},
		{Label: "Profile", Link: PathDashboard + "/profile", PageTitle: "Profile"},
	}

	switch c.client {
	case models.ClientPatient:
		nav = append(nav, NavLink{Label: "Access Log", Link: PathDashboard + "/log", PageTitle: "Access Log"})
	case models.ClientMinistry:
		nav = []NavLink{{Label: "Hospitals", Link: PathRoot, PageTitle: "Hospitals"}}
	}

	return nav
}

func (c *Context) publish(ctx context.Context, event eventbus.Event) {
	if c.publisher == nil {
		return
	}

	if err := c.publisher.Publish(ctx, string(c.client), event); err != nil {
		c.logger.ErrorContext(ctx, "Failed to publish session event", "error", err, "event_type", event.GetType())
	}
}

func sameRole(a, b *models.Role) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
