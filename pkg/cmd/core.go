// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/decmed/pkg/auth"
	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/config"
	"github.com/dukex/decmed/pkg/eventbus"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/otelhelper"
	"github.com/dukex/decmed/pkg/persistence"
	"github.com/dukex/decmed/pkg/router"
	"github.com/dukex/decmed/pkg/session"
	"github.com/dukex/decmed/pkg/web"
	"github.com/dukex/decmed/pkg/wizard"
)

const toastLimit = 50

// Options are the settings shared by every binary.
type Options struct {
	Client       models.ClientKind
	BridgeURL    string
	Timeout      time.Duration
	SessionURL   string
	SessionTTL   time.Duration
	EventBus     string
	KafkaBrokers string
	ConfigPath   string
	Tracing      bool
}

// Core is one client's fully wired runtime.
type Core struct {
	Config  config.ClientConfig
	Invoker bridge.Invoker
	Gate    session.Gate
	Session *session.Context
	Toasts  *notify.Buffer
	Env     wizard.Env
	Router  *router.Router
	Flows   *web.Flows
	Store   persistence.SessionStore
	Bus     eventbus.EventBus
	Watcher *session.Watcher

	shutdown otelhelper.Shutdown
	logger   *slog.Logger
}

// NewGate builds the gate cfg asks for.
// nolint:ireturn
func NewGate(cfg config.ClientConfig, inv bridge.Invoker, logger *slog.Logger) session.Gate {
	switch cfg.Gate {
	case config.GateStatus:
		return session.NewStatusGate(inv, cfg.Codes, logger)
	case config.GateChain:
		checks := session.HospitalChecks()
		if cfg.Client == models.ClientPatient {
			checks = session.PatientChecks()
		}

		return session.NewChainGate(inv, checks, logger, session.WithRole())
	default:
		return session.OpenGate{}
	}
}

// NewInvoker talks to the backend host at opts.BridgeURL, checking response
// envelopes and tracing every command.
func NewInvoker(opts Options, tracer trace.Tracer, logger *slog.Logger) (bridge.Invoker, error) {
	if opts.BridgeURL == "" {
		return nil, errors.New("bridge URL is required")
	}

	validated, err := bridge.Validated(bridge.NewHTTPInvoker(opts.BridgeURL, opts.Timeout, logger))
	if err != nil {
		return nil, err
	}

	return bridge.Traced(validated, tracer), nil
}

// NewCore wires the client described by opts. Close releases what it opened.
func NewCore(ctx context.Context, opts Options, logger *slog.Logger) (*Core, error) {
	cfg := config.LoadOrDefault(opts.ConfigPath, opts.Client)
	core := &Core{
		Config: cfg,
		Toasts: notify.NewBuffer(toastLimit),
		logger: logger.With("module", "core", "client", string(cfg.Client)),
	}

	tracer := otelhelper.NoopTracer()
	if opts.Tracing {
		t, shutdown, err := otelhelper.NewTracer(ctx, "decmed-"+string(cfg.Client))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}

		tracer, core.shutdown = t, shutdown
	}

	inv, err := NewInvoker(opts, tracer, logger)
	if err != nil {
		return nil, core.abort(ctx, err)
	}

	core.Invoker = inv

	bus, err := NewEventBus(opts.EventBus, opts.KafkaBrokers, "decmed-"+string(cfg.Client), logger)
	if err != nil {
		return nil, core.abort(ctx, err)
	}

	core.Bus = bus

	store, err := NewSessionStore(opts.SessionURL, opts.SessionTTL)
	if err != nil {
		return nil, core.abort(ctx, err)
	}

	core.Store = store

	core.Session = session.NewContext(cfg.Client, logger, session.WithStore(store), session.WithPublisher(bus))
	if err := core.Session.Restore(ctx); err != nil {
		core.logger.WarnContext(ctx, "Failed to restore session", "error", err)
	}

	notifier := notify.Multi(core.Toasts, notify.NewLogNotifier(logger), notify.NewBusNotifier(bus, cfg.Client, logger))

	core.Gate = NewGate(cfg, inv, logger)
	core.Env = wizard.Env{
		Invoker:   inv,
		Notifier:  notifier,
		Publisher: bus,
		Tracer:    tracer,
		Client:    cfg.Client,
		Logger:    logger,
	}
	core.Router = router.ForClient(cfg.Client, core.Gate, router.Deps{
		Invoker:   inv,
		Notifier:  notifier,
		Session:   core.Session,
		Publisher: bus,
	}, logger)
	core.Flows = web.ClientFlows(cfg.Client, core.Env, core.auth())

	watcher, err := session.NewWatcher(core.Gate, cfg.Watch, logger, func(d session.Decision) {
		core.Session.Sync(context.Background(), d)
	})
	if err != nil {
		return nil, core.abort(ctx, err)
	}

	core.Watcher = watcher

	return core, nil
}

func (c *Core) auth() auth.Session {
	return auth.Session{Gate: c.Gate, Context: c.Session}
}

// WebConfig exposes the core to the app API.
func (c *Core) WebConfig() web.Config {
	return web.Config{
		Client:  c.Config.Client,
		Env:     c.Env,
		Session: c.auth(),
		Router:  c.Router,
		Flows:   c.Flows,
		Toasts:  c.Toasts,
		Store:   c.Store,
		Logger:  c.logger,
	}
}

func (c *Core) abort(ctx context.Context, err error) error {
	return errors.Join(err, c.Close(ctx))
}

// Close stops the watcher and releases the bus, the store and the tracer.
func (c *Core) Close(ctx context.Context) error {
	var errs []error

	if c.Watcher != nil {
		c.Watcher.Stop()
	}

	if c.Bus != nil {
		if err := c.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}

	if c.Store != nil {
		if err := c.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	}

	if c.shutdown != nil {
		if err := c.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}

	return errors.Join(errs...)
}
