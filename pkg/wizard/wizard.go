// Package wizard drives multi-step forms. Each step is validated locally with
// its schema, then optionally against the backend, before the wizard moves on;
// the last step runs a terminal command.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/eventbus"
	"github.com/dukex/decmed/pkg/events"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/otelhelper"
	"github.com/dukex/decmed/pkg/state"
)

// State is what a form view renders. CurrentStep is 1-based.
type State[F any] struct {
	CurrentStep int          `json:"currentStep"`
	Steps       int          `json:"steps"`
	Form        F            `json:"form"`
	Errors      forms.Errors `json:"errors,omitempty"`
	Completed   bool         `json:"completed"`
}

// Env carries the collaborators shared by every wizard of one client.
type Env struct {
	Invoker   bridge.Invoker
	Notifier  notify.Notifier
	Publisher eventbus.EventPublisher
	Tracer    trace.Tracer
	Client    models.ClientKind
	Logger    *slog.Logger
}

// Check validates a step against the backend. A failure is shown on the
// field the check belongs to.
type Check[F any] func(ctx context.Context, form *F) error

// Hook runs when a step is entered and may fill in form values.
type Hook[F any] func(ctx context.Context, form *F) error

// Terminal submits the completed form.
type Terminal[F any] func(ctx context.Context, form F) (Completion, error)

// Completion is reported by a successful terminal command. Result carries
// data the view must show once, such as an issued activation key.
type Completion struct {
	Message    string `json:"message,omitempty"`
	RedirectTo string `json:"redirectTo,omitempty"`
	Result     any    `json:"result,omitempty"`
}

// Outcome describes what one Submit did.
type Outcome struct {
	Step       int          `json:"step"`
	Advanced   bool         `json:"advanced"`
	Completed  bool         `json:"completed"`
	RedirectTo string       `json:"redirectTo,omitempty"`
	Errors     forms.Errors `json:"errors,omitempty"`
	Error      string       `json:"error,omitempty"`
	Result     any          `json:"result,omitempty"`
}

type remote[F any] struct {
	field string
	check Check[F]
}

// Wizard is safe for concurrent use; submissions are serialized.
type Wizard[F any] struct {
	name     string
	env      Env
	steps    forms.StepSet[F]
	initial  F
	terminal Terminal[F]
	remotes  map[int][]remote[F]
	enters   map[int]Hook[F]
	reset    bool
	store    *state.Store[State[F]]
	logger   *slog.Logger

	mu sync.Mutex
}

// New creates a wizard positioned on step 1 with initial as the form.
// Configure it with Remote, OnEnter and KeepStep before the first Submit.
func New[F any](name string, env Env, steps forms.StepSet[F], initial F, terminal Terminal[F]) *Wizard[F] {
	if env.Notifier == nil {
		env.Notifier = notify.Discard
	}

	if env.Tracer == nil {
		env.Tracer = otelhelper.NoopTracer()
	}

	if env.Logger == nil {
		env.Logger = slog.Default()
	}

	return &Wizard[F]{
		name:     name,
		env:      env,
		steps:    steps,
		initial:  initial,
		terminal: terminal,
		remotes:  make(map[int][]remote[F]),
		enters:   make(map[int]Hook[F]),
		reset:    true,
		store:    state.NewStore(State[F]{CurrentStep: 1, Steps: steps.Len(), Form: initial}),
		logger:   env.Logger.With("module", "wizard", "flow", name),
	}
}

// Remote adds a backend check run after step passed local validation.
func (w *Wizard[F]) Remote(step int, field string, check Check[F]) *Wizard[F] {
	w.remotes[step] = append(w.remotes[step], remote[F]{field: field, check: check})

	return w
}

// OnEnter sets the hook run when the wizard advances to step.
func (w *Wizard[F]) OnEnter(step int, hook Hook[F]) *Wizard[F] {
	w.enters[step] = hook

	return w
}

// KeepStep leaves a completed wizard on its last step instead of rewinding it.
func (w *Wizard[F]) KeepStep() *Wizard[F] {
	w.reset = false

	return w
}

func (w *Wizard[F]) Name() string {
	return w.name
}

func (w *Wizard[F]) Steps() int {
	return w.steps.Len()
}

func (w *Wizard[F]) State() State[F] {
	return w.store.Get()
}

// Subscribe calls fn after every state change.
func (w *Wizard[F]) Subscribe(fn func(State[F])) func() {
	return w.store.Subscribe(fn)
}

// Reset rewinds to step 1 with the initial form.
func (w *Wizard[F]) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rewind()
}

func (w *Wizard[F]) rewind() {
	w.store.Set(State[F]{CurrentStep: 1, Steps: w.steps.Len(), Form: w.initial})
}

// Submit validates form against the current step. On an intermediate step a
// valid form moves the wizard forward; on the last one it runs the terminal
// command. The wizard never moves backwards.
func (w *Wizard[F]) Submit(ctx context.Context, form F) Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.store.Get()
	step := current.CurrentStep

	ctx, span := otelhelper.StartSpan(ctx, w.env.Tracer, "wizard.submit",
		attribute.String(otelhelper.FlowKey, w.name),
		attribute.Int(otelhelper.StepKey, step))
	defer span.End()

	forms.Normalize(&form)

	if step < w.steps.Len() {
		return w.advance(ctx, step, form)
	}

	return w.complete(ctx, step, form)
}

func (w *Wizard[F]) advance(ctx context.Context, step int, form F) Outcome {
	if errs := w.steps.Step(step).Validate(&form); !errs.Valid() {
		return w.stay(step, form, errs)
	}

	for _, r := range w.remotes[step] {
		if err := r.check(ctx, &form); err != nil {
			w.logger.DebugContext(ctx, "Remote check rejected step", "step", step, "field", r.field, "error", err)

			errs := forms.Errors{}
			errs.Add(r.field, bridge.Message(err))

			return w.stay(step, form, errs)
		}
	}

	next := step + 1
	if hook, ok := w.enters[next]; ok {
		if err := hook(ctx, &form); err != nil {
			w.logger.ErrorContext(ctx, "Step hook failed", "step", next, "error", err)
			notify.Error(ctx, w.env.Notifier, bridge.Message(err))
			w.rewind()

			return Outcome{Step: 1, Error: bridge.Message(err)}
		}
	}

	w.store.Set(State[F]{CurrentStep: next, Steps: w.steps.Len(), Form: form})

	return Outcome{Step: next, Advanced: true}
}

func (w *Wizard[F]) complete(ctx context.Context, step int, form F) Outcome {
	if errs := w.steps.Final().Validate(&form); !errs.Valid() {
		return w.stay(step, form, errs)
	}

	done, err := w.terminal(ctx, form)
	if err != nil {
		w.logger.InfoContext(ctx, "Terminal command rejected", "error", err)
		notify.Error(ctx, w.env.Notifier, bridge.Message(err))

		w.store.Set(State[F]{CurrentStep: step, Steps: w.steps.Len(), Form: form})

		return Outcome{Step: step, Error: bridge.Message(err)}
	}

	if done.Message != "" {
		notify.Success(ctx, w.env.Notifier, done.Message)
	}

	final := State[F]{CurrentStep: step, Steps: w.steps.Len(), Form: form, Completed: true}
	if w.reset {
		final = State[F]{CurrentStep: 1, Steps: w.steps.Len(), Form: w.initial, Completed: true}
	}

	w.store.Set(final)
	w.publish(ctx, done)

	return Outcome{Step: final.CurrentStep, Completed: true, RedirectTo: done.RedirectTo, Result: done.Result}
}

func (w *Wizard[F]) stay(step int, form F, errs forms.Errors) Outcome {
	w.store.Set(State[F]{CurrentStep: step, Steps: w.steps.Len(), Form: form, Errors: errs})

	return Outcome{Step: step, Errors: errs}
}

func (w *Wizard[F]) publish(ctx context.Context, done Completion) {
	if w.env.Publisher == nil {
		return
	}

	event := events.WizardCompleted{
		BaseEvent:  events.NewBaseEvent(events.WizardCompletedEvent, w.env.Client),
		Flow:       w.name,
		RedirectTo: done.RedirectTo,
	}

	if err := w.env.Publisher.Publish(ctx, string(w.env.Client), event); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish completion", "error", fmt.Errorf("%s: %w", w.name, err))
	}
}
