package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Watcher re-evaluates the gate for the current page on a schedule and
// reports decisions that differ from the previous one, e.g. a session PIN
// that expired while the user idled on the dashboard.
type Watcher struct {
	gate     Gate
	schedule string
	onChange func(Decision)
	cron     *cron.Cron
	logger   *slog.Logger

	mu   sync.Mutex
	path string
	last *Decision
}

// NewWatcher validates schedule, a standard cron spec or a descriptor such
// as "@every 30s".
func NewWatcher(gate Gate, schedule string, logger *slog.Logger, onChange func(Decision)) (*Watcher, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid watch schedule: %w", err)
	}

	return &Watcher{
		gate:     gate,
		schedule: schedule,
		onChange: onChange,
		path:     PathRoot,
		logger:   logger.With("module", "session_watcher", "schedule", schedule),
	}, nil
}

// Watch sets the page the next checks are made for.
func (w *Watcher) Watch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.path = path
}

// Check evaluates the gate once and reports whether the decision changed.
func (w *Watcher) Check(ctx context.Context) (Decision, bool) {
	w.mu.Lock()
	path := w.path
	w.mu.Unlock()

	d := w.gate.Decide(ctx, path)

	w.mu.Lock()
	changed := w.last == nil || !sameDecision(*w.last, d)
	w.last = &d
	w.mu.Unlock()

	if changed && w.onChange != nil {
		w.onChange(d)
	}

	return d, changed
}

func (w *Watcher) Start() error {
	w.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := w.cron.AddFunc(w.schedule, func() {
		if d, changed := w.Check(context.Background()); changed {
			w.logger.Info("Session state changed", "state", d.State.String(), "redirect_to", d.RedirectTo)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule session watch: %w", err)
	}

	w.cron.Start()

	return nil
}

func (w *Watcher) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func sameDecision(a, b Decision) bool {
	return a.State == b.State && a.RedirectTo == b.RedirectTo && sameRole(a.Role, b.Role)
}
