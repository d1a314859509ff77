// Package router resolves an in-app URL into a page: it matches the path
// against the client's route table, runs the session gate and then the
// page's loader.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/dukex/decmed/pkg/eventbus"
	"github.com/dukex/decmed/pkg/events"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/session"
)

var (
	// ErrNotFound is returned for unknown paths and for pages missing a
	// required parameter.
	ErrNotFound = errors.New("page not found")
)

// RedirectError makes a loader send the user elsewhere.
type RedirectError struct {
	To string
}

func (e *RedirectError) Error() string {
	return "redirect to " + e.To
}

func Redirect(to string) error {
	return &RedirectError{To: to}
}

// Request is what a loader sees of the navigation.
type Request struct {
	Path     string
	Params   map[string]string
	Query    url.Values
	Decision session.Decision
}

// RequireQuery returns the named query value or ErrNotFound when it is empty.
func (r Request) RequireQuery(name string) (string, error) {
	v := r.Query.Get(name)
	if v == "" {
		return "", fmt.Errorf("%w: missing %s", ErrNotFound, name)
	}

	return v, nil
}

// IntQuery parses an optional integer query value. Absent or malformed
// values yield nil.
func (r Request) IntQuery(name string) *int {
	n, err := strconv.Atoi(r.Query.Get(name))
	if err != nil {
		return nil
	}

	return &n
}

// Loader builds the data a page renders with.
type Loader func(ctx context.Context, req Request) (any, error)

// Page is a resolved navigation. Exactly one of RedirectTo and Data is set
// when the page has a loader.
type Page struct {
	Path       string           `json:"path"`
	Route      string           `json:"route"`
	RedirectTo string           `json:"redirectTo,omitempty"`
	Session    session.Decision `json:"session"`
	Data       any              `json:"data,omitempty"`
}

type route struct {
	pattern  string
	segments []string
	gated    bool
	load     Loader
}

func (rt *route) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(rt.segments) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range rt.segments {
		if name, ok := strings.CutPrefix(seg, "{"); ok {
			value, err := url.PathUnescape(segments[i])
			if err != nil || value == "" {
				return nil, false
			}

			params[strings.TrimSuffix(name, "}")] = value

			continue
		}

		if seg != segments[i] {
			return nil, false
		}
	}

	return params, true
}

type Router struct {
	gate      session.Gate
	sess      *session.Context
	routes    []*route
	publisher eventbus.EventPublisher
	client    models.ClientKind
	logger    *slog.Logger
}

// New creates an empty router. sess is kept in sync with every gate
// decision and may be nil.
func New(gate session.Gate, sess *session.Context, logger *slog.Logger) *Router {
	return &Router{
		gate:   gate,
		sess:   sess,
		logger: logger.With("module", "router"),
	}
}

// Announce publishes a RedirectIssued event for every gate redirect.
func (r *Router) Announce(publisher eventbus.EventPublisher, client models.ClientKind) *Router {
	r.publisher = publisher
	r.client = client

	return r
}

// Page registers a gated route. Patterns use {name} for path parameters.
func (r *Router) Page(pattern string, load Loader) {
	r.add(pattern, true, load)
}

// Public registers a route rendered without consulting the gate.
func (r *Router) Public(pattern string, load Loader) {
	r.add(pattern, false, load)
}

func (r *Router) add(pattern string, gated bool, load Loader) {
	r.routes = append(r.routes, &route{
		pattern:  pattern,
		segments: split(pattern),
		gated:    gated,
		load:     load,
	})
}

// Routes lists the registered patterns in registration order.
func (r *Router) Routes() []string {
	patterns := make([]string, 0, len(r.routes))
	for _, rt := range r.routes {
		patterns = append(patterns, rt.pattern)
	}

	return patterns
}

// Navigate resolves target, a path with an optional query string.
func (r *Router) Navigate(ctx context.Context, target string) (Page, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	path := u.Path
	if path == "" {
		path = session.PathRoot
	}

	rt, params := r.lookup(path)
	if rt == nil {
		return Page{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	page := Page{Path: path, Route: rt.pattern}

	if rt.gated {
		page.Session = r.gate.Decide(ctx, path)
		if r.sess != nil {
			r.sess.Sync(ctx, page.Session)
		}

		if to, ok := session.Guard(page.Session, path); ok {
			r.logger.DebugContext(ctx, "Redirecting", "path", path, "to", to, "state", page.Session.State.String())
			page.RedirectTo = to
			r.announce(ctx, path, to, page.Session.State)

			return page, nil
		}
	}

	if rt.load == nil {
		return page, nil
	}

	data, err := rt.load(ctx, Request{Path: path, Params: params, Query: u.Query(), Decision: page.Session})
	if err != nil {
		var redirect *RedirectError
		if errors.As(err, &redirect) {
			page.RedirectTo = redirect.To

			return page, nil
		}

		return page, err
	}

	page.Data = data

	return page, nil
}

func (r *Router) announce(ctx context.Context, path, to string, st session.State) {
	if r.publisher == nil {
		return
	}

	event := events.RedirectIssued{
		BaseEvent: events.NewBaseEvent(events.RedirectIssuedEvent, r.client),
		Path:      path,
		Target:    to,
		State:     st.String(),
	}

	if err := r.publisher.Publish(ctx, string(r.client), event); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish redirect", "error", err)
	}
}

func (r *Router) lookup(path string) (*route, map[string]string) {
	segments := split(path)
	for _, rt := range r.routes {
		if params, ok := rt.match(segments); ok {
			return rt, params
		}
	}

	return nil, nil
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}
