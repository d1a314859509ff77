package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/dukex/decmed/pkg/auth"
	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/persistence"
	"github.com/dukex/decmed/pkg/resources"
	"github.com/dukex/decmed/pkg/router"
	"github.com/dukex/decmed/pkg/wizard"
)

// Config wires one client's core into the API.
type Config struct {
	Client  models.ClientKind
	Env     wizard.Env
	Session auth.Session
	Router  *router.Router
	Flows   *Flows
	Toasts  *notify.Buffer
	Store   persistence.SessionStore
	Logger  *slog.Logger
}

type APIHandlers struct {
	cfg       Config
	validator *validator.Validate
	profile   *resources.Profile
	accessLog *resources.AccessLog
	hospitals *resources.Hospitals
	logger    *slog.Logger
}

func NewAPIHandlers(cfg Config, validator *validator.Validate) *APIHandlers {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	n := cfg.Env.Notifier

	return &APIHandlers{
		cfg:       cfg,
		validator: validator,
		profile:   resources.NewProfile(cfg.Env.Invoker, n, cfg.Session.Context),
		accessLog: resources.NewAccessLog(cfg.Env.Invoker, n),
		hospitals: resources.NewHospitals(cfg.Env.Invoker, n),
		logger:    cfg.Logger.With("module", "web"),
	}
}

// Register mounts the API on r, including the command bridge.
func (h *APIHandlers) Register(r fiber.Router) {
	r.Get("/health", h.HealthCheck)

	api := r.Group("/api")
	api.Get("/page", h.GetPage)
	api.Get("/session", h.GetSession)
	api.Post("/session/signout", h.SignOut)
	api.Post("/session/reset", h.ResetAccount)
	api.Get("/toasts", h.GetToasts)

	api.Get("/flows", h.ListFlows)
	api.Get("/flows/:name", h.GetFlow)
	api.Post("/flows/:name", h.SubmitFlow)
	api.Delete("/flows/:name", h.ResetFlow)

	switch h.cfg.Client {
	case models.ClientPatient:
		api.Get("/profile/qr", h.GetProfileQR)
		api.Post("/access-log/revoke", h.RevokeAccess)
	case models.ClientMinistry:
		api.Post("/hospitals/:cid/activation-key", h.RotateActivationKey)
	}

	bridge.Mount(api.Group("/bridge"), h.cfg.Env.Invoker)
}

// GetPage navigates to the path query parameter. A gate or loader redirect
// is reported in the page, not as an HTTP redirect.
func (h *APIHandlers) GetPage(c fiber.Ctx) error {
	target := c.Query("path")
	if target == "" {
		return badRequest(c, "path is required")
	}

	page, err := h.cfg.Router.Navigate(c.Context(), target)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(page)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	sess := h.cfg.Session.Context

	return c.JSON(SessionResponse{
		Client:   sess.Client(),
		SignedIn: sess.SignedIn(),
		Role:     sess.Role(),
		Nav:      sess.Nav(),
	})
}

func (h *APIHandlers) SignOut(c fiber.Ctx) error {
	if err := h.profile.SignOut(c.Context()); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(http.StatusNoContent)
}

func (h *APIHandlers) ResetAccount(c fiber.Ctx) error {
	res := auth.Reset(c.Context(), h.cfg.Env, h.cfg.Session)
	if !res.Success {
		return handleError(c, res.Err())
	}

	return c.JSON(res)
}

// GetToasts hands pending toasts to the view once.
func (h *APIHandlers) GetToasts(c fiber.Ctx) error {
	toasts := h.cfg.Toasts.Drain()
	if toasts == nil {
		toasts = []notify.Toast{}
	}

	return c.JSON(toasts)
}

func (h *APIHandlers) ListFlows(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"flows": h.cfg.Flows.Names()})
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	flow, _, err := h.flow(c)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(flow.State())
}

// SubmitFlow submits the body as the form of the flow's current step.
func (h *APIHandlers) SubmitFlow(c fiber.Ctx) error {
	flow, query, err := h.flow(c)
	if err != nil {
		return handleError(c, err)
	}

	outcome, err := flow.Submit(c.Context(), func(out any) error {
		return c.Bind().JSON(out)
	})
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	state := flow.State()
	if outcome.Completed {
		h.cfg.Flows.Release(c.Params("name"), query)
	}

	return c.JSON(fiber.Map{
		"outcome": outcome,
		"state":   state,
	})
}

func (h *APIHandlers) ResetFlow(c fiber.Ctx) error {
	flow, query, err := h.flow(c)
	if err != nil {
		return handleError(c, err)
	}

	flow.Reset()
	h.cfg.Flows.Release(c.Params("name"), query)

	return c.JSON(flow.State())
}

func (h *APIHandlers) flow(c fiber.Ctx) (Flow, url.Values, error) {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFlowScope, err)
	}

	flow, err := h.cfg.Flows.Get(c.Context(), c.Params("name"), query)

	return flow, query, err
}

// GetProfileQR renders the patient's QR code as terminal text.
func (h *APIHandlers) GetProfileQR(c fiber.Ctx) error {
	if _, err := h.profile.QR(); err != nil {
		if _, err := h.profile.Get(c.Context()); err != nil {
			return handleError(c, err)
		}
	}

	var buf bytes.Buffer
	if err := h.profile.RenderQR(&buf); err != nil {
		return handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)

	return c.Send(buf.Bytes())
}

func (h *APIHandlers) RevokeAccess(c fiber.Ctx) error {
	var req RevokeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	entry := models.AccessLogEntry{
		Index:                    req.Index,
		HospitalPersonnelAddress: req.HospitalPersonnelAddress,
	}
	if err := h.accessLog.Revoke(c.Context(), entry); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(http.StatusNoContent)
}

func (h *APIHandlers) RotateActivationKey(c fiber.Ctx) error {
	cid := c.Params("cid")
	if cid == "" {
		return badRequest(c, "cid is required")
	}

	if err := h.hospitals.RotateKey(c.Context(), cid); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(http.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	checkers := fiber.Map{"flows": len(h.cfg.Flows.Names())}
	healthy := true

	if h.cfg.Store != nil {
		if err := h.cfg.Store.HealthCheck(c.Context()); err != nil {
			h.logger.ErrorContext(c.Context(), "Session store unhealthy", "error", err)
			checkers["sessionStore"] = err.Error()
			healthy = false
		} else {
			checkers["sessionStore"] = "ok"
		}
	}

	status := "unhealthy"
	message := "decmed API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if healthy {
		status = "healthy"
		message = "decmed API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"client":    h.cfg.Client,
		"checkers":  checkers,
		"timestamp": time.Now().UTC(),
	})
}
