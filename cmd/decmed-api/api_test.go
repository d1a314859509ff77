package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/auth"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/persistence/file"
	"github.com/dukex/decmed/pkg/router"
	"github.com/dukex/decmed/pkg/session"
	"github.com/dukex/decmed/pkg/testutil"
	"github.com/dukex/decmed/pkg/web"
	"github.com/dukex/decmed/pkg/wizard"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.Default()
	b := testutil.NewBackend(models.ClientPatient)
	toasts := notify.NewBuffer(10)
	sess := session.NewContext(models.ClientPatient, logger)
	gate := session.NewStatusGate(b, session.PatientCodes(), logger)
	env := wizard.Env{Invoker: b, Notifier: toasts, Client: models.ClientPatient, Logger: logger}
	authSess := auth.Session{Gate: gate, Context: sess}

	api := NewAPI(logger, web.Config{
		Client:  models.ClientPatient,
		Env:     env,
		Session: authSess,
		Router:  router.ForClient(models.ClientPatient, gate, router.Deps{Invoker: b, Notifier: toasts, Session: sess}, logger),
		Flows:   web.ClientFlows(models.ClientPatient, env, authSess),
		Toasts:  toasts,
		Store:   file.NewStore(t.TempDir()),
		Logger:  logger,
	})

	return api.App()
}

func get(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func TestAPI_RootEndpoint(t *testing.T) {
	status, body := get(t, setupTestApp(t), "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "decmed patient API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	for _, endpoint := range []string{"/livez", "/readyz"} {
		status, _ := get(t, app, endpoint)
		assert.Equal(t, http.StatusOK, status, endpoint)
	}

	status, body := get(t, app, "/health")
	require.Equal(t, http.StatusOK, status)

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
}

func TestAPI_PageAndFlows(t *testing.T) {
	app := setupTestApp(t)

	status, body := get(t, app, "/api/page?path=/dashboard/log")
	require.Equal(t, http.StatusOK, status, string(body))

	var page router.Page
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, router.PathAccessLog, page.Route)
	assert.Empty(t, page.RedirectTo)

	status, body = get(t, app, "/api/flows")
	require.Equal(t, http.StatusOK, status)

	var flows struct {
		Flows []string `json:"flows"`
	}
	require.NoError(t, json.Unmarshal(body, &flows))
	assert.ElementsMatch(t, []string{"signup", "signin", "complete-profile", "scan"}, flows.Flows)
}
