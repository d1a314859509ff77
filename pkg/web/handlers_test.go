package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/auth"
	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/persistence/file"
	"github.com/dukex/decmed/pkg/router"
	"github.com/dukex/decmed/pkg/session"
	"github.com/dukex/decmed/pkg/testutil"
	"github.com/dukex/decmed/pkg/web"
	"github.com/dukex/decmed/pkg/wizard"
)

type testApp struct {
	app     *fiber.App
	backend *testutil.Backend
	sess    *session.Context
	flows   *web.Flows
}

func setupTestApp(t *testing.T, client models.ClientKind, overrides ...func(*testutil.Backend)) *testApp {
	t.Helper()

	logger := slog.Default()
	b := testutil.NewBackend(client, overrides...)
	toasts := notify.NewBuffer(20)
	sess := session.NewContext(client, logger)

	var gate session.Gate = session.OpenGate{}
	switch client {
	case models.ClientHospital:
		gate = session.NewStatusGate(b, session.HospitalCodes(), logger)
	case models.ClientPatient:
		gate = session.NewStatusGate(b, session.PatientCodes(), logger)
	}

	env := wizard.Env{Invoker: b, Notifier: toasts, Client: client, Logger: logger}
	authSess := auth.Session{Gate: gate, Context: sess}

	flows := web.ClientFlows(client, env, authSess)
	handlers := web.NewAPIHandlers(web.Config{
		Client:  client,
		Env:     env,
		Session: authSess,
		Router:  router.ForClient(client, gate, router.Deps{Invoker: b, Notifier: toasts, Session: sess}, logger),
		Flows:   flows,
		Toasts:  toasts,
		Store:   file.NewStore(t.TempDir()),
		Logger:  logger,
	}, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Register(app)

	return &testApp{app: app, backend: b, sess: sess, flows: flows}
}

func (a *testApp) do(t *testing.T, method, target string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))

	return out
}

func TestAPIHandlers_GetPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		override       func(*testutil.Backend)
		target         string
		expectedStatus int
		expectedRoute  string
		expectedTo     string
	}{
		{
			name:           "dashboard loads",
			target:         "/api/page?path=/dashboard",
			expectedStatus: http.StatusOK,
			expectedRoute:  session.PathDashboard,
		},
		{
			name:           "locked session redirects to pin",
			override:       func(b *testutil.Backend) { b.PinSession = false },
			target:         "/api/page?path=/dashboard",
			expectedStatus: http.StatusOK,
			expectedRoute:  session.PathDashboard,
			expectedTo:     session.PathPin,
		},
		{
			name:           "unknown page",
			target:         "/api/page?path=/nowhere",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing path",
			target:         "/api/page",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var overrides []func(*testutil.Backend)
			if tt.override != nil {
				overrides = append(overrides, tt.override)
			}

			a := setupTestApp(t, models.ClientHospital, overrides...)

			status, body := a.do(t, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.expectedStatus, status, string(body))

			if status != http.StatusOK {
				return
			}

			page := decode[router.Page](t, body)
			assert.Equal(t, tt.expectedRoute, page.Route)
			assert.Equal(t, tt.expectedTo, page.RedirectTo)
		})
	}
}

func TestAPIHandlers_SessionFollowsNavigation(t *testing.T) {
	t.Parallel()

	a := setupTestApp(t, models.ClientHospital, testutil.WithRole(models.RoleMedicalPersonnel))

	status, body := a.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[web.SessionResponse](t, body).SignedIn)

	status, _ = a.do(t, http.MethodGet, "/api/page?path=/dashboard", nil)
	require.Equal(t, http.StatusOK, status)

	status, body = a.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, status)

	resp := decode[web.SessionResponse](t, body)
	assert.True(t, resp.SignedIn)
	assert.Equal(t, models.ClientHospital, resp.Client)
	require.NotNil(t, resp.Role)
	assert.Equal(t, models.RoleMedicalPersonnel, *resp.Role)
	assert.NotEmpty(t, resp.Nav)
}

func TestAPIHandlers_SubmitFlow(t *testing.T) {
	t.Parallel()

	a := setupTestApp(t, models.ClientHospital, func(b *testutil.Backend) { b.PinSession = false })

	status, body := a.do(t, http.MethodPost, "/api/flows/pin", map[string]string{"pin": "000000"})
	require.Equal(t, http.StatusOK, status)

	var resp struct {
		Outcome wizard.Outcome `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "Invalid PIN", resp.Outcome.Error)

	status, body = a.do(t, http.MethodGet, "/api/toasts", nil)
	require.Equal(t, http.StatusOK, status)

	toasts := decode[[]notify.Toast](t, body)
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelError, toasts[0].Level)

	status, body = a.do(t, http.MethodPost, "/api/flows/pin", map[string]string{"pin": a.backend.Pin})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.True(t, resp.Outcome.Completed, resp.Outcome.Error)
	assert.Equal(t, session.PathDashboard, resp.Outcome.RedirectTo)
	assert.True(t, a.sess.SignedIn())

	status, body = a.do(t, http.MethodGet, "/api/toasts", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))
}

func TestAPIHandlers_FlowErrors(t *testing.T) {
	t.Parallel()

	a := setupTestApp(t, models.ClientHospital)

	status, _ := a.do(t, http.MethodGet, "/api/flows/scan", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(t, http.MethodGet, "/api/flows/new-medical-record?accessToken=tok", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodPost, "/api/flows/pin", bytes.NewBufferString("{invalid"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_ScopedFlowsShareState(t *testing.T) {
	t.Parallel()

	a := setupTestApp(t, models.ClientHospital, testutil.WithRole(models.RoleMedicalPersonnel))
	target := "/api/flows/new-medical-record?accessToken=tok&patientAddress=0x1&patientPrePublicKey=pre"

	status, body := a.do(t, http.MethodPost, target, map[string]string{"anamnesis": "Cough"})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = a.do(t, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, status)

	var state struct {
		Form   map[string]string   `json:"form"`
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, "Cough", state.Form["anamnesis"])
	assert.NotEmpty(t, state.Errors["therapy"])

	status, body = a.do(t, http.MethodGet, target+"&_=1", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, "Cough", state.Form["anamnesis"])

	status, body = a.do(t, http.MethodDelete, target, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Empty(t, state.Form["anamnesis"])
	assert.Zero(t, a.flows.Open())
}

func TestAPIHandlers_CompletedScopedFlowIsReleased(t *testing.T) {
	t.Parallel()

	a := setupTestApp(t, models.ClientHospital, testutil.WithRole(models.RoleMedicalPersonnel))
	target := "/api/flows/new-medical-record?accessToken=tok&patientAddress=0x1&patientPrePublicKey=pre"

	status, body := a.do(t, http.MethodPost, target, map[string]string{
		"anamnesis":          "Cough",
		"physicalCheck":      "Normal",
		"psychologicalCheck": "Calm",
		"diagnose":           "Cold",
		"therapy":            "Rest",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var resp struct {
		Outcome wizard.Outcome `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.True(t, resp.Outcome.Completed, resp.Outcome.Error)
	assert.Zero(t, a.flows.Open())
}

func TestAPIHandlers_SignOut(t *testing.T) {
	t.Parallel()

	a := setupTestApp(t, models.ClientPatient)

	status, _ := a.do(t, http.MethodGet, "/api/page?path=/dashboard", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, a.sess.SignedIn())

	status, _ = a.do(t, http.MethodPost, "/api/session/signout", nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.False(t, a.sess.SignedIn())
	assert.Equal(t, 1, a.backend.Calls(bridge.CmdSignout))

	a.backend.Reject(bridge.CmdSignout, "Session expired $<1>$")

	status, body := a.do(t, http.MethodPost, "/api/session/signout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body), "command_rejected")
}

func TestAPIHandlers_PatientEndpoints(t *testing.T) {
	t.Parallel()

	entry := testutil.CreateTestLogEntry(0)
	a := setupTestApp(t, models.ClientPatient, func(b *testutil.Backend) {
		b.AccessLog = []models.AccessLogEntry{entry}
	})

	status, body := a.do(t, http.MethodGet, "/api/profile/qr", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.NotEmpty(t, body)

	status, _ = a.do(t, http.MethodPost, "/api/access-log/revoke", map[string]any{"index": 0})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(t, http.MethodPost, "/api/access-log/revoke", web.RevokeRequest{
		Index:                    entry.Index,
		HospitalPersonnelAddress: entry.HospitalPersonnelAddress,
	})
	require.Equal(t, http.StatusNoContent, status, string(body))
	assert.True(t, a.backend.AccessLog[0].IsRevoked)

	status, _ = a.do(t, http.MethodPost, "/api/hospitals/bafy1/activation-key", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_Ministry(t *testing.T) {
	t.Parallel()

	hospital := testutil.CreateTestHospital("General Hospital")
	a := setupTestApp(t, models.ClientMinistry, func(b *testutil.Backend) {
		b.Hospitals = []models.Hospital{hospital}
	})

	status, body := a.do(t, http.MethodGet, "/api/page?path=/", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), "General Hospital")

	status, body = a.do(t, http.MethodPost, "/api/hospitals/"+hospital.HospitalAdminCID+"/activation-key", nil)
	require.Equal(t, http.StatusNoContent, status, string(body))
	assert.Equal(t, 1, a.backend.Calls(bridge.CmdUpdateActivationKey))
}

func TestAPIHandlers_Bridge(t *testing.T) {
	t.Parallel()

	a := setupTestApp(t, models.ClientPatient)

	status, body := a.do(t, http.MethodPost, "/api/bridge/invoke/"+bridge.CmdGetProfile, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), "PER-000001")

	status, _ = a.do(t, http.MethodPost, "/api/bridge/invoke/unknown_command", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	a := setupTestApp(t, models.ClientPatient)

	status, body := a.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "patient", resp["client"])
}
