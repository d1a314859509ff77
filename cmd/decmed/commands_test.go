package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/auth"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/resources"
	"github.com/dukex/decmed/pkg/router"
	"github.com/dukex/decmed/pkg/session"
	"github.com/dukex/decmed/pkg/testutil"
	"github.com/dukex/decmed/pkg/web"
	"github.com/dukex/decmed/pkg/wizard"
)

func TestNavigate(t *testing.T) {
	b := testutil.NewBackend(models.ClientHospital, func(b *testutil.Backend) { b.PinSession = false })
	gate := session.NewStatusGate(b, session.HospitalCodes(), slog.Default())
	r := router.ForClient(models.ClientHospital, gate, router.Deps{Invoker: b}, slog.Default())

	var out bytes.Buffer
	require.NoError(t, navigate(context.Background(), r, "/dashboard", &out))

	var page router.Page
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	assert.Equal(t, session.PathPin, page.RedirectTo)

	assert.ErrorIs(t, navigate(context.Background(), r, "/missing", &out), router.ErrNotFound)
}

func TestSubmitFlow(t *testing.T) {
	b := testutil.NewBackend(models.ClientMinistry)
	toasts := notify.NewBuffer(10)
	env := wizard.Env{Invoker: b, Notifier: toasts, Client: models.ClientMinistry}
	flows := web.ClientFlows(models.ClientMinistry, env, auth.Session{})
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, submitFlow(ctx, flows, toasts, "add-hospital", "", `{"name": "Clinic"}`, &out))
	assert.Contains(t, out.String(), `"outcome"`)

	assert.ErrorIs(t, submitFlow(ctx, flows, toasts, "signin", "", "{}", &out), web.ErrUnknownFlow)
	assert.Error(t, submitFlow(ctx, flows, toasts, "add-hospital", "", "{not json", &out))
	assert.Error(t, submitFlow(ctx, flows, toasts, "add-hospital", "%zz", "{}", &out))
}

func TestShowQR(t *testing.T) {
	b := testutil.NewBackend(models.ClientPatient)
	profile := resources.NewProfile(b, nil, nil)

	var out bytes.Buffer
	require.NoError(t, showQR(context.Background(), profile, &out))
	assert.NotEmpty(t, out.String())

	b.Reject("get_profile", "Profile unavailable")
	assert.Error(t, showQR(context.Background(), resources.NewProfile(b, nil, nil), &out))
}
