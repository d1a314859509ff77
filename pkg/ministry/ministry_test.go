package ministry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/ministry"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/testutil"
	"github.com/dukex/decmed/pkg/wizard"
)

func TestAddHospital(t *testing.T) {
	b := testutil.NewBackend(models.ClientMinistry)
	toasts := notify.NewBuffer(10)
	w := ministry.NewAddHospital(wizard.Env{Invoker: b, Notifier: toasts, Client: models.ClientMinistry})
	ctx := context.Background()

	out := w.Submit(ctx, forms.AddHospitalForm{HospitalID: "General-Hospital", HospitalName: "General Hospital"})
	assert.Equal(t, "Invalid hospital ID, only (a-z0-9_) 3-50 chars accepted", out.Errors.First("hospitalId"))

	out = w.Submit(ctx, forms.AddHospitalForm{HospitalID: "general_hospital", HospitalName: "General Hospital"})
	require.True(t, out.Completed, out.Error)
	require.Len(t, b.Hospitals, 1)
	assert.Equal(t, "general_hospital", b.Hospitals[0].HospitalAdminCID)
	assert.Equal(t, "Hospital successfully registered", toasts.Drain()[0].Message)

	out = w.Submit(ctx, forms.AddHospitalForm{HospitalID: "general_hospital2", HospitalName: "General Hospital"})
	assert.False(t, out.Completed)
	assert.Equal(t, "Hospital General Hospital already registered", out.Error)
	assert.Equal(t, notify.LevelError, toasts.Drain()[0].Level)
}
