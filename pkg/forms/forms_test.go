package forms_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/models"
)

const twelveWords = "abandon ability able about above absent absorb abstract absurd abuse access accident"

func TestPinField(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		want    string
		message string
	}{
		{name: "six digits", pin: "123456", want: "123456"},
		{name: "padded", pin: " 123456 ", want: "123456"},
		{name: "too short", pin: "12345", message: "PIN is invalid."},
		{name: "too long", pin: "1234567", message: "PIN is invalid."},
		{name: "letters", pin: "12a456", message: "PIN is invalid."},
		{name: "empty", pin: "", message: "PIN is required."},
		{name: "blank", pin: "   ", message: "PIN is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := forms.CredentialsForm{Pin: tt.pin}
			errs := forms.SignInSteps.Step(1).Validate(&form)

			if tt.message == "" {
				assert.True(t, errs.Valid(), "unexpected errors: %v", errs)
				assert.Equal(t, tt.want, form.Pin)

				return
			}

			assert.Equal(t, tt.message, errs.First("pin"))
		})
	}
}

func TestPinMatch_TargetsConfirmPin(t *testing.T) {
	form := forms.CredentialsForm{Pin: "111111", ConfirmPin: "222222", SeedWords: twelveWords}

	errs := forms.SignInSteps.Final().Validate(&form)

	assert.False(t, errs.Has("pin"))
	assert.Equal(t, []string{"PIN and Confirm PIN must be same."}, errs["confirmPin"])
}

func TestSeedWords(t *testing.T) {
	words := strings.Fields(twelveWords)

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "twelve", value: twelveWords, valid: true},
		{name: "twelve with extra spacing", value: "  " + strings.Join(words, "   ") + " ", valid: true},
		{name: "eleven", value: strings.Join(words[:11], " ")},
		{name: "thirteen", value: twelveWords + " zoo"},
		{name: "empty", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := forms.CredentialsForm{Pin: "123456", ConfirmPin: "123456", SeedWords: tt.value}
			errs := forms.SignInSteps.Final().Validate(&form)

			assert.Equal(t, tt.valid, errs.Valid(), "errors: %v", errs)

			if tt.valid {
				assert.Equal(t, twelveWords, form.SeedWords)
			}
		})
	}
}

func TestStepValidation_OnlyChecksStepFields(t *testing.T) {
	form := forms.CredentialsForm{Pin: "123456", ConfirmPin: "bad"}

	assert.True(t, forms.SignInSteps.Step(1).Validate(&form).Valid())

	errs := forms.SignInSteps.Step(2).Validate(&form)
	assert.Equal(t, "Confirm PIN is invalid.", errs.First("confirmPin"))
	assert.False(t, errs.Has("seedWords"))
}

func TestStepSets(t *testing.T) {
	assert.Equal(t, 3, forms.SignInSteps.Len())
	assert.Equal(t, 5, forms.SignUpSteps.Len())
	assert.Equal(t, 2, forms.AddPersonnelSteps.Len())

	for _, set := range []forms.StepSet[forms.CredentialsForm]{forms.SignInSteps, forms.SignUpSteps, forms.PatientSignInSteps} {
		for n := 2; n <= set.Len(); n++ {
			for _, field := range set.Step(n - 1).Fields() {
				assert.True(t, set.Step(n).Has(field), "step %d drops %s", n, field)
			}
		}
	}

	assert.Equal(t, forms.SignUpSteps.Step(2).Fields(), forms.SignUpSteps.Step(3).Fields())
}

func TestNewStepSet_PanicsOnShrink(t *testing.T) {
	wide := forms.NewSchema[forms.CredentialsForm]("wide", "Pin", "ConfirmPin")
	narrow := forms.NewSchema[forms.CredentialsForm]("narrow", "Pin")

	assert.Panics(t, func() { forms.NewStepSet(wide, narrow) })
	assert.Panics(t, func() { forms.NewStepSet[forms.CredentialsForm]() })
	assert.Panics(t, func() { forms.SignInSteps.Step(4) })
}

func TestSchema_ExtendIsImmutable(t *testing.T) {
	base := forms.NewSchema[forms.ActivationForm]("base", "ID")
	ext := base.Extend("ext", "ActivationKey", "ID")

	assert.Equal(t, []string{"ID"}, base.Fields())
	assert.Equal(t, []string{"ID", "ActivationKey"}, ext.Fields())
}

func TestActivationSchema(t *testing.T) {
	form := forms.ActivationForm{ID: " 1234 ", ActivationKey: strings.Repeat("k", 37)}
	errs := forms.ActivationSchema.Validate(&form)

	assert.Equal(t, "1234", form.ID)
	assert.Equal(t, "Activation Key is invalid.", errs.First("activationKey"))
	assert.False(t, errs.Has("id"))

	empty := forms.ActivationForm{}
	errs = forms.ActivationSchema.Validate(&empty)
	assert.Equal(t, "ID is required.", errs.First("id"))
	assert.Equal(t, "Activation Key is required.", errs.First("activationKey"))
}

func TestProfileSchemas(t *testing.T) {
	form := forms.ProfileForm{Name: "Dr. Who"}
	errs := forms.CompleteProfileSchema.Validate(&form)
	assert.Equal(t, "Name must consist of alphanumeric characters only of length 2 - 100.", errs.First("name"))

	form = forms.ProfileForm{Name: "Ana Maria"}
	assert.True(t, forms.CompleteProfileSchema.Validate(&form).Valid())

	errs = forms.CompleteProfileAdminSchema.Validate(&form)
	assert.Equal(t, "Hospital is required.", errs.First("hospital"))
}

func TestAddPersonnelSteps(t *testing.T) {
	form := forms.AddPersonnelForm{ID: "nurse-1", Role: models.RoleAdmin}
	errs := forms.AddPersonnelSteps.Step(1).Validate(&form)
	assert.Equal(t, "Role is invalid.", errs.First("role"))

	form.Role = models.RoleMedicalPersonnel
	assert.True(t, forms.AddPersonnelSteps.Step(1).Validate(&form).Valid())
	assert.Equal(t, "PIN is required.", forms.AddPersonnelSteps.Final().Validate(&form).First("pin"))
}

func TestAddHospitalSchema(t *testing.T) {
	form := forms.AddHospitalForm{HospitalID: "RS-01", HospitalName: "RS"}
	errs := forms.AddHospitalSchema.Validate(&form)

	assert.Equal(t, "Invalid hospital ID, only (a-z0-9_) 3-50 chars accepted", errs.First("hospitalId"))
	assert.Equal(t, "Invalid hospital name, only (a-zA-Z0-9 ) 3-50 chars accepted", errs.First("hospitalName"))

	form = forms.AddHospitalForm{HospitalID: "rs_harapan", HospitalName: "RS Harapan"}
	assert.True(t, forms.AddHospitalSchema.Validate(&form).Valid())
}

func TestMedicalRecordSchema(t *testing.T) {
	form := forms.MedicalRecordForm{Anamnesis: "cough", PhysicalCheck: "ok", PsychologicalCheck: "ok", Diagnose: "flu"}
	errs := forms.MedicalRecordSchema.Validate(&form)

	assert.Equal(t, []string{"therapy"}, errs.Fields())
	assert.Equal(t, "Therapy is required.", errs.First("therapy"))

	form.Therapy = strings.Repeat("x", 4097)
	assert.Equal(t, "Therapy must be at most 4096 characters.", forms.MedicalRecordSchema.Validate(&form).First("therapy"))
}

func TestHospitalQRSchema(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	form := forms.HospitalQRForm{}
	assert.Equal(t, "Please upload a file.", forms.HospitalQRSchema.Validate(&form).First("qr"))

	form.QR = &forms.Upload{Name: "qr.txt", Data: []byte("hello world")}
	assert.Equal(t, "Should be image/png or image/jpeg", forms.HospitalQRSchema.Validate(&form).First("qr"))

	form.QR = &forms.Upload{Name: "qr.png", Data: append(bytes.Clone(png), make([]byte, forms.MaxUploadSize)...)}
	assert.Equal(t, "Max 1 MB upload size.", forms.HospitalQRSchema.Validate(&form).First("qr"))

	form.QR = &forms.Upload{Name: "qr.png", Data: png}
	assert.True(t, forms.HospitalQRSchema.Validate(&form).Valid())
}

func TestErrors_Err(t *testing.T) {
	require.NoError(t, forms.Errors{}.Err())

	err := forms.Errors{"pin": {"PIN is invalid."}}.Err()
	require.Error(t, err)
	assert.True(t, forms.IsValidationError(err))
	assert.Contains(t, err.Error(), "pin: PIN is invalid.")
}

func TestScanSteps(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	form := forms.HospitalQRForm{QR: &forms.Upload{Name: "qr.png", Data: png}}

	assert.Equal(t, 2, forms.ScanSteps.Len())
	assert.True(t, forms.ScanSteps.Step(1).Validate(&form).Valid())
	assert.Equal(t, "PIN is required.", forms.ScanSteps.Final().Validate(&form).First("pin"))

	form.Pin = "123456"
	assert.True(t, forms.ScanSteps.Final().Validate(&form).Valid())
}
