// Package hospital holds the flows only hospital personnel run: admins
// registering personnel and medical personnel writing patient records.
package hospital

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/result"
	"github.com/dukex/decmed/pkg/session"
	"github.com/dukex/decmed/pkg/wizard"
)

// NewAddPersonnel asks for the personnel ID and role, then the admin's PIN.
// The issued activation key is returned as the outcome result.
func NewAddPersonnel(env wizard.Env) *wizard.Wizard[forms.AddPersonnelForm] {
	return wizard.New("add-personnel", env, forms.AddPersonnelSteps, forms.AddPersonnelForm{},
		func(ctx context.Context, form forms.AddPersonnelForm) (wizard.Completion, error) {
			res := result.Invoke[models.ActivationKey](ctx, env.Invoker, bridge.CmdHospitalAdminAddActivationKey, bridge.Args{
				"personnelIdPart": form.ID,
				"role":            form.Role,
				"pin":             form.Pin,
			})
			if !res.Success {
				return wizard.Completion{}, res.Err()
			}

			return wizard.Completion{Result: res.Data.Data}, nil
		})
}

// NewMedicalRecord writes a new record for the patient behind target and
// returns to the dashboard.
func NewMedicalRecord(env wizard.Env, target models.RecordTarget) *wizard.Wizard[forms.MedicalRecordForm] {
	return wizard.New("new-medical-record", env, forms.Single(forms.MedicalRecordSchema), forms.MedicalRecordForm{},
		func(ctx context.Context, form forms.MedicalRecordForm) (wizard.Completion, error) {
			if err := writeRecord(ctx, env, bridge.CmdNewMedicalRecord, target, form); err != nil {
				return wizard.Completion{}, err
			}

			return wizard.Completion{
				Message:    "Medical record created sucessfully",
				RedirectTo: session.PathDashboard,
			}, nil
		})
}

// NewMedicalRecordUpdate edits the latest record, starting from current. The
// form keeps the submitted values once saved.
func NewMedicalRecordUpdate(env wizard.Env, target models.RecordTarget, current models.MedicalData) *wizard.Wizard[forms.MedicalRecordForm] {
	initial := forms.MedicalRecordFormFrom(current)

	return wizard.New("update-medical-record", env, forms.Single(forms.MedicalRecordSchema), initial,
		func(ctx context.Context, form forms.MedicalRecordForm) (wizard.Completion, error) {
			if err := writeRecord(ctx, env, bridge.CmdUpdateMedicalRecord, target, form); err != nil {
				return wizard.Completion{}, err
			}

			return wizard.Completion{Message: "Medical record updated sucessfully"}, nil
		}).KeepStep()
}

func writeRecord(ctx context.Context, env wizard.Env, command string, target models.RecordTarget, form forms.MedicalRecordForm) error {
	return result.Exec(ctx, env.Invoker, command, bridge.Args{
		"accessToken":         target.AccessToken,
		"data":                form.MedicalData(),
		"patientIotaAddress":  target.PatientIotaAddress,
		"patientPrePublicKey": target.PatientPrePublicKey,
	}).Err()
}

// RecordLink is the page of a patient's record reachable with grant.
func RecordLink(grant models.AccessGrant) string {
	q := url.Values{"accessToken": {grant.AccessToken}}
	if grant.MedicalMetadataIndex != nil {
		q.Set("index", strconv.FormatUint(*grant.MedicalMetadataIndex, 10))
	}

	return session.PathDashboard + "/emr/" + url.PathEscape(grant.PatientIotaAddress) + "?" + q.Encode()
}

// AdministrativeLink is the page of a patient's identity reachable with grant.
func AdministrativeLink(grant models.AccessGrant) string {
	q := url.Values{"accessToken": {grant.AccessToken}}

	return session.PathDashboard + "/adm/" + url.PathEscape(grant.PatientIotaAddress) + "?" + q.Encode()
}

// CreateRecordLink opens the record editor for a patient with an update grant.
func CreateRecordLink(grant models.AccessGrant) string {
	q := url.Values{"accessToken": {grant.AccessToken}}
	if grant.PatientPrePublicKey != nil {
		q.Set("patientPrePublicKey", *grant.PatientPrePublicKey)
	}

	return session.PathDashboard + "/emr/" + url.PathEscape(grant.PatientIotaAddress) + "/create?" + q.Encode()
}

// UpdateRecordLink opens the editor on the record the grant points at.
func UpdateRecordLink(grant models.AccessGrant) string {
	q := url.Values{"accessToken": {grant.AccessToken}}
	if grant.PatientPrePublicKey != nil {
		q.Set("patientPrePublicKey", *grant.PatientPrePublicKey)
	}

	if grant.MedicalMetadataIndex != nil {
		q.Set("medicalMetadataIndex", strconv.FormatUint(*grant.MedicalMetadataIndex, 10))
	}

	return session.PathDashboard + "/emr/" + url.PathEscape(grant.PatientIotaAddress) + "/update?" + q.Encode()
}
