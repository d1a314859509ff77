package resources

import (
	"context"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
)

// MedicalRecords reads the records of one patient. Patients read their own
// with an empty target; personnel need the access token of a grant.
type MedicalRecords struct {
	base
	target models.RecordTarget
}

func NewMedicalRecords(inv bridge.Invoker, n notify.Notifier, target models.RecordTarget) *MedicalRecords {
	return &MedicalRecords{base: newBase(inv, n), target: target}
}

func (r *MedicalRecords) Target() models.RecordTarget {
	return r.target
}

// List returns the metadata of the signed-in patient's records.
func (r *MedicalRecords) List(ctx context.Context) ([]models.MedicalRecordMetadata, error) {
	return fetch[[]models.MedicalRecordMetadata](ctx, r.base, bridge.CmdGetMedicalRecords, nil)
}

// Get reads the record at index, or the latest one when index is nil.
func (r *MedicalRecords) Get(ctx context.Context, index *int) (models.MedicalRecord, error) {
	return fetch[models.MedicalRecord](ctx, r.base, bridge.CmdGetMedicalRecord, r.args(index))
}

// GetForUpdate reads the record an update grant points at.
func (r *MedicalRecords) GetForUpdate(ctx context.Context, index *int) (models.MedicalRecord, error) {
	return fetch[models.MedicalRecord](ctx, r.base, bridge.CmdGetMedicalRecordUpdate, r.args(index))
}

func (r *MedicalRecords) Administrative(ctx context.Context) (models.AdministrativeData, error) {
	return fetch[models.AdministrativeData](ctx, r.base, bridge.CmdGetAdministrativeData, bridge.Args{
		"accessToken":        r.target.AccessToken,
		"patientIotaAddress": r.target.PatientIotaAddress,
	})
}

func (r *MedicalRecords) args(index *int) bridge.Args {
	if index == nil {
		index = r.target.Index
	}

	return bridge.Args{
		"accessToken":        r.target.AccessToken,
		"index":              index,
		"patientIotaAddress": r.target.PatientIotaAddress,
	}
}
