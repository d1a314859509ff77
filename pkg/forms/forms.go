package forms

import (
	"strings"

	"github.com/dukex/decmed/pkg/models"
)

// CredentialsForm backs the sign-in and sign-up wizards. NIK is only
// collected by the patient client.
type CredentialsForm struct {
	Pin        string `json:"pin" validate:"required,pin" label:"PIN"`
	ConfirmPin string `json:"confirmPin" validate:"required,pin" label:"Confirm PIN"`
	SeedWords  string `json:"seedWords" validate:"required,seedwords" label:"Seed Words"`
	Nik        string `json:"nik,omitempty" validate:"required,nik" label:"NIK"`

	// Mnemonic is generated by the backend during sign-up and shown to the
	// user before they type it back as SeedWords.
	Mnemonic string `json:"mnemonic,omitempty"`
}

// Normalize collapses the seed phrase to single-space separated words.
func (f *CredentialsForm) Normalize() {
	f.SeedWords = strings.Join(strings.Fields(f.SeedWords), " ")
}

type (
	SignInForm = CredentialsForm
	SignUpForm = CredentialsForm
)

// PinForm unlocks an existing session.
type PinForm struct {
	Pin string `json:"pin" validate:"required,pin" label:"PIN"`
}

type ActivationForm struct {
	ID            string `json:"id" validate:"required" label:"ID"`
	ActivationKey string `json:"activationKey" validate:"required,activationkey" label:"Activation Key"`
}

// ProfileForm completes a profile. Hospital is only asked of hospital admins.
type ProfileForm struct {
	Name     string `json:"name" validate:"required,alnumspace" label:"Name"`
	Hospital string `json:"hospital,omitempty" validate:"required,alnumspace" label:"Hospital"`
}

type AddPersonnelForm struct {
	ID   string      `json:"id" validate:"required" label:"ID"`
	Role models.Role `json:"role" validate:"required,oneof=AdministrativePersonnel MedicalPersonnel" label:"Role"`
	Pin  string      `json:"pin" validate:"required,pin" label:"PIN"`
}

type MedicalRecordForm struct {
	Anamnesis          string `json:"anamnesis" validate:"required,max=4096" label:"Anamnesis"`
	PhysicalCheck      string `json:"physicalCheck" validate:"required,max=4096" label:"Physical Check"`
	PsychologicalCheck string `json:"psychologicalCheck" validate:"required,max=4096" label:"Psychological Check"`
	Diagnose           string `json:"diagnose" validate:"required,max=4096" label:"Diagnose"`
	Therapy            string `json:"therapy" validate:"required,max=4096" label:"Therapy"`
}

// MedicalData converts the form into the record payload.
func (f MedicalRecordForm) MedicalData() models.MedicalData {
	return models.MedicalData{
		Anamnesis:          f.Anamnesis,
		PhysicalCheck:      f.PhysicalCheck,
		PsychologicalCheck: f.PsychologicalCheck,
		Diagnose:           f.Diagnose,
		Therapy:            f.Therapy,
	}
}

// MedicalRecordFormFrom prefills the form from an existing record.
func MedicalRecordFormFrom(d models.MedicalData) MedicalRecordForm {
	return MedicalRecordForm{
		Anamnesis:          d.Anamnesis,
		PhysicalCheck:      d.PhysicalCheck,
		PsychologicalCheck: d.PsychologicalCheck,
		Diagnose:           d.Diagnose,
		Therapy:            d.Therapy,
	}
}

type AddHospitalForm struct {
	HospitalID   string `json:"hospitalId" validate:"required,hospitalid" label:"Hospital ID"`
	HospitalName string `json:"hospitalName" validate:"required,hospitalname" label:"Hospital Name"`
}

// HospitalQRForm is the patient's upload of a personnel QR code followed by
// the PIN that confirms the grant.
type HospitalQRForm struct {
	QR  *Upload `json:"qr"`
	Pin string  `json:"pin" validate:"required,pin" label:"PIN"`

	// Personnel is filled in once the backend has read the QR code.
	Personnel *models.QRScanResult `json:"personnel,omitempty"`
}

// PinMatch requires ConfirmPin to equal Pin and reports a mismatch on confirmPin.
func PinMatch(form *CredentialsForm, errs Errors) {
	if form.Pin != form.ConfirmPin {
		errs.Add("confirmPin", "PIN and Confirm PIN must be same.")
	}
}

func qrUploaded(form *HospitalQRForm, errs Errors) {
	for _, msg := range form.QR.Problems() {
		errs.Add("qr", msg)
	}
}

var (
	pinStep        = NewSchema[CredentialsForm]("pin", "Pin")
	confirmPinStep = pinStep.Extend("confirm-pin", "ConfirmPin")
	credentials    = confirmPinStep.Extend("credentials", "SeedWords").Refine(PinMatch)

	// SignInSteps: PIN, confirm PIN, then seed words.
	SignInSteps = NewStepSet(pinStep, confirmPinStep, credentials)

	// PatientSignInSteps also asks for the patient's NIK on the last step.
	PatientSignInSteps = NewStepSet(pinStep, confirmPinStep, credentials.Extend("patient-credentials", "Nik"))

	// SignUpSteps: step 3 shows the generated mnemonic and adds no field,
	// step 4 asks for it back and step 5 checks everything.
	SignUpSteps = NewStepSet(
		pinStep,
		confirmPinStep,
		confirmPinStep.Extend("mnemonic"),
		confirmPinStep.Extend("seed-words", "SeedWords"),
		credentials.Extend("signup"),
	)

	// PatientSignUpSteps ends with the patient's NIK.
	PatientSignUpSteps = NewStepSet(
		pinStep,
		confirmPinStep,
		confirmPinStep.Extend("mnemonic"),
		confirmPinStep.Extend("seed-words", "SeedWords"),
		credentials.Extend("patient-signup", "Nik"),
	)

	PinSchema = NewSchema[PinForm]("session-pin", "Pin")

	ActivationSchema = NewSchema[ActivationForm]("activation", "ID", "ActivationKey")

	CompleteProfileSchema      = NewSchema[ProfileForm]("complete-profile", "Name")
	CompleteProfileAdminSchema = CompleteProfileSchema.Extend("complete-profile-admin", "Hospital")

	addPersonnelIdentity = NewSchema[AddPersonnelForm]("personnel", "ID", "Role")

	// AddPersonnelSteps: identity and role, then the admin's PIN.
	AddPersonnelSteps = NewStepSet(addPersonnelIdentity, addPersonnelIdentity.Extend("personnel-pin", "Pin"))

	MedicalRecordSchema = NewSchema[MedicalRecordForm]("medical-record",
		"Anamnesis", "PhysicalCheck", "PsychologicalCheck", "Diagnose", "Therapy")

	AddHospitalSchema = NewSchema[AddHospitalForm]("add-hospital", "HospitalID", "HospitalName")

	HospitalQRSchema = NewSchema[HospitalQRForm]("hospital-qr").Refine(qrUploaded)

	// ScanSteps: the QR upload, then the PIN granting access.
	ScanSteps = NewStepSet(HospitalQRSchema, HospitalQRSchema.Extend("grant-access", "Pin"))
)
