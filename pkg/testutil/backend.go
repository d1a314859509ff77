package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
)

// Backend is a stateful in-memory stand-in for a native backend. It answers
// every command of one client kind through a bridge.Mux and records the
// arguments it received.
type Backend struct {
	mux *bridge.Mux

	mu sync.Mutex

	Client        models.ClientKind
	Activated     bool
	SignedUp      bool
	SignedIn      bool
	PinSession    bool
	Role          *models.Role
	Profile       models.Profile
	Pin           string
	Mnemonic      string
	ActivationKey string

	Personnel  []models.Personnel
	Grants     map[string][]models.AccessGrant
	Records    []models.MedicalRecord
	Admin      models.AdministrativeData
	AccessLog  []models.AccessLogEntry
	Scan       models.QRScanResult
	Hospitals  []models.Hospital
	pendingPin string

	rejections map[string]string
	calls      map[string]int
	args       map[string]json.RawMessage
}

// NewBackend creates a backend whose account is fully set up: activated,
// signed up and in, with a complete profile and a live PIN session.
func NewBackend(client models.ClientKind, overrides ...func(*Backend)) *Backend {
	b := &Backend{
		mux:           bridge.NewMux(),
		Client:        client,
		Activated:     true,
		SignedUp:      true,
		SignedIn:      true,
		PinSession:    true,
		Profile:       CreateTestProfile(),
		Pin:           "123456",
		Mnemonic:      Mnemonic,
		ActivationKey: "11111111-2222-3333-4444-555555555555",
		Grants:        make(map[string][]models.AccessGrant),
		Scan: models.QRScanResult{
			HospitalPersonnelHospitalName: "General Hospital",
			HospitalPersonnelName:         "Dr. Test",
		},
		rejections: make(map[string]string),
		calls:      make(map[string]int),
		args:       make(map[string]json.RawMessage),
	}

	if client == models.ClientHospital {
		b.Role = models.RoleRef(models.RoleAdmin)
	}

	for _, override := range overrides {
		override(b)
	}

	b.routes()

	return b
}

// Fresh resets the account to a first launch.
func Fresh() func(*Backend) {
	return func(b *Backend) {
		b.Activated = false
		b.SignedUp = false
		b.SignedIn = false
		b.PinSession = false
		b.Profile.Name = nil
	}
}

// WithRole sets the personnel role reported by auth_status.
func WithRole(role models.Role) func(*Backend) {
	return func(b *Backend) {
		b.Role = models.RoleRef(role)
	}
}

func (b *Backend) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.calls[command]++
	b.args[command] = raw
	message, rejected := b.rejections[command]
	b.mu.Unlock()

	if rejected {
		return nil, bridge.NewCommandError(command, message)
	}

	return b.mux.Invoke(ctx, command, args)
}

// Reject makes every later call to command fail with message.
func (b *Backend) Reject(command, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rejections[command] = message
}

// Accept undoes Reject.
func (b *Backend) Accept(command string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.rejections, command)
}

// Calls counts the invocations of command, rejected ones included.
func (b *Backend) Calls(command string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.calls[command]
}

// Args decodes the arguments of the last call to command into target.
func (b *Backend) Args(command string, target any) error {
	b.mu.Lock()
	raw, ok := b.args[command]
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s was never called", command)
	}

	return json.Unmarshal(raw, target)
}

// Update mutates the backend state under its lock.
func (b *Backend) Update(fn func(*Backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fn(b)
}

func (b *Backend) handle(command string, fn func(args json.RawMessage) (any, error)) {
	b.mux.Handle(command, func(_ context.Context, args json.RawMessage) (any, error) {
		b.mu.Lock()
		defer b.mu.Unlock()

		return fn(args)
	})
}

func (b *Backend) routes() {
	b.handle(bridge.CmdIsAppActivated, b.precondition(func() bool { return b.Activated }, "App is not activated"))
	b.handle(bridge.CmdIsSignedUp, b.precondition(func() bool { return b.SignedUp }, "Account not found"))
	b.handle(bridge.CmdIsSignedIn, b.precondition(func() bool { return b.SignedIn }, "Not signed in"))
	b.handle(bridge.CmdIsSessionPinExist, b.precondition(func() bool { return b.PinSession }, "Session PIN not found"))
	b.handle(bridge.CmdAuthStatus, b.authStatus)

	b.handle(bridge.CmdActivateApp, b.activateApp)
	b.handle(bridge.CmdValidatePin, b.validatePin)
	b.handle(bridge.CmdValidateConfirmPin, b.validateConfirmPin)
	b.handle(bridge.CmdValidateSeedWords, b.validateSeedWords)
	b.handle(bridge.CmdGenerateMnemonic, func(json.RawMessage) (any, error) { return b.Mnemonic, nil })
	b.handle(bridge.CmdSignup, b.signup)
	b.handle(bridge.CmdSignin, b.signin)
	b.handle(bridge.CmdSignout, func(json.RawMessage) (any, error) {
		b.SignedIn = false
		b.PinSession = false

		return nil, nil
	})
	b.handle(bridge.CmdReset, func(json.RawMessage) (any, error) {
		b.Activated, b.SignedUp, b.SignedIn, b.PinSession = false, false, false, false
		b.Profile.Name = nil

		return nil, nil
	})

	b.handle(bridge.CmdGetProfile, b.getProfile)
	b.handle(bridge.CmdUpdateProfile, b.updateProfile)
	b.handle(bridge.CmdUpdateRegisteredHospitalName, b.updateHospitalName)

	b.handle(bridge.CmdGetHospitalPersonnels, func(json.RawMessage) (any, error) { return b.Personnel, nil })
	b.handle(bridge.CmdHospitalAdminAddActivationKey, b.addActivationKey)

	for _, command := range []string{
		bridge.CmdGetReadAccessAdministrativePersonnel,
		bridge.CmdGetReadAccessMedicalPersonnel,
		bridge.CmdGetUpdateAccessMedicalPersonnel,
	} {
		b.handle(command, func(json.RawMessage) (any, error) {
			grants := b.Grants[command]
			if grants == nil {
				grants = []models.AccessGrant{}
			}

			return grants, nil
		})
	}

	b.handle(bridge.CmdGetAdministrativeData, b.withToken(func(json.RawMessage) (any, error) { return b.Admin, nil }))
	b.handle(bridge.CmdGetMedicalRecords, b.medicalRecords)
	b.handle(bridge.CmdGetMedicalRecord, b.withToken(b.medicalRecord))
	b.handle(bridge.CmdGetMedicalRecordUpdate, b.withToken(b.medicalRecord))
	b.handle(bridge.CmdNewMedicalRecord, b.withToken(b.newMedicalRecord))
	b.handle(bridge.CmdUpdateMedicalRecord, b.withToken(b.updateMedicalRecord))

	b.handle(bridge.CmdGetAccessLog, func(json.RawMessage) (any, error) {
		if b.AccessLog == nil {
			return []models.AccessLogEntry{}, nil
		}

		return b.AccessLog, nil
	})
	b.handle(bridge.CmdRevokeAccess, b.revokeAccess)
	b.handle(bridge.CmdProcessQR, b.processQR)
	b.handle(bridge.CmdCreateAccess, b.createAccess)

	b.handle(bridge.CmdGetHospitals, b.getHospitals)
	b.handle(bridge.CmdCreateActivationKey, b.createActivationKey)
	b.handle(bridge.CmdUpdateActivationKey, b.updateActivationKey)
}

func (b *Backend) precondition(ok func() bool, message string) func(json.RawMessage) (any, error) {
	return func(json.RawMessage) (any, error) {
		if !ok() {
			return nil, errors.New(message)
		}

		return nil, nil
	}
}

func (b *Backend) authStatus(json.RawMessage) (any, error) {
	if b.Client == models.ClientPatient {
		switch {
		case !b.SignedUp || !b.SignedIn:
			return nil, errors.New("Not signed in")
		case !b.Profile.Complete():
			return nil, bridge.Reject("Profile incomplete", bridge.CodeSignup)
		default:
			return nil, nil
		}
	}

	switch {
	case !b.Activated:
		return nil, bridge.Reject("App is not activated", bridge.CodeActivation)
	case !b.SignedUp:
		return nil, bridge.Reject("Account not found", bridge.CodeSignup)
	case !b.SignedIn:
		return nil, bridge.Reject("Not signed in", bridge.CodeSignin)
	case !b.Profile.Complete():
		return nil, bridge.Reject("Profile incomplete", bridge.CodeCompleteProfile)
	case !b.PinSession:
		return nil, bridge.Reject("Session PIN expired", bridge.CodePin)
	default:
		return b.Role, nil
	}
}

func (b *Backend) activateApp(raw json.RawMessage) (any, error) {
	var args struct {
		ActivationKey string `json:"activationKey"`
		ID            string `json:"id"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if args.ActivationKey != b.ActivationKey {
		return nil, errors.New("Invalid activation key")
	}

	b.Activated = true
	b.Profile.ID = args.ID

	return nil, nil
}

type pinArgs struct {
	Pin        string          `json:"pin"`
	ConfirmPin string          `json:"confirmPin"`
	AuthType   bridge.AuthType `json:"authType"`
}

func (b *Backend) validatePin(raw json.RawMessage) (any, error) {
	var args pinArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	switch args.AuthType {
	case bridge.AuthSession:
		if args.Pin != b.Pin {
			return nil, errors.New("Invalid PIN")
		}

		b.PinSession = true
	default:
		b.pendingPin = args.Pin
	}

	return nil, nil
}

func (b *Backend) validateConfirmPin(raw json.RawMessage) (any, error) {
	var args pinArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if args.ConfirmPin != b.pendingPin {
		return nil, errors.New("PIN and Confirm PIN must be same.")
	}

	return nil, nil
}

type seedArgs struct {
	SeedWords string          `json:"seedWords"`
	AuthType  bridge.AuthType `json:"authType"`
	ID        string          `json:"id"`
}

func (b *Backend) validateSeedWords(raw json.RawMessage) (any, error) {
	var args seedArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if args.SeedWords != b.Mnemonic {
		return nil, errors.New("Invalid seed words")
	}

	return nil, nil
}

func (b *Backend) signup(raw json.RawMessage) (any, error) {
	var args seedArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if args.SeedWords != "" && args.SeedWords != b.Mnemonic {
		return nil, errors.New("Invalid seed words")
	}

	if args.ID != "" {
		b.Profile.ID = args.ID
	}

	if b.pendingPin != "" {
		b.Pin = b.pendingPin
	}

	b.SignedUp = true

	return nil, nil
}

func (b *Backend) signin(raw json.RawMessage) (any, error) {
	var args seedArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if !b.SignedUp {
		return nil, bridge.Reject("Account not found", bridge.CodeSignup)
	}

	if args.SeedWords != b.Mnemonic {
		return nil, errors.New("Invalid seed words")
	}

	if b.pendingPin != "" {
		b.Pin = b.pendingPin
	}

	b.SignedIn = true
	b.PinSession = true

	return nil, nil
}

func (b *Backend) getProfile(json.RawMessage) (any, error) {
	if !b.SignedIn {
		return nil, bridge.Reject("Not signed in", bridge.CodeSignin)
	}

	return b.Profile, nil
}

func (b *Backend) updateProfile(raw json.RawMessage) (any, error) {
	var args struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	name := args.Data.Name
	b.Profile.Name = &name

	return nil, nil
}

func (b *Backend) updateHospitalName(raw json.RawMessage) (any, error) {
	var args struct {
		HospitalName string `json:"hospitalName"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	b.Profile.HospitalName = &args.HospitalName

	return nil, nil
}

func (b *Backend) addActivationKey(raw json.RawMessage) (any, error) {
	var args struct {
		PersonnelIDPart string      `json:"personnelIdPart"`
		Role            models.Role `json:"role"`
		Pin             string      `json:"pin"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if args.Pin != b.Pin {
		return nil, errors.New("Invalid PIN")
	}

	id := strings.TrimSpace(args.PersonnelIDPart)
	b.Personnel = append(b.Personnel, models.Personnel{ID: id, Role: args.Role})

	return models.ActivationKey{ActivationKey: uuid.NewString(), ID: id}, nil
}

type recordArgs struct {
	AccessToken         string             `json:"accessToken"`
	PatientIotaAddress  string             `json:"patientIotaAddress"`
	PatientPrePublicKey string             `json:"patientPrePublicKey"`
	Index               *uint64            `json:"index"`
	Data                models.MedicalData `json:"data"`
}

// withToken rejects hospital record commands that carry no access token.
// Patients read their own records without one.
func (b *Backend) withToken(fn func(json.RawMessage) (any, error)) func(json.RawMessage) (any, error) {
	return func(raw json.RawMessage) (any, error) {
		var args recordArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, err
		}

		if b.Client == models.ClientHospital && args.AccessToken == "" {
			return nil, errors.New("Access token is required")
		}

		return fn(raw)
	}
}

func (b *Backend) medicalRecords(json.RawMessage) (any, error) {
	metadata := make([]models.MedicalRecordMetadata, 0, len(b.Records))
	for _, record := range b.Records {
		metadata = append(metadata, models.MedicalRecordMetadata{Index: record.Index, CreatedAt: record.CreatedAt})
	}

	return metadata, nil
}

func (b *Backend) medicalRecord(raw json.RawMessage) (any, error) {
	var args recordArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if len(b.Records) == 0 {
		return nil, errors.New("No medical record")
	}

	if args.Index == nil {
		return b.Records[len(b.Records)-1], nil
	}

	for _, record := range b.Records {
		if record.Index == *args.Index {
			return record, nil
		}
	}

	return nil, fmt.Errorf("Medical record %d not found", *args.Index)
}

func (b *Backend) newMedicalRecord(raw json.RawMessage) (any, error) {
	var args recordArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	b.Records = append(b.Records, models.MedicalRecord{
		Index:       uint64(len(b.Records)),
		CreatedAt:   "2025-01-01T00:00:00Z",
		MedicalData: args.Data,
	})

	return nil, nil
}

func (b *Backend) updateMedicalRecord(raw json.RawMessage) (any, error) {
	var args recordArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if len(b.Records) == 0 {
		return nil, errors.New("No medical record to update")
	}

	b.Records[len(b.Records)-1].MedicalData = args.Data

	return nil, nil
}

func (b *Backend) revokeAccess(raw json.RawMessage) (any, error) {
	var args struct {
		HospitalPersonnelAddress string `json:"hospitalPersonnelAddress"`
		Index                    uint64 `json:"index"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	for i := range b.AccessLog {
		entry := &b.AccessLog[i]
		if entry.Index == args.Index && entry.HospitalPersonnelAddress == args.HospitalPersonnelAddress {
			entry.IsRevoked = true

			return nil, nil
		}
	}

	return nil, errors.New("Access not found")
}

func (b *Backend) processQR(raw json.RawMessage) (any, error) {
	var args struct {
		QRBytes bridge.Bytes `json:"qrBytes"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if len(args.QRBytes) == 0 {
		return nil, errors.New("Invalid QR code")
	}

	return b.Scan, nil
}

func (b *Backend) createAccess(raw json.RawMessage) (any, error) {
	var args struct {
		Pin string `json:"pin"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if args.Pin != b.Pin {
		return nil, errors.New("Invalid PIN")
	}

	b.AccessLog = append(b.AccessLog, models.AccessLogEntry{
		Index:                 uint64(len(b.AccessLog)),
		AccessDataTypes:       []models.AccessDataType{models.AccessDataAdministrative, models.AccessDataMedical},
		AccessType:            models.AccessRead,
		HospitalName:          b.Scan.HospitalPersonnelHospitalName,
		HospitalPersonnelName: b.Scan.HospitalPersonnelName,
	})

	return nil, nil
}

func (b *Backend) getHospitals(raw json.RawMessage) (any, error) {
	var args struct {
		Payload models.HospitalPage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	if len(b.Hospitals) == 0 {
		return nil, errors.New("No hospital registered")
	}

	start, size := uint64(0), uint64(len(b.Hospitals))
	if args.Payload.Cursor != nil {
		start = *args.Payload.Cursor
	}

	if args.Payload.Size != nil {
		size = *args.Payload.Size
	}

	if start >= uint64(len(b.Hospitals)) {
		return []models.Hospital{}, nil
	}

	end := min(start+size, uint64(len(b.Hospitals)))

	return b.Hospitals[start:end], nil
}

func (b *Backend) createActivationKey(raw json.RawMessage) (any, error) {
	var args struct {
		Payload struct {
			HospitalID   string `json:"hospitalId"`
			HospitalName string `json:"hospitalName"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	for _, h := range b.Hospitals {
		if h.HospitalName == args.Payload.HospitalName {
			return nil, fmt.Errorf("Hospital %s already registered", h.HospitalName)
		}
	}

	b.Hospitals = append(b.Hospitals, models.Hospital{
		ActivationKey:    uuid.NewString(),
		HospitalAdminCID: args.Payload.HospitalID,
		HospitalName:     args.Payload.HospitalName,
	})

	return nil, nil
}

func (b *Backend) updateActivationKey(raw json.RawMessage) (any, error) {
	var args struct {
		Payload struct {
			HospitalAdminCID string `json:"hospitalAdminCid"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	for i := range b.Hospitals {
		if b.Hospitals[i].HospitalAdminCID == args.Payload.HospitalAdminCID {
			b.Hospitals[i].ActivationKey = uuid.NewString()

			return nil, nil
		}
	}

	return nil, errors.New("Hospital not found")
}
