package router

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/eventbus"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/resources"
	"github.com/dukex/decmed/pkg/result"
	"github.com/dukex/decmed/pkg/session"
)

const (
	PathProfile        = session.PathDashboard + "/profile"
	PathAccessLog      = session.PathDashboard + "/log"
	PathScan           = session.PathDashboard + "/scan"
	PathAdministrative = session.PathDashboard + "/adm/{patientAddress}"
	PathRecord         = session.PathDashboard + "/emr/{patientAddress}"
	PathCreateRecord   = PathRecord + "/create"
	PathUpdateRecord   = PathRecord + "/update"
	PathPatientRecord  = session.PathDashboard + "/emr/{emrIndex}"
)

// Deps are the collaborators page loaders read through.
type Deps struct {
	Invoker   bridge.Invoker
	Notifier  notify.Notifier
	Session   *session.Context
	Publisher eventbus.EventPublisher
}

// FormPage carries the defaults of a form and its number of steps.
type FormPage struct {
	Form  any  `json:"form"`
	Steps int  `json:"steps"`
	Admin bool `json:"admin,omitempty"`
}

type DashboardPage struct {
	Role         *models.Role                   `json:"role"`
	Tabs         []string                       `json:"tabs,omitempty"`
	Personnel    []models.Personnel             `json:"personnel,omitempty"`
	AddPersonnel *FormPage                      `json:"addPersonnel,omitempty"`
	ReadAccess   []models.AccessGrant           `json:"readAccess,omitempty"`
	UpdateAccess []models.AccessGrant           `json:"updateAccess,omitempty"`
	Records      []models.MedicalRecordMetadata `json:"records,omitempty"`
}

type ProfilePage struct {
	Profile *models.Profile `json:"profile,omitempty"`
	QR      string          `json:"qr,omitempty"`
}

// RecordPage is any page scoped to one patient record.
type RecordPage struct {
	Target         models.RecordTarget        `json:"target"`
	Record         *models.MedicalRecord      `json:"record,omitempty"`
	Administrative *models.AdministrativeData `json:"administrative,omitempty"`
	Form           *forms.MedicalRecordForm   `json:"form,omitempty"`
}

type AccessLogPage struct {
	Entries []models.AccessLogEntry `json:"entries"`
}

type HospitalsPage struct {
	Hospitals   []models.Hospital `json:"hospitals"`
	Message     string            `json:"message,omitempty"`
	AddHospital FormPage          `json:"addHospital"`
}

// NoHospitals is shown in place of an empty registry.
const NoHospitals = "No hospital registered"

// ForClient builds the route table of client.
func ForClient(client models.ClientKind, gate session.Gate, deps Deps, logger *slog.Logger) *Router {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}

	r := New(gate, deps.Session, logger)
	if deps.Publisher != nil {
		r.Announce(deps.Publisher, client)
	}

	switch client {
	case models.ClientHospital:
		Hospital(r, deps)
	case models.ClientPatient:
		Patient(r, deps)
	case models.ClientMinistry:
		Ministry(r, deps)
	}

	return r
}

func formPage[F any](initial F, steps int) Loader {
	return func(context.Context, Request) (any, error) {
		return FormPage{Form: initial, Steps: steps}, nil
	}
}

// Hospital registers the hospital personnel pages.
func Hospital(r *Router, d Deps) {
	r.Page(session.PathRoot, nil)
	r.Public(session.PathActivation, formPage(forms.ActivationForm{}, 1))
	r.Public(session.PathSignUp, hospitalSignUp(d))
	r.Page(session.PathSignIn, formPage(forms.CredentialsForm{}, forms.SignInSteps.Len()))
	r.Page(session.PathCompleteProfile, completeProfile(d))
	r.Page(session.PathPin, formPage(forms.PinForm{}, 1))
	r.Page(session.PathDashboard, hospitalDashboard(d))
	r.Page(PathProfile, profile(d))
	r.Page(PathAdministrative, administrative(d))
	r.Page(PathRecord, record(d))
	r.Page(PathCreateRecord, createRecord)
	r.Page(PathUpdateRecord, updateRecord(d))
}

// Patient registers the patient pages.
func Patient(r *Router, d Deps) {
	r.Page(session.PathRoot, nil)
	r.Page(session.PathSignIn, formPage(forms.CredentialsForm{}, forms.PatientSignInSteps.Len()))
	r.Page(session.PathSignUp, formPage(forms.CredentialsForm{}, forms.PatientSignUpSteps.Len()))
	r.Page(session.PathCompleteProfile, formPage(forms.ProfileForm{}, 1))
	r.Page(session.PathDashboard, patientDashboard(d))
	r.Page(PathProfile, profile(d))
	r.Page(PathAccessLog, accessLog(d))
	r.Page(PathScan, formPage(forms.HospitalQRForm{}, forms.ScanSteps.Len()))
	r.Page(PathPatientRecord, patientRecord(d))
}

// Ministry registers the hospital registry page. The ministry client has no
// account lifecycle, so nothing is gated.
func Ministry(r *Router, d Deps) {
	r.Public(session.PathRoot, hospitals(d))
}

// hospitalSignUp keeps activated, not yet signed up installs on the page.
func hospitalSignUp(d Deps) Loader {
	return func(ctx context.Context, _ Request) (any, error) {
		if !result.Exec(ctx, d.Invoker, bridge.CmdIsAppActivated, nil).Success {
			return nil, Redirect(session.PathActivation)
		}

		if result.Exec(ctx, d.Invoker, bridge.CmdIsSignedUp, nil).Success {
			return nil, Redirect(session.PathSignIn)
		}

		return FormPage{Form: forms.CredentialsForm{}, Steps: forms.SignUpSteps.Len()}, nil
	}
}

// completeProfile asks admins for the hospital name too. auth_status reports
// no role before the profile is complete, so the role of the last sign-in is
// used.
func completeProfile(d Deps) Loader {
	return func(_ context.Context, req Request) (any, error) {
		role := req.Decision.Role
		if role == nil && d.Session != nil {
			role = d.Session.Role()
		}

		admin := role != nil && *role == models.RoleAdmin

		return FormPage{Form: forms.ProfileForm{}, Steps: 1, Admin: admin}, nil
	}
}

func hospitalDashboard(d Deps) Loader {
	return func(ctx context.Context, req Request) (any, error) {
		page := DashboardPage{Role: req.Decision.Role}
		if page.Role == nil {
			return page, nil
		}

		role := *page.Role
		page.Tabs = resources.Tabs(role)

		if role == models.RoleAdmin {
			personnel, err := resources.NewPersonnel(d.Invoker, d.Notifier).List(ctx)
			if err != nil {
				personnel = []models.Personnel{}
			}

			page.Personnel = personnel
			page.AddPersonnel = &FormPage{Form: forms.AddPersonnelForm{}, Steps: forms.AddPersonnelSteps.Len()}

			return page, nil
		}

		access := resources.NewAccessList(d.Invoker, d.Notifier)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			page.ReadAccess = access.Read(gctx, role)

			return nil
		})
		g.Go(func() error {
			page.UpdateAccess = access.Update(gctx, role)

			return nil
		})

		return page, g.Wait()
	}
}

func patientDashboard(d Deps) Loader {
	return func(ctx context.Context, req Request) (any, error) {
		records, err := resources.NewMedicalRecords(d.Invoker, notify.Discard, models.RecordTarget{}).List(ctx)
		if err != nil || records == nil {
			records = []models.MedicalRecordMetadata{}
		}

		return DashboardPage{Role: req.Decision.Role, Records: records}, nil
	}
}

func profile(d Deps) Loader {
	return func(ctx context.Context, _ Request) (any, error) {
		p := resources.NewProfile(d.Invoker, d.Notifier, d.Session)

		loaded, err := p.Get(ctx)
		if err != nil {
			return ProfilePage{}, nil
		}

		return ProfilePage{Profile: &loaded, QR: loaded.QRPayload()}, nil
	}
}

func accessLog(d Deps) Loader {
	return func(ctx context.Context, _ Request) (any, error) {
		entries, err := resources.NewAccessLog(d.Invoker, d.Notifier).List(ctx)
		if err != nil {
			return nil, err
		}

		if entries == nil {
			entries = []models.AccessLogEntry{}
		}

		return AccessLogPage{Entries: entries}, nil
	}
}

func target(req Request, required ...string) (models.RecordTarget, error) {
	for _, name := range required {
		if _, err := req.RequireQuery(name); err != nil {
			return models.RecordTarget{}, err
		}
	}

	return models.RecordTarget{
		AccessToken:         req.Query.Get("accessToken"),
		PatientIotaAddress:  req.Params["patientAddress"],
		PatientPrePublicKey: req.Query.Get("patientPrePublicKey"),
	}, nil
}

func administrative(d Deps) Loader {
	return func(ctx context.Context, req Request) (any, error) {
		t, err := target(req, "accessToken")
		if err != nil {
			return nil, err
		}

		data, err := resources.NewMedicalRecords(d.Invoker, d.Notifier, t).Administrative(ctx)
		if err != nil {
			return nil, err
		}

		return RecordPage{Target: t, Administrative: &data}, nil
	}
}

// record shows one record. A malformed index reads the first record.
func record(d Deps) Loader {
	return func(ctx context.Context, req Request) (any, error) {
		t, err := target(req, "accessToken", "index")
		if err != nil {
			return nil, err
		}

		index := req.IntQuery("index")
		if index == nil {
			index = new(int)
		}

		t.Index = index

		rec, err := resources.NewMedicalRecords(d.Invoker, d.Notifier, t).Get(ctx, nil)
		if err != nil {
			return nil, err
		}

		return RecordPage{Target: t, Record: &rec}, nil
	}
}

func createRecord(_ context.Context, req Request) (any, error) {
	t, err := target(req, "accessToken", "patientPrePublicKey")
	if err != nil {
		return nil, err
	}

	return RecordPage{Target: t, Form: &forms.MedicalRecordForm{}}, nil
}

// updateRecord prefills the editor with the record the grant points at, the
// latest one when no index is given.
func updateRecord(d Deps) Loader {
	return func(ctx context.Context, req Request) (any, error) {
		t, err := target(req, "accessToken", "patientPrePublicKey")
		if err != nil {
			return nil, err
		}

		t.Index = req.IntQuery("medicalMetadataIndex")

		rec, err := resources.NewMedicalRecords(d.Invoker, d.Notifier, t).GetForUpdate(ctx, nil)
		if err != nil {
			return nil, err
		}

		form := forms.MedicalRecordFormFrom(rec.MedicalData)

		return RecordPage{Target: t, Record: &rec, Form: &form}, nil
	}
}

func patientRecord(d Deps) Loader {
	return func(ctx context.Context, req Request) (any, error) {
		index, err := strconv.Atoi(req.Params["emrIndex"])
		if err != nil || index < 0 {
			return nil, ErrNotFound
		}

		t := models.RecordTarget{Index: &index}

		rec, err := resources.NewMedicalRecords(d.Invoker, d.Notifier, t).Get(ctx, nil)
		if err != nil {
			return nil, err
		}

		return RecordPage{Target: t, Record: &rec}, nil
	}
}

func hospitals(d Deps) Loader {
	return func(ctx context.Context, req Request) (any, error) {
		page := HospitalsPage{
			Hospitals:   []models.Hospital{},
			AddHospital: FormPage{Form: forms.AddHospitalForm{}, Steps: 1},
		}

		var query models.HospitalPage
		if cursor, err := strconv.ParseUint(req.Query.Get("cursor"), 10, 64); err == nil {
			query.Cursor = &cursor
		}

		if size, err := strconv.ParseUint(req.Query.Get("size"), 10, 64); err == nil {
			query.Size = &size
		}

		list, err := resources.NewHospitals(d.Invoker, d.Notifier).Page(ctx, query)
		if errors.Is(err, resources.ErrNoHospitals) {
			page.Message = NoHospitals

			return page, nil
		}

		page.Hospitals = list

		return page, nil
	}
}
