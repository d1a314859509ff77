package web

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/dukex/decmed/pkg/auth"
	"github.com/dukex/decmed/pkg/hospital"
	"github.com/dukex/decmed/pkg/ministry"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/patient"
	"github.com/dukex/decmed/pkg/resources"
	"github.com/dukex/decmed/pkg/wizard"
)

var (
	ErrUnknownFlow = errors.New("unknown flow")
	ErrFlowScope   = errors.New("flow scope is incomplete")
)

// Flow is a wizard with its form type erased, as served over HTTP.
type Flow interface {
	// Submit decodes the form with bind and submits it.
	Submit(ctx context.Context, bind func(out any) error) (wizard.Outcome, error)
	State() any
	Reset()
}

type boundFlow[F any] struct {
	w *wizard.Wizard[F]
}

// Bind exposes w as a Flow.
func Bind[F any](w *wizard.Wizard[F]) Flow {
	return boundFlow[F]{w: w}
}

func (f boundFlow[F]) Submit(ctx context.Context, bind func(out any) error) (wizard.Outcome, error) {
	var form F
	if err := bind(&form); err != nil {
		return wizard.Outcome{}, err
	}

	return f.w.Submit(ctx, form), nil
}

func (f boundFlow[F]) State() any {
	return f.w.State()
}

func (f boundFlow[F]) Reset() {
	f.w.Reset()
}

// Opener builds a flow scoped to a query, such as the patient a record
// editor writes to.
type Opener func(ctx context.Context, query url.Values) (Flow, error)

type scoped struct {
	open Opener
	keys []string
}

// Flows holds the flows of one client. Scoped flows opened with the same
// values for their scope keys share their state until completed or reset.
type Flows struct {
	mu      sync.Mutex
	static  map[string]Flow
	openers map[string]scoped
	opened  map[string]Flow
}

// recordScope identifies the patient record a record editor writes to.
var recordScope = []string{"accessToken", "patientAddress", "patientPrePublicKey", "medicalMetadataIndex"}

func NewFlows() *Flows {
	return &Flows{
		static:  make(map[string]Flow),
		openers: make(map[string]scoped),
		opened:  make(map[string]Flow),
	}
}

func (f *Flows) Add(name string, flow Flow) *Flows {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.static[name] = flow

	return f
}

// AddScoped registers a flow opened per distinct value of keys in the query.
// Other query parameters do not change which flow is returned.
func (f *Flows) AddScoped(name string, open Opener, keys ...string) *Flows {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.openers[name] = scoped{open: open, keys: keys}

	return f
}

// Get returns the flow called name, opening scoped flows on first use.
func (f *Flows) Get(ctx context.Context, name string, query url.Values) (Flow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if flow, ok := f.static[name]; ok {
		return flow, nil
	}

	s, ok := f.openers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFlow, name)
	}

	key := scopeKey(name, s.keys, query)
	if flow, ok := f.opened[key]; ok {
		return flow, nil
	}

	flow, err := s.open(ctx, query)
	if err != nil {
		return nil, err
	}

	f.opened[key] = flow

	return flow, nil
}

// Release forgets the scoped flow opened for query. The next Get opens a
// fresh one. Static flows are not affected.
func (f *Flows) Release(name string, query url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.openers[name]; ok {
		delete(f.opened, scopeKey(name, s.keys, query))
	}
}

// Open reports how many scoped flows are currently held.
func (f *Flows) Open() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.opened)
}

func scopeKey(name string, keys []string, query url.Values) string {
	if len(keys) == 0 {
		return name + "?" + query.Encode()
	}

	scope := url.Values{}
	for _, k := range keys {
		if v := query.Get(k); v != "" {
			scope.Set(k, v)
		}
	}

	return name + "?" + scope.Encode()
}

// Names lists the registered flows.
func (f *Flows) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.static)+len(f.openers))
	for name := range f.static {
		names = append(names, name)
	}

	for name := range f.openers {
		names = append(names, name)
	}

	return names
}

// ClientFlows registers the flows the client's pages submit.
func ClientFlows(client models.ClientKind, env wizard.Env, sess auth.Session) *Flows {
	flows := NewFlows()

	switch client {
	case models.ClientHospital:
		flows.
			Add("activation", Bind(auth.NewActivation(env, sess))).
			Add("signup", Bind(auth.NewSignUp(env, sess))).
			Add("signin", Bind(auth.NewSignIn(env, sess))).
			Add("pin", Bind(auth.NewPinUnlock(env, sess))).
			Add("complete-profile", Bind(auth.NewCompleteProfile(env, sess, nil))).
			Add("complete-profile-admin", Bind(auth.NewCompleteProfile(env, sess, models.RoleRef(models.RoleAdmin)))).
			Add("add-personnel", Bind(hospital.NewAddPersonnel(env))).
			AddScoped("new-medical-record", func(_ context.Context, q url.Values) (Flow, error) {
				target, err := recordTarget(q)
				if err != nil {
					return nil, err
				}

				return Bind(hospital.NewMedicalRecord(env, target)), nil
			}, recordScope...).
			AddScoped("update-medical-record", func(ctx context.Context, q url.Values) (Flow, error) {
				target, err := recordTarget(q)
				if err != nil {
					return nil, err
				}

				current, err := resources.NewMedicalRecords(env.Invoker, env.Notifier, target).GetForUpdate(ctx, nil)
				if err != nil {
					return nil, err
				}

				return Bind(hospital.NewMedicalRecordUpdate(env, target, current.MedicalData)), nil
			}, recordScope...)
	case models.ClientPatient:
		flows.
			Add("signup", Bind(auth.NewSignUp(env, sess))).
			Add("signin", Bind(auth.NewSignIn(env, sess))).
			Add("complete-profile", Bind(auth.NewCompleteProfile(env, sess, nil))).
			Add("scan", Bind(patient.NewScan(env)))
	case models.ClientMinistry:
		flows.Add("add-hospital", Bind(ministry.NewAddHospital(env)))
	}

	return flows
}

func recordTarget(q url.Values) (models.RecordTarget, error) {
	target := models.RecordTarget{
		AccessToken:         q.Get("accessToken"),
		PatientIotaAddress:  q.Get("patientAddress"),
		PatientPrePublicKey: q.Get("patientPrePublicKey"),
	}

	if target.AccessToken == "" || target.PatientIotaAddress == "" || target.PatientPrePublicKey == "" {
		return models.RecordTarget{}, ErrFlowScope
	}

	if index, err := strconv.Atoi(q.Get("medicalMetadataIndex")); err == nil {
		target.Index = &index
	}

	return target, nil
}
