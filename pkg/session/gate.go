package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/result"
)

// Decision is the outcome of one gate evaluation. RedirectTo is empty when
// the requested page may render.
type Decision struct {
	State      State        `json:"state"`
	RedirectTo string       `json:"redirectTo,omitempty"`
	Role       *models.Role `json:"role"`
}

// Guard returns where to navigate for a request to path. No redirect is
// issued when path already is the target.
func Guard(d Decision, path string) (string, bool) {
	if d.RedirectTo == "" || d.RedirectTo == path {
		return "", false
	}

	return d.RedirectTo, true
}

type Gate interface {
	Decide(ctx context.Context, path string) Decision
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context, path string) Decision

func (f GateFunc) Decide(ctx context.Context, path string) Decision {
	return f(ctx, path)
}

// ready builds the decision for a session that passed every precondition.
// Pages outside home are sent home.
func ready(path, home string, role *models.Role) Decision {
	d := Decision{State: Ready, Role: role}
	if home != "" && !strings.HasPrefix(path, home) {
		d.RedirectTo = home
	}

	return d
}

func blocked(state State) Decision {
	return Decision{State: state, RedirectTo: state.Target()}
}

// CodeTable resolves a failed auth_status call into a state.
type CodeTable struct {
	// Codes maps redirect codes to states. Codes missing here use Fallback.
	Codes map[bridge.RedirectCode]State
	// Fallback is used when the rejection carries no usable code.
	Fallback State
	// Sticky keeps the user on these pages when the fallback would apply.
	Sticky map[string]State
}

// HospitalCodes is the hospital client table: every known code maps to its
// page and anything else goes to activation.
func HospitalCodes() CodeTable {
	codes := make(map[bridge.RedirectCode]State)
	for _, code := range []bridge.RedirectCode{
		bridge.CodeActivation, bridge.CodeSignup, bridge.CodeSignin, bridge.CodeCompleteProfile, bridge.CodePin,
	} {
		st, _ := StateForCode(code)
		codes[code] = st
	}

	return CodeTable{Codes: codes, Fallback: NotActivated}
}

// PatientCodes is the patient client table. Patients have no activation step,
// so an unexplained failure means signed out, and the sign-up page stays put.
// The patient backend reports an incomplete profile with code 1.
func PatientCodes() CodeTable {
	return CodeTable{
		Codes:    map[bridge.RedirectCode]State{bridge.CodeSignup: ProfileIncomplete},
		Fallback: NotSignedIn,
		Sticky:   map[string]State{PathSignUp: NotSignedUp},
	}
}

func (t CodeTable) resolve(path string, code bridge.RedirectCode, hasCode bool) State {
	if hasCode {
		if st, ok := t.Codes[code]; ok {
			return st
		}
	}

	if st, ok := t.Sticky[path]; ok {
		return st
	}

	return t.Fallback
}

// StatusGate asks auth_status once per evaluation.
type StatusGate struct {
	inv    bridge.Invoker
	table  CodeTable
	home   string
	logger *slog.Logger
}

func NewStatusGate(inv bridge.Invoker, table CodeTable, logger *slog.Logger) *StatusGate {
	return &StatusGate{
		inv:    inv,
		table:  table,
		home:   PathDashboard,
		logger: logger.With("module", "status_gate"),
	}
}

func (g *StatusGate) Decide(ctx context.Context, path string) Decision {
	res := result.Invoke[*models.Role](ctx, g.inv, bridge.CmdAuthStatus, nil)
	if res.Success {
		return ready(path, g.home, res.Data.Data)
	}

	code, hasCode := res.RedirectCode()
	st := g.table.resolve(path, code, hasCode)

	g.logger.DebugContext(ctx, "auth_status rejected",
		"path", path,
		"state", st.String(),
		"has_code", hasCode,
		"error", res.Error)

	return blocked(st)
}

// OpenGate lets every page render. The ministry client has no account lifecycle.
type OpenGate struct{}

func (OpenGate) Decide(context.Context, string) Decision {
	return Decision{State: Ready}
}
