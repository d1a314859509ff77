package session

import (
	"context"
	"log/slog"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/result"
)

// Check is one precondition of a ChainGate. Fails is the state reported when
// Passes returns false.
type Check struct {
	Name   string
	Fails  State
	Passes func(ctx context.Context, inv bridge.Invoker) bool
}

// CommandCheck passes when command resolves.
func CommandCheck(command string, fails State) Check {
	return Check{
		Name:  command,
		Fails: fails,
		Passes: func(ctx context.Context, inv bridge.Invoker) bool {
			return result.Exec(ctx, inv, command, nil).Success
		},
	}
}

// ProfileCheck passes when get_profile resolves with a name.
func ProfileCheck() Check {
	return Check{
		Name:  bridge.CmdGetProfile,
		Fails: ProfileIncomplete,
		Passes: func(ctx context.Context, inv bridge.Invoker) bool {
			res := result.Invoke[models.Profile](ctx, inv, bridge.CmdGetProfile, nil)
			return res.Success && res.Data.Data.Complete()
		},
	}
}

// HospitalChecks is the full lifecycle of a hospital personnel account.
func HospitalChecks() []Check {
	return []Check{
		CommandCheck(bridge.CmdIsAppActivated, NotActivated),
		CommandCheck(bridge.CmdIsSignedUp, NotSignedUp),
		CommandCheck(bridge.CmdIsSignedIn, NotSignedIn),
		ProfileCheck(),
		CommandCheck(bridge.CmdIsSessionPinExist, PinSessionMissing),
	}
}

// PatientChecks skips activation, which patients never go through.
func PatientChecks() []Check {
	return []Check{
		CommandCheck(bridge.CmdIsSignedUp, NotSignedUp),
		CommandCheck(bridge.CmdIsSignedIn, NotSignedIn),
		ProfileCheck(),
	}
}

// ChainGate runs its checks in order; the first failing one decides. Once
// all pass, the role is read from auth_status when WithRole is set.
type ChainGate struct {
	inv      bridge.Invoker
	checks   []Check
	home     string
	withRole bool
	logger   *slog.Logger
}

type ChainOption func(*ChainGate)

// WithRole resolves the role with auth_status after every check passed.
func WithRole() ChainOption {
	return func(g *ChainGate) { g.withRole = true }
}

// WithHome overrides the default /dashboard home.
func WithHome(home string) ChainOption {
	return func(g *ChainGate) { g.home = home }
}

func NewChainGate(inv bridge.Invoker, checks []Check, logger *slog.Logger, opts ...ChainOption) *ChainGate {
	g := &ChainGate{
		inv:    inv,
		checks: checks,
		home:   PathDashboard,
		logger: logger.With("module", "chain_gate"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *ChainGate) Decide(ctx context.Context, path string) Decision {
	for _, check := range g.checks {
		if !check.Passes(ctx, g.inv) {
			g.logger.DebugContext(ctx, "Precondition failed", "check", check.Name, "path", path)

			return blocked(check.Fails)
		}
	}

	var role *models.Role
	if g.withRole {
		if res := result.Invoke[*models.Role](ctx, g.inv, bridge.CmdAuthStatus, nil); res.Success {
			role = res.Data.Data
		}
	}

	return ready(path, g.home, role)
}
