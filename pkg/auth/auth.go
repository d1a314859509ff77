// Package auth builds the account lifecycle flows: activation, sign-up,
// sign-in, profile completion and unlocking a session with its PIN.
package auth

import (
	"context"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/result"
	"github.com/dukex/decmed/pkg/session"
	"github.com/dukex/decmed/pkg/wizard"
)

// Session lets a finished flow re-evaluate where the account stands.
type Session struct {
	Gate    session.Gate
	Context *session.Context
}

// refresh runs the gate after a flow changed the account and returns the page
// to continue on.
func (s Session) refresh(ctx context.Context) string {
	if s.Gate == nil {
		return session.PathDashboard
	}

	d := s.Gate.Decide(ctx, session.PathDashboard)
	if s.Context != nil {
		s.Context.Sync(ctx, d)
	}

	if d.RedirectTo != "" {
		return d.RedirectTo
	}

	return session.PathDashboard
}

func exec(ctx context.Context, env wizard.Env, command string, args any) error {
	return result.Exec(ctx, env.Invoker, command, args).Err()
}

func validatePin(env wizard.Env, authType bridge.AuthType) wizard.Check[forms.CredentialsForm] {
	return func(ctx context.Context, form *forms.CredentialsForm) error {
		return exec(ctx, env, bridge.CmdValidatePin, bridge.Args{"pin": form.Pin, "authType": authType})
	}
}

func validateConfirmPin(env wizard.Env, authType bridge.AuthType) wizard.Check[forms.CredentialsForm] {
	return func(ctx context.Context, form *forms.CredentialsForm) error {
		return exec(ctx, env, bridge.CmdValidateConfirmPin, bridge.Args{"confirmPin": form.ConfirmPin, "authType": authType})
	}
}

// Reset wipes the local account so the client starts over from activation
// or sign-up.
func Reset(ctx context.Context, env wizard.Env, sess Session) result.Result[bridge.Response[any]] {
	res := result.Exec(ctx, env.Invoker, bridge.CmdReset, nil)
	if res.Success && sess.Context != nil {
		sess.Context.SignOut(ctx)
	}

	return res
}
