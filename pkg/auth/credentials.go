package auth

import (
	"context"
	"errors"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/result"
	"github.com/dukex/decmed/pkg/wizard"
)

// NewSignIn asks for a new PIN twice, then the seed phrase of an existing
// account. Patients also give their NIK.
func NewSignIn(env wizard.Env, sess Session) *wizard.Wizard[forms.CredentialsForm] {
	steps := forms.SignInSteps
	if env.Client == models.ClientPatient {
		steps = forms.PatientSignInSteps
	}

	signin := func(ctx context.Context, form forms.CredentialsForm) (wizard.Completion, error) {
		args := bridge.Args{"seedWords": form.SeedWords}
		if env.Client == models.ClientPatient {
			args["id"] = form.Nik
		}

		if err := exec(ctx, env, bridge.CmdSignin, args); err != nil {
			return wizard.Completion{}, err
		}

		return wizard.Completion{RedirectTo: sess.refresh(ctx)}, nil
	}

	return wizard.New("signin", env, steps, forms.CredentialsForm{}, signin).
		Remote(1, "pin", validatePin(env, bridge.AuthSignin)).
		Remote(2, "confirmPin", validateConfirmPin(env, bridge.AuthSignin))
}

// NewSignUp creates an account. Entering step 3 generates the mnemonic the
// user must write down and type back on step 4.
func NewSignUp(env wizard.Env, sess Session) *wizard.Wizard[forms.CredentialsForm] {
	steps := forms.SignUpSteps
	if env.Client == models.ClientPatient {
		steps = forms.PatientSignUpSteps
	}

	signup := func(ctx context.Context, form forms.CredentialsForm) (wizard.Completion, error) {
		args := bridge.Args{"seedWords": form.SeedWords}
		if env.Client == models.ClientPatient {
			args = bridge.Args{"id": form.Nik}
		}

		if err := exec(ctx, env, bridge.CmdSignup, args); err != nil {
			return wizard.Completion{}, err
		}

		return wizard.Completion{RedirectTo: sess.refresh(ctx)}, nil
	}

	return wizard.New("signup", env, steps, forms.CredentialsForm{}, signup).
		Remote(1, "pin", validatePin(env, bridge.AuthSignup)).
		Remote(2, "confirmPin", validateConfirmPin(env, bridge.AuthSignup)).
		OnEnter(3, generateMnemonic(env)).
		Remote(4, "seedWords", func(ctx context.Context, form *forms.CredentialsForm) error {
			return exec(ctx, env, bridge.CmdValidateSeedWords, bridge.Args{
				"seedWords": form.SeedWords,
				"authType":  bridge.AuthSignup,
			})
		})
}

func generateMnemonic(env wizard.Env) wizard.Hook[forms.CredentialsForm] {
	return func(ctx context.Context, form *forms.CredentialsForm) error {
		res := result.Invoke[string](ctx, env.Invoker, bridge.CmdGenerateMnemonic, nil)
		if !res.Success {
			return res.Err()
		}

		if !forms.IsSeedPhrase(res.Data.Data) {
			return errors.New("generated mnemonic is not a 12 word phrase")
		}

		form.Mnemonic = res.Data.Data

		return nil
	}
}
