package auth

import (
	"context"
	"log/slog"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/wizard"
)

// NewActivation registers this installation with the personnel ID and the
// activation key handed out by the hospital admin.
func NewActivation(env wizard.Env, sess Session) *wizard.Wizard[forms.ActivationForm] {
	return wizard.New("activation", env, forms.Single(forms.ActivationSchema), forms.ActivationForm{},
		func(ctx context.Context, form forms.ActivationForm) (wizard.Completion, error) {
			err := exec(ctx, env, bridge.CmdActivateApp, bridge.Args{
				"activationKey": form.ActivationKey,
				"id":            form.ID,
			})
			if err != nil {
				return wizard.Completion{}, err
			}

			return wizard.Completion{Message: "App activated", RedirectTo: sess.refresh(ctx)}, nil
		})
}

// NewPinUnlock renews an expired session PIN.
func NewPinUnlock(env wizard.Env, sess Session) *wizard.Wizard[forms.PinForm] {
	return wizard.New("pin", env, forms.Single(forms.PinSchema), forms.PinForm{},
		func(ctx context.Context, form forms.PinForm) (wizard.Completion, error) {
			err := exec(ctx, env, bridge.CmdValidatePin, bridge.Args{"pin": form.Pin, "authType": bridge.AuthSession})
			if err != nil {
				return wizard.Completion{}, err
			}

			return wizard.Completion{RedirectTo: sess.refresh(ctx)}, nil
		})
}

// NewCompleteProfile sets the display name. Hospital admins also name their
// hospital; a failure there is logged and does not undo the profile update.
func NewCompleteProfile(env wizard.Env, sess Session, role *models.Role) *wizard.Wizard[forms.ProfileForm] {
	admin := role != nil && *role == models.RoleAdmin

	schema := forms.CompleteProfileSchema
	if admin {
		schema = forms.CompleteProfileAdminSchema
	}

	logger := env.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return wizard.New("complete-profile", env, forms.Single(schema), forms.ProfileForm{},
		func(ctx context.Context, form forms.ProfileForm) (wizard.Completion, error) {
			err := exec(ctx, env, bridge.CmdUpdateProfile, bridge.Args{"data": bridge.Args{"name": form.Name}})
			if err != nil {
				return wizard.Completion{}, err
			}

			if admin {
				err := exec(ctx, env, bridge.CmdUpdateRegisteredHospitalName, bridge.Args{"hospitalName": form.Hospital})
				if err != nil {
					logger.WarnContext(ctx, "Failed to update registered hospital name", "error", err)
				}
			}

			return wizard.Completion{Message: "Profile updated successfully", RedirectTo: sess.refresh(ctx)}, nil
		})
}
