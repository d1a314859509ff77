// Package ministry holds the hospital registry flow of the ministry client.
package ministry

import (
	"context"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/result"
	"github.com/dukex/decmed/pkg/wizard"
)

// NewAddHospital registers a hospital and issues its first activation key.
func NewAddHospital(env wizard.Env) *wizard.Wizard[forms.AddHospitalForm] {
	return wizard.New("add-hospital", env, forms.Single(forms.AddHospitalSchema), forms.AddHospitalForm{},
		func(ctx context.Context, form forms.AddHospitalForm) (wizard.Completion, error) {
			err := result.Exec(ctx, env.Invoker, bridge.CmdCreateActivationKey, bridge.Args{
				"payload": bridge.Args{
					"hospitalId":   form.HospitalID,
					"hospitalName": form.HospitalName,
				},
			}).Err()
			if err != nil {
				return wizard.Completion{}, err
			}

			return wizard.Completion{Message: "Hospital successfully registered"}, nil
		})
}
