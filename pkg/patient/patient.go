// Package patient holds the flow a patient runs to grant hospital personnel
// access to their records.
package patient

import (
	"context"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/result"
	"github.com/dukex/decmed/pkg/session"
	"github.com/dukex/decmed/pkg/wizard"
)

// PathAccessLog lists the grants a patient has given.
const PathAccessLog = session.PathDashboard + "/log"

// NewScan reads a personnel QR code, shows who it belongs to, and grants
// that person access once the patient confirms with their PIN.
func NewScan(env wizard.Env) *wizard.Wizard[forms.HospitalQRForm] {
	grant := func(ctx context.Context, form forms.HospitalQRForm) (wizard.Completion, error) {
		if err := result.Exec(ctx, env.Invoker, bridge.CmdCreateAccess, bridge.Args{"pin": form.Pin}).Err(); err != nil {
			return wizard.Completion{}, err
		}

		return wizard.Completion{Message: "Access granted", RedirectTo: PathAccessLog}, nil
	}

	return wizard.New("scan", env, forms.ScanSteps, forms.HospitalQRForm{}, grant).
		Remote(1, "qr", func(ctx context.Context, form *forms.HospitalQRForm) error {
			res := result.Invoke[models.QRScanResult](ctx, env.Invoker, bridge.CmdProcessQR,
				bridge.Args{"qrBytes": bridge.Bytes(form.QR.Data)})
			if !res.Success {
				return res.Err()
			}

			form.Personnel = &res.Data.Data

			return nil
		})
}
