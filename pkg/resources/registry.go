package resources

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
)

// Personnel is the hospital roster seen by admins.
type Personnel struct {
	base
}

func NewPersonnel(inv bridge.Invoker, n notify.Notifier) *Personnel {
	return &Personnel{base: newBase(inv, n)}
}

func (p *Personnel) List(ctx context.Context) ([]models.Personnel, error) {
	return fetch[[]models.Personnel](ctx, p.base, bridge.CmdGetHospitalPersonnels, nil)
}

// ErrNoHospitals is returned when the registry is empty or cannot be read.
var ErrNoHospitals = errors.New("no hospital registered")

// Hospitals is the ministry's hospital registry.
type Hospitals struct {
	base
}

func NewHospitals(inv bridge.Invoker, n notify.Notifier) *Hospitals {
	return &Hospitals{base: newBase(inv, n)}
}

// Page lists one page of registered hospitals. The backend reports an empty
// registry as a failure, so both cases return ErrNoHospitals.
func (h *Hospitals) Page(ctx context.Context, page models.HospitalPage) ([]models.Hospital, error) {
	hospitals, err := fetch[[]models.Hospital](ctx, h.base, bridge.CmdGetHospitals, bridge.Args{"payload": page})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoHospitals, err)
	}

	if len(hospitals) == 0 {
		return nil, ErrNoHospitals
	}

	return hospitals, nil
}

// RotateKey issues a new activation key for the hospital whose admin is cid.
func (h *Hospitals) RotateKey(ctx context.Context, cid string) error {
	return exec(ctx, h.base, bridge.CmdUpdateActivationKey, bridge.Args{
		"payload": bridge.Args{"hospitalAdminCid": cid},
	}, "Activation key updated successfully")
}
