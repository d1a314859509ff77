package resources

import (
	"context"
	"io"

	"github.com/mdp/qrterminal/v3"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/result"
	"github.com/dukex/decmed/pkg/session"
)

// Profile is the signed-in account as shown on the profile page.
type Profile struct {
	base
	sess    *session.Context
	profile *Lazy[models.Profile]
}

// NewProfile reads through inv. sess is signed out when SignOut succeeds and
// may be nil.
func NewProfile(inv bridge.Invoker, n notify.Notifier, sess *session.Context) *Profile {
	p := &Profile{base: newBase(inv, n), sess: sess}
	p.profile = NewLazy(func(ctx context.Context) (models.Profile, error) {
		return fetch[models.Profile](ctx, p.base, bridge.CmdGetProfile, nil)
	})

	return p
}

func (p *Profile) Get(ctx context.Context) (models.Profile, error) {
	return p.profile.Get(ctx)
}

// QR is the payload of the last fetched profile.
func (p *Profile) QR() (string, error) {
	profile, ok := p.profile.Last()
	if !ok {
		return "", ErrNotLoaded
	}

	return profile.QRPayload(), nil
}

// RenderQR draws the QR code of the last fetched profile on w.
func (p *Profile) RenderQR(w io.Writer) error {
	payload, err := p.QR()
	if err != nil {
		return err
	}

	qrterminal.GenerateHalfBlock(payload, qrterminal.L, w)

	return nil
}

// SignOut ends the backend session and clears the local one.
func (p *Profile) SignOut(ctx context.Context) error {
	if err := result.Exec(ctx, p.invoker, bridge.CmdSignout, nil).Err(); err != nil {
		notify.Error(ctx, p.notifier, "Signout failed")

		return err
	}

	p.profile.Invalidate()
	if p.sess != nil {
		p.sess.SignOut(ctx)
	}

	return nil
}
