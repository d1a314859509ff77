package wizard_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/events"
	"github.com/dukex/decmed/pkg/forms"
	"github.com/dukex/decmed/pkg/mocks"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
	"github.com/dukex/decmed/pkg/testutil"
	"github.com/dukex/decmed/pkg/wizard"
)

type fixture struct {
	wizard   *wizard.Wizard[forms.CredentialsForm]
	toasts   *notify.Buffer
	remote   error
	terminal error
	entered  int
	signins  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{toasts: notify.NewBuffer(10)}
	env := wizard.Env{Notifier: f.toasts, Client: models.ClientHospital, Logger: slog.Default()}

	f.wizard = wizard.New("signin", env, forms.SignInSteps, forms.CredentialsForm{},
		func(_ context.Context, _ forms.CredentialsForm) (wizard.Completion, error) {
			if f.terminal != nil {
				return wizard.Completion{}, f.terminal
			}

			f.signins++

			return wizard.Completion{Message: "Success", RedirectTo: "/dashboard"}, nil
		}).
		Remote(1, "pin", func(_ context.Context, _ *forms.CredentialsForm) error {
			return f.remote
		}).
		OnEnter(2, func(_ context.Context, _ *forms.CredentialsForm) error {
			f.entered++
			return nil
		})

	return f
}

func valid() forms.CredentialsForm {
	return forms.CredentialsForm{Pin: "123456", ConfirmPin: "123456", SeedWords: testutil.Mnemonic}
}

func TestWizard_LocalFailureStays(t *testing.T) {
	f := newFixture(t)

	out := f.wizard.Submit(context.Background(), forms.CredentialsForm{Pin: "12345"})

	assert.False(t, out.Advanced)
	assert.Equal(t, 1, out.Step)
	assert.Equal(t, "PIN is invalid.", out.Errors.First("pin"))
	assert.Equal(t, 1, f.wizard.State().CurrentStep)
	assert.Zero(t, f.entered)
}

func TestWizard_RemoteRejectThenAccept(t *testing.T) {
	f := newFixture(t)
	f.remote = bridge.NewCommandError(bridge.CmdValidatePin, "Invalid PIN")

	out := f.wizard.Submit(context.Background(), forms.CredentialsForm{Pin: "123456"})
	assert.Equal(t, 1, out.Step)
	assert.Equal(t, []string{"Invalid PIN"}, out.Errors["pin"])
	assert.Equal(t, []string{"Invalid PIN"}, f.wizard.State().Errors["pin"])

	f.remote = nil

	out = f.wizard.Submit(context.Background(), forms.CredentialsForm{Pin: " 123456 "})
	assert.True(t, out.Advanced)
	assert.Equal(t, 2, out.Step)
	assert.Equal(t, 1, f.entered)

	st := f.wizard.State()
	assert.Equal(t, 2, st.CurrentStep)
	assert.Equal(t, "123456", st.Form.Pin)
	assert.Empty(t, st.Errors)
}

func TestWizard_CompletesAndResets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Submit(ctx, valid())
	f.wizard.Submit(ctx, valid())
	require.Equal(t, 3, f.wizard.State().CurrentStep)

	out := f.wizard.Submit(ctx, valid())

	assert.True(t, out.Completed)
	assert.Equal(t, "/dashboard", out.RedirectTo)
	assert.Equal(t, 1, f.signins)

	st := f.wizard.State()
	assert.True(t, st.Completed)
	assert.Equal(t, 1, st.CurrentStep)
	assert.Empty(t, st.Form.Pin)

	toasts := f.toasts.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelSuccess, toasts[0].Level)
}

func TestWizard_FinalStepValidatesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Submit(ctx, valid())
	f.wizard.Submit(ctx, valid())

	form := valid()
	form.ConfirmPin = "654321"

	out := f.wizard.Submit(ctx, form)

	assert.False(t, out.Completed)
	assert.Equal(t, 3, out.Step)
	assert.Equal(t, "PIN and Confirm PIN must be same.", out.Errors.First("confirmPin"))
	assert.Zero(t, f.signins)
}

func TestWizard_TerminalFailureNotifiesAndStays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.terminal = bridge.NewCommandError(bridge.CmdSignin, "Invalid seed words $<2>$")

	f.wizard.Submit(ctx, valid())
	f.wizard.Submit(ctx, valid())
	out := f.wizard.Submit(ctx, valid())

	assert.False(t, out.Completed)
	assert.Equal(t, 3, out.Step)
	assert.Equal(t, "Invalid seed words", out.Error)
	assert.Equal(t, 3, f.wizard.State().CurrentStep)

	toasts := f.toasts.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelError, toasts[0].Level)
	assert.Equal(t, "Invalid seed words", toasts[0].Message)
}

func TestWizard_EnterHookFailureResets(t *testing.T) {
	toasts := notify.NewBuffer(10)
	w := wizard.New("signup", wizard.Env{Notifier: toasts}, forms.SignUpSteps, forms.CredentialsForm{},
		func(context.Context, forms.CredentialsForm) (wizard.Completion, error) {
			return wizard.Completion{}, nil
		}).
		OnEnter(3, func(context.Context, *forms.CredentialsForm) error {
			return errors.New("keyring locked")
		})

	w.Submit(context.Background(), valid())
	out := w.Submit(context.Background(), valid())

	assert.Equal(t, 1, out.Step)
	assert.Equal(t, 1, w.State().CurrentStep)
	assert.Equal(t, "keyring locked", toasts.Drain()[0].Message)
}

func TestWizard_KeepStepAndPublish(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "ministry", mock.MatchedBy(func(e any) bool {
		ev, ok := e.(events.WizardCompleted)
		return ok && ev.Flow == "pin" && ev.RedirectTo == "/"
	})).Return(nil).Once()

	w := wizard.New("pin", wizard.Env{Publisher: bus, Client: models.ClientMinistry},
		forms.Single(forms.PinSchema), forms.PinForm{},
		func(context.Context, forms.PinForm) (wizard.Completion, error) {
			return wizard.Completion{RedirectTo: "/"}, nil
		}).KeepStep()

	out := w.Submit(context.Background(), forms.PinForm{Pin: "123456"})

	assert.True(t, out.Completed)
	assert.Equal(t, "123456", w.State().Form.Pin)
	bus.AssertExpectations(t)
}

func TestWizard_Reset(t *testing.T) {
	f := newFixture(t)

	f.wizard.Submit(context.Background(), valid())
	require.Equal(t, 2, f.wizard.State().CurrentStep)

	var seen []int
	unsubscribe := f.wizard.Subscribe(func(s wizard.State[forms.CredentialsForm]) { seen = append(seen, s.CurrentStep) })
	defer unsubscribe()

	f.wizard.Reset()

	assert.Equal(t, 1, f.wizard.State().CurrentStep)
	assert.Equal(t, []int{1}, seen)
	assert.Equal(t, 3, f.wizard.Steps())
	assert.Equal(t, "signin", f.wizard.Name())
}

func TestWizard_TerminalFailureRaisesOneErrorToast(t *testing.T) {
	notifier := &mocks.MockNotifier{}
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(toast notify.Toast) bool {
		return toast.Level == notify.LevelError && toast.Message == "Invalid seed words"
	})).Once()

	env := wizard.Env{Notifier: notifier, Client: models.ClientHospital, Logger: slog.Default()}
	w := wizard.New("signin", env, forms.SignInSteps, forms.CredentialsForm{},
		func(context.Context, forms.CredentialsForm) (wizard.Completion, error) {
			return wizard.Completion{}, bridge.NewCommandError(bridge.CmdSignin, "Invalid seed words $<2>$")
		})

	ctx := context.Background()
	w.Submit(ctx, valid())
	w.Submit(ctx, valid())
	out := w.Submit(ctx, valid())

	assert.Equal(t, "Invalid seed words", out.Error)
	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}
