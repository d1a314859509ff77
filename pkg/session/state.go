// Package session decides, before a page renders, whether the user may stay
// on it or must first finish an earlier step of the account lifecycle.
package session

import (
	"fmt"

	"github.com/dukex/decmed/pkg/bridge"
)

const (
	PathRoot            = "/"
	PathActivation      = "/activation"
	PathSignUp          = "/signup"
	PathSignIn          = "/signin"
	PathCompleteProfile = "/complete-profile"
	PathPin             = "/pin"
	PathDashboard       = "/dashboard"
)

// State is a step of the account lifecycle. States are ordered: a session in
// a later state has passed every earlier precondition.
type State int

const (
	NotActivated State = iota
	NotSignedUp
	NotSignedIn
	ProfileIncomplete
	PinSessionMissing
	Ready
)

func (s State) String() string {
	switch s {
	case NotActivated:
		return "not_activated"
	case NotSignedUp:
		return "not_signed_up"
	case NotSignedIn:
		return "not_signed_in"
	case ProfileIncomplete:
		return "profile_incomplete"
	case PinSessionMissing:
		return "pin_session_missing"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	st, err := ParseState(string(text))
	if err != nil {
		return err
	}

	*s = st

	return nil
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, error) {
	for st := NotActivated; st <= Ready; st++ {
		if st.String() == name {
			return st, nil
		}
	}

	return 0, fmt.Errorf("unknown session state %q", name)
}

// Target is the page that resolves s. Ready has none.
func (s State) Target() string {
	switch s {
	case NotActivated:
		return PathActivation
	case NotSignedUp:
		return PathSignUp
	case NotSignedIn:
		return PathSignIn
	case ProfileIncomplete:
		return PathCompleteProfile
	case PinSessionMissing:
		return PathPin
	default:
		return ""
	}
}

// SignedIn reports whether s implies a signed-in account.
func (s State) SignedIn() bool {
	return s >= ProfileIncomplete
}

// StateForCode maps a backend redirect code to the state it reports.
func StateForCode(code bridge.RedirectCode) (State, bool) {
	switch code {
	case bridge.CodeActivation:
		return NotActivated, true
	case bridge.CodeSignup:
		return NotSignedUp, true
	case bridge.CodeSignin:
		return NotSignedIn, true
	case bridge.CodeCompleteProfile:
		return ProfileIncomplete, true
	case bridge.CodePin:
		return PinSessionMissing, true
	default:
		return 0, false
	}
}
