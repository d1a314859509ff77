package bridge

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrUnknownCommand is returned when no handler is registered for a command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMalformedResponse indicates the backend answered with a body that does
	// not match the command's response envelope.
	ErrMalformedResponse = errors.New("malformed response")
)

// RedirectCode tells the UI which step of the account lifecycle is missing.
// The backend embeds it in rejection messages as "$<N>$".
type RedirectCode int

const (
	CodeActivation RedirectCode = iota
	CodeSignup
	CodeSignin
	CodeCompleteProfile
	CodePin
)

func (c RedirectCode) String() string {
	switch c {
	case CodeActivation:
		return "activation"
	case CodeSignup:
		return "signup"
	case CodeSignin:
		return "signin"
	case CodeCompleteProfile:
		return "complete-profile"
	case CodePin:
		return "pin"
	default:
		return "code(" + strconv.Itoa(int(c)) + ")"
	}
}

var redirectMarker = regexp.MustCompile(`\$<(\d+)>\$`)

// CommandError is a backend rejection. Message keeps the backend's text as-is;
// Code is set when the text carried a redirect marker.
type CommandError struct {
	Command string
	Message string
	Code    *RedirectCode
	Err     error
}

func (e *CommandError) Error() string {
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match any CommandError against another with the same code.
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	if !ok {
		return false
	}

	if t.Code == nil || e.Code == nil {
		return t.Code == nil && e.Code == nil && t.Message == e.Message
	}

	return *t.Code == *e.Code
}

// NewCommandError parses the redirect marker out of a rejection message.
func NewCommandError(command, message string) *CommandError {
	cmdErr := &CommandError{
		Command: command,
		Message: message,
	}

	if code, ok := ParseRedirectCode(message); ok {
		cmdErr.Code = &code
	}

	return cmdErr
}

// ParseRedirectCode extracts the first "$<N>$" marker from s.
func ParseRedirectCode(s string) (RedirectCode, bool) {
	match := redirectMarker.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}

	return RedirectCode(n), true
}

// RedirectCodeOf returns the redirect code carried by err, if any.
func RedirectCodeOf(err error) (RedirectCode, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.Code != nil {
			return *cmdErr.Code, true
		}

		return 0, false
	}

	if err == nil {
		return 0, false
	}

	return ParseRedirectCode(err.Error())
}

// IsCommandError reports whether err is a backend rejection.
func IsCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}

// IsUnknownCommand checks if the backend has no handler for the command.
func IsUnknownCommand(err error) bool {
	return errors.Is(err, ErrUnknownCommand)
}

// Message returns the user-facing text of err with any redirect marker removed.
func Message(err error) string {
	if err == nil {
		return ""
	}

	return strings.TrimSpace(redirectMarker.ReplaceAllString(err.Error(), ""))
}
