package session

import "fmt"

// TransportError wraps a transport failure encountered mid-handshake, per
// the propagation policy converting such failures into Failed(TransportError).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("session: transport failure: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError is returned when login's deadline expires before the state
// machine reaches LoggedIn or Failed.
type TimeoutError struct{}

func (e *TimeoutError) Error() string { return "session: login deadline exceeded" }

// LoginRejectedError carries the gateway's stated reason for refusing a
// login attempt.
type LoginRejectedError struct {
	Reason string
}

func (e *LoginRejectedError) Error() string { return fmt.Sprintf("session: login rejected: %s", e.Reason) }

// CaptchaPrompt is the callback-visible outcome the state machine produces
// when the gateway demands interactive verification; it is never wrapped
// in an error, per the propagation policy treating it as a first-class
// outcome rather than a failure.
type CaptchaPrompt struct {
	Image  []byte
	Width  int
	Height int
}
