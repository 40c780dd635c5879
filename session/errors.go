package session

import "fmt"

// FailureKind is the closed set of reasons a session can fail,
// surfaced to the embedder in a ConnFailed event. It plays the same
// role a DiscReason enum plays for peer disconnects: a small
// stringer-backed code the embedder can log or branch on without
// parsing an error string.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureResolving
	FailureConnecting
	FailureInvalid
	FailureReading
	FailureWriting
	FailurePassword
	FailureIntruder
	FailureTimeout
	FailureTLS
	FailureUnavailable
)

var failureNames = [...]string{
	FailureNone:        "none",
	FailureResolving:   "resolving",
	FailureConnecting:  "connecting",
	FailureInvalid:     "invalid",
	FailureReading:     "reading",
	FailureWriting:     "writing",
	FailurePassword:    "password",
	FailureIntruder:    "intruder",
	FailureTimeout:     "timeout",
	FailureTLS:         "tls",
	FailureUnavailable: "unavailable",
}

func (k FailureKind) String() string {
	if int(k) < 0 || int(k) >= len(failureNames) {
		return "unknown"
	}
	return failureNames[k]
}

// Failure is the fatal-tier error: it carries both the embedder-facing
// classification and the low-level cause, so a caller can report the
// platform error code while the state machine only needs to look at
// Kind.
type Failure struct {
	Kind  FailureKind
	Cause error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("session: %s: %v", f.Kind, f.Cause)
	}
	return fmt.Sprintf("session: %s", f.Kind)
}

func (f *Failure) Unwrap() error { return f.Cause }

func fail(kind FailureKind, cause error) *Failure {
	return &Failure{Kind: kind, Cause: cause}
}
