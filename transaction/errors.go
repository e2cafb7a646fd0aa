package transaction

import (
	"fmt"

	"github.com/openperiph/venus/staging"
)

// FailureReason classifies why an apply run ended in StateFailed.
type FailureReason int

const (
	// HandshakeFailure: the device never acknowledged the prepare
	// command, even after retries. Nothing was written.
	HandshakeFailure FailureReason = iota + 1

	// WriteRejected: a flash write was not acknowledged. Targets before
	// the failing one are on the device; the failing one and everything
	// after it are not.
	WriteRejected

	// VerificationMismatch: a read-back returned different bytes than
	// were written.
	VerificationMismatch

	// CommitUnconfirmed: every write succeeded but the commit command
	// was not acknowledged, so the device may or may not have latched
	// the new configuration. The staging store is left intact.
	CommitUnconfirmed

	// Cancelled: the context was cancelled between steps.
	Cancelled
)

func (r FailureReason) String() string {
	switch r {
	case HandshakeFailure:
		return "handshake failure"
	case WriteRejected:
		return "write rejected"
	case VerificationMismatch:
		return "verification mismatch"
	case CommitUnconfirmed:
		return "commit unconfirmed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("failure(%d)", int(r))
}

// Error carries the failure classification and, for target-scoped
// failures, the target that was in flight when the run stopped. It
// wraps the underlying transport or protocol error.
type Error struct {
	Reason FailureReason
	Target *staging.Target
	Err    error
}

func (e *Error) Error() string {
	msg := "apply: " + e.Reason.String()
	if e.Target != nil {
		msg = fmt.Sprintf("apply %s: %s", *e.Target, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }
