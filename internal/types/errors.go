package types

import (
	"errors"
	"fmt"

	"github.com/xhad/compligen/internal/models"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindRetrievalUnavailable   Kind = "retrieval_unavailable"
	KindSchemaViolation        Kind = "schema_violation"
	KindBackendUnavailable     Kind = "backend_unavailable"
	KindContentPolicyRejection Kind = "content_policy_rejection"
	KindInvariantViolation     Kind = "invariant_violation"
	KindInvalidRequest         Kind = "invalid_request"
)

// Error is the error type returned by every pipeline stage.
type Error struct {
	Kind    Kind
	Op      string
	DocType models.DocumentType
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.DocType != "" {
		msg = string(e.DocType) + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: k})
// works as a kind test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WithDocType returns err tagged with the document type when err is an *Error
// that does not carry one yet; other errors are returned unchanged.
func WithDocType(err error, dt models.DocumentType) error {
	var e *Error
	if !errors.As(err, &e) || e.DocType != "" {
		return err
	}
	tagged := *e
	tagged.DocType = dt
	return &tagged
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether a caller may reasonably retry the same request.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindBackendUnavailable, KindSchemaViolation:
		return true
	}
	return false
}
