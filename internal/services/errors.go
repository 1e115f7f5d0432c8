package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies inquiry failures so callers can branch on them.
type ErrorKind string

const (
	KindValidation             ErrorKind = "validation_error"
	KindNotFound               ErrorKind = "not_found"
	KindForbidden              ErrorKind = "forbidden"
	KindSelfDealing            ErrorKind = "self_dealing"
	KindDuplicateActive        ErrorKind = "duplicate_active"
	KindNotAnAppointment       ErrorKind = "not_an_appointment"
	KindInvalidTransition      ErrorKind = "invalid_transition"
	KindMissingReason          ErrorKind = "missing_reason"
	KindMissingSlot            ErrorKind = "missing_slot"
	KindConcurrentModification ErrorKind = "concurrent_modification"
	KindStoreUnavailable       ErrorKind = "store_unavailable"
)

// InquiryError is returned by the submission and negotiation services.
type InquiryError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *InquiryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *InquiryError) Unwrap() error {
	return e.Err
}

// Is matches any InquiryError of the same kind, so the sentinels below work with errors.Is.
func (e *InquiryError) Is(target error) bool {
	var t *InquiryError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation             = &InquiryError{Kind: KindValidation, Message: "invalid input"}
	ErrNotFound               = &InquiryError{Kind: KindNotFound, Message: "not found"}
	ErrForbidden              = &InquiryError{Kind: KindForbidden, Message: "forbidden"}
	ErrSelfDealing            = &InquiryError{Kind: KindSelfDealing, Message: "cannot inquire about your own property"}
	ErrDuplicateActive        = &InquiryError{Kind: KindDuplicateActive, Message: "an active inquiry already exists"}
	ErrNotAnAppointment       = &InquiryError{Kind: KindNotAnAppointment, Message: "inquiry is not an appointment"}
	ErrInvalidTransition      = &InquiryError{Kind: KindInvalidTransition, Message: "transition not allowed"}
	ErrMissingReason          = &InquiryError{Kind: KindMissingReason, Message: "a rejection reason is required"}
	ErrMissingSlot            = &InquiryError{Kind: KindMissingSlot, Message: "date and time are required"}
	ErrConcurrentModification = &InquiryError{Kind: KindConcurrentModification, Message: "inquiry was modified concurrently"}
	ErrStoreUnavailable       = &InquiryError{Kind: KindStoreUnavailable, Message: "inquiry store unavailable"}
)

func newError(kind ErrorKind, format string, args ...any) *InquiryError {
	return &InquiryError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func storeError(op string, err error) *InquiryError {
	return &InquiryError{Kind: KindStoreUnavailable, Message: op, Err: err}
}

// KindOf returns the kind of an InquiryError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var ie *InquiryError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsRetryable reports whether the caller may reload and try again.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindConcurrentModification, KindStoreUnavailable:
		return true
	default:
		return false
	}
}
