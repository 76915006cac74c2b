package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	// ErrInvalidStateTransition signals a claim operation called outside the
	// transition table. The claim is left unchanged.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidEnvelope        = errors.New("invalid envelope")
	ErrUnknownClaimType       = errors.New("unknown claim type")
	ErrUnknownClaimStatus     = errors.New("unknown claim status")
)
