package domain

import "errors"

// Common domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternalServer  = errors.New("internal server error")
	ErrSessionRequired = errors.New("session required")
)

// Console state errors
var (
	ErrStaleResponse    = errors.New("response superseded by a newer request")
	ErrNoPendingDelete  = errors.New("no delete awaiting confirmation")
	ErrOptionsNotLoaded = errors.New("option set not loaded")
	ErrUnknownEntity    = errors.New("unknown entity")
)

// Preview errors
var (
	ErrPreviewNotFound = errors.New("preview not found")
	ErrPreviewTooLarge = errors.New("preview exceeds size limit")
)
