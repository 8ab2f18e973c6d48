package service

import "errors"

// Sentinel errors the API layer maps onto HTTP statuses.
var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrSchedulingConflict     = errors.New("sitter is not available for the requested dates")
	ErrInvalidStateTransition = errors.New("booking is not in a state that permits this action")
	ErrAlreadyTerminal        = errors.New("booking is already in a terminal state")
	ErrMessagingNotAllowed    = errors.New("messaging is not available for this booking")
	ErrDuplicateReview        = errors.New("booking already has a review")
	ErrRateLimited            = errors.New("too many messages, slow down")
)
