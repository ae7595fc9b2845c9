package models

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField            = errors.New("missing required field")
	ErrEventNotFound           = errors.New("event not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrDuplicateTicket         = errors.New("ticket already exists for this event")
	ErrDuplicateToken          = errors.New("nft token id already issued")
	ErrEventClosed             = errors.New("event has already ended")
	ErrPaymentFailed           = errors.New("payment failed")
	ErrInvalidTicketType       = errors.New("invalid ticket type")
	ErrInvalidPrice            = errors.New("price must be greater than zero")
	ErrInvalidStatus           = errors.New("invalid event status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidStartTime        = errors.New("invalid start time")
	ErrForbidden               = errors.New("access denied")
	ErrUnauthenticated         = errors.New("identity could not be verified")
)

// MissingFieldError names the absent field. It matches ErrMissingField with errors.Is.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

func MissingField(field string) error {
	return &MissingFieldError{Field: field}
}
