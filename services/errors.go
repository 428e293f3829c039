package services

import "errors"

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	ErrValidation      = errors.New("validation failed")
	ErrTaskNotFound    = errors.New("task not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("not authorized")
)
