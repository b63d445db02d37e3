package services

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrTokenMismatch  = errors.New("token mismatch")
	ErrUserNotFound   = errors.New("user not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	// ErrPaymentSignature means the notification was not signed with our server key.
	ErrPaymentSignature = errors.New("payment signature mismatch")
)
