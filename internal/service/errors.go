package service

import "errors"

// Error taxonomy surfaced to callers. Handlers map each onto a status code
// and a success-flag JSON body; storage failures are caught at every
// operation boundary and reported as ErrUpstream instead of raw.
var (
	ErrUnauthenticated    = errors.New("please authenticate using a valid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrConflict           = errors.New("user with this email already exists")
	ErrNotFound           = errors.New("product not found")
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrValidation         = errors.New("invalid request body")
	ErrUpstream           = errors.New("storage unavailable")
)
