package ganttic

import "errors"

var (
	ErrInvalidPayload = errors.New("invalid plan payload")
)
