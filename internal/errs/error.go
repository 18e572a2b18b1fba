package errs

import (
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotAuthenticate = errors.New("not authenticated")
	ErrBadToken        = errors.New("token decode failed")
	ErrConflict        = errors.New("already exists")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
