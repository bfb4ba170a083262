package domain

import "errors"

var (
	ErrMissingCredentials = errors.New("provider credentials are not configured")
	ErrUnknownProvider    = errors.New("unknown provider")
)

var (
	ErrEmptyQuery = errors.New("empty query")
)
