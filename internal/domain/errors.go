package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnknownTier         = errors.New("unknown tier")
	ErrUnknownUser         = errors.New("unknown user")
	ErrProviderFailure     = errors.New("provider failure")
	ErrUnsupportedDocument = errors.New("unsupported document")
	ErrInvalidInput        = errors.New("invalid input")
)
