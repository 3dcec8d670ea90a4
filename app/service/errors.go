package service

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrPendingNotFound     = errors.New("pending payment not found")
	ErrProviderUnsupported = errors.New("provider is not supported")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
)
