package entity

import "errors"

var (
	ErrLeadNotFound            = errors.New("lead not found")
	ErrCallNotFound            = errors.New("call not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrUsageLimitExceeded      = errors.New("voice usage limit exceeded")

	// Canal sem credencial/configuração.
	ErrChannelUnavailable = errors.New("channel unavailable")
	// Provedor respondeu com status != 2xx.
	ErrChannelRejected = errors.New("channel rejected")
)
