package mpesa

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration      = errors.New("mpesa: invalid configuration")
	ErrCredential         = errors.New("mpesa: credential exchange failed")
	ErrGatewayAuth        = errors.New("mpesa: gateway rejected access token")
	ErrGatewayRejected    = errors.New("mpesa: gateway rejected request")
	ErrGatewayUnavailable = errors.New("mpesa: gateway unavailable")
	ErrInvalidPhone       = errors.New("mpesa: invalid phone number")
)

// GatewayRejectedError carries the provider's reason for declining a push request.
type GatewayRejectedError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayRejectedError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("mpesa: gateway rejected request (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("mpesa: gateway rejected request (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

func (e *GatewayRejectedError) Unwrap() error { return ErrGatewayRejected }
