package utils

import "errors"

var (
	ErrRecordNotFound         = errors.New("record not found")
	ErrDatabaseError          = errors.New("database error")
	ErrUnauthorizedPayment    = errors.New("payment not authorized for this subscriber")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrInvalidAmount          = errors.New("amount must be greater than 0")
	ErrScheduleAdvanceSkipped = errors.New("payment schedule not advanced")
	ErrInvalidID              = errors.New("invalid id parameter")
	ErrUnverifiedCallback     = errors.New("payment confirmation lacks a provider receipt")
	ErrPlanNotFound           = errors.New("insurance plan not found")
	ErrInvalidFrequency       = errors.New("invalid payment frequency")
)
