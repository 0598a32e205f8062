package request_models

import "github.com/google/uuid"

// StkPushRequest is the body of POST /api/mpesa/stk-push.
type StkPushRequest struct {
	PhoneNumber      string    `json:"phoneNumber" binding:"required"`
	Amount           float64   `json:"amount"`
	UserID           uuid.UUID `json:"userId"`
	UserInsuranceID  uuid.UUID `json:"userInsuranceId"`
	AccountReference string    `json:"accountReference" binding:"max=64"`
	TransactionDesc  string    `json:"transactionDesc" binding:"max=128"`
}

// CreatePaymentRequest is the body of POST /api/payments.
type CreatePaymentRequest struct {
	UserID           uuid.UUID `json:"userId"`
	UserInsuranceID  uuid.UUID `json:"userInsuranceId"`
	Amount           float64   `json:"amount"`
	PaymentMethod    string    `json:"paymentMethod" binding:"required"`
	PhoneNumber      string    `json:"phoneNumber"`
	AccountReference string    `json:"accountReference" binding:"max=64"`
	TransactionDesc  string    `json:"transactionDesc" binding:"max=128"`
}

// PurchasePolicyRequest is the body of POST /api/user-insurance.
type PurchasePolicyRequest struct {
	UserID           uuid.UUID `json:"userId"`
	PlanID           uuid.UUID `json:"planId" binding:"required"`
	PaymentFrequency string    `json:"paymentFrequency" binding:"required,oneof=daily weekly monthly yearly"`
	// StartDate is YYYY-MM-DD; empty means today.
	StartDate string `json:"startDate"`
}
