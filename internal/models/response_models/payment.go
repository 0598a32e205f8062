package response_models

import (
	"github.com/google/uuid"

	"bimabora/internal/models/db_models"
	"bimabora/pkg/utils"
)

// PaymentResult is the outcome of a payment attempt. Gateway failures are
// reported here with Success=false rather than as errors.
type PaymentResult struct {
	Success           bool       `json:"success"`
	Message           string     `json:"message"`
	PaymentID         *uuid.UUID `json:"paymentId,omitempty"`
	CheckoutRequestID string     `json:"checkoutRequestId,omitempty"`
	Payment           *Payment   `json:"payment,omitempty"`

	// Err is the cause of a failed attempt, used to pick the HTTP status.
	Err error `json:"-"`
}

type Payment struct {
	ID                   uuid.UUID `json:"id"`
	UserID               uuid.UUID `json:"userId"`
	UserInsuranceID      uuid.UUID `json:"userInsuranceId"`
	Amount               float64   `json:"amount"`
	PaymentMethod        string    `json:"paymentMethod"`
	Status               string    `json:"status"`
	TransactionReference *string   `json:"transactionReference"`
	CheckoutRequestID    *string   `json:"checkoutRequestId,omitempty"`
	PaymentDate          string    `json:"paymentDate"`
	ResolvedAt           string    `json:"resolvedAt,omitempty"`
}

var displayLocation = utils.LoadLocation(utils.DefaultTimezone)

func NewPayment(p *db_models.Payment) *Payment {
	if p == nil {
		return nil
	}
	res := &Payment{
		ID:                   p.ID,
		UserID:               p.AccountID,
		UserInsuranceID:      p.PolicyID,
		Amount:               p.Amount,
		PaymentMethod:        string(p.Method),
		Status:               string(p.Status),
		TransactionReference: p.TransactionReference,
		CheckoutRequestID:    p.CheckoutRequestID,
		PaymentDate:          utils.FormatRFC3339(p.PaymentDate, displayLocation),
	}
	if p.ResolvedAt != nil {
		res.ResolvedAt = utils.FormatRFC3339(utils.FromUnixSeconds(*p.ResolvedAt, displayLocation), displayLocation)
	}
	return res
}
