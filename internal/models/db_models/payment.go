package db_models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodMpesa PaymentMethod = "mpesa"
	PaymentMethodChama PaymentMethod = "chama"
	PaymentMethodBank  PaymentMethod = "bank"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodMpesa, PaymentMethodChama, PaymentMethodBank:
		return true
	}
	return false
}

// SettlesSynchronously reports whether the method completes without waiting
// for a provider callback.
func (m PaymentMethod) SettlesSynchronously() bool {
	return m == PaymentMethodChama || m == PaymentMethodBank
}

type Payment struct {
	BaseModel
	AccountID uuid.UUID     `gorm:"type:uuid;index"`
	PolicyID  uuid.UUID     `gorm:"column:user_insurance_id;type:uuid;index"`
	Amount    float64       `gorm:"not null"`
	Method    PaymentMethod `gorm:"column:payment_method;size:16"`
	Status    PaymentStatus `gorm:"size:16;index"`

	// TransactionReference is the local TR reference or the provider receipt.
	TransactionReference *string
	// CheckoutRequestID correlates an STK push with its callback.
	CheckoutRequestID *string `gorm:"uniqueIndex"`
	MerchantRequestID string
	PhoneNumber       string
	ResultDesc        string

	PaymentDate time.Time
	ResolvedAt  *int64
}

// PaymentResolution is the field set written when a pending payment settles.
type PaymentResolution struct {
	Status               PaymentStatus
	TransactionReference *string
	ResultDesc           string
}
