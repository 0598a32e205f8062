package db_models

import (
	"time"

	"github.com/google/uuid"
)

type PolicyStatus string

const (
	PolicyStatusActive   PolicyStatus = "active"
	PolicyStatusInactive PolicyStatus = "inactive"
	PolicyStatusPending  PolicyStatus = "pending"
)

type PaymentFrequency string

const (
	FrequencyDaily   PaymentFrequency = "daily"
	FrequencyWeekly  PaymentFrequency = "weekly"
	FrequencyMonthly PaymentFrequency = "monthly"
	FrequencyYearly  PaymentFrequency = "yearly"
)

// Policy is a subscriber's enrollment in a Plan. Rows are never deleted,
// only moved to inactive.
type Policy struct {
	BaseModel
	AccountID uuid.UUID    `gorm:"type:uuid;index"`
	PlanID    uuid.UUID    `gorm:"type:uuid;index"`
	Status    PolicyStatus `gorm:"size:16;index"`

	StartDate        time.Time        `gorm:"type:date"`
	EndDate          *time.Time       `gorm:"type:date"`
	PaymentFrequency PaymentFrequency `gorm:"size:16"`

	NextPaymentDate   *time.Time `gorm:"type:date"`
	NextPaymentAmount *float64

	Account Account `gorm:"foreignKey:AccountID"`
	Plan    Plan    `gorm:"foreignKey:PlanID"`
}

func (Policy) TableName() string { return "user_insurances" }

// PolicySchedule is the only field set a payment may write on a Policy.
type PolicySchedule struct {
	NextPaymentDate   time.Time
	NextPaymentAmount float64
}
