package services

import (
	"fmt"
	"time"

	"bimabora/internal/models/db_models"
)

// NextSchedule computes the policy's next due date and amount after a payment
// made at from. The amount is the plan's current premium for freq.
func NextSchedule(plan *db_models.Plan, freq db_models.PaymentFrequency, from time.Time) (db_models.PolicySchedule, error) {
	amount, ok := plan.PremiumFor(freq)
	if !ok {
		return db_models.PolicySchedule{}, fmt.Errorf("unknown payment frequency %q", freq)
	}

	var next time.Time
	switch freq {
	case db_models.FrequencyDaily:
		next = from.AddDate(0, 0, 1)
	case db_models.FrequencyWeekly:
		next = from.AddDate(0, 0, 7)
	case db_models.FrequencyMonthly:
		next = from.AddDate(0, 1, 0)
	case db_models.FrequencyYearly:
		next = from.AddDate(1, 0, 0)
	}

	return db_models.PolicySchedule{
		NextPaymentDate:   next,
		NextPaymentAmount: amount,
	}, nil
}
