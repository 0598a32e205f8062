package response_models

import (
	"github.com/google/uuid"

	"bimabora/internal/models/db_models"
	"bimabora/pkg/utils"
)

type Policy struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"userId"`
	PlanID            uuid.UUID `json:"planId"`
	Status            string    `json:"status"`
	StartDate         string    `json:"startDate"`
	EndDate           *string   `json:"endDate"`
	PaymentFrequency  string    `json:"paymentFrequency"`
	NextPaymentDate   *string   `json:"nextPaymentDate"`
	NextPaymentAmount *float64  `json:"nextPaymentAmount"`
}

func NewPolicy(p *db_models.Policy) Policy {
	res := Policy{
		ID:                p.ID,
		UserID:            p.AccountID,
		PlanID:            p.PlanID,
		Status:            string(p.Status),
		StartDate:         utils.FormatDate(p.StartDate),
		PaymentFrequency:  string(p.PaymentFrequency),
		NextPaymentAmount: p.NextPaymentAmount,
	}
	if p.EndDate != nil {
		s := utils.FormatDate(*p.EndDate)
		res.EndDate = &s
	}
	if p.NextPaymentDate != nil {
		s := utils.FormatDate(*p.NextPaymentDate)
		res.NextPaymentDate = &s
	}
	return res
}
