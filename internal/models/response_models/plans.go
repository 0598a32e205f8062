package response_models

import (
	"github.com/google/uuid"

	"bimabora/internal/models/db_models"
)

type InsurancePlan struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	PlanType       string    `json:"planType"`
	CoverageAmount int64     `json:"coverageAmount"`
	DailyPremium   float64   `json:"dailyPremium"`
	WeeklyPremium  float64   `json:"weeklyPremium"`
	MonthlyPremium float64   `json:"monthlyPremium"`
	YearlyPremium  float64   `json:"yearlyPremium"`
	Benefits       []string  `json:"benefits"`
	IsPopular      bool      `json:"isPopular"`
	Tag            *string   `json:"tag"`
}

func NewInsurancePlan(p *db_models.Plan) InsurancePlan {
	benefits := []string(p.Benefits)
	if benefits == nil {
		benefits = []string{}
	}
	return InsurancePlan{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		PlanType:       string(p.PlanType),
		CoverageAmount: p.CoverageAmount,
		DailyPremium:   p.DailyPremium,
		WeeklyPremium:  p.WeeklyPremium,
		MonthlyPremium: p.MonthlyPremium,
		YearlyPremium:  p.YearlyPremium,
		Benefits:       benefits,
		IsPopular:      p.IsPopular,
		Tag:            p.Tag,
	}
}
