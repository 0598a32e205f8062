package db_models

import "github.com/lib/pq"

type PlanType string

const (
	PlanTypeIndividual PlanType = "individual"
	PlanTypeFamily     PlanType = "family"
	PlanTypeGroup      PlanType = "group"
)

// Plan is an insurance catalog entry. Premiums are read live at payment time;
// a Policy never snapshots them.
type Plan struct {
	BaseModel
	Name           string
	Description    string
	PlanType       PlanType `gorm:"size:16;index"`
	CoverageAmount int64
	DailyPremium   float64
	WeeklyPremium  float64
	MonthlyPremium float64
	YearlyPremium  float64
	Benefits       pq.StringArray `gorm:"type:text[]"`
	IsPopular      bool           `gorm:"default:false"`
	Tag            *string
}

// PremiumFor returns the premium charged per period of freq.
func (p *Plan) PremiumFor(freq PaymentFrequency) (float64, bool) {
	switch freq {
	case FrequencyDaily:
		return p.DailyPremium, true
	case FrequencyWeekly:
		return p.WeeklyPremium, true
	case FrequencyMonthly:
		return p.MonthlyPremium, true
	case FrequencyYearly:
		return p.YearlyPremium, true
	default:
		return 0, false
	}
}
