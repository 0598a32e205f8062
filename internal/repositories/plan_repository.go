package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bimabora/internal/models/db_models"
)

type IPlanRepository interface {
	GetPlanInfoById(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error)
	// GetAllPlans lists the catalog, optionally narrowed to one plan type.
	GetAllPlans(ctx context.Context, planType string) ([]db_models.Plan, error)
}

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) IPlanRepository {
	return &PlanRepository{db: db}
}

func (p PlanRepository) GetPlanInfoById(ctx context.Context, planID uuid.UUID) (*db_models.Plan, error) {

	var plan db_models.Plan
	err := p.db.WithContext(ctx).First(&plan, "id = ?", planID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &plan, nil
}

func (p PlanRepository) GetAllPlans(ctx context.Context, planType string) ([]db_models.Plan, error) {

	var plans []db_models.Plan
	q := p.db.WithContext(ctx).Order("is_popular DESC, monthly_premium ASC")
	if planType != "" {
		q = q.Where("plan_type = ?", planType)
	}

	if err := q.Find(&plans).Error; err != nil {
		return nil, err
	}

	return plans, nil
}
