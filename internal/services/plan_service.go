package services

import (
	"context"

	"github.com/google/uuid"

	dbm "bimabora/internal/models/db_models"
	"bimabora/internal/models/response_models"
	"bimabora/internal/repositories"
	"bimabora/pkg/utils"
)

type PlanServiceInterface interface {
	GetPlans(ctx context.Context, planType string) ([]response_models.InsurancePlan, error)
	GetPlanInfoById(ctx context.Context, planId uuid.UUID) (response_models.InsurancePlan, error)
}

func NewPlanService(planRepo repositories.IPlanRepository) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
	}
}

type PlanService struct {
	planRepo repositories.IPlanRepository
}

func (p *PlanService) GetPlans(ctx context.Context, planType string) ([]response_models.InsurancePlan, error) {
	switch dbm.PlanType(planType) {
	case "", dbm.PlanTypeIndividual, dbm.PlanTypeFamily, dbm.PlanTypeGroup:
	default:
		return []response_models.InsurancePlan{}, nil
	}

	plans, err := p.planRepo.GetAllPlans(ctx, planType)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	result := make([]response_models.InsurancePlan, 0, len(plans))
	for i := range plans {
		result = append(result, response_models.NewInsurancePlan(&plans[i]))
	}
	return result, nil
}

func (p *PlanService) GetPlanInfoById(ctx context.Context, planId uuid.UUID) (response_models.InsurancePlan, error) {

	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.InsurancePlan{}, utils.ErrDatabaseError
	}

	if plan == nil {
		return response_models.InsurancePlan{}, utils.ErrRecordNotFound
	}

	return response_models.NewInsurancePlan(plan), nil
}
