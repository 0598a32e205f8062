package plan_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"bimabora/internal/repositories"
	"bimabora/internal/services"
)

var Module = fx.Provide(
	providePlanRepo, providePlanService,
	providePolicyRepo, providePolicyService)

func providePlanRepo(db *gorm.DB) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db)
}

func providePlanService(planRepo repositories.IPlanRepository) services.PlanServiceInterface {
	return services.NewPlanService(planRepo)
}

func providePolicyRepo(db *gorm.DB) repositories.PolicyRepository {
	return repositories.NewPolicyRepository(db)
}

func providePolicyService(policyRepo repositories.PolicyRepository, planRepo repositories.IPlanRepository, accountRepo repositories.AccountRepository) services.PolicyServiceInterface {
	return services.NewPolicyService(policyRepo, planRepo, accountRepo)
}
