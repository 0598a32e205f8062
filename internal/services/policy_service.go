package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbm "bimabora/internal/models/db_models"
	"bimabora/internal/models/response_models"
	"bimabora/internal/repositories"
	"bimabora/pkg/utils"
)

// PurchaseCommand enrolls a subscriber in a plan.
type PurchaseCommand struct {
	SubscriberID     uuid.UUID
	PlanID           uuid.UUID
	PaymentFrequency dbm.PaymentFrequency
	// StartDate defaults to today when zero.
	StartDate time.Time
}

type PolicyServiceInterface interface {
	Purchase(ctx context.Context, cmd PurchaseCommand) (response_models.Policy, error)
	GetPolicy(ctx context.Context, subscriberID, policyID uuid.UUID) (response_models.Policy, error)
	ListPolicies(ctx context.Context, subscriberID uuid.UUID) ([]response_models.Policy, error)
}

type PolicyService struct {
	policyRepo  repositories.PolicyRepository
	planRepo    repositories.IPlanRepository
	accountRepo repositories.AccountRepository
	now         func() time.Time
}

func NewPolicyService(policyRepo repositories.PolicyRepository, planRepo repositories.IPlanRepository, accountRepo repositories.AccountRepository) PolicyServiceInterface {
	return &PolicyService{
		policyRepo:  policyRepo,
		planRepo:    planRepo,
		accountRepo: accountRepo,
		now:         time.Now,
	}
}

// Purchase creates an active policy whose first premium is due on the start
// date at the plan's current rate for the chosen frequency.
func (s *PolicyService) Purchase(ctx context.Context, cmd PurchaseCommand) (response_models.Policy, error) {
	account, err := s.accountRepo.FindById(ctx, cmd.SubscriberID)
	if err != nil {
		return response_models.Policy{}, fmt.Errorf("%w: find account: %v", utils.ErrDatabaseError, err)
	}
	if account == nil {
		return response_models.Policy{}, utils.ErrRecordNotFound
	}

	plan, err := s.planRepo.GetPlanInfoById(ctx, cmd.PlanID)
	if err != nil {
		return response_models.Policy{}, fmt.Errorf("%w: find plan: %v", utils.ErrDatabaseError, err)
	}
	if plan == nil {
		return response_models.Policy{}, utils.ErrPlanNotFound
	}

	premium, ok := plan.PremiumFor(cmd.PaymentFrequency)
	if !ok {
		return response_models.Policy{}, utils.ErrInvalidFrequency
	}

	start := cmd.StartDate
	if start.IsZero() {
		start = s.now()
	}

	policy := &dbm.Policy{
		AccountID:         account.ID,
		PlanID:            plan.ID,
		Status:            dbm.PolicyStatusActive,
		StartDate:         start,
		PaymentFrequency:  cmd.PaymentFrequency,
		NextPaymentDate:   &start,
		NextPaymentAmount: &premium,
	}
	if err := s.policyRepo.Create(ctx, policy); err != nil {
		return response_models.Policy{}, fmt.Errorf("%w: create policy: %v", utils.ErrDatabaseError, err)
	}

	return response_models.NewPolicy(policy), nil
}

func (s *PolicyService) GetPolicy(ctx context.Context, subscriberID, policyID uuid.UUID) (response_models.Policy, error) {
	policy, err := s.policyRepo.FindById(ctx, policyID)
	if err != nil {
		return response_models.Policy{}, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	// another subscriber's policy is reported as missing
	if policy == nil || policy.AccountID != subscriberID {
		return response_models.Policy{}, utils.ErrRecordNotFound
	}
	return response_models.NewPolicy(policy), nil
}

func (s *PolicyService) ListPolicies(ctx context.Context, subscriberID uuid.UUID) ([]response_models.Policy, error) {
	policies, err := s.policyRepo.FindByAccountId(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	result := make([]response_models.Policy, 0, len(policies))
	for i := range policies {
		result = append(result, response_models.NewPolicy(&policies[i]))
	}
	return result, nil
}
