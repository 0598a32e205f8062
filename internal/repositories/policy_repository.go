package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bimabora/internal/models/db_models"
)

// ScheduleFunc computes the next schedule for a locked policy. Returning
// (nil, nil) leaves the policy untouched; an error aborts the update.
type ScheduleFunc func(policy *db_models.Policy) (*db_models.PolicySchedule, error)

type PolicyRepository interface {
	Create(ctx context.Context, policy *db_models.Policy) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Policy, error)
	FindByAccountId(ctx context.Context, accountID uuid.UUID) ([]db_models.Policy, error)
	// AdvanceSchedule holds a row lock on the policy while next runs and
	// writes only the schedule fields it returns.
	AdvanceSchedule(ctx context.Context, id uuid.UUID, next ScheduleFunc) error
}

type policyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) Create(ctx context.Context, policy *db_models.Policy) error {
	return r.db.WithContext(ctx).Omit("Account", "Plan").Create(policy).Error
}

func (r *policyRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Policy, error) {
	var policy db_models.Policy
	err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &policy, nil
}

func (r *policyRepository) FindByAccountId(ctx context.Context, accountID uuid.UUID) ([]db_models.Policy, error) {
	var policies []db_models.Policy
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("start_date DESC").
		Find(&policies).Error

	if err != nil {
		return nil, err
	}

	return policies, nil
}

func (r *policyRepository) AdvanceSchedule(ctx context.Context, id uuid.UUID, next ScheduleFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var policy db_models.Policy
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&policy, "id = ?", id).Error; err != nil {
			return err
		}

		schedule, err := next(&policy)
		if err != nil || schedule == nil {
			return err
		}

		nextDate := schedule.NextPaymentDate
		nextAmount := schedule.NextPaymentAmount
		return tx.Model(&policy).
			Select("next_payment_date", "next_payment_amount").
			Updates(db_models.Policy{
				NextPaymentDate:   &nextDate,
				NextPaymentAmount: &nextAmount,
			}).Error
	})
}
