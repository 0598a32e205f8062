package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bimabora/internal/models/db_models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *db_models.Payment) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Payment, error)
	FindByAccountId(ctx context.Context, accountID uuid.UUID) ([]db_models.Payment, error)
	FindByCheckoutRequestId(ctx context.Context, checkoutRequestID string) (*db_models.Payment, error)
	// ResolvePending settles a payment that is still pending. It reports
	// false when the payment had already been resolved.
	ResolvePending(ctx context.Context, id uuid.UUID, resolution db_models.PaymentResolution) (bool, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *db_models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Payment, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *paymentRepository) FindByCheckoutRequestId(ctx context.Context, checkoutRequestID string) (*db_models.Payment, error) {
	return r.first(ctx, "checkout_request_id = ?", checkoutRequestID)
}

func (r *paymentRepository) FindByAccountId(ctx context.Context, accountID uuid.UUID) ([]db_models.Payment, error) {
	var payments []db_models.Payment
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("payment_date DESC").
		Find(&payments).Error

	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ResolvePending(ctx context.Context, id uuid.UUID, resolution db_models.PaymentResolution) (bool, error) {
	now := time.Now().Unix()
	res := r.db.WithContext(ctx).
		Model(&db_models.Payment{}).
		Where("id = ? AND status = ?", id, db_models.PaymentStatusPending).
		Select("status", "transaction_reference", "result_desc", "resolved_at", "updated_at").
		Updates(db_models.Payment{
			BaseModel:            db_models.BaseModel{UpdatedAt: now},
			Status:               resolution.Status,
			TransactionReference: resolution.TransactionReference,
			ResultDesc:           resolution.ResultDesc,
			ResolvedAt:           &now,
		})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (r *paymentRepository) first(ctx context.Context, query string, args ...interface{}) (*db_models.Payment, error) {
	var payment db_models.Payment
	err := r.db.WithContext(ctx).Where(query, args...).First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &payment, nil
}
