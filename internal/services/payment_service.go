package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "bimabora/internal/models/db_models"
	"bimabora/internal/models/response_models"
	"bimabora/internal/repositories"
	"bimabora/pkg/mpesa"
	"bimabora/pkg/utils"
)

type PushRequestBuilder interface {
	BuildRequest(phoneNumber string, amount float64, accountReference, description string, at time.Time) mpesa.PushRequest
}

type AccessTokenProvider interface {
	GetToken(ctx context.Context) (string, error)
	Invalidate(ctx context.Context)
}

type PushGateway interface {
	SendPushRequest(ctx context.Context, token string, req mpesa.PushRequest) (*mpesa.GatewayAck, error)
}

// PaymentCommand is one request to pay a policy premium.
type PaymentCommand struct {
	// SubscriberID is the authenticated caller.
	SubscriberID uuid.UUID
	// ClaimedUserID is the user id sent in the request body, if any.
	ClaimedUserID uuid.UUID

	PolicyID         uuid.UUID
	Amount           float64
	Method           dbm.PaymentMethod
	PhoneNumber      string
	AccountReference string
	TransactionDesc  string
}

type PaymentService interface {
	// InitiatePayment never returns transport errors; failures are folded
	// into the result with Success=false.
	InitiatePayment(ctx context.Context, cmd PaymentCommand) *response_models.PaymentResult
	// HandleCallback resolves a pending M-Pesa payment from the provider's
	// asynchronous confirmation.
	HandleCallback(ctx context.Context, callback mpesa.StkCallback) error
	GetPayment(ctx context.Context, subscriberID, paymentID uuid.UUID) (*response_models.Payment, error)
	ListPayments(ctx context.Context, subscriberID uuid.UUID) ([]response_models.Payment, error)
}

type PaymentServiceDeps struct {
	Accounts repositories.AccountRepository
	Plans    repositories.IPlanRepository
	Policies repositories.PolicyRepository
	Payments repositories.PaymentRepository

	Builder PushRequestBuilder
	Tokens  AccessTokenProvider
	Gateway PushGateway

	Logger   *zap.Logger
	Location *time.Location
	Now      func() time.Time
}

type paymentService struct {
	accounts repositories.AccountRepository
	plans    repositories.IPlanRepository
	policies repositories.PolicyRepository
	payments repositories.PaymentRepository

	builder PushRequestBuilder
	tokens  AccessTokenProvider
	gateway PushGateway

	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewPaymentService(deps PaymentServiceDeps) PaymentService {
	p := &paymentService{
		accounts: deps.Accounts,
		plans:    deps.Plans,
		policies: deps.Policies,
		payments: deps.Payments,
		builder:  deps.Builder,
		tokens:   deps.Tokens,
		gateway:  deps.Gateway,
		logger:   deps.Logger,
		loc:      deps.Location,
		now:      deps.Now,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.loc == nil {
		p.loc = utils.LoadLocation(utils.DefaultTimezone)
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

func (p *paymentService) InitiatePayment(ctx context.Context, cmd PaymentCommand) *response_models.PaymentResult {
	if !cmd.Method.Valid() {
		return failure(utils.ErrInvalidPaymentMethod)
	}
	if cmd.Amount <= 0 {
		return failure(utils.ErrInvalidAmount)
	}

	account, policy, err := p.authorize(ctx, cmd)
	if err != nil {
		if !errors.Is(err, utils.ErrUnauthorizedPayment) {
			p.logger.Error("payment precondition lookup failed", zap.Error(err))
		}
		return failure(err)
	}

	if cmd.Method.SettlesSynchronously() {
		return p.settleDirect(ctx, cmd, policy)
	}
	return p.initiatePush(ctx, cmd, account, policy)
}

func (p *paymentService) authorize(ctx context.Context, cmd PaymentCommand) (*dbm.Account, *dbm.Policy, error) {
	if cmd.SubscriberID == uuid.Nil || cmd.PolicyID == uuid.Nil {
		return nil, nil, utils.ErrUnauthorizedPayment
	}
	if cmd.ClaimedUserID != uuid.Nil && cmd.ClaimedUserID != cmd.SubscriberID {
		return nil, nil, utils.ErrUnauthorizedPayment
	}

	account, err := p.accounts.FindById(ctx, cmd.SubscriberID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: find account: %v", utils.ErrDatabaseError, err)
	}
	if account == nil {
		return nil, nil, utils.ErrUnauthorizedPayment
	}

	policy, err := p.policies.FindById(ctx, cmd.PolicyID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: find policy: %v", utils.ErrDatabaseError, err)
	}
	if policy == nil || policy.AccountID != account.ID {
		return nil, nil, utils.ErrUnauthorizedPayment
	}

	return account, policy, nil
}

// initiatePush dispatches an STK push and records a pending payment only once
// the provider has acknowledged it.
func (p *paymentService) initiatePush(ctx context.Context, cmd PaymentCommand, account *dbm.Account, policy *dbm.Policy) *response_models.PaymentResult {
	phone := cmd.PhoneNumber
	if phone == "" {
		phone = account.PhoneNumber
	}

	if _, err := mpesa.ValidatePhone(phone); err != nil {
		return failure(err)
	}

	at := p.now()
	req := p.builder.BuildRequest(phone, cmd.Amount, cmd.AccountReference, cmd.TransactionDesc, at)

	log := p.logger.With(
		zap.String("policy_id", policy.ID.String()),
		zap.String("phone", req.PhoneNumber),
		zap.Int64("amount", req.Amount))

	token, err := p.tokens.GetToken(ctx)
	if err != nil {
		log.Warn("mpesa credential exchange failed", zap.Error(err))
		return failure(err)
	}

	ack, err := p.gateway.SendPushRequest(ctx, token, req)
	if err != nil {
		if errors.Is(err, mpesa.ErrGatewayAuth) {
			p.tokens.Invalidate(ctx)
		}
		log.Warn("mpesa push request failed", zap.Error(err))
		return failure(err)
	}

	checkoutID := ack.CheckoutRequestID
	payment := &dbm.Payment{
		AccountID:         account.ID,
		PolicyID:          policy.ID,
		Amount:            float64(req.Amount),
		Method:            dbm.PaymentMethodMpesa,
		Status:            dbm.PaymentStatusPending,
		CheckoutRequestID: &checkoutID,
		MerchantRequestID: ack.MerchantRequestID,
		PhoneNumber:       req.PhoneNumber,
		ResultDesc:        ack.ResponseDescription,
		PaymentDate:       at,
	}
	if err := p.payments.Create(ctx, payment); err != nil {
		log.Error("push dispatched but payment was not recorded",
			zap.String("checkout_request_id", checkoutID), zap.Error(err))
		return failure(fmt.Errorf("%w: create payment: %v", utils.ErrDatabaseError, err))
	}

	log.Info("mpesa push dispatched",
		zap.String("payment_id", payment.ID.String()),
		zap.String("checkout_request_id", checkoutID))

	message := ack.CustomerMessage
	if message == "" {
		message = "Please check your phone to complete the payment"
	}
	return &response_models.PaymentResult{
		Success:           true,
		Message:           message,
		PaymentID:         &payment.ID,
		CheckoutRequestID: checkoutID,
		Payment:           response_models.NewPayment(payment),
	}
}

// settleDirect records chama and bank payments as completed immediately and
// advances the policy schedule. These methods have no confirmation step yet.
func (p *paymentService) settleDirect(ctx context.Context, cmd PaymentCommand, policy *dbm.Policy) *response_models.PaymentResult {
	at := p.now()
	resolvedAt := at.Unix()
	ref := utils.NewTransactionReference(at)

	payment := &dbm.Payment{
		AccountID:            policy.AccountID,
		PolicyID:             policy.ID,
		Amount:               cmd.Amount,
		Method:               cmd.Method,
		Status:               dbm.PaymentStatusCompleted,
		TransactionReference: &ref,
		PaymentDate:          at,
		ResolvedAt:           &resolvedAt,
	}
	// The payment must be written before the schedule so a crash in between
	// leaves an auditable payment and a retryable schedule step.
	if err := p.payments.Create(ctx, payment); err != nil {
		p.logger.Error("create payment failed", zap.String("policy_id", policy.ID.String()), zap.Error(err))
		return failure(fmt.Errorf("%w: create payment: %v", utils.ErrDatabaseError, err))
	}

	p.advanceSchedule(ctx, policy.ID, at)

	message := "Payment completed"
	if cmd.Method == dbm.PaymentMethodChama {
		message = "Your payment has been recorded against your Chama contribution"
	}
	return &response_models.PaymentResult{
		Success:   true,
		Message:   message,
		PaymentID: &payment.ID,
		Payment:   response_models.NewPayment(payment),
	}
}

func (p *paymentService) HandleCallback(ctx context.Context, cb mpesa.StkCallback) error {
	if cb.CheckoutRequestID == "" {
		return utils.ErrRecordNotFound
	}
	log := p.logger.With(
		zap.String("checkout_request_id", cb.CheckoutRequestID),
		zap.Int("result_code", cb.ResultCode))

	payment, err := p.payments.FindByCheckoutRequestId(ctx, cb.CheckoutRequestID)
	if err != nil {
		return fmt.Errorf("%w: find payment: %v", utils.ErrDatabaseError, err)
	}
	if payment == nil {
		log.Warn("mpesa callback for unknown checkout request")
		return utils.ErrRecordNotFound
	}
	if payment.Status != dbm.PaymentStatusPending {
		log.Info("mpesa callback for already resolved payment", zap.String("status", string(payment.Status)))
		return nil
	}

	resolution := dbm.PaymentResolution{
		Status:     dbm.PaymentStatusFailed,
		ResultDesc: cb.ResultDesc,
	}
	if cb.Succeeded() {
		// a success without a receipt is not proof of payment
		receipt := cb.ReceiptNumber()
		if receipt == "" {
			log.Warn("mpesa success callback without receipt number")
			return utils.ErrUnverifiedCallback
		}
		resolution.Status = dbm.PaymentStatusCompleted
		resolution.TransactionReference = &receipt
		if amount, ok := cb.Amount(); ok && amount != payment.Amount {
			log.Warn("mpesa callback amount differs from requested amount",
				zap.Float64("requested", payment.Amount), zap.Float64("paid", amount))
		}
	}

	changed, err := p.payments.ResolvePending(ctx, payment.ID, resolution)
	if err != nil {
		return fmt.Errorf("%w: resolve payment: %v", utils.ErrDatabaseError, err)
	}
	if !changed {
		log.Info("mpesa payment resolved concurrently")
		return nil
	}

	log.Info("mpesa payment resolved",
		zap.String("payment_id", payment.ID.String()),
		zap.String("status", string(resolution.Status)))

	if resolution.Status == dbm.PaymentStatusCompleted {
		p.advanceSchedule(ctx, payment.PolicyID, p.now())
	}
	return nil
}

// advanceSchedule moves the policy's next due date forward from paidAt.
// Failures are logged only: the payment itself has already succeeded.
func (p *paymentService) advanceSchedule(ctx context.Context, policyID uuid.UUID, paidAt time.Time) {
	err := p.policies.AdvanceSchedule(ctx, policyID, func(policy *dbm.Policy) (*dbm.PolicySchedule, error) {
		plan, err := p.plans.GetPlanInfoById(ctx, policy.PlanID)
		if err != nil {
			return nil, fmt.Errorf("find plan: %w", err)
		}
		if plan == nil {
			return nil, fmt.Errorf("%w: plan %s not found", utils.ErrScheduleAdvanceSkipped, policy.PlanID)
		}

		schedule, err := NextSchedule(plan, policy.PaymentFrequency, paidAt.In(p.loc))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrScheduleAdvanceSkipped, err)
		}
		return &schedule, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, utils.ErrScheduleAdvanceSkipped):
		p.logger.Warn("policy schedule not advanced", zap.String("policy_id", policyID.String()), zap.Error(err))
	default:
		p.logger.Error("policy schedule update failed", zap.String("policy_id", policyID.String()), zap.Error(err))
	}
}

func (p *paymentService) GetPayment(ctx context.Context, subscriberID, paymentID uuid.UUID) (*response_models.Payment, error) {
	payment, err := p.payments.FindById(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if payment == nil || payment.AccountID != subscriberID {
		return nil, utils.ErrRecordNotFound
	}
	return response_models.NewPayment(payment), nil
}

func (p *paymentService) ListPayments(ctx context.Context, subscriberID uuid.UUID) ([]response_models.Payment, error) {
	payments, err := p.payments.FindByAccountId(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	result := make([]response_models.Payment, 0, len(payments))
	for i := range payments {
		result = append(result, *response_models.NewPayment(&payments[i]))
	}
	return result, nil
}

func failure(err error) *response_models.PaymentResult {
	_, message := utils.ErrorStatus(err)
	return &response_models.PaymentResult{
		Success: false,
		Message: message,
		Err:     err,
	}
}
