package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	dbm "bimabora/internal/models/db_models"
	"bimabora/internal/repositories"
	"bimabora/pkg/mpesa"
)

type fakeAccounts struct {
	accounts map[uuid.UUID]*dbm.Account
}

func (f *fakeAccounts) FindById(_ context.Context, id uuid.UUID) (*dbm.Account, error) {
	return f.accounts[id], nil
}

type fakePlans struct {
	plans map[uuid.UUID]*dbm.Plan
	err   error
}

func (f *fakePlans) GetPlanInfoById(_ context.Context, id uuid.UUID) (*dbm.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plans[id], nil
}

func (f *fakePlans) GetAllPlans(_ context.Context, planType string) ([]dbm.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []dbm.Plan
	for _, p := range f.plans {
		if planType == "" || string(p.PlanType) == planType {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakePolicies struct {
	mu       sync.Mutex
	policies map[uuid.UUID]*dbm.Policy
	updates  int
	err      error
}

func (f *fakePolicies) Create(_ context.Context, policy *dbm.Policy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	cp := *policy
	f.policies[policy.ID] = &cp
	return nil
}

func (f *fakePolicies) FindById(_ context.Context, id uuid.UUID) (*dbm.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.policies[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePolicies) FindByAccountId(_ context.Context, accountID uuid.UUID) ([]dbm.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []dbm.Policy
	for _, p := range f.policies {
		if p.AccountID == accountID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePolicies) AdvanceSchedule(_ context.Context, id uuid.UUID, next repositories.ScheduleFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[id]
	if !ok {
		return errors.New("record not found")
	}
	cp := *p
	schedule, err := next(&cp)
	if err != nil || schedule == nil {
		return err
	}
	date := schedule.NextPaymentDate
	amount := schedule.NextPaymentAmount
	p.NextPaymentDate = &date
	p.NextPaymentAmount = &amount
	f.updates++
	return nil
}

type fakePayments struct {
	mu        sync.Mutex
	payments  []*dbm.Payment
	createErr error
}

func (f *fakePayments) Create(_ context.Context, payment *dbm.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	cp := *payment
	f.payments = append(f.payments, &cp)
	return nil
}

func (f *fakePayments) FindById(_ context.Context, id uuid.UUID) (*dbm.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayments) FindByAccountId(_ context.Context, accountID uuid.UUID) ([]dbm.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dbm.Payment
	for _, p := range f.payments {
		if p.AccountID == accountID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) FindByCheckoutRequestId(_ context.Context, checkoutRequestID string) (*dbm.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.CheckoutRequestID != nil && *p.CheckoutRequestID == checkoutRequestID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayments) ResolvePending(_ context.Context, id uuid.UUID, r dbm.PaymentResolution) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ID == id && p.Status == dbm.PaymentStatusPending {
			p.Status = r.Status
			p.TransactionReference = r.TransactionReference
			p.ResultDesc = r.ResultDesc
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePayments) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

type fakeTokens struct {
	token       string
	err         error
	calls       int
	invalidated int
}

func (f *fakeTokens) GetToken(context.Context) (string, error) {
	f.calls++
	return f.token, f.err
}

func (f *fakeTokens) Invalidate(context.Context) { f.invalidated++ }

type fakeGateway struct {
	ack      *mpesa.GatewayAck
	err      error
	requests []mpesa.PushRequest
	tokens   []string
}

func (f *fakeGateway) SendPushRequest(_ context.Context, token string, req mpesa.PushRequest) (*mpesa.GatewayAck, error) {
	f.requests = append(f.requests, req)
	f.tokens = append(f.tokens, token)
	return f.ack, f.err
}

var eat = time.FixedZone("EAT", 3*3600)

// fixture wires a payment service over fakes with one subscriber, one plan
// and one monthly policy.
type fixture struct {
	svc PaymentService

	accounts *fakeAccounts
	plans    *fakePlans
	policies *fakePolicies
	payments *fakePayments
	tokens   *fakeTokens
	gateway  *fakeGateway

	subscriber *dbm.Account
	plan       *dbm.Plan
	policy     *dbm.Policy
	now        time.Time
}

func newFixture() *fixture {
	subscriber := &dbm.Account{BaseModel: dbm.BaseModel{ID: uuid.New()}, FullName: "Wanjiku Kamau", PhoneNumber: "0722000111"}
	plan := &dbm.Plan{
		BaseModel:      dbm.BaseModel{ID: uuid.New()},
		Name:           "Afya Basic",
		PlanType:       dbm.PlanTypeIndividual,
		DailyPremium:   50,
		WeeklyPremium:  300,
		MonthlyPremium: 1200,
		YearlyPremium:  13000,
	}
	policy := &dbm.Policy{
		BaseModel:        dbm.BaseModel{ID: uuid.New()},
		AccountID:        subscriber.ID,
		PlanID:           plan.ID,
		Status:           dbm.PolicyStatusActive,
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, eat),
		PaymentFrequency: dbm.FrequencyMonthly,
	}

	f := &fixture{
		accounts:   &fakeAccounts{accounts: map[uuid.UUID]*dbm.Account{subscriber.ID: subscriber}},
		plans:      &fakePlans{plans: map[uuid.UUID]*dbm.Plan{plan.ID: plan}},
		policies:   &fakePolicies{policies: map[uuid.UUID]*dbm.Policy{policy.ID: policy}},
		payments:   &fakePayments{},
		tokens:     &fakeTokens{token: "bearer-token"},
		gateway:    &fakeGateway{},
		subscriber: subscriber,
		plan:       plan,
		policy:     policy,
		now:        time.Date(2026, 10, 18, 10, 30, 0, 0, eat),
	}

	builder, err := mpesa.NewRequestBuilder(mpesa.Config{
		ShortCode:      "174379",
		PassKey:        "passkey",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		CallbackURL:    "https://example.test/api/mpesa/callback",
		Location:       eat,
	})
	if err != nil {
		panic(err)
	}

	f.svc = NewPaymentService(PaymentServiceDeps{
		Accounts: f.accounts,
		Plans:    f.plans,
		Policies: f.policies,
		Payments: f.payments,
		Builder:  builder,
		Tokens:   f.tokens,
		Gateway:  f.gateway,
		Location: eat,
		Now:      func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) command(method dbm.PaymentMethod, amount float64) PaymentCommand {
	return PaymentCommand{
		SubscriberID: f.subscriber.ID,
		PolicyID:     f.policy.ID,
		Amount:       amount,
		Method:       method,
	}
}

func acceptedAck() *mpesa.GatewayAck {
	return &mpesa.GatewayAck{
		MerchantRequestID:   "29115-34620561-1",
		CheckoutRequestID:   "ws_CO_191220191020363925",
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}
}
