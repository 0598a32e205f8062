package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bimabora/internal/config"
	dbm "bimabora/internal/models/db_models"
	"bimabora/internal/models/response_models"
	"bimabora/internal/services"
	"bimabora/pkg/middleware"
	"bimabora/pkg/mpesa"
	"bimabora/pkg/utils"
)

type stubPayments struct {
	result    *response_models.PaymentResult
	commands  []services.PaymentCommand
	callbacks []mpesa.StkCallback
	cbErr     error
}

func (s *stubPayments) InitiatePayment(_ context.Context, cmd services.PaymentCommand) *response_models.PaymentResult {
	s.commands = append(s.commands, cmd)
	return s.result
}

func (s *stubPayments) HandleCallback(_ context.Context, cb mpesa.StkCallback) error {
	s.callbacks = append(s.callbacks, cb)
	return s.cbErr
}

func (s *stubPayments) GetPayment(context.Context, uuid.UUID, uuid.UUID) (*response_models.Payment, error) {
	return nil, utils.ErrRecordNotFound
}

func (s *stubPayments) ListPayments(context.Context, uuid.UUID) ([]response_models.Payment, error) {
	return []response_models.Payment{}, nil
}

const callbackToken = "cb-secret"

const callbackPath = "/api/mpesa/callback?token=" + callbackToken

func newPaymentRouter(svc services.PaymentService, subscriber uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewPaymentController(svc, config.Config{CallbackToken: callbackToken}, zap.NewNop())

	auth := func(c *gin.Context) {
		c.Set(middleware.ContextUserID, subscriber.String())
		c.Next()
	}
	r.POST("/api/mpesa/stk-push", auth, ctrl.StkPush)
	r.POST("/api/payments", auth, ctrl.CreatePayment)
	r.GET("/api/payments/:id", auth, ctrl.GetPayment)
	r.GET("/api/users/:userId/payments", auth, ctrl.ListUserPayments)
	r.POST("/api/mpesa/callback", ctrl.MpesaCallback)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStkPush_Success(t *testing.T) {
	subscriber := uuid.New()
	policyID := uuid.New()
	paymentID := uuid.New()
	svc := &stubPayments{result: &response_models.PaymentResult{
		Success:           true,
		Message:           "Check your phone",
		PaymentID:         &paymentID,
		CheckoutRequestID: "ws_CO_1",
		Payment:           &response_models.Payment{ID: paymentID},
	}}
	r := newPaymentRouter(svc, subscriber)

	body := `{"phoneNumber":"0712345678","amount":280.6,"userId":"` + subscriber.String() +
		`","userInsuranceId":"` + policyID.String() + `","accountReference":"Insurance-1"}`
	w := doJSON(r, http.MethodPost, "/api/mpesa/stk-push", body)

	require.Equal(t, http.StatusCreated, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["success"])
	assert.Equal(t, paymentID.String(), got["paymentId"])
	assert.Equal(t, "ws_CO_1", got["checkoutRequestId"])
	assert.NotContains(t, got, "payment")

	require.Len(t, svc.commands, 1)
	cmd := svc.commands[0]
	assert.Equal(t, subscriber, cmd.SubscriberID)
	assert.Equal(t, subscriber, cmd.ClaimedUserID)
	assert.Equal(t, policyID, cmd.PolicyID)
	assert.Equal(t, dbm.PaymentMethodMpesa, cmd.Method)
	assert.Equal(t, 280.6, cmd.Amount)
	assert.Equal(t, "Insurance-1", cmd.AccountReference)
}

func TestStkPush_FailureStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "rejected", err: &mpesa.GatewayRejectedError{StatusCode: 400, Message: "Invalid PhoneNumber"}, code: http.StatusUnprocessableEntity},
		{name: "unavailable", err: mpesa.ErrGatewayUnavailable, code: http.StatusServiceUnavailable},
		{name: "credential", err: mpesa.ErrCredential, code: http.StatusBadGateway},
		{name: "unauthorized", err: utils.ErrUnauthorizedPayment, code: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, message := utils.ErrorStatus(tt.err)
			svc := &stubPayments{result: &response_models.PaymentResult{Message: message, Err: tt.err}}
			r := newPaymentRouter(svc, uuid.New())

			w := doJSON(r, http.MethodPost, "/api/mpesa/stk-push", `{"phoneNumber":"0712345678","amount":100}`)

			assert.Equal(t, tt.code, w.Code)
			var got response_models.PaymentResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.False(t, got.Success)
			assert.Equal(t, message, got.Message)
		})
	}
}

func TestStkPush_InvalidBody(t *testing.T) {
	svc := &stubPayments{}
	r := newPaymentRouter(svc, uuid.New())

	w := doJSON(r, http.MethodPost, "/api/mpesa/stk-push", `{"amount":100}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.commands)
}

func TestCreatePayment_PassesMethod(t *testing.T) {
	svc := &stubPayments{result: &response_models.PaymentResult{Success: true, Message: "Payment completed"}}
	r := newPaymentRouter(svc, uuid.New())

	w := doJSON(r, http.MethodPost, "/api/payments", `{"paymentMethod":"bank","amount":1200}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.commands, 1)
	assert.Equal(t, dbm.PaymentMethodBank, svc.commands[0].Method)
}

func TestListUserPayments_OwnRecordsOnly(t *testing.T) {
	subscriber := uuid.New()
	r := newPaymentRouter(&stubPayments{}, subscriber)

	w := doJSON(r, http.MethodGet, "/api/users/"+uuid.NewString()+"/payments", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/"+subscriber.String()+"/payments", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/not-a-uuid/payments", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPayment_NotFound(t *testing.T) {
	r := newPaymentRouter(&stubPayments{}, uuid.New())

	w := doJSON(r, http.MethodGet, "/api/payments/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMpesaCallback(t *testing.T) {
	const body = `{"Body":{"stkCallback":{"MerchantRequestID":"29115-1","CheckoutRequestID":"ws_CO_1",
		"ResultCode":0,"ResultDesc":"The service request is processed successfully.",
		"CallbackMetadata":{"Item":[{"Name":"Amount","Value":1200},{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"}]}}}}`

	t.Run("applied", func(t *testing.T) {
		svc := &stubPayments{}
		w := doJSON(newPaymentRouter(svc, uuid.Nil), http.MethodPost, callbackPath, body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, w.Body.String())
		require.Len(t, svc.callbacks, 1)
		assert.Equal(t, "ws_CO_1", svc.callbacks[0].CheckoutRequestID)
		assert.Equal(t, "NLJ7RT61SV", svc.callbacks[0].ReceiptNumber())
	})

	t.Run("unknown reference is still acknowledged", func(t *testing.T) {
		svc := &stubPayments{cbErr: utils.ErrRecordNotFound}
		w := doJSON(newPaymentRouter(svc, uuid.Nil), http.MethodPost, callbackPath, body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, w.Body.String())
	})

	t.Run("database failure asks for redelivery", func(t *testing.T) {
		svc := &stubPayments{cbErr: fmt.Errorf("%w: resolve payment: connection refused", utils.ErrDatabaseError)}
		w := doJSON(newPaymentRouter(svc, uuid.Nil), http.MethodPost, callbackPath, body)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "Accepted")
	})

	t.Run("unverified success is refused", func(t *testing.T) {
		svc := &stubPayments{cbErr: utils.ErrUnverifiedCallback}
		w := doJSON(newPaymentRouter(svc, uuid.Nil), http.MethodPost, callbackPath, body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed", func(t *testing.T) {
		svc := &stubPayments{}
		w := doJSON(newPaymentRouter(svc, uuid.Nil), http.MethodPost, callbackPath, `{"Body":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, svc.callbacks)
	})
}

func TestMpesaCallback_ForgedRequestsRejected(t *testing.T) {
	const forged = `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_1","ResultCode":0}}}`

	for name, path := range map[string]string{
		"no token":    "/api/mpesa/callback",
		"wrong token": "/api/mpesa/callback?token=guess",
		"empty token": "/api/mpesa/callback?token=",
	} {
		t.Run(name, func(t *testing.T) {
			svc := &stubPayments{}
			w := doJSON(newPaymentRouter(svc, uuid.Nil), http.MethodPost, path, forged)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, svc.callbacks)
		})
	}
}

type stubPlans struct{}

func (stubPlans) GetPlans(_ context.Context, planType string) ([]response_models.InsurancePlan, error) {
	return []response_models.InsurancePlan{{Name: "Afya Basic", PlanType: planType}}, nil
}

func (stubPlans) GetPlanInfoById(context.Context, uuid.UUID) (response_models.InsurancePlan, error) {
	return response_models.InsurancePlan{}, utils.ErrRecordNotFound
}

func TestPlansController(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewPlansController(stubPlans{}, zap.NewNop())
	r.GET("/api/insurance-plans", ctrl.ListPlans)
	r.GET("/api/insurance-plans/:id", ctrl.GetPlanById)

	w := doJSON(r, http.MethodGet, "/api/insurance-plans?type=family", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "success", got.Status)
	assert.Contains(t, w.Body.String(), `"family"`)

	w = doJSON(r, http.MethodGet, "/api/insurance-plans/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/insurance-plans/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubPolicies struct {
	purchases []services.PurchaseCommand
	err       error
}

func (s *stubPolicies) Purchase(_ context.Context, cmd services.PurchaseCommand) (response_models.Policy, error) {
	s.purchases = append(s.purchases, cmd)
	if s.err != nil {
		return response_models.Policy{}, s.err
	}
	return response_models.Policy{ID: uuid.New(), PlanID: cmd.PlanID, Status: "active"}, nil
}

func (s *stubPolicies) GetPolicy(context.Context, uuid.UUID, uuid.UUID) (response_models.Policy, error) {
	return response_models.Policy{}, utils.ErrRecordNotFound
}

func (s *stubPolicies) ListPolicies(context.Context, uuid.UUID) ([]response_models.Policy, error) {
	return []response_models.Policy{}, nil
}

func newPolicyRouter(svc services.PolicyServiceInterface, subscriber uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewPolicyController(svc, config.Config{}, zap.NewNop())
	r.POST("/api/user-insurance", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, subscriber.String())
		c.Next()
	}, ctrl.PurchasePolicy)
	return r
}

func TestPurchasePolicy(t *testing.T) {
	subscriber := uuid.New()
	planID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := &stubPolicies{}
		body := `{"planId":"` + planID.String() + `","paymentFrequency":"monthly","startDate":"2026-11-01"}`
		w := doJSON(newPolicyRouter(svc, subscriber), http.MethodPost, "/api/user-insurance", body)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, svc.purchases, 1)
		cmd := svc.purchases[0]
		assert.Equal(t, subscriber, cmd.SubscriberID)
		assert.Equal(t, planID, cmd.PlanID)
		assert.Equal(t, dbm.FrequencyMonthly, cmd.PaymentFrequency)
		assert.Equal(t, "2026-11-01", cmd.StartDate.Format("2006-01-02"))
	})

	t.Run("bad frequency", func(t *testing.T) {
		svc := &stubPolicies{}
		body := `{"planId":"` + planID.String() + `","paymentFrequency":"hourly"}`
		w := doJSON(newPolicyRouter(svc, subscriber), http.MethodPost, "/api/user-insurance", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, svc.purchases)
	})

	t.Run("on behalf of someone else", func(t *testing.T) {
		svc := &stubPolicies{}
		body := `{"userId":"` + uuid.NewString() + `","planId":"` + planID.String() + `","paymentFrequency":"daily"}`
		w := doJSON(newPolicyRouter(svc, subscriber), http.MethodPost, "/api/user-insurance", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, svc.purchases)
	})

	t.Run("unknown plan", func(t *testing.T) {
		svc := &stubPolicies{err: utils.ErrPlanNotFound}
		body := `{"planId":"` + planID.String() + `","paymentFrequency":"weekly"}`
		w := doJSON(newPolicyRouter(svc, subscriber), http.MethodPost, "/api/user-insurance", body)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
