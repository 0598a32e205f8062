package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bimabora/internal/config"
	dbm "bimabora/internal/models/db_models"
	"bimabora/internal/models/request_models"
	"bimabora/internal/models/response_models"
	"bimabora/internal/services"
	"bimabora/pkg/middleware"
	"bimabora/pkg/mpesa"
	"bimabora/pkg/utils"
)

type PaymentController struct {
	paymentService services.PaymentService
	callbackToken  []byte
	logger         *zap.Logger
}

func NewPaymentController(paymentService services.PaymentService, cfg config.Config, logger *zap.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		callbackToken:  []byte(cfg.CallbackToken),
		logger:         logger,
	}
}

// StkPush godoc
// @Summary Prompt the subscriber's phone to pay a policy premium
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.StkPushRequest true "STK push request"
// @Success 201 {object} response_models.PaymentResult
// @Security BearerAuth
// @Router /mpesa/stk-push [post]
func (p *PaymentController) StkPush(c *gin.Context) {
	var request request_models.StkPushRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, response_models.PaymentResult{Message: "Invalid request payload"})
		return
	}

	result := p.paymentService.InitiatePayment(c.Request.Context(), services.PaymentCommand{
		SubscriberID:     middleware.SubscriberID(c),
		ClaimedUserID:    request.UserID,
		PolicyID:         request.UserInsuranceID,
		Amount:           request.Amount,
		Method:           dbm.PaymentMethodMpesa,
		PhoneNumber:      request.PhoneNumber,
		AccountReference: request.AccountReference,
		TransactionDesc:  request.TransactionDesc,
	})
	result.Payment = nil

	p.respondResult(c, result)
}

// CreatePayment godoc
// @Summary Pay a policy premium with mpesa, chama or bank
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreatePaymentRequest true "Create payment request"
// @Success 201 {object} response_models.PaymentResult
// @Security BearerAuth
// @Router /payments [post]
func (p *PaymentController) CreatePayment(c *gin.Context) {
	var request request_models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, response_models.PaymentResult{Message: "Invalid request payload"})
		return
	}

	result := p.paymentService.InitiatePayment(c.Request.Context(), services.PaymentCommand{
		SubscriberID:     middleware.SubscriberID(c),
		ClaimedUserID:    request.UserID,
		PolicyID:         request.UserInsuranceID,
		Amount:           request.Amount,
		Method:           dbm.PaymentMethod(request.PaymentMethod),
		PhoneNumber:      request.PhoneNumber,
		AccountReference: request.AccountReference,
		TransactionDesc:  request.TransactionDesc,
	})

	p.respondResult(c, result)
}

func (p *PaymentController) respondResult(c *gin.Context, result *response_models.PaymentResult) {
	if result.Success {
		c.JSON(http.StatusCreated, result)
		return
	}

	code, _ := utils.ErrorStatus(result.Err)
	if code >= http.StatusInternalServerError {
		p.logger.Error("payment failed",
			zap.String("trace_id", c.GetString("trace_id")),
			zap.Error(result.Err))
	}
	c.JSON(code, result)
}

func (p *PaymentController) GetPayment(c *gin.Context) {
	paymentId, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, p.logger, utils.ErrInvalidID)
		return
	}

	payment, err := p.paymentService.GetPayment(c.Request.Context(), middleware.SubscriberID(c), paymentId)
	if err != nil {
		utils.HandleServiceError(c, p.logger, err)
		return
	}

	utils.RespondSuccess(c, payment, "Payment fetched successfully")
}

func (p *PaymentController) ListUserPayments(c *gin.Context) {
	userId, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.HandleServiceError(c, p.logger, utils.ErrInvalidID)
		return
	}
	if userId != middleware.SubscriberID(c) {
		utils.RespondError(c, http.StatusForbidden, "You can only view your own payments")
		return
	}

	payments, err := p.paymentService.ListPayments(c.Request.Context(), userId)
	if err != nil {
		utils.HandleServiceError(c, p.logger, err)
		return
	}

	utils.RespondSuccess(c, payments, "Payments fetched successfully")
}

// MpesaCallback receives the provider's payment confirmation. The provider
// redelivers anything but an accepted ack, so only lost writes get a 5xx.
func (p *PaymentController) MpesaCallback(c *gin.Context) {
	token := []byte(c.Query(config.CallbackTokenParam))
	if len(p.callbackToken) == 0 || subtle.ConstantTimeCompare(token, p.callbackToken) != 1 {
		p.logger.Warn("mpesa callback with invalid token", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, mpesa.CallbackAck{ResultCode: 1, ResultDesc: "Rejected"})
		return
	}

	var envelope mpesa.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		p.logger.Warn("malformed mpesa callback", zap.Error(err))
		c.JSON(http.StatusBadRequest, mpesa.CallbackAck{ResultCode: 1, ResultDesc: "Rejected"})
		return
	}

	cb := envelope.Body.StkCallback
	err := p.paymentService.HandleCallback(c.Request.Context(), cb)
	switch {
	case err == nil:
	case errors.Is(err, utils.ErrRecordNotFound):
		p.logger.Warn("mpesa callback for unknown payment", zap.String("checkout_request_id", cb.CheckoutRequestID))
	case errors.Is(err, utils.ErrUnverifiedCallback):
		c.JSON(http.StatusBadRequest, mpesa.CallbackAck{ResultCode: 1, ResultDesc: "Rejected"})
		return
	default:
		p.logger.Error("mpesa callback not applied",
			zap.String("checkout_request_id", cb.CheckoutRequestID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, mpesa.CallbackAck{ResultCode: 1, ResultDesc: "Temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, mpesa.CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}
