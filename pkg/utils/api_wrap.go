package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bimabora/pkg/mpesa"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// HandleServiceError maps service errors onto the response envelope.
func HandleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	code, message := ErrorStatus(err)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("trace_id", c.GetString("trace_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	RespondError(c, code, message)
}

// ErrorStatus returns the HTTP status and user facing message for err.
func ErrorStatus(err error) (int, string) {
	var rejected *mpesa.GatewayRejectedError

	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound, "Record not found"
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest, "Invalid id"
	case errors.Is(err, ErrUnauthorizedPayment):
		return http.StatusForbidden, "You are not allowed to pay for this policy"
	case errors.Is(err, ErrInvalidPaymentMethod):
		return http.StatusBadRequest, "Payment method must be one of mpesa, chama or bank"
	case errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest, "Amount must be greater than 0"
	case errors.Is(err, ErrPlanNotFound):
		return http.StatusNotFound, "Insurance plan not found"
	case errors.Is(err, ErrInvalidFrequency):
		return http.StatusBadRequest, "Payment frequency must be one of daily, weekly, monthly or yearly"
	case errors.Is(err, ErrUnverifiedCallback):
		return http.StatusBadRequest, "Payment confirmation could not be verified"
	case errors.Is(err, mpesa.ErrInvalidPhone):
		return http.StatusBadRequest, "Phone number must be a Kenyan mobile number such as 0712345678"
	case errors.As(err, &rejected):
		return http.StatusUnprocessableEntity, rejected.Message
	case errors.Is(err, mpesa.ErrGatewayRejected):
		return http.StatusUnprocessableEntity, "M-Pesa declined the payment request"
	case errors.Is(err, mpesa.ErrCredential), errors.Is(err, mpesa.ErrGatewayAuth):
		return http.StatusBadGateway, "Could not authenticate with M-Pesa, please try again"
	case errors.Is(err, mpesa.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable, "M-Pesa is currently unavailable, please try again"
	case errors.Is(err, ErrDatabaseError):
		return http.StatusInternalServerError, "Internal server error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
