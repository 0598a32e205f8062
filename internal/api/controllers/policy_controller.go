package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bimabora/internal/config"
	dbm "bimabora/internal/models/db_models"
	"bimabora/internal/models/request_models"
	"bimabora/internal/services"
	"bimabora/pkg/middleware"
	"bimabora/pkg/utils"
)

type PolicyController struct {
	policyService services.PolicyServiceInterface
	loc           *time.Location
	logger        *zap.Logger
}

func NewPolicyController(policyService services.PolicyServiceInterface, cfg config.Config, logger *zap.Logger) *PolicyController {
	loc := cfg.Mpesa.Location
	if loc == nil {
		loc = utils.LoadLocation(utils.DefaultTimezone)
	}
	return &PolicyController{
		policyService: policyService,
		loc:           loc,
		logger:        logger,
	}
}

// PurchasePolicy godoc
// @Summary Enroll the subscriber in an insurance plan
// @Tags Policies
// @Accept json
// @Produce json
// @Param request body request_models.PurchasePolicyRequest true "Purchase request"
// @Success 201 {object} utils.APIResponse
// @Security BearerAuth
// @Router /user-insurance [post]
func (p *PolicyController) PurchasePolicy(c *gin.Context) {
	var request request_models.PurchasePolicyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	subscriberID := middleware.SubscriberID(c)
	if request.UserID != uuid.Nil && request.UserID != subscriberID {
		utils.RespondError(c, http.StatusForbidden, "You can only purchase insurance for yourself")
		return
	}

	var startDate time.Time
	if request.StartDate != "" {
		d, err := time.ParseInLocation("2006-01-02", request.StartDate, p.loc)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		startDate = d
	}

	policy, err := p.policyService.Purchase(c.Request.Context(), services.PurchaseCommand{
		SubscriberID:     subscriberID,
		PlanID:           request.PlanID,
		PaymentFrequency: dbm.PaymentFrequency(request.PaymentFrequency),
		StartDate:        startDate,
	})
	if err != nil {
		utils.HandleServiceError(c, p.logger, err)
		return
	}

	c.JSON(http.StatusCreated, utils.APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: "Insurance purchased successfully",
		TraceID: c.GetString("trace_id"),
		Data:    policy,
	})
}

func (p *PolicyController) GetPolicy(c *gin.Context) {
	policyId, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, p.logger, utils.ErrInvalidID)
		return
	}

	policy, err := p.policyService.GetPolicy(c.Request.Context(), middleware.SubscriberID(c), policyId)
	if err != nil {
		utils.HandleServiceError(c, p.logger, err)
		return
	}

	utils.RespondSuccess(c, policy, "Policy fetched successfully")
}

func (p *PolicyController) ListUserPolicies(c *gin.Context) {
	userId, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.HandleServiceError(c, p.logger, utils.ErrInvalidID)
		return
	}
	if userId != middleware.SubscriberID(c) {
		utils.RespondError(c, http.StatusForbidden, "You can only view your own policies")
		return
	}

	policies, err := p.policyService.ListPolicies(c.Request.Context(), userId)
	if err != nil {
		utils.HandleServiceError(c, p.logger, err)
		return
	}

	utils.RespondSuccess(c, policies, "Policies fetched successfully")
}
