package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bimabora/internal/services"
	"bimabora/pkg/utils"
)

type PlansController struct {
	planService services.PlanServiceInterface
	logger      *zap.Logger
}

func NewPlansController(planService services.PlanServiceInterface, logger *zap.Logger) *PlansController {
	return &PlansController{
		planService: planService,
		logger:      logger,
	}
}

// ListPlans godoc
// @Summary List insurance plans, optionally filtered by type
// @Tags Plans
// @Produce json
// @Param type query string false "individual, family or group"
// @Success 200 {object} utils.APIResponse
// @Router /insurance-plans [get]
func (p *PlansController) ListPlans(c *gin.Context) {
	plans, err := p.planService.GetPlans(c.Request.Context(), c.Query("type"))
	if err != nil {
		utils.HandleServiceError(c, p.logger, err)
		return
	}

	utils.RespondSuccess(c, plans, "Plans fetched successfully")
}

func (p *PlansController) GetPlanById(c *gin.Context) {
	planId, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, p.logger, utils.ErrInvalidID)
		return
	}

	plan, err := p.planService.GetPlanInfoById(c.Request.Context(), planId)
	if err != nil {
		utils.HandleServiceError(c, p.logger, err)
		return
	}

	utils.RespondSuccess(c, plan, "Plan fetched successfully")
}
