package controllers_fx

import (
	"go.uber.org/fx"

	"bimabora/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewPlansController),
	fx.Provide(controllers.NewPolicyController))
