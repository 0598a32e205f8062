package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bimabora/cmd/fx/config_fx"
	"bimabora/cmd/fx/controllers_fx"
	"bimabora/cmd/fx/db_fx"
	"bimabora/cmd/fx/logger_fx"
	"bimabora/cmd/fx/memcache_fx"
	"bimabora/cmd/fx/mpesa_fx"
	"bimabora/cmd/fx/payment_service_fx"
	"bimabora/cmd/fx/plan_fx"
	"bimabora/internal/api/controllers"
	"bimabora/internal/config"
	"bimabora/pkg/middleware"
)

func main() {
	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		mpesa_fx.Module,
		plan_fx.Module,
		payment_service_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, logger *zap.Logger) {
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			logger.Info("starting HTTP server", zap.String("addr", server.Addr))
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	cfg config.Config,
	paymentController *controllers.PaymentController,
	plansController *controllers.PlansController,
	policyController *controllers.PolicyController) *gin.Engine {

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, []byte(cfg.JWTSecret), paymentController, plansController, policyController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	jwtSecret []byte,
	paymentController *controllers.PaymentController,
	plansController *controllers.PlansController,
	policyController *controllers.PolicyController) {

	api := r.Group("/api")
	auth := middleware.JWTAuthMiddleware(jwtSecret)

	mpesaGroup := api.Group("/mpesa")
	mpesaGroup.POST("/stk-push", auth, paymentController.StkPush)
	mpesaGroup.POST("/callback", paymentController.MpesaCallback)

	paymentsGroup := api.Group("/payments", auth)
	paymentsGroup.POST("", paymentController.CreatePayment)
	paymentsGroup.GET("/:id", paymentController.GetPayment)

	plansGroup := api.Group("/insurance-plans")
	plansGroup.GET("", plansController.ListPlans)
	plansGroup.GET("/:id", plansController.GetPlanById)

	api.POST("/user-insurance", auth, policyController.PurchasePolicy)
	api.GET("/user-insurance/:id", auth, policyController.GetPolicy)

	usersGroup := api.Group("/users/:userId", auth)
	usersGroup.GET("/payments", paymentController.ListUserPayments)
	usersGroup.GET("/insurance", policyController.ListUserPolicies)
}
