package payment_service_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bimabora/internal/config"
	"bimabora/internal/repositories"
	"bimabora/internal/services"
)

var Module = fx.Provide(
	provideAccountRepo, providePaymentRepo, providePaymentService,
)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func providePaymentRepo(db *gorm.DB) repositories.PaymentRepository {
	return repositories.NewPaymentRepository(db)
}

type paymentParams struct {
	fx.In

	Config   config.Config
	Accounts repositories.AccountRepository
	Plans    repositories.IPlanRepository
	Policies repositories.PolicyRepository
	Payments repositories.PaymentRepository
	Builder  services.PushRequestBuilder
	Tokens   services.AccessTokenProvider
	Gateway  services.PushGateway
	Logger   *zap.Logger
}

func providePaymentService(p paymentParams) services.PaymentService {
	return services.NewPaymentService(services.PaymentServiceDeps{
		Accounts: p.Accounts,
		Plans:    p.Plans,
		Policies: p.Policies,
		Payments: p.Payments,
		Builder:  p.Builder,
		Tokens:   p.Tokens,
		Gateway:  p.Gateway,
		Logger:   p.Logger.Named("payments"),
		Location: p.Config.Mpesa.Location,
	})
}
