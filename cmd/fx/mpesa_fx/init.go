package mpesa_fx

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bimabora/internal/config"
	"bimabora/internal/services"
	mem "bimabora/pkg/memcache"
	"bimabora/pkg/mpesa"
)

var Module = fx.Provide(
	provideHTTPClient,
	provideCredentialCache,
	provideRequestBuilder,
	provideGatewayClient,
)

func provideHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Mpesa.Timeout}
}

func provideCredentialCache(cfg config.Config, store mem.TokenStore, client *http.Client, logger *zap.Logger) (services.AccessTokenProvider, error) {
	return mpesa.NewCredentialCache(cfg.Mpesa, store, client, logger.Named("mpesa"))
}

func provideRequestBuilder(cfg config.Config) (services.PushRequestBuilder, error) {
	return mpesa.NewRequestBuilder(cfg.Mpesa)
}

func provideGatewayClient(cfg config.Config, client *http.Client) services.PushGateway {
	return mpesa.NewGatewayClient(cfg.Mpesa, client)
}
