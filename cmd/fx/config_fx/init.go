package config_fx

import (
	"go.uber.org/fx"

	"bimabora/internal/config"
)

var Module = fx.Provide(config.Load)
