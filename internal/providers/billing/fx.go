package billing

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/varejotech/balcao/internal/config"
)

// Module wires the billing provider. Without an API key the in-memory
// fake is used so local development works offline.
var Module = fx.Module("billing",
	fx.Provide(NewProvider),
)

func NewProvider(cfg config.Config, log *zap.Logger) Provider {
	if cfg.BillingAPIKey == "" {
		log.Warn("billing api key not set, using in-memory billing provider")
		return NewFake()
	}
	return NewAsaasProvider(cfg, log)
}
