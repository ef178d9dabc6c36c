package tenant

import (
	"go.uber.org/fx"

	"github.com/varejotech/balcao/internal/tenant/repository"
	"github.com/varejotech/balcao/internal/tenant/service"
)

var Module = fx.Module("tenant",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
