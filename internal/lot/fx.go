package lot

import (
	"go.uber.org/fx"

	"github.com/varejotech/balcao/internal/lot/repository"
	"github.com/varejotech/balcao/internal/lot/service"
)

var Module = fx.Module("lot",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
