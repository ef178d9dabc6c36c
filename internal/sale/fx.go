package sale

import (
	"go.uber.org/fx"

	"github.com/varejotech/balcao/internal/sale/repository"
	"github.com/varejotech/balcao/internal/sale/service"
)

var Module = fx.Module("sale",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
