package product

import (
	"go.uber.org/fx"

	"github.com/varejotech/balcao/internal/product/repository"
	"github.com/varejotech/balcao/internal/product/service"
)

var Module = fx.Module("product",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
