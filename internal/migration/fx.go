package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	"github.com/varejotech/balcao/internal/config"
	lotdomain "github.com/varejotech/balcao/internal/lot/domain"
	productdomain "github.com/varejotech/balcao/internal/product/domain"
	saledomain "github.com/varejotech/balcao/internal/sale/domain"
	"github.com/varejotech/balcao/internal/seed"
	tenantdomain "github.com/varejotech/balcao/internal/tenant/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations drive the postgres schema; the
		// sqlite/mysql development paths derive it from the models.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			err := conn.AutoMigrate(
				&tenantdomain.Tenant{},
				&authdomain.User{},
				&productdomain.Product{},
				&lotdomain.Lot{},
				&lotdomain.Movement{},
				&saledomain.Sale{},
				&saledomain.SaleItem{},
			)
			if err != nil {
				return err
			}
		}

		return seed.EnsureMasterUser(conn)
	}),
)
