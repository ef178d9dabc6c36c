package auth

import (
	"github.com/varejotech/balcao/internal/auth/repository"
	"github.com/varejotech/balcao/internal/auth/service"
	"github.com/varejotech/balcao/internal/auth/session"
	"github.com/varejotech/balcao/internal/auth/token"
	"github.com/varejotech/balcao/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
	fx.Provide(provideIssuer),
)

func provideIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(token.Config{SigningKey: cfg.AuthJWTSecret})
}
