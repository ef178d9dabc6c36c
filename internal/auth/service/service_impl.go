package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/internal/auth/domain"
	"github.com/varejotech/balcao/internal/auth/password"
	"github.com/varejotech/balcao/internal/auth/token"
	"github.com/varejotech/balcao/internal/clock"
	tenantdomain "github.com/varejotech/balcao/internal/tenant/domain"
	"github.com/varejotech/balcao/internal/tenantctx"
	dbpkg "github.com/varejotech/balcao/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	TenantRepo tenantdomain.Repository
	Issuer     *token.Issuer
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	tenantRepo tenantdomain.Repository
	issuer     *token.Issuer
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		tenantRepo: p.TenantRepo,
		issuer:     p.Issuer,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.mint(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, userID snowflake.ID) (*domain.LoginResult, error) {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.mint(ctx, user)
}

func (s *Service) VerifyCredentials(ctx context.Context, email, pass string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(pass, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// mint snapshots the tenant billing state into the claims and signs the
// token. Blocked tenant states are rejected here so the client receives an
// account-state explanation instead of a generic credential failure.
func (s *Service) mint(ctx context.Context, user *domain.User) (*domain.LoginResult, error) {
	claims := tenantctx.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	if user.TenantID != 0 {
		tenant, err := s.tenantRepo.FindByID(ctx, s.db, user.TenantID)
		if err != nil {
			return nil, err
		}
		if tenant == nil {
			return nil, domain.ErrUserNotFound
		}

		now := s.clock.Now()
		unlockLive := tenant.TemporaryUnlockUntil != nil && tenant.TemporaryUnlockUntil.After(now)
		switch tenant.Status {
		case tenantdomain.StatusPendente:
			return nil, domain.ErrAccountPending
		case tenantdomain.StatusCancelado:
			return nil, domain.ErrAccountCancelled
		case tenantdomain.StatusPausado:
			if !unlockLive {
				return nil, domain.ErrAccountPaused
			}
		}

		claims.TenantID = tenant.ID
		claims.TenantName = tenant.Name
		claims.SubscriptionStatus = string(tenant.Status)
		claims.SubscriptionDueDate = tenant.PlanDueDate
		claims.TemporaryUnlockUntil = tenant.TemporaryUnlockUntil
	}

	signed, expiresAt, err := s.issuer.Mint(claims)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		Token:              signed,
		ExpiresAt:          expiresAt,
		Claims:             claims,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidCredentials
	}
	if !req.Role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:                 s.genID.Generate(),
		TenantID:           req.TenantID,
		Name:               strings.TrimSpace(req.Name),
		Email:              email,
		Role:               req.Role,
		PasswordHash:       hash,
		MustChangePassword: req.MustChangePassword,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if !password.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, s.db, userID, hash, false)
}

func (s *Service) GetUser(ctx context.Context, userID snowflake.ID) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
