package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	"github.com/varejotech/balcao/internal/auth/password"
	"github.com/varejotech/balcao/internal/clock"
	"github.com/varejotech/balcao/internal/config"
	"github.com/varejotech/balcao/internal/observability/metrics"
	"github.com/varejotech/balcao/internal/providers/billing"
	"github.com/varejotech/balcao/internal/ratelimit"
	"github.com/varejotech/balcao/internal/tenant/domain"
	"github.com/varejotech/balcao/internal/tenantctx"
	dbpkg "github.com/varejotech/balcao/pkg/db"
)

const (
	sweepLockKey     = "jobs:overdue-sweep"
	reconcileLockKey = "jobs:reconcile"
	jobLockTTL       = 5 * time.Minute
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	UserRepo authdomain.Repository
	Provider billing.Provider
	Policy   *config.BillingPolicyHolder
	Locker   *ratelimit.Locker `optional:"true"`
	Metrics  *metrics.Metrics  `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	userRepo authdomain.Repository
	provider billing.Provider
	policy   *config.BillingPolicyHolder
	locker   *ratelimit.Locker
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("tenant.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		userRepo: p.UserRepo,
		provider: p.Provider,
		policy:   p.Policy,
		locker:   p.Locker,
		metrics:  p.Metrics,
	}
}

func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.SignupResult, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.TaxID = strings.TrimSpace(req.TaxID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.AdminName = strings.TrimSpace(req.AdminName)
	if req.CompanyName == "" || req.TaxID == "" || req.AdminName == "" ||
		!strings.Contains(req.Email, "@") || len(req.Password) < 6 {
		return nil, domain.ErrInvalidRequest
	}

	existing, err := s.repo.FindByTaxID(ctx, s.db, req.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrTaxIDExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	policy := s.policy.Get()
	due := now.AddDate(0, 0, policy.TrialDays)

	tenant := &domain.Tenant{
		ID:          s.genID.Generate(),
		Name:        req.CompanyName,
		TaxID:       req.TaxID,
		Email:       req.Email,
		Phone:       req.Phone,
		Status:      domain.StatusEmTeste,
		PlanDueDate: &due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	admin := &authdomain.User{
		ID:           s.genID.Generate(),
		TenantID:     tenant.ID,
		Name:         req.AdminName,
		Email:        req.Email,
		Role:         tenantctx.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Provider calls run inside the transaction on purpose: a provider
	// failure must leave no local tenant or user behind.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, tenant); err != nil {
			if dbpkg.IsDuplicateKeyErr(err) {
				return domain.ErrTaxIDExists
			}
			return err
		}
		if err := s.userRepo.Insert(ctx, tx, admin); err != nil {
			if dbpkg.IsDuplicateKeyErr(err) {
				return authdomain.ErrUserExists
			}
			return err
		}

		customer, err := s.providerCreateCustomer(ctx, billing.CreateCustomerRequest{
			Name:  req.CompanyName,
			TaxID: req.TaxID,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			return err
		}
		subscription, err := s.providerCreateSubscription(ctx, customer.ID)
		if err != nil {
			return err
		}

		tenant.ExternalCustomerID = customer.ID
		tenant.ExternalSubscriptionID = subscription.ID
		return s.repo.Update(ctx, tx, tenant)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant signed up",
		zap.Int64("tenant_id", int64(tenant.ID)),
		zap.String("tax_id", tenant.TaxID),
		zap.Timep("plan_due_date", tenant.PlanDueDate),
	)
	return &domain.SignupResult{Tenant: tenant, AdminUserID: admin.ID}, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}

func (s *Service) GetByTaxID(ctx context.Context, taxID string) (*domain.Tenant, error) {
	tenant, err := s.repo.FindByTaxID(ctx, s.db, taxID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Tenant, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) OverdueSweep(ctx context.Context) (*domain.SweepResult, error) {
	token, ok, err := s.locker.TryLock(ctx, sweepLockKey, jobLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrJobRunning
	}
	defer func() {
		if err := s.locker.Release(ctx, sweepLockKey, token); err != nil {
			s.log.Warn("sweep lock release failed", zap.Error(err))
		}
	}()

	now := s.clock.Now()
	policy := s.policy.Get()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, -policy.GraceDays)

	overdue, err := s.repo.ListOverdue(ctx, s.db, cutoff)
	if err != nil {
		return nil, err
	}

	result := &domain.SweepResult{Details: []domain.SweepDetail{}}
	for _, tenant := range overdue {
		if err := s.repo.UpdateStatus(ctx, s.db, tenant.ID, domain.StatusPausado); err != nil {
			s.log.Error("sweep failed to pause tenant",
				zap.Int64("tenant_id", int64(tenant.ID)),
				zap.Error(err),
			)
			continue
		}
		detail := domain.SweepDetail{
			TenantID:   tenant.ID,
			Name:       tenant.Name,
			BlockedAt:  now,
			AdminEmail: s.adminEmail(ctx, tenant.ID),
		}
		if tenant.PlanDueDate != nil {
			detail.DueDate = *tenant.PlanDueDate
		}
		result.Details = append(result.Details, detail)
		result.BlockedCount++
	}

	s.metrics.AddSweepBlocked(result.BlockedCount)
	s.log.Info("overdue sweep finished",
		zap.Int("blocked", result.BlockedCount),
		zap.Time("cutoff", cutoff),
	)
	return result, nil
}

func (s *Service) ReconcileAll(ctx context.Context) (*domain.ReconcileResult, error) {
	token, ok, err := s.locker.TryLock(ctx, reconcileLockKey, jobLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrJobRunning
	}
	defer func() {
		if err := s.locker.Release(ctx, reconcileLockKey, token); err != nil {
			s.log.Warn("reconcile lock release failed", zap.Error(err))
		}
	}()

	tenants, err := s.repo.ListReconcilable(ctx, s.db)
	if err != nil {
		return nil, err
	}

	policy := s.policy.Get()
	result := &domain.ReconcileResult{Outcomes: []domain.ReconcileOutcome{}}
	for i, tenant := range tenants {
		if i > 0 && policy.ReconcileDelay > 0 {
			time.Sleep(policy.ReconcileDelay)
		}
		outcome := s.reconcileOne(ctx, tenant, policy)
		result.Outcomes = append(result.Outcomes, outcome)

		switch {
		case outcome.Error != "":
			s.metrics.IncReconcileOutcome("error")
		case outcome.Changed:
			s.metrics.IncReconcileOutcome("changed")
		default:
			s.metrics.IncReconcileOutcome("unchanged")
		}
	}
	return result, nil
}

// reconcileOne maps a single tenant's provider subscription status onto
// the local lifecycle. Failures are returned in the outcome so one bad
// tenant does not abort the batch.
func (s *Service) reconcileOne(ctx context.Context, tenant *domain.Tenant, policy config.BillingPolicy) domain.ReconcileOutcome {
	outcome := domain.ReconcileOutcome{
		TenantID: tenant.ID,
		Name:     tenant.Name,
		From:     tenant.Status,
		To:       tenant.Status,
	}

	providerStatus, err := s.providerSubscriptionStatus(ctx, tenant.ExternalSubscriptionID)
	if err != nil {
		s.log.Warn("reconcile status fetch failed",
			zap.Int64("tenant_id", int64(tenant.ID)),
			zap.Error(err),
		)
		outcome.Error = err.Error()
		return outcome
	}

	now := s.clock.Now()
	next := mapProviderStatus(providerStatus, tenant, now)
	if next == domain.StatusEmTeste && tenant.PlanDueDate != nil && tenant.PlanDueDate.Before(now) {
		// Trial elapsed without a payment.
		next = domain.StatusPausado
	}

	outcome.To = next
	if next == tenant.Status {
		return outcome
	}
	if err := s.repo.UpdateStatus(ctx, s.db, tenant.ID, next); err != nil {
		outcome.To = tenant.Status
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Changed = true
	s.log.Info("tenant status reconciled",
		zap.Int64("tenant_id", int64(tenant.ID)),
		zap.String("from", string(tenant.Status)),
		zap.String("to", string(next)),
		zap.String("provider_status", string(providerStatus)),
	)
	return outcome
}

func mapProviderStatus(status billing.SubscriptionStatus, tenant *domain.Tenant, now time.Time) domain.Status {
	switch status {
	case billing.SubscriptionReceived, billing.SubscriptionConfirmed:
		return domain.StatusAtivo
	case billing.SubscriptionOverdue:
		return domain.StatusPausado
	case billing.SubscriptionInactive, billing.SubscriptionCancelled:
		return domain.StatusCancelado
	case billing.SubscriptionActive:
		if tenant.Status == domain.StatusEmTeste &&
			tenant.PlanDueDate != nil && tenant.PlanDueDate.After(now) {
			return domain.StatusEmTeste
		}
		return domain.StatusAtivo
	default:
		return tenant.Status
	}
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID, reason string) error {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return domain.ErrNotFound
	}
	if tenant.Status == domain.StatusCancelado {
		return domain.ErrAlreadyCanceled
	}

	// Provider first: the local status only flips after the provider
	// accepted the cancellation.
	if tenant.ExternalSubscriptionID != "" {
		if err := s.providerCancelSubscription(ctx, tenant.ExternalSubscriptionID); err != nil {
			return err
		}
	}

	tenant.Status = domain.StatusCancelado
	tenant.CancelReason = strings.TrimSpace(reason)
	tenant.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, tenant); err != nil {
		return err
	}
	s.log.Info("tenant cancelled",
		zap.Int64("tenant_id", int64(id)),
		zap.String("reason", tenant.CancelReason),
	)
	return nil
}

func (s *Service) TemporaryUnlock(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	if tenant.Status != domain.StatusPausado {
		s.metrics.IncTemporaryUnlock("not_paused")
		return nil, domain.ErrNotPaused
	}

	now := s.clock.Now()
	policy := s.policy.Get()
	if tenant.LastUnlockAt != nil {
		elapsed := now.Sub(*tenant.LastUnlockAt)
		cooldown := time.Duration(policy.UnlockCooldownDays) * 24 * time.Hour
		if elapsed < cooldown {
			remaining := policy.UnlockCooldownDays - int(elapsed.Hours()/24)
			s.metrics.IncTemporaryUnlock("cooldown")
			return nil, &domain.UnlockCooldownError{DaysRemaining: remaining}
		}
	}

	until := now.Add(time.Duration(policy.UnlockGrantHours) * time.Hour)
	tenant.TemporaryUnlockUntil = &until
	tenant.LastUnlockAt = &now
	tenant.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, tenant); err != nil {
		return nil, err
	}

	s.metrics.IncTemporaryUnlock("granted")
	s.log.Info("temporary unlock granted",
		zap.Int64("tenant_id", int64(id)),
		zap.Time("until", until),
	)
	return tenant, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return domain.ErrNotFound
	}
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("tenant deleted", zap.Int64("tenant_id", int64(id)))
	return nil
}

func (s *Service) adminEmail(ctx context.Context, tenantID snowflake.ID) string {
	users, err := s.userRepo.ListByTenant(ctx, s.db, tenantID)
	if err != nil {
		s.log.Warn("sweep admin lookup failed",
			zap.Int64("tenant_id", int64(tenantID)),
			zap.Error(err),
		)
		return ""
	}
	for _, user := range users {
		if user.Role == tenantctx.RoleAdmin {
			return user.Email
		}
	}
	return ""
}

func (s *Service) providerCreateCustomer(ctx context.Context, req billing.CreateCustomerRequest) (*billing.Customer, error) {
	start := time.Now()
	customer, err := s.provider.CreateCustomer(ctx, req)
	s.metrics.ObserveProviderCall("create_customer", err, time.Since(start))
	return customer, err
}

func (s *Service) providerCreateSubscription(ctx context.Context, customerID string) (*billing.Subscription, error) {
	start := time.Now()
	subscription, err := s.provider.CreateSubscription(ctx, customerID)
	s.metrics.ObserveProviderCall("create_subscription", err, time.Since(start))
	return subscription, err
}

func (s *Service) providerSubscriptionStatus(ctx context.Context, subscriptionID string) (billing.SubscriptionStatus, error) {
	start := time.Now()
	status, err := s.provider.GetSubscriptionStatus(ctx, subscriptionID)
	s.metrics.ObserveProviderCall("get_subscription_status", err, time.Since(start))
	return status, err
}

func (s *Service) providerCancelSubscription(ctx context.Context, subscriptionID string) error {
	start := time.Now()
	err := s.provider.CancelSubscription(ctx, subscriptionID)
	s.metrics.ObserveProviderCall("cancel_subscription", err, time.Since(start))
	return err
}
