package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/varejotech/balcao/internal/auth"
	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	"github.com/varejotech/balcao/internal/auth/session"
	"github.com/varejotech/balcao/internal/auth/token"
	"github.com/varejotech/balcao/internal/clock"
	"github.com/varejotech/balcao/internal/config"
	"github.com/varejotech/balcao/internal/lot"
	lotdomain "github.com/varejotech/balcao/internal/lot/domain"
	"github.com/varejotech/balcao/internal/migration"
	"github.com/varejotech/balcao/internal/observability"
	obsmiddleware "github.com/varejotech/balcao/internal/observability/logger"
	obsmetrics "github.com/varejotech/balcao/internal/observability/metrics"
	"github.com/varejotech/balcao/internal/product"
	productdomain "github.com/varejotech/balcao/internal/product/domain"
	billingprovider "github.com/varejotech/balcao/internal/providers/billing"
	"github.com/varejotech/balcao/internal/providers/storage"
	"github.com/varejotech/balcao/internal/ratelimit"
	"github.com/varejotech/balcao/internal/report"
	"github.com/varejotech/balcao/internal/sale"
	saledomain "github.com/varejotech/balcao/internal/sale/domain"
	"github.com/varejotech/balcao/internal/stock"
	"github.com/varejotech/balcao/internal/team"
	"github.com/varejotech/balcao/internal/tenant"
	tenantdomain "github.com/varejotech/balcao/internal/tenant/domain"
	dbpkg "github.com/varejotech/balcao/pkg/db"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	clock.Module,
	dbpkg.Module,
	migration.Module,
	fx.Provide(registerGin),
	auth.Module,
	billingprovider.Module,
	storage.Module,
	ratelimit.Module,
	tenant.Module,
	team.Module,
	product.Module,
	lot.Module,
	sale.Module,
	stock.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	clock      clock.Clock
	genID      *snowflake.Node
	sessions   *session.Manager
	issuer     *token.Issuer
	authsvc    authdomain.Service
	tenantSvc  tenantdomain.Service
	teamSvc    *team.Service
	productSvc productdomain.Service
	lotSvc     lotdomain.Service
	saleSvc    saledomain.Service
	stockSvc   *stock.Service
	reportSvc  *report.Service
	billing    billingprovider.Provider
	store      storage.Store
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Clock      clock.Clock
	GenID      *snowflake.Node
	Sessions   *session.Manager
	Issuer     *token.Issuer
	Authsvc    authdomain.Service
	TenantSvc  tenantdomain.Service
	TeamSvc    *team.Service
	ProductSvc productdomain.Service
	LotSvc     lotdomain.Service
	SaleSvc    saledomain.Service
	StockSvc   *stock.Service
	ReportSvc  *report.Service
	Billing    billingprovider.Provider
	Store      storage.Store
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		clock:      p.Clock,
		genID:      p.GenID,
		sessions:   p.Sessions,
		issuer:     p.Issuer,
		authsvc:    p.Authsvc,
		tenantSvc:  p.TenantSvc,
		teamSvc:    p.TeamSvc,
		productSvc: p.ProductSvc,
		lotSvc:     p.LotSvc,
		saleSvc:    p.SaleSvc,
		stockSvc:   p.StockSvc,
		reportSvc:  p.ReportSvc,
		billing:    p.Billing,
		store:      p.Store,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.Use(s.ClaimsContext())
	r.Use(s.Gate())

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", s.Login)
		authGroup.POST("/logout", s.Logout)
		authGroup.POST("/refresh", s.AuthRequired(), s.RefreshToken)
		authGroup.POST("/change-password", s.AuthRequired(), s.ChangePassword)
		authGroup.GET("/me", s.AuthRequired(), s.Me)
	}

	public := r.Group("/api/public")
	{
		public.POST("/signup", s.Signup)
		public.GET("/billing/status", s.PublicBillingStatus)
		public.POST("/billing/unlock", s.PublicTemporaryUnlock)
	}

	master := r.Group("/api/master", s.AuthRequired())
	{
		master.GET("/tenants", s.ListTenants)
		master.GET("/tenants/:id", s.GetTenant)
		master.POST("/tenants/:id/cancel", s.CancelTenant)
		master.POST("/tenants/:id/unlock", s.UnlockTenant)
		master.DELETE("/tenants/:id", s.DeleteTenant)
		master.POST("/jobs/reconcile", s.ReconcileTenants)
	}

	admin := r.Group("/api/admin", s.AuthRequired(), s.TenantRequired())
	{
		admin.GET("/products", s.ListProducts)
		admin.GET("/catalog", s.ListAllProducts)
		admin.POST("/products", s.CreateProduct)
		admin.GET("/products/:id", s.GetProduct)
		admin.PUT("/products/:id", s.UpdateProduct)
		admin.DELETE("/products/:id", s.DeleteProduct)
		admin.POST("/products/:id/image", s.UploadProductImage)

		admin.GET("/lots", s.ListLots)
		admin.GET("/products/:id/lots", s.ListProductLots)
		admin.POST("/lots", s.StockIn)
		admin.POST("/lots/out", s.StockOut)
		admin.DELETE("/lots/:id", s.DeleteLot)
		admin.GET("/movements", s.ListMovements)

		admin.POST("/stock/recalculate", s.RecalculateStock)

		admin.GET("/reports/summary", s.ReportSummary)
		admin.GET("/reports/daily", s.ReportDaily)
		admin.GET("/reports/top-products", s.ReportTopProducts)
		admin.GET("/reports/low-stock", s.ReportLowStock)

		admin.GET("/billing", s.BillingStatus)
		admin.GET("/billing/invoice", s.PendingInvoice)
		admin.GET("/billing/payments", s.PaymentHistory)
		admin.POST("/billing/cancel", s.CancelOwnTenant)
		admin.POST("/billing/unlock", s.TemporaryUnlock)
	}

	equipe := r.Group("/api/equipe", s.AuthRequired(), s.TenantRequired())
	{
		equipe.GET("", s.ListTeam)
		equipe.POST("", s.AddTeamMember)
		equipe.PUT("/:id/role", s.UpdateTeamRole)
		equipe.DELETE("/:id", s.RemoveTeamMember)
	}

	sales := r.Group("/api/sales", s.AuthRequired(), s.TenantRequired())
	{
		sales.POST("", s.CreateSale)
		sales.GET("", s.ListSales)
		sales.GET("/:id", s.GetSale)
	}

	r.GET("/api/jobs/overdue-sweep", s.SweepAuthRequired(), s.OverdueSweep)

	r.GET("/files/*key", s.ServeFile)
}
