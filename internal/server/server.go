package server

import (
	"context"
	"net/http"
	"time"

	billingdomain "github.com/gestorhq/gestor/internal/billing/domain"
	cashflowdomain "github.com/gestorhq/gestor/internal/cashflow/domain"
	clientdomain "github.com/gestorhq/gestor/internal/client/domain"
	"github.com/gestorhq/gestor/internal/config"
	notificationdomain "github.com/gestorhq/gestor/internal/notification/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, _ *Server) {
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	clientSvc       clientdomain.Service
	billingSvc      billingdomain.Service
	notificationSvc notificationdomain.Service
	cashflowSvc     cashflowdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	ClientSvc       clientdomain.Service
	BillingSvc      billingdomain.Service
	NotificationSvc notificationdomain.Service
	CashflowSvc     cashflowdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("http.server"),
		clientSvc:       p.ClientSvc,
		billingSvc:      p.BillingSvc,
		notificationSvc: p.NotificationSvc,
		cashflowSvc:     p.CashflowSvc,
	}

	svc.registerAPIRoutes()
	svc.registerInternalRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/clients", s.CreateClient)
	v1.GET("/clients", s.ListClients)
	v1.GET("/clients/:id", s.GetClientByID)

	v1.POST("/billings", s.CreateBilling)
	v1.GET("/billings", s.ListBillings)
	v1.PATCH("/billings/:id/status", s.UpdateBillingStatus)

	v1.POST("/cashflow/entries", s.CreateCashflowEntry)
	v1.GET("/reports/cashflow", s.CashflowSummary)
}

func (s *Server) registerInternalRoutes() {
	internal := s.engine.Group("/internal")

	internal.POST("/notifications/run", s.RunNotifications)
	internal.POST("/cashflow/sync", s.RunCashflowSync)
}
