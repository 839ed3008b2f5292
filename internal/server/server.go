package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/rentledger/internal/audit/domain"
	"github.com/smallbiznis/rentledger/internal/config"
	invoicedomain "github.com/smallbiznis/rentledger/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	"github.com/smallbiznis/rentledger/internal/observability"
	obsmiddleware "github.com/smallbiznis/rentledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rentledger/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rentledger/internal/observability/tracing"
	recipientdomain "github.com/smallbiznis/rentledger/internal/recipient/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RunHTTP serves the engine on the configured address for the app lifetime.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine       *gin.Engine
	cfg          config.Config
	auditSvc     auditdomain.Service
	invoiceSvc   invoicedomain.Service
	settingsSvc  settingsdomain.Service
	recipientSvc recipientdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	AuditSvc     auditdomain.Service
	InvoiceSvc   invoicedomain.Service
	SettingsSvc  settingsdomain.Service
	RecipientSvc recipientdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		auditSvc:     p.AuditSvc,
		invoiceSvc:   p.InvoiceSvc,
		settingsSvc:  p.SettingsSvc,
		recipientSvc: p.RecipientSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(OrgContext())

	// -------- Schedules --------
	api.POST("/tenants/:id/invoices/schedule", s.GenerateSchedule)
	api.POST("/tenants/:id/invoices/regenerate", s.RegenerateSchedule)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.GET("/invoices/:id/pdf", s.RenderInvoicePDF)
	api.POST("/invoices/:id/approve", s.ApproveInvoice)
	api.POST("/invoices/:id/send", s.SendInvoice)
	api.POST("/invoices/:id/mark-sent", s.MarkInvoiceSent)
	api.POST("/invoices/:id/reminders", s.SendInvoiceReminder)
	api.POST("/invoices/:id/toggle-paid", s.ToggleInvoicePaid)
	api.POST("/invoices/:id/payments", s.RecordInvoicePayment)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)

	// -------- Settings --------
	api.GET("/invoice-settings", s.GetInvoiceSettings)
	api.PUT("/invoice-settings", s.UpsertInvoiceSettings)

	// -------- Recipients --------
	api.GET("/tenants/:id/recipients", s.ListRecipients)
	api.POST("/tenants/:id/recipients", s.AddRecipient)
	api.POST("/recipients/:id/primary", s.SetPrimaryRecipient)
	api.DELETE("/recipients/:id", s.RemoveRecipient)

	// -------- Reporting --------
	api.GET("/tenant-summaries", s.ListTenantSummaries)
	api.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
