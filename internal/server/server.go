package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cohortly/cohortly/internal/auth"
	authdomain "github.com/cohortly/cohortly/internal/auth/domain"
	"github.com/cohortly/cohortly/internal/catalog"
	catalogdomain "github.com/cohortly/cohortly/internal/catalog/domain"
	"github.com/cohortly/cohortly/internal/checkout"
	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
	"github.com/cohortly/cohortly/internal/clock"
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/enrollment"
	enrollmentdomain "github.com/cohortly/cohortly/internal/enrollment/domain"
	"github.com/cohortly/cohortly/internal/notify"
	notifydomain "github.com/cohortly/cohortly/internal/notify/domain"
	"github.com/cohortly/cohortly/internal/observability"
	obsmiddleware "github.com/cohortly/cohortly/internal/observability/logger"
	obsmetrics "github.com/cohortly/cohortly/internal/observability/metrics"
	obstracing "github.com/cohortly/cohortly/internal/observability/tracing"
	"github.com/cohortly/cohortly/internal/payment"
	paymentdomain "github.com/cohortly/cohortly/internal/payment/domain"
	"github.com/cohortly/cohortly/internal/phase"
	phasedomain "github.com/cohortly/cohortly/internal/phase/domain"
	"github.com/cohortly/cohortly/internal/providers/email"
	"github.com/cohortly/cohortly/internal/ratelimit"
	"github.com/cohortly/cohortly/internal/subscription"
	subscriptiondomain "github.com/cohortly/cohortly/internal/subscription/domain"
)

// Module wires the full HTTP surface: every feature module plus the engine
// and the server lifecycle.
var Module = fx.Module("http.server",
	auth.Module,
	catalog.Module,
	checkout.Module,
	email.Module,
	enrollment.Module,
	notify.Module,
	payment.Module,
	phase.Module,
	ratelimit.Module,
	subscription.Module,

	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine *gin.Engine
	cfg    *config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock

	verifier      authdomain.Verifier
	phases        phasedomain.Service
	catalogSvc    catalogdomain.Service
	checkoutSvc   checkoutdomain.Service
	reconciler    paymentdomain.Reconciler
	enrollments   enrollmentdomain.Service
	subscriptions subscriptiondomain.Service
	notifyRepo    notifydomain.Repository

	checkoutLimiter *ratelimit.CheckoutLimiter
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   *config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock

	Verifier      authdomain.Verifier
	Phases        phasedomain.Service
	CatalogSvc    catalogdomain.Service
	CheckoutSvc   checkoutdomain.Service
	Reconciler    paymentdomain.Reconciler
	Enrollments   enrollmentdomain.Service
	Subscriptions subscriptiondomain.Service
	NotifyRepo    notifydomain.Repository

	CheckoutLimiter *ratelimit.CheckoutLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("server"),
		genID:           p.GenID,
		clock:           p.Clock,
		verifier:        p.Verifier,
		phases:          p.Phases,
		catalogSvc:      p.CatalogSvc,
		checkoutSvc:     p.CheckoutSvc,
		reconciler:      p.Reconciler,
		enrollments:     p.Enrollments,
		subscriptions:   p.Subscriptions,
		notifyRepo:      p.NotifyRepo,
		checkoutLimiter: p.CheckoutLimiter,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")

	api.GET("/phases", s.ListPhases)
	api.GET("/phases/active", s.ActivePhase)

	api.GET("/courses", s.ListCourses)
	api.GET("/courses/:slug", s.GetCourse)
	api.GET("/cohorts", s.ListCohorts)
	api.GET("/cohorts/:slug", s.GetCohort)

	api.POST("/notify/subscribe", s.Subscribe)

	api.POST("/checkout-sessions", s.AuthRequired(), s.CreateCheckoutSession)
	api.GET("/me/enrollments", s.AuthRequired(), s.ListMyEnrollments)
	api.GET("/me/subscription", s.AuthRequired(), s.GetMySubscription)

	api.POST("/payments/webhooks/stripe", s.HandlePaymentWebhook)
}
