package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/oceanview/backend/docs"
	"github.com/oceanview/backend/internal/app/api/handlers"
	mw "github.com/oceanview/backend/internal/app/api/middleware"
	"github.com/oceanview/backend/internal/app/service/apartment"
	"github.com/oceanview/backend/internal/app/service/billing"
	"github.com/oceanview/backend/internal/app/service/chat"
	"github.com/oceanview/backend/internal/app/service/content"
	"github.com/oceanview/backend/internal/app/service/feedback"
	"github.com/oceanview/backend/internal/app/service/identity"
	"github.com/oceanview/backend/internal/app/service/locker"
	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/app/service/registration"
	redisclient "github.com/oceanview/backend/internal/platform/redis"
	cfgpkg "github.com/oceanview/backend/pkg/config"
	metrics "github.com/oceanview/backend/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request tracing only; request logger & access log attach per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

// Services bundles every domain service the router mounts. Fx fills it by type.
type Services struct {
	fx.In

	Identity     *identity.Service
	Apartment    *apartment.Service
	Registration *registration.Service
	Billing      *billing.Service
	Notification *notification.Service
	Locker       *locker.Service
	Chat         *chat.Service
	Feedback     *feedback.Service
	Content      *content.Service
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, rdb *redisclient.Client, svcs Services) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: health, swagger, login and password recovery, gateway callbacks
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	otpLimiter := mw.RateLimit(rdb, 1, cfg.Auth.OTPWindow)
	handlers.RegisterUserRoutes(pub, svcs.Identity, otpLimiter)
	handlers.RegisterPaymentWebhookRoutes(pub, svcs.Billing)

	// Authenticated resident surface
	apiV1 := r.Group("/api/v1")
	apiV1.Use(
		mw.RequestLoggerMiddleware(log),
		mw.AccessLogMiddleware(),
		mw.RequireAuth(cfg.Auth.JWTSecret),
	)
	handlers.RegisterUserProtectedRoutes(apiV1, svcs.Identity)
	handlers.RegisterApartmentRoutes(apiV1, svcs.Apartment)
	handlers.RegisterServiceRoutes(apiV1, svcs.Registration)
	handlers.RegisterInvoiceRoutes(apiV1, svcs.Billing)
	handlers.RegisterNotificationRoutes(apiV1, svcs.Notification)
	handlers.RegisterLockerRoutes(apiV1, svcs.Locker)
	handlers.RegisterChatRoutes(apiV1, svcs.Chat)
	handlers.RegisterFeedbackRoutes(apiV1, svcs.Feedback)
	handlers.RegisterContentRoutes(apiV1, svcs.Content)

	// Staff-only surface
	admin := apiV1.Group("/admin")
	admin.Use(mw.RequireStaff())
	handlers.RegisterUserAdminRoutes(admin, svcs.Identity)
	handlers.RegisterApartmentAdminRoutes(admin, svcs.Apartment)
	handlers.RegisterServiceAdminRoutes(admin, svcs.Registration)
	handlers.RegisterInvoiceAdminRoutes(admin, svcs.Billing)
	handlers.RegisterLockerAdminRoutes(admin, svcs.Locker)
	handlers.RegisterContentAdminRoutes(admin, svcs.Content)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
