package server

import (
	"context"
	"net/http"
	"time"

	"hotel/internal/config"
	"hotel/internal/middleware"
	"hotel/internal/modules/auth"
	"hotel/internal/modules/booking"
	"hotel/internal/modules/catalog"
	"hotel/internal/modules/room"
	"hotel/internal/notification"
	jwtsvc "hotel/internal/pkg/jwt"
	"hotel/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// local frontends allowed when CORS_ALLOWED_ORIGINS is unset
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *logrus.Logger
	// Redis is optional; without it notifications are not de-duplicated.
	Redis *redis.Client
}

type Server struct {
	Engine     *gin.Engine
	Dispatcher *notification.Dispatcher
	Hub        *notification.Hub
}

func New(d Deps) *Server {
	cfg, log := d.Config, d.Log

	userRepo := repository.NewUserRepository(d.DB)
	roomRepo := repository.NewRoomRepository(d.DB)
	serviceRepo := repository.NewServiceRepository(d.DB)
	bookingRepo := repository.NewBookingRepository(d.DB)
	notifyLogRepo := repository.NewNotificationLogRepository(d.DB)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := notification.NewHub(log)
	dispatcher := notification.NewDispatcher(log,
		notification.Options{Async: cfg.NotifyAsync, Timeout: cfg.NotifyTimeout},
		notification.NewMailChannel(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			FromName: cfg.SMTPFromName,
		}, log),
		notification.NewHubChannel(hub),
	).WithRecorder(notification.NewLogChannel(notifyLogRepo, log))
	if d.Redis != nil {
		dispatcher.WithDeduper(notification.NewRedisDeduper(d.Redis, cfg.NotifyDedupeTTL, log))
	}

	authHandler := auth.NewHandler(auth.NewService(userRepo, tokens, cfg.JWTTTL, log))
	roomHandler := room.NewHandler(room.NewService(roomRepo, log))
	catalogHandler := catalog.NewHandler(catalog.NewService(serviceRepo))
	bookingHandler := booking.NewHandler(booking.NewService(
		bookingRepo, roomRepo, serviceRepo, userRepo, dispatcher,
		booking.Config{
			StoreTimeout:       cfg.StoreTimeout,
			GuestInitialStatus: cfg.GuestInitialStatus,
			StaffInitialStatus: cfg.StaffInitialStatus,
		},
		log,
	))

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	r.GET("/health", health(d))

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		roomHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
		}

		staff := v1.Group("")
		staff.Use(middleware.JWTAuth(tokens), middleware.StaffOnly())
		{
			roomHandler.RegisterStaffRoutes(staff)
			catalogHandler.RegisterStaffRoutes(staff)
			staff.GET("/ws/bookings", hub.HandleWS)
		}

		admin := v1.Group("")
		admin.Use(middleware.JWTAuth(tokens), middleware.AdminOnly())
		{
			authHandler.RegisterAdminRoutes(admin)
			roomHandler.RegisterAdminRoutes(admin)
			catalogHandler.RegisterAdminRoutes(admin)
		}
	}

	return &Server{Engine: r, Dispatcher: dispatcher, Hub: hub}
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = devOrigins
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
}

func health(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok"}

		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = "unavailable"
			d.Log.WithError(err).Warn("health: database ping failed")
		}

		if d.Redis != nil {
			checks["redis"] = "ok"
			if err := d.Redis.Ping(ctx).Err(); err != nil {
				// dedupe fails open, so redis being down is not fatal
				checks["redis"] = "unavailable"
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
