package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/agriclinic/agri-clinic-hub/internal/http/handlers"
	httpmw "github.com/agriclinic/agri-clinic-hub/internal/http/middleware"
	"github.com/agriclinic/agri-clinic-hub/internal/metrics"
	"github.com/agriclinic/agri-clinic-hub/internal/notify"
	"github.com/agriclinic/agri-clinic-hub/internal/platform/weather"
	"github.com/agriclinic/agri-clinic-hub/internal/repo/postgres"
	"github.com/agriclinic/agri-clinic-hub/internal/repo/redisrepo"
	"github.com/agriclinic/agri-clinic-hub/internal/security"
	"github.com/agriclinic/agri-clinic-hub/internal/service"
	"github.com/agriclinic/agri-clinic-hub/pkg/config"
	"github.com/agriclinic/agri-clinic-hub/pkg/database"
	"github.com/agriclinic/agri-clinic-hub/pkg/events"
	"github.com/agriclinic/agri-clinic-hub/pkg/logger"
	mw "github.com/agriclinic/agri-clinic-hub/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(cfg.Database.URL); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Redis (rate limiting)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Outbound notifications
	var mailer notify.Mailer
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		mailer = notify.NewDevMailer()
	} else {
		mailer = notify.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	sms := notify.NewDevSMS()

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	articleRepo := postgres.NewArticleRepository(pool)
	rateLimiter := redisrepo.NewRateLimitRepository(redisClient)

	// Services
	collector := metrics.NewPrometheusCollector()
	authService := service.NewAuthService(userRepo, mailer, eventBus, collector, cfg)
	bookingService := service.NewBookingService(bookingRepo, userRepo, sms, eventBus, collector)
	userService := service.NewUserService(userRepo, eventBus)
	articleService := service.NewArticleService(articleRepo, security.NewContentSanitizer(), eventBus)
	weatherClient := weather.NewClient(cfg.Weather)

	// Router
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.Health)

	r.Method(http.MethodGet, "/metrics", collector.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(httpmw.RateLimit(rateLimiter, 20, time.Minute)).
			Mount("/auth", handlers.NewAuthHandler(authService).Routes())

		// Article reads and weather are public; article writes carry their
		// own JWT gate inside the handler.
		r.Mount("/articles", handlers.NewArticlesHandler(articleService).Routes(cfg.Auth.JWTSecret))
		r.Mount("/weather", handlers.NewWeatherHandler(weatherClient).Routes())

		r.Group(func(r chi.Router) {
			r.Use(httpmw.RequireJWT(cfg.Auth.JWTSecret))
			r.Mount("/bookings", handlers.NewBookingsHandler(bookingService).Routes())
			r.Mount("/users", handlers.NewUsersHandler(userService).Routes())
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting agri-clinic API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
