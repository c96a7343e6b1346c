package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projectshelf-backend/internal/accounts"
	"projectshelf-backend/internal/analytics"
	"projectshelf-backend/internal/auth"
	"projectshelf-backend/internal/cache"
	"projectshelf-backend/internal/config"
	"projectshelf-backend/internal/media"
	"projectshelf-backend/internal/middleware"
	"projectshelf-backend/internal/portfolio"
	"projectshelf-backend/internal/store"
	"projectshelf-backend/internal/themes"
	"projectshelf-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var st store.Store
	if cfg.DatabaseURL != "" {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("migrations failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("postgres connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("postgres connected")
		defer pg.Close()
		st = pg
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		st = store.NewMemory()
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// Sessions still work within one process lifetime; restarts log
		// everyone out.
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set, using an ephemeral secret")
	}
	sessions := &auth.Manager{
		Secret:     []byte(secret),
		SessionTTL: time.Duration(cfg.SessionTTLMinutes) * time.Minute,
		Issuer:     "projectshelf",
	}

	uploader := media.NewCloudinaryClient(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	if uploader == nil {
		logger.Info("cloudinary uploads disabled")
	} else {
		logger.Info("cloudinary uploads enabled", slog.String("cloud", cfg.CloudinaryCloudName))
	}

	validate := validation.New()
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	accountsService := accounts.NewService(st)
	accountsHandler := accounts.NewHandler(accountsService, sessions, validate, logger, cfg.CookieSecure)

	portfolioService := portfolio.NewService(st, cacheStore, cacheTTL, logger)
	portfolioHandler := portfolio.NewHandler(portfolioService, validate, logger)

	mediaService := media.NewService(st, uploader, logger)
	mediaHandler := media.NewHandler(mediaService, logger, cfg.UploadTempDir, cfg.MaxUploadBytes, cfg.MaxUploadFiles)

	analyticsService := analytics.NewService(st)
	analyticsHandler := analytics.NewHandler(analyticsService, logger)

	themesHandler := themes.NewHandler(logger)

	requireSession := middleware.SessionAuth(sessions, st)
	optionalSession := middleware.OptionalSession(sessions, st)

	authLimiter := middleware.NewRateLimiter(cfg.RateLimitAuth, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	hitLimiter := middleware.NewRateLimiter(cfg.RateLimitHits, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.With(authLimiter.Middleware).Post("/register", accountsHandler.Register)
			ar.With(authLimiter.Middleware).Post("/login", accountsHandler.Login)
			ar.Post("/logout", accountsHandler.Logout)

			ar.Group(func(protected chi.Router) {
				protected.Use(requireSession)
				protected.Get("/user", accountsHandler.CurrentUser)
				protected.Put("/profile", accountsHandler.UpdateProfile)
				protected.Put("/change-password", accountsHandler.ChangePassword)
			})
		})

		api.Route("/portfolio", func(pr chi.Router) {
			pr.Group(func(protected chi.Router) {
				protected.Use(requireSession)
				protected.Get("/", portfolioHandler.ListOwn)
				protected.Post("/", portfolioHandler.Create)
				protected.Put("/{id}", portfolioHandler.Update)
				protected.Delete("/{id}", portfolioHandler.Delete)

				protected.Post("/{caseStudyId}/timeline", portfolioHandler.AddTimelineItem)
				protected.Put("/timeline/{id}", portfolioHandler.UpdateTimelineItem)
				protected.Delete("/timeline/{id}", portfolioHandler.DeleteTimelineItem)

				protected.Post("/{caseStudyId}/testimonial", portfolioHandler.AddTestimonial)
				protected.Put("/testimonial/{id}", portfolioHandler.UpdateTestimonial)
				protected.Delete("/testimonial/{id}", portfolioHandler.DeleteTestimonial)

				protected.Post("/{caseStudyId}/metric", portfolioHandler.AddMetric)
				protected.Put("/metric/{id}", portfolioHandler.UpdateMetric)
				protected.Delete("/metric/{id}", portfolioHandler.DeleteMetric)
			})

			pr.Group(func(public chi.Router) {
				public.Use(optionalSession)
				public.Get("/case-study/{id}", portfolioHandler.CaseStudyByID)
				public.Get("/{identifier}", portfolioHandler.PublicPortfolio)
				public.With(hitLimiter.Middleware).Get("/{username}/{slug}", portfolioHandler.PublicCaseStudy)
			})
		})

		api.Route("/media", func(mr chi.Router) {
			mr.Get("/case-study/{id}", mediaHandler.ListByCaseStudy)

			mr.Group(func(protected chi.Router) {
				protected.Use(requireSession)
				protected.Get("/", mediaHandler.ListOwn)
				protected.Post("/upload", mediaHandler.Upload)
				protected.Post("/upload-multiple", mediaHandler.UploadMultiple)
				protected.Delete("/{id}", mediaHandler.Delete)
			})
		})

		api.Route("/analytics", func(ar chi.Router) {
			ar.With(hitLimiter.Middleware).Post("/hit/{username}", analyticsHandler.RecordHit)

			ar.Group(func(protected chi.Router) {
				protected.Use(requireSession)
				protected.Get("/", analyticsHandler.GetUserSummary)
				protected.Get("/case-study/{id}", analyticsHandler.GetCaseStudySummary)
			})
		})

		api.Route("/themes", func(tr chi.Router) {
			tr.Get("/", themesHandler.List)
			tr.Get("/{id}", themesHandler.Get)
			tr.Get("/{id}/css", themesHandler.CSS)
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(buf)
}
