package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/adhub/adhub-api/internal/config"
	"github.com/adhub/adhub-api/internal/domain/admin"
	"github.com/adhub/adhub-api/internal/domain/adstats"
	"github.com/adhub/adhub-api/internal/domain/creative"
	"github.com/adhub/adhub-api/internal/domain/delivery"
	"github.com/adhub/adhub-api/internal/domain/live"
	"github.com/adhub/adhub-api/internal/domain/placement"
	"github.com/adhub/adhub-api/internal/middleware"
	"github.com/adhub/adhub-api/internal/pkg/database"
	"github.com/adhub/adhub-api/internal/pkg/imaging"
	"github.com/adhub/adhub-api/internal/pkg/jwt"
	"github.com/adhub/adhub-api/internal/pkg/logger"
	"github.com/adhub/adhub-api/internal/pkg/response"
	"github.com/adhub/adhub-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	// Database
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.ClosePostgres(db)

	// Redis (optional, popup dismissal degrades without it)
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, popup dismissal disabled")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTTTL)

	// Live admin feed
	hub := live.NewHub()
	go hub.Run()

	// Placements
	placementRepo := placement.NewRepository(db)
	placementHandler := placement.NewHandler(placementRepo)

	// Delivery
	runtime := delivery.NewCommandQueue()
	flags := delivery.NewRedisSessionFlags(redisClient, cfg.PopupDismissTTL)
	selector := delivery.NewSelector(placementRepo)
	deliveryHandler := delivery.NewHandler(selector, runtime, flags, hub, delivery.Config{
		ClientID:        cfg.AdClientID,
		FallbackSlot:    cfg.FallbackSlot,
		FallbackContent: cfg.FallbackCreativeURL,
		Debounce:        cfg.RenderDebounce,
	})

	// Stats
	statsRepo := adstats.NewRepository(db)
	statsService := adstats.NewService(statsRepo)
	collector := adstats.NewCollector(statsRepo, cfg.StatsFlushInterval)
	collector.Start()
	statsHandler := adstats.NewHandler(statsService, collector, hub)

	// Creatives
	var creativeHandler *creative.Handler
	if cfg.R2AccountID != "" {
		r2, err := storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize creative storage")
		}
		processor := imaging.NewProcessor(imaging.DefaultConfig())
		creativeHandler = creative.NewHandler(creative.NewService(r2, processor))
	} else {
		log.Warn().Msg("R2 not configured, creative uploads disabled")
	}

	adminHandler := admin.NewHandler(jwtService, cfg.AdminKeyHash)
	liveHandler := live.NewHandler(hub)

	authMiddleware := middleware.Auth(jwtService)
	adminOnly := middleware.RequireAdmin()
	guard := func(next http.Handler) http.Handler {
		return authMiddleware(adminOnly(next))
	}

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/delivery", delivery.Routes(deliveryHandler))
		r.Mount("/stats", adstats.PublicRoutes(statsHandler))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)
			r.Mount("/placements", placement.Routes(placementHandler, guard))
			r.Mount("/stats", adstats.AdminRoutes(statsHandler, guard))
			r.Mount("/live", live.Routes(liveHandler, guard))
			if creativeHandler != nil {
				r.Mount("/creatives", creative.Routes(creativeHandler, guard))
			}
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	collector.Stop()
	hub.Stop()

	log.Info().Msg("Server stopped")
}
