package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/acssjr/vizu/internal/config"
	"github.com/acssjr/vizu/internal/db"
	"github.com/acssjr/vizu/internal/handler"
	"github.com/acssjr/vizu/internal/middleware"
	"github.com/acssjr/vizu/internal/repository"
	"github.com/acssjr/vizu/internal/router"
	"github.com/acssjr/vizu/internal/service"
	"github.com/acssjr/vizu/internal/session"
)

const (
	sessionTTL          = 30 * time.Minute
	photoExpirySweep    = 10 * time.Minute
	shutdownGracePeriod = 10 * time.Second
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "vizu-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	handler.InitMetrics(pool)

	cache := service.NewCacheService(cfg.RedisURL)
	sessions := session.NewRegistry(sessionTTL)

	photoRepo := repository.NewPhotoRepo(pool)
	voterRepo := repository.NewVoterRepo(pool)
	voteRepo := repository.NewVoteRepo(pool)

	voteSvc := service.NewVoteService(voteRepo, cache, sessions, cfg.BaseKarmaReward, cfg.KarmaCeiling)
	selectorSvc := service.NewSelectorService(photoRepo, voterRepo, cache)
	voterSvc := service.NewVoterService(voterRepo)

	// Background workers: aggregate reconciliation and photo expiry.
	reconciler := service.NewReconcileWorker(pool, photoRepo, voteRepo, cache)
	go reconciler.Start(ctx)

	expiry := service.NewExpiryWorker(photoRepo, photoExpirySweep)
	go expiry.Start(ctx)
	defer expiry.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Vizu API",
		ServerHeader: "Vizu",
	})

	router.Setup(app, &router.Handlers{
		Photo:  handler.NewPhotoHandler(selectorSvc),
		Vote:   handler.NewVoteHandler(voteSvc, selectorSvc),
		Voter:  handler.NewVoterHandler(voterSvc),
		Stats:  handler.NewStatsHandler(voterSvc),
		Health: handler.NewHealthHandler(pool, cache.Client(), sessions),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Println("shutdown signal received, draining connections")
		if err := app.ShutdownWithTimeout(shutdownGracePeriod); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Vizu backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
