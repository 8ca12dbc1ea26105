package main

import (
	"context"

	"github.com/atelier-works/atelier-engine/internal/auction/application"
	auctionhttp "github.com/atelier-works/atelier-engine/internal/auction/infra/http"
	auctionpg "github.com/atelier-works/atelier-engine/internal/auction/infra/repository/postgres"
	"github.com/atelier-works/atelier-engine/internal/notification"
	"github.com/atelier-works/atelier-engine/internal/ratelimit"
	"github.com/atelier-works/atelier-engine/internal/shared/config"
	"github.com/atelier-works/atelier-engine/internal/shared/db"
	"github.com/atelier-works/atelier-engine/internal/shared/db/migrations"
	"github.com/atelier-works/atelier-engine/internal/shared/httpserver"
	"github.com/atelier-works/atelier-engine/internal/shared/logger"
	sharedws "github.com/atelier-works/atelier-engine/internal/shared/websocket"
	userpg "github.com/atelier-works/atelier-engine/internal/user/infra/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting ATELIER auction engine...")

	cfg := config.Load()

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.GetPostgresDBPool(ctx)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	// change feed
	hub := sharedws.NewHub()
	go hub.Run(ctx)

	// notifications
	var mailer notification.Mailer
	if cfg.SMTP.Host != "" {
		mailer = notification.NewSMTPMailer(cfg.SMTP)
	} else {
		log.Warn("No SMTP host configured, using log-only mailer")
		mailer = notification.LogMailer{}
	}
	dispatcher := notification.NewDispatcher(mailer, cfg.AppURL)

	// repositories
	auctionRepo := auctionpg.NewAuctionRepository(pool)
	bidRepo := auctionpg.NewBidRepository(pool)
	profileRepo := userpg.NewProfileRepository(pool)

	// use cases
	placeBidUC := application.NewPlaceBidUseCase(auctionRepo, bidRepo, pool, dispatcher, hub)
	sweepUC := application.NewSweepUseCase(auctionRepo, bidRepo, profileRepo, dispatcher, hub)
	listingUC := application.NewListingUseCase(auctionRepo, bidRepo)
	reactivateUC := application.NewReactivateUseCase(auctionRepo, hub)
	svc := application.NewAuctionService(placeBidUC, sweepUC, listingUC, reactivateUC)

	// rate limiter is an explicit instance injected into the handler
	limiter := ratelimit.New()
	handler := auctionhttp.NewAuctionHandler(svc, limiter, cfg.BidRateMax, cfg.BidRateWindow)

	server := httpserver.NewServer(cfg, handler, profileRepo, hub)
	if err := server.Start(cfg.Addr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
