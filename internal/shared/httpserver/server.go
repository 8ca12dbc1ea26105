package httpserver

import (
	"context"
	"os"
	"os/signal"
	"time"

	auctionhttp "github.com/atelier-works/atelier-engine/internal/auction/infra/http"
	"github.com/atelier-works/atelier-engine/internal/auction/infra/ws"
	"github.com/atelier-works/atelier-engine/internal/shared/config"
	"github.com/atelier-works/atelier-engine/internal/shared/logger"
	sharedws "github.com/atelier-works/atelier-engine/internal/shared/websocket"
	userdomain "github.com/atelier-works/atelier-engine/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	app *fiber.App
}

var log = logger.GetLogger()

// NewServer builds the fiber app and wires every route.
func NewServer(cfg *config.Config, handler *auctionhttp.AuctionHandler,
	profiles userdomain.ProfileRepository, hub *sharedws.Hub) *Server {
	app := fiber.New()

	// Request logging middleware
	app.Use(func(c *fiber.Ctx) error {
		log.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("remote_addr", c.IP()),
		)
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	authed := auctionhttp.JWTAuth(cfg.JWTSecret, profiles)

	api := app.Group("/api")
	api.Post("/bids/place", authed, handler.PlaceBid)
	api.Get("/cron/auction-end", auctionhttp.CronAuth(cfg.CronSecret), handler.Sweep)
	api.Post("/auctions", authed, handler.CreateAuction)
	api.Get("/auctions", handler.ListAuctions)
	api.Get("/auctions/:id", handler.GetAuction)
	api.Delete("/auctions/:id", authed, handler.DeleteAuction)
	api.Post("/auctions/reactivate", authed, handler.ReactivateAuction)

	app.Use("/ws/auctions/:id", ws.UpgradeRequired())
	app.Get("/ws/auctions/:id", ws.ServeAuctionFeed(hub))

	return &Server{app: app}
}

func (s *Server) Start(addr string) error {
	// clean shutdown on interrupt
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt)
		<-quit

		log.Info("Shutting down HTTP server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.app.ShutdownWithContext(ctx)
	}()

	log.Info("HTTP server started", zap.String("addr", addr))
	return s.app.Listen(addr)
}
