// Package ws upgrades feed subscriptions onto the shared hub.
package ws

import (
	"context"

	sharedws "github.com/atelier-works/atelier-engine/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// UpgradeRequired rejects plain HTTP requests on the feed route.
func UpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// ServeAuctionFeed subscribes the connection to one auction's change feed.
// The connection lives as long as ReadPump does.
func ServeAuctionFeed(hub *sharedws.Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := &sharedws.Client{
			Hub:       hub,
			Conn:      conn,
			Send:      make(chan []byte, 64),
			AuctionID: conn.Params("id"),
			ID:        uuid.NewString(),
		}
		hub.RegisterClient(client)

		ctx := context.Background()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	})
}
