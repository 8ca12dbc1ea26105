package websocket

import (
	"context"
	"time"

	"github.com/atelier-works/atelier-engine/internal/shared/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Constants for WebSocket configuration (adjust as needed)
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Hub keeps the client registry and broadcasts auction state changes.
// The feed is one-way: clients subscribe to an auction and receive its
// mutations; inbound frames are discarded.
type Hub struct {
	// Registered clients, grouped by auction ID.
	clients map[string]map[*Client]bool
	// Outbound state changes to fan out.
	broadcast chan *Message
	// Register requests from the clients.
	register chan *Client
	// Unregister requests from clients.
	unregister chan *Client
}

// Client represents a ws individual connection
type Client struct {
	Hub *Hub
	// The websocket connection.
	Conn *websocket.Conn
	// Buffered channel of outbound messages.
	Send chan []byte
	// The auction ID this client is subscribed to.
	AuctionID string
	// Unique identifier for the client
	ID string
}

type Message struct {
	AuctionID string
	Data      []byte
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
	}
}

// Run starts the hub listening on its channels.
func (h *Hub) Run(ctx context.Context) {
	log.Info("Change feed hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Change feed hub shutting down due to context cancellation")
			return
		case client := <-h.register:
			if _, ok := h.clients[client.AuctionID]; !ok {
				h.clients[client.AuctionID] = make(map[*Client]bool)
			}
			h.clients[client.AuctionID][client] = true
			log.Info("Feed client registered",
				zap.String("clientID", client.ID),
				zap.String("auctionID", client.AuctionID),
			)

		case client := <-h.unregister:
			if clients, ok := h.clients[client.AuctionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					log.Info("Feed client unregistered",
						zap.String("clientID", client.ID),
						zap.String("auctionID", client.AuctionID),
					)
					if len(clients) == 0 {
						delete(h.clients, client.AuctionID)
					}
				}
			}

		case message := <-h.broadcast:
			if clients, ok := h.clients[message.AuctionID]; ok {
				log.Debug("Broadcasting auction state",
					zap.String("auctionID", message.AuctionID),
					zap.Int("clients", len(clients)))
				for client := range clients {
					select {
					case client.Send <- message.Data:
						// delivered
					default:
						// client not draining, probably gone; drop it
						close(client.Send)
						delete(clients, client)
						log.Warn("Failed to send to feed client, unregistering",
							zap.String("clientID", client.ID),
							zap.String("auctionID", client.AuctionID),
						)
					}
				}
			}
		}
	}
}

// RegisterClient registers a new client in the hub.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("Register channel is full, client registration failed",
			zap.String("clientID", client.ID),
			zap.String("auctionID", client.AuctionID),
		)
		_ = client.Conn.Close()
	}
}

// UnregisterClient deletes a client from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("Unregister channel is full, client unregistration failed",
			zap.String("clientID", client.ID),
			zap.String("auctionID", client.AuctionID),
		)
	}
}

// Publish queues a state change for every client subscribed to auctionID.
// Non-blocking: when the broadcast channel is full the message is dropped,
// the feed is a convenience layer, not a system of record.
func (h *Hub) Publish(auctionID string, data []byte) {
	select {
	case h.broadcast <- &Message{AuctionID: auctionID, Data: data}:
	default:
		log.Error("Broadcast channel is full, message dropped", zap.String("auctionID", auctionID))
	}
}

// ReadPump consumes frames from the client until it disconnects. Payloads
// are discarded, reading only services the pong handler and detects closes.
// Must run in its own goroutine per client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Info("ReadPump stopped for feed client",
			zap.String("clientID", c.ID),
			zap.String("auctionID", c.AuctionID),
		)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("Unexpected close from feed client",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// WritePump pushes queued messages and periodic pings to the client.
// Must run in its own goroutine per client.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		log.Info("WritePump stopped for feed client",
			zap.String("clientID", c.ID),
			zap.String("auctionID", c.AuctionID),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
