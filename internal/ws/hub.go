package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/campusloop/campusloop-backend/internal/domain"
	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const redisPubSubChannel = "campusloop:chat_events"

// Event represents a real-time event sent via WebSocket
type Event struct {
	Type    string      `json:"type"`    // "message"
	Payload interface{} `json:"payload"` // event-specific data
}

// Hub manages WebSocket clients grouped by user and fans chat events out to them.
// With redis, events go through pub/sub so every instance delivers to its own clients.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent

	mu          sync.RWMutex
	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

type targetedEvent struct {
	UserID string          `json:"user_id"`
	Data   json.RawMessage `json:"event"`
}

// NewHub creates a new Hub. redisClient may be nil (single instance).
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[ev.UserID] {
				select {
				case client.send <- ev.Data:
				default:
					// slow client, drop it
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			h.mu.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// removeLocked must be called with mu held
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
}

// ClientCount returns the number of connections of a user on this instance
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUser delivers an event to every connection of a user
func (h *Hub) SendToUser(userID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("encode ws event")
		return
	}
	ev := &targetedEvent{UserID: userID, Data: data}

	if h.redisClient != nil {
		payload, err := json.Marshal(ev)
		if err == nil {
			if err = h.redisClient.Publish(h.ctx, redisPubSubChannel, payload).Err(); err == nil {
				return
			}
		}
		pkglogger.GetLogger().Warn().Err(err).Msg("publish ws event, delivering locally")
	}
	h.enqueue(ev)
}

// NotifyMessage pushes an appended chat message to the user's clients
func (h *Hub) NotifyMessage(userID string, key domain.ConversationKey, msg domain.Message) {
	h.SendToUser(userID, &Event{
		Type: domain.ChatEventMessage,
		Payload: domain.ChatEvent{
			Type:            domain.ChatEventMessage,
			ConversationKey: key.String(),
			Message:         &msg,
		},
	})
}

// enqueue never blocks the caller: chat sessions notify while holding their lock
func (h *Hub) enqueue(ev *targetedEvent) {
	select {
	case h.broadcast <- ev:
	default:
		pkglogger.GetLogger().Warn().Str("user_id", ev.UserID).Msg("ws broadcast queue full, event dropped")
	}
}

// subscribeRedis receives events published by every instance (this one included)
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev targetedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err == nil {
				h.enqueue(&ev)
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
